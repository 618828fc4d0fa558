// Package linker turns decoded segments of one caption into linked tracks.
package linker

import (
	"strings"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/identifier"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

// DefaultWindow includes the immediately preceding and following segment
const DefaultWindow = 1

// Linker computes prev/next references and the context window of each track
type Linker struct {
	window int
}

// New creates a Linker. A negative window is treated as zero.
func New(window int) *Linker {
	if window < 0 {
		window = 0
	}
	return &Linker{window: window}
}

// Link annotates segments, which must be in decode order, as tracks of captionKey.
// Segment order is preserved; an empty input yields an empty result.
func (l *Linker) Link(captionKey string, segments []model.RawSegment) ([]*model.Track, error) {
	tracks := make([]*model.Track, len(segments))
	if len(segments) == 0 {
		return tracks, nil
	}

	keys := make([]string, len(segments))
	for i, seg := range segments {
		if seg.SequenceIndex != i {
			return nil, errors.New(errors.CodeInvalidArg, "segments are not in decode order")
		}
		key, err := identifier.TrackKey(captionKey, i)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}

	last := len(segments) - 1
	for i, seg := range segments {
		track := &model.Track{
			ID:            keys[i],
			CaptionID:     captionKey,
			SequenceIndex: i,
			Start:         seg.Start,
			Duration:      seg.Duration,
			Content:       seg.Text,
			Context:       l.context(segments, i),
		}
		if i > 0 {
			track.PrevID = &keys[i-1]
		}
		if i < last {
			track.NextID = &keys[i+1]
		}
		tracks[i] = track
	}
	return tracks, nil
}

// context joins the non-empty texts of segments[i-window:i+window+1] with spaces
func (l *Linker) context(segments []model.RawSegment, i int) string {
	lo := max(i-l.window, 0)
	hi := min(i+l.window, len(segments)-1)

	parts := make([]string, 0, hi-lo+1)
	for j := lo; j <= hi; j++ {
		if segments[j].Text != "" {
			parts = append(parts, segments[j].Text)
		}
	}
	return strings.Join(parts, " ")
}
