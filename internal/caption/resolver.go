// Package caption resolves the caption variants of a video for one language
// and turns each into a list of linked tracks.
package caption

import (
	"context"
	"fmt"
	"strings"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/identifier"
	"github.com/Taichi-iskw/yt-search/internal/linker"
	"github.com/Taichi-iskw/yt-search/internal/logger"
	"github.com/Taichi-iskw/yt-search/internal/model"
	"github.com/Taichi-iskw/yt-search/internal/timedtext"
)

// FallbackPolicy decides when the automatic caption replaces the manual one
type FallbackPolicy string

const (
	// FallbackOnFailure tries automatic when manual is absent or cannot be fetched/decoded
	FallbackOnFailure FallbackPolicy = "on_failure"
	// FallbackOnMiss tries automatic only when manual is absent
	FallbackOnMiss FallbackPolicy = "on_miss"
)

// Valid reports whether p is a known policy
func (p FallbackPolicy) Valid() bool {
	return p == FallbackOnFailure || p == FallbackOnMiss
}

// preferredFormats lists renditions in order of preference
var preferredFormats = []timedtext.Format{timedtext.FormatSrv1, timedtext.FormatVTT}

// Lookup returns the preferred rendition of lang in index. ok is false when the
// language has no usable rendition; that is a normal negative result.
func Lookup(index model.CaptionIndex, lang string) (format model.CaptionFormat, ok bool) {
	formats := index[lang]
	for _, want := range preferredFormats {
		for _, f := range formats {
			if timedtext.Format(f.Ext) == want && f.URL != "" {
				return f, true
			}
		}
	}
	return model.CaptionFormat{}, false
}

// Resolution is the outcome of resolving one language of one video
type Resolution struct {
	Captions []*model.Caption
	Warnings []string
}

// Tracks returns the number of tracks across all resolved captions
func (r *Resolution) Tracks() int {
	n := 0
	for _, c := range r.Captions {
		n += len(c.Tracks)
	}
	return n
}

// Options configures a Resolver
type Options struct {
	Policy      FallbackPolicy
	CollectBoth bool
}

// Resolver fetches, decodes and links caption variants
type Resolver struct {
	fetcher timedtext.Fetcher
	linker  *linker.Linker
	log     *logger.Logger
	opts    Options
}

// NewResolver creates a Resolver. An empty policy means FallbackOnFailure.
func NewResolver(fetcher timedtext.Fetcher, l *linker.Linker, log *logger.Logger, opts Options) *Resolver {
	if opts.Policy == "" {
		opts.Policy = FallbackOnFailure
	}
	return &Resolver{fetcher: fetcher, linker: l, log: log, opts: opts}
}

// Resolve returns at most one caption per type for lang. Caption-local fetch and
// decode failures are recovered and reported as warnings; only contract
// violations and cancellation are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, meta *model.VideoMetadata, lang string) (*Resolution, error) {
	res := &Resolution{}
	videoID := meta.Video.ID

	manualFormat, hasManual := Lookup(meta.Subtitles, lang)
	autoFormat, hasAuto := Lookup(meta.AutomaticCaptions, lang)

	wantAuto := hasAuto && (r.opts.CollectBoth || !hasManual)

	if hasManual {
		manual, failed, err := r.load(ctx, res, videoID, model.CaptionManual, lang, manualFormat)
		if err != nil {
			return nil, err
		}
		switch {
		case !failed:
			res.Captions = append(res.Captions, manual)
		case hasAuto && r.opts.Policy == FallbackOnFailure:
			// the automatic caption takes the failed manual caption's place
			wantAuto = true
			r.warn(res, "manual caption unresolvable, falling back to automatic", "caption_id", manual.ID)
		default:
			res.Captions = append(res.Captions, manual)
		}
	}

	if wantAuto {
		auto, _, err := r.load(ctx, res, videoID, model.CaptionAuto, lang, autoFormat)
		if err != nil {
			return nil, err
		}
		res.Captions = append(res.Captions, auto)
	}

	return res, nil
}

// load builds one caption with its linked tracks. failed is true when the
// payload could not be fetched or decoded; the caption is then returned with
// zero tracks.
func (r *Resolver) load(ctx context.Context, res *Resolution, videoID string, captionType model.CaptionType, lang string, format model.CaptionFormat) (*model.Caption, bool, error) {
	key, err := identifier.CaptionKey(videoID, captionType, lang)
	if err != nil {
		return nil, false, err
	}
	c := &model.Caption{
		ID:       key,
		VideoID:  videoID,
		Type:     captionType,
		LangCode: lang,
		URL:      format.URL,
		Tracks:   []*model.Track{},
	}

	payload, err := r.fetcher.Fetch(ctx, format.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		r.warn(res, "failed to fetch caption", "caption_id", key, "error", err)
		return c, true, nil
	}

	decoded, err := timedtext.Decode(key, timedtext.Format(format.Ext), payload)
	if err != nil {
		if !errors.HasCode(err, errors.CodeTrackDecode) {
			return nil, false, err
		}
		r.warn(res, "failed to decode caption", "caption_id", key, "error", err)
		return c, true, nil
	}
	for _, w := range decoded.Warnings {
		r.warn(res, "segment field defaulted", "caption_id", key, "sequence_index", w.SequenceIndex, "field", w.Field)
	}

	tracks, err := r.linker.Link(key, decoded.Segments)
	if err != nil {
		return nil, false, fmt.Errorf("link %s: %w", key, err)
	}
	c.Tracks = tracks

	r.log.Debug("caption resolved", "caption_id", key, "tracks", len(tracks), "format", format.Ext)
	return c, false, nil
}

func (r *Resolver) warn(res *Resolution, msg string, keysAndValues ...interface{}) {
	r.log.Warn(msg, keysAndValues...)

	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	res.Warnings = append(res.Warnings, sb.String())
}
