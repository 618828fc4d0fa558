// Package identifier builds the composite keys shared by the store and the index.
//
// Keys join their components with Delimiter. Track keys zero-pad the sequence
// index so that keys of one caption sort in decode order.
package identifier

import (
	"fmt"
	"strings"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

// Delimiter separates the components of a composite key
const Delimiter = "|"

// sequenceWidth is the zero-padded width of the track sequence component
const sequenceWidth = 6

// MaxSequenceIndex is the largest sequence index a track key can encode
const MaxSequenceIndex = 999999

// ChannelID validates and returns a raw channel id
func ChannelID(raw string) (string, error) {
	return component("channel id", strings.TrimSpace(raw))
}

// VideoID validates and returns a raw video id
func VideoID(raw string) (string, error) {
	return component("video id", strings.TrimSpace(raw))
}

// CaptionKey builds video_id|caption_type|lang_code
func CaptionKey(videoID string, captionType model.CaptionType, lang string) (string, error) {
	if captionType != model.CaptionManual && captionType != model.CaptionAuto {
		return "", errors.New(errors.CodeInvalidIdentifier, fmt.Sprintf("unknown caption type %q", captionType))
	}
	parts := []struct{ name, value string }{
		{"video id", videoID},
		{"caption type", string(captionType)},
		{"language code", lang},
	}
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		v, err := component(p.name, p.value)
		if err != nil {
			return "", err
		}
		values = append(values, v)
	}
	return strings.Join(values, Delimiter), nil
}

// TrackKey builds caption_key|sequence_index
func TrackKey(captionKey string, sequenceIndex int) (string, error) {
	if captionKey == "" {
		return "", errors.New(errors.CodeInvalidIdentifier, "caption key is empty")
	}
	if sequenceIndex < 0 || sequenceIndex > MaxSequenceIndex {
		return "", errors.New(errors.CodeInvalidIdentifier, fmt.Sprintf("sequence index %d out of range", sequenceIndex))
	}
	return captionKey + Delimiter + fmt.Sprintf("%0*d", sequenceWidth, sequenceIndex), nil
}

func component(name, value string) (string, error) {
	if value == "" {
		return "", errors.New(errors.CodeInvalidIdentifier, name+" is empty")
	}
	if strings.Contains(value, Delimiter) {
		return "", errors.New(errors.CodeInvalidIdentifier, fmt.Sprintf("%s %q contains reserved delimiter %q", name, value, Delimiter))
	}
	return value, nil
}
