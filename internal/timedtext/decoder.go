// Package timedtext decodes caption payloads into ordered raw segments.
//
// The primary format is YouTube's srv1 timed text:
//
//	<transcript><text start="0.0" dur="5.0">hello</text>...</transcript>
//
// WebVTT payloads are accepted for caption variants that do not offer srv1.
// Segments keep document order; they are never re-sorted by start time.
package timedtext

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/asticode/go-astisub"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/identifier"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

// Format identifies a timed-text serialization
type Format string

const (
	FormatSrv1 Format = "srv1"
	FormatVTT  Format = "vtt"
)

// Warning records a segment field that was missing and replaced by its default
type Warning struct {
	CaptionID     string
	SequenceIndex int
	Field         string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: segment %d: missing %s, defaulted", w.CaptionID, w.SequenceIndex, w.Field)
}

// Result is the outcome of decoding one caption payload
type Result struct {
	Segments []model.RawSegment
	Warnings []Warning
}

// transcript mirrors the srv1 document. A lone <text> element decodes into a
// one-element slice, so single and multi segment payloads share one shape.
type transcript struct {
	XMLName xml.Name   `xml:"transcript"`
	Texts   []textElem `xml:"text"`
}

type textElem struct {
	Start *string `xml:"start,attr"`
	Dur   *string `xml:"dur,attr"`
	Body  *string `xml:",chardata"`
}

// Decode parses a payload of the given format for the caption identified by captionID
func Decode(captionID string, format Format, payload []byte) (*Result, error) {
	switch format {
	case FormatSrv1, "":
		return decodeSrv1(captionID, payload)
	case FormatVTT:
		return decodeVTT(captionID, payload)
	default:
		return nil, errors.New(errors.CodeTrackDecode, fmt.Sprintf("unsupported timed-text format %q", format))
	}
}

func decodeSrv1(captionID string, payload []byte) (*Result, error) {
	var doc transcript
	dec := xml.NewDecoder(bytes.NewReader(payload))
	// HTML named entities such as &nbsp; appear in caption text.
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeTrackDecode, fmt.Sprintf("failed to parse timed text for %s", captionID))
	}

	result := &Result{Segments: make([]model.RawSegment, 0, len(doc.Texts))}
	for idx, elem := range doc.Texts {
		if idx > identifier.MaxSequenceIndex {
			return nil, errors.New(errors.CodeTrackDecode, fmt.Sprintf("too many segments in %s", captionID))
		}
		if elem.Start == nil {
			return nil, errors.New(errors.CodeTrackDecode, fmt.Sprintf("segment %d of %s has no start", idx, captionID))
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(*elem.Start), 64)
		if err != nil || start < 0 {
			return nil, errors.Wrap(err, errors.CodeTrackDecode, fmt.Sprintf("segment %d of %s has invalid start %q", idx, captionID, *elem.Start))
		}

		seg := model.RawSegment{SequenceIndex: idx, Start: start}

		if d, ok := parseDuration(elem.Dur); ok {
			seg.Duration = d
		} else {
			result.Warnings = append(result.Warnings, Warning{CaptionID: captionID, SequenceIndex: idx, Field: "dur"})
		}

		if elem.Body != nil && *elem.Body != "" {
			// srv1 text is entity-escaped twice; the XML decoder removed one level.
			seg.Text = html.UnescapeString(*elem.Body)
		} else {
			result.Warnings = append(result.Warnings, Warning{CaptionID: captionID, SequenceIndex: idx, Field: "text"})
		}

		result.Segments = append(result.Segments, seg)
	}
	return result, nil
}

func parseDuration(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

func decodeVTT(captionID string, payload []byte) (*Result, error) {
	subs, err := astisub.ReadFromWebVTT(bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTrackDecode, fmt.Sprintf("failed to parse WebVTT for %s", captionID))
	}

	result := &Result{Segments: make([]model.RawSegment, 0, len(subs.Items))}
	for idx, item := range subs.Items {
		if idx > identifier.MaxSequenceIndex {
			return nil, errors.New(errors.CodeTrackDecode, fmt.Sprintf("too many segments in %s", captionID))
		}
		seg := model.RawSegment{
			SequenceIndex: idx,
			Start:         item.StartAt.Seconds(),
		}
		if item.EndAt > item.StartAt {
			seg.Duration = (item.EndAt - item.StartAt).Seconds()
		} else {
			result.Warnings = append(result.Warnings, Warning{CaptionID: captionID, SequenceIndex: idx, Field: "dur"})
		}

		seg.Text = html.UnescapeString(itemText(item))
		if seg.Text == "" {
			result.Warnings = append(result.Warnings, Warning{CaptionID: captionID, SequenceIndex: idx, Field: "text"})
		}
		result.Segments = append(result.Segments, seg)
	}
	return result, nil
}

// itemText joins the lines of a subtitle item with single spaces
func itemText(item *astisub.Item) string {
	var sb strings.Builder
	for i, line := range item.Lines {
		if i > 0 {
			sb.WriteRune(' ')
		}
		for _, li := range line.Items {
			sb.WriteString(li.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
