package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Taichi-iskw/yt-search/internal/model"
	"github.com/Taichi-iskw/yt-search/internal/search"
	"github.com/Taichi-iskw/yt-search/internal/service/ingest"
)

// Formatter defines interface for output formatting
type Formatter interface {
	FormatReport(report *ingest.Report) (string, error)
	FormatReset(channelID string, report *ingest.ResetReport) (string, error)
	FormatSearch(result *search.Result) (string, error)
	FormatCaptions(videoID string, captions []*model.Caption) (string, error)
}

// NewFormatter returns the formatter for "text" or "json"
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "text", "":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (expected text or json)", format)
	}
}

// TextFormatter formats output as plain text
type TextFormatter struct{}

// FormatReport formats a channel run report as plain text
func (f *TextFormatter) FormatReport(report *ingest.Report) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Run ID: %s\n", report.RunID))
	output.WriteString(fmt.Sprintf("Channel: %s (%s)\n", report.ChannelID, report.Lang))
	output.WriteString(fmt.Sprintf("Reset: %d documents, %d videos, %d captions, %d tracks removed\n",
		report.Reset.Documents, report.Reset.Videos, report.Reset.Captions, report.Reset.Tracks))
	output.WriteString(fmt.Sprintf("Videos: %d listed, %d processed, %d skipped\n",
		report.VideosListed, report.VideosProcessed, report.VideosSkipped))
	output.WriteString(fmt.Sprintf("Captions stored: %d\n", report.CaptionsStored))
	output.WriteString(fmt.Sprintf("Tracks stored: %d\n", report.TracksStored))
	output.WriteString(fmt.Sprintf("Documents indexed: %d\n", report.DocumentsIndexed))
	output.WriteString(fmt.Sprintf("Overwrites: %d\n", report.Overwrites))

	if len(report.Warnings) > 0 {
		output.WriteString(fmt.Sprintf("\nWarnings (%d):\n", len(report.Warnings)))
		for _, w := range report.Warnings {
			output.WriteString("  - ")
			output.WriteString(w)
			output.WriteString("\n")
		}
	}
	return output.String(), nil
}

// FormatReset formats a channel reset as plain text
func (f *TextFormatter) FormatReset(channelID string, report *ingest.ResetReport) (string, error) {
	return fmt.Sprintf("Channel %s reset: %d documents, %d videos, %d captions, %d tracks removed\n",
		channelID, report.Documents, report.Videos, report.Captions, report.Tracks), nil
}

// FormatSearch formats search hits with their neighbouring tracks as plain text
func (f *TextFormatter) FormatSearch(result *search.Result) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Total hits: %d\n", result.Total))
	for i, hit := range result.Hits {
		matched := hit.Tracks[hit.Matched]
		output.WriteString(fmt.Sprintf("\n[%d] %s (score %.3f)\n", i+1, matched.Caption.Video.Title, hit.Score))
		output.WriteString(fmt.Sprintf("    caption: %s\n", matched.Caption.ID))
		for j, track := range hit.Tracks {
			marker := " "
			if j == hit.Matched {
				marker = ">"
			}
			output.WriteString(fmt.Sprintf("  %s %s  %s\n", marker, formatOffset(track.Start), track.Content))
		}
		output.WriteString(fmt.Sprintf("    %s\n", matched.URL))
	}
	return output.String(), nil
}

// FormatCaptions formats resolved captions and their tracks as plain text
func (f *TextFormatter) FormatCaptions(videoID string, captions []*model.Caption) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Video: %s\n", videoID))
	if len(captions) == 0 {
		output.WriteString("No captions found\n")
		return output.String(), nil
	}

	for _, c := range captions {
		output.WriteString(fmt.Sprintf("\nCaption: %s (%d tracks)\n", c.ID, len(c.Tracks)))
		output.WriteString("=========\n")
		for _, t := range c.Tracks {
			output.WriteString(fmt.Sprintf("[%d] %s +%.2fs %s\n", t.SequenceIndex, formatOffset(t.Start), t.Duration, t.Content))
		}
	}
	return output.String(), nil
}

// formatOffset renders seconds as h:mm:ss or m:ss
func formatOffset(seconds float64) string {
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// JSONFormatter formats output as JSON
type JSONFormatter struct{}

// FormatReport formats a channel run report as JSON
func (f *JSONFormatter) FormatReport(report *ingest.Report) (string, error) {
	return marshal(report)
}

// FormatReset formats a channel reset as JSON
func (f *JSONFormatter) FormatReset(channelID string, report *ingest.ResetReport) (string, error) {
	type Output struct {
		ChannelID string              `json:"channel_id"`
		Removed   *ingest.ResetReport `json:"removed"`
	}
	return marshal(Output{ChannelID: channelID, Removed: report})
}

// FormatSearch formats search hits as JSON
func (f *JSONFormatter) FormatSearch(result *search.Result) (string, error) {
	return marshal(result)
}

// FormatCaptions formats resolved captions with their tracks as JSON
func (f *JSONFormatter) FormatCaptions(videoID string, captions []*model.Caption) (string, error) {
	type CaptionOutput struct {
		*model.Caption
		Tracks []*model.Track `json:"tracks"`
	}
	type Output struct {
		VideoID  string          `json:"video_id"`
		Captions []CaptionOutput `json:"captions"`
	}

	out := Output{VideoID: videoID, Captions: make([]CaptionOutput, 0, len(captions))}
	for _, c := range captions {
		out.Captions = append(out.Captions, CaptionOutput{Caption: c, Tracks: c.Tracks})
	}
	return marshal(out)
}

func marshal(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}
