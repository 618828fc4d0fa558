package youtube

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/identifier"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

const watchURL = "https://www.youtube.com/watch?v="

// FetchVideo fetches video metadata and its caption indices using yt-dlp
func (s *youTubeService) FetchVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	id, err := identifier.VideoID(videoID)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--dump-json",
		"--skip-download",
		watchURL + id,
	}

	output, err := s.cmdRunner.Run(ctx, ytDlp, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch video info with yt-dlp")
	}

	var ytInfo ytDlpVideoInfo
	if err := json.Unmarshal(output, &ytInfo); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to parse yt-dlp output")
	}

	return toVideoMetadata(&ytInfo)
}

// toVideoMetadata validates the raw yt-dlp record and converts it to our model
func toVideoMetadata(info *ytDlpVideoInfo) (*model.VideoMetadata, error) {
	id, err := identifier.VideoID(info.ID)
	if err != nil {
		return nil, err
	}
	channelID, err := identifier.ChannelID(info.ChannelID)
	if err != nil {
		return nil, err
	}
	publishDate, err := isoDate(info.UploadDate)
	if err != nil {
		return nil, err
	}

	url := info.URL
	if url == "" {
		url = watchURL + id
	}
	var category string
	if len(info.Categories) > 0 {
		category = info.Categories[0]
	}

	return &model.VideoMetadata{
		Video: model.Video{
			ID:          id,
			ChannelID:   channelID,
			URL:         url,
			Title:       info.Title,
			PublishDate: publishDate,
			Views:       info.ViewCount,
			Likes:       info.LikeCount,
			Dislikes:    info.DislikeCount,
			Category:    category,
			LangCode:    info.Language,
		},
		Subtitles:         captionIndex(info.Subtitles),
		AutomaticCaptions: captionIndex(info.AutomaticCaptions),
	}, nil
}

// isoDate converts a YYYYMMDD upload date to YYYY-MM-DD
func isoDate(uploadDate string) (string, error) {
	if uploadDate == "" {
		return "", errors.New(errors.CodeInvalidArg, "upload date is required")
	}
	t, err := time.Parse("20060102", uploadDate)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidArg, "invalid upload date "+uploadDate)
	}
	return t.Format(time.DateOnly), nil
}

func captionIndex(raw map[string][]ytDlpCaptionEntry) model.CaptionIndex {
	index := make(model.CaptionIndex, len(raw))
	for lang, entries := range raw {
		formats := make([]model.CaptionFormat, 0, len(entries))
		for _, e := range entries {
			if e.URL == "" {
				continue
			}
			formats = append(formats, model.CaptionFormat{Ext: e.Ext, URL: e.URL})
		}
		if len(formats) > 0 {
			index[lang] = formats
		}
	}
	return index
}
