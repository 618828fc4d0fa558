package youtube

import (
	"context"

	"github.com/Taichi-iskw/yt-search/internal/model"
	"github.com/Taichi-iskw/yt-search/internal/service/common"
)

const ytDlp = "yt-dlp"

// Scraper supplies channel listings and per-video metadata
type Scraper interface {
	FetchChannel(ctx context.Context, channelURL, langCode string) (*model.Channel, error)
	FetchVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error)
}

// youTubeService implements Scraper on top of yt-dlp
type youTubeService struct {
	cmdRunner common.CmdRunner
}

// NewYouTubeService creates a new Scraper
func NewYouTubeService() Scraper {
	return NewYouTubeServiceWithCmdRunner(common.NewCmdRunner())
}

// NewYouTubeServiceWithCmdRunner creates a new Scraper with custom CmdRunner (for testing)
func NewYouTubeServiceWithCmdRunner(cmdRunner common.CmdRunner) Scraper {
	return &youTubeService{
		cmdRunner: cmdRunner,
	}
}

// ytDlpChannelInfo represents yt-dlp JSON output structure for a flat channel playlist
type ytDlpChannelInfo struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Channel       string           `json:"channel"`
	ChannelID     string           `json:"channel_id"`
	ChannelURL    string           `json:"channel_url"`
	FollowerCount int64            `json:"channel_follower_count"`
	Entries       []ytDlpFlatEntry `json:"entries"`
}

// ytDlpFlatEntry is one entry of a flat playlist
type ytDlpFlatEntry struct {
	ID    string `json:"id"`
	IEKey string `json:"ie_key"`
}

// ytDlpVideoInfo represents yt-dlp JSON output structure for video info
type ytDlpVideoInfo struct {
	ID                string                         `json:"id"`
	Title             string                         `json:"title"`
	ChannelID         string                         `json:"channel_id"`
	URL               string                         `json:"webpage_url"`
	UploadDate        string                         `json:"upload_date"`
	ViewCount         int64                          `json:"view_count"`
	LikeCount         int64                          `json:"like_count"`
	DislikeCount      int64                          `json:"dislike_count"`
	Categories        []string                       `json:"categories"`
	Language          string                         `json:"language"`
	Subtitles         map[string][]ytDlpCaptionEntry `json:"subtitles"`
	AutomaticCaptions map[string][]ytDlpCaptionEntry `json:"automatic_captions"`
}

// ytDlpCaptionEntry is one rendition of a subtitle language
type ytDlpCaptionEntry struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}
