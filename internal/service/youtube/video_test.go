package youtube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

const videoJSON = `{
	"id": "vid1",
	"title": "Test Video",
	"channel_id": "UCfruit",
	"webpage_url": "https://www.youtube.com/watch?v=vid1",
	"upload_date": "20210506",
	"view_count": 42,
	"like_count": 10,
	"categories": ["Education", "Music"],
	"language": "en",
	"subtitles": {
		"en": [{"ext": "json3", "url": "https://t/en.json3"}, {"ext": "srv1", "url": "https://t/en.srv1"}],
		"fr": [{"ext": "srv1", "url": ""}]
	},
	"automatic_captions": {
		"ko": [{"ext": "vtt", "url": "https://t/ko.vtt", "name": "Korean"}]
	}
}`

func TestYouTubeService_FetchVideo(t *testing.T) {
	mockRunner := new(mockCmdRunner)
	expectedArgs := []string{"--dump-json", "--skip-download", "https://www.youtube.com/watch?v=vid1"}
	mockRunner.On("Run", mock.Anything, "yt-dlp", expectedArgs).Return([]byte(videoJSON), nil)

	service := NewYouTubeServiceWithCmdRunner(mockRunner)
	meta, err := service.FetchVideo(context.Background(), "vid1")
	require.NoError(t, err)

	assert.Equal(t, model.Video{
		ID:          "vid1",
		ChannelID:   "UCfruit",
		URL:         "https://www.youtube.com/watch?v=vid1",
		Title:       "Test Video",
		PublishDate: "2021-05-06",
		Views:       42,
		Likes:       10,
		Category:    "Education",
		LangCode:    "en",
	}, meta.Video)

	assert.Equal(t, model.CaptionIndex{
		"en": {{Ext: "json3", URL: "https://t/en.json3"}, {Ext: "srv1", URL: "https://t/en.srv1"}},
	}, meta.Subtitles)
	assert.Equal(t, model.CaptionIndex{
		"ko": {{Ext: "vtt", URL: "https://t/ko.vtt"}},
	}, meta.AutomaticCaptions)

	mockRunner.AssertExpectations(t)
}

func TestYouTubeService_FetchVideo_Errors(t *testing.T) {
	tests := []struct {
		name      string
		videoID   string
		output    string
		runErr    error
		wantCode  string
		skipMock  bool
		wantInMsg string
	}{
		{name: "empty video id", videoID: "", wantCode: errors.CodeInvalidIdentifier, skipMock: true},
		{name: "delimiter in video id", videoID: "a|b", wantCode: errors.CodeInvalidIdentifier, skipMock: true},
		{name: "yt-dlp fails", videoID: "vid1", output: "", runErr: assert.AnError, wantCode: errors.CodeExternal, wantInMsg: "failed to fetch video info"},
		{name: "invalid json", videoID: "vid1", output: "{", wantCode: errors.CodeInternal, wantInMsg: "failed to parse yt-dlp output"},
		{name: "missing channel", videoID: "vid1", output: `{"id": "vid1", "upload_date": "20210506"}`, wantCode: errors.CodeInvalidIdentifier},
		{name: "missing upload date", videoID: "vid1", output: `{"id": "vid1", "channel_id": "UC1"}`, wantCode: errors.CodeInvalidArg, wantInMsg: "upload date is required"},
		{name: "malformed upload date", videoID: "vid1", output: `{"id": "vid1", "channel_id": "UC1", "upload_date": "2021-05"}`, wantCode: errors.CodeInvalidArg, wantInMsg: "invalid upload date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRunner := new(mockCmdRunner)
			if !tt.skipMock {
				mockRunner.On("Run", mock.Anything, "yt-dlp", mock.AnythingOfType("[]string")).
					Return([]byte(tt.output), tt.runErr)
			}

			service := NewYouTubeServiceWithCmdRunner(mockRunner)
			meta, err := service.FetchVideo(context.Background(), tt.videoID)

			require.Error(t, err)
			assert.Nil(t, meta)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
			if tt.wantInMsg != "" {
				assert.Contains(t, err.Error(), tt.wantInMsg)
			}
			mockRunner.AssertExpectations(t)
		})
	}
}

func TestIsoDate(t *testing.T) {
	got, err := isoDate("19991231")
	require.NoError(t, err)
	assert.Equal(t, "1999-12-31", got)

	_, err = isoDate("19991331")
	assert.Error(t, err)
}
