package youtube

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/identifier"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

// FetchChannel fetches channel information and its video id list using yt-dlp.
// langCode is the declared language of the channel.
func (s *youTubeService) FetchChannel(ctx context.Context, channelURL, langCode string) (*model.Channel, error) {
	// Input validation
	if channelURL == "" {
		return nil, errors.New(errors.CodeInvalidArg, "channel URL is required")
	}
	if langCode == "" {
		return nil, errors.New(errors.CodeInvalidArg, "channel language code is required")
	}

	args := []string{
		"--dump-single-json",
		"--flat-playlist",
		videosTabURL(channelURL),
	}

	output, err := s.cmdRunner.Run(ctx, ytDlp, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch channel info with yt-dlp")
	}

	var ytInfo ytDlpChannelInfo
	if err := json.Unmarshal(output, &ytInfo); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to parse yt-dlp output")
	}

	rawID := ytInfo.ChannelID
	if rawID == "" {
		rawID = ytInfo.ID
	}
	channelID, err := identifier.ChannelID(rawID)
	if err != nil {
		return nil, err
	}

	title := ytInfo.Channel
	if title == "" {
		title = ytInfo.Title
	}
	pageURL := ytInfo.ChannelURL
	if pageURL == "" {
		pageURL = channelURL
	}

	return &model.Channel{
		ID:       channelID,
		URL:      pageURL,
		Title:    title,
		Subs:     ytInfo.FollowerCount,
		LangCode: langCode,
		VideoIDs: videoIDs(ytInfo.Entries),
	}, nil
}

// videosTabURL points a bare channel URL at its videos tab. yt-dlp lists the
// tabs of a bare channel page instead of its videos. Other URLs are returned
// unchanged.
func videosTabURL(channelURL string) string {
	u, err := url.Parse(channelURL)
	if err != nil {
		return channelURL
	}
	switch strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") {
	case "youtube.com", "m.youtube.com":
	default:
		return channelURL
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	bare := false
	switch {
	case len(parts) == 1 && strings.HasPrefix(parts[0], "@") && len(parts[0]) > 1:
		bare = true
	case len(parts) == 2 && parts[1] != "":
		switch parts[0] {
		case "channel", "c", "user":
			bare = true
		}
	}
	if !bare {
		return channelURL
	}
	return u.JoinPath("videos").String()
}

// videoIDs keeps video entries in listing order, dropping nested tabs and repeats
func videoIDs(entries []ytDlpFlatEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IEKey != "" && e.IEKey != "Youtube" {
			continue
		}
		id := strings.TrimSpace(e.ID)
		if id == "" || strings.Contains(id, identifier.Delimiter) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
