package ingest

import (
	"context"

	"github.com/Taichi-iskw/yt-search/internal/identifier"
	"github.com/Taichi-iskw/yt-search/internal/repository"
)

// Reset removes the channel's index documents and every stored record owned by
// the channel, children first.
func (s *Service) Reset(ctx context.Context, channelID string) (*ResetReport, error) {
	id, err := identifier.ChannelID(channelID)
	if err != nil {
		return nil, err
	}
	report := &ResetReport{}

	if report.Documents, err = s.index.DeleteByChannel(ctx, id); err != nil {
		return report, err
	}

	videoIDs, err := s.store.ListIDsByParent(ctx, repository.CollectionVideos, []string{id})
	if err != nil {
		return report, err
	}
	captionIDs, err := s.store.ListIDsByParent(ctx, repository.CollectionCaptions, videoIDs)
	if err != nil {
		return report, err
	}

	if report.Tracks, err = s.store.DeleteByParent(ctx, repository.CollectionTracks, captionIDs); err != nil {
		return report, err
	}
	if report.Captions, err = s.store.DeleteByParent(ctx, repository.CollectionCaptions, videoIDs); err != nil {
		return report, err
	}
	if report.Videos, err = s.store.DeleteByParent(ctx, repository.CollectionVideos, []string{id}); err != nil {
		return report, err
	}
	if err := s.store.DeleteOne(ctx, repository.CollectionChannels, id); err != nil {
		return report, err
	}

	s.log.Info("channel reset",
		"channel_id", id,
		"documents", report.Documents,
		"videos", report.Videos,
		"captions", report.Captions,
		"tracks", report.Tracks)
	return report, nil
}
