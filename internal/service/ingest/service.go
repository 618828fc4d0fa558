// Package ingest runs the channel pipeline: scrape, resolve captions, store
// records and index search documents.
package ingest

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Taichi-iskw/yt-search/internal/assembler"
	"github.com/Taichi-iskw/yt-search/internal/caption"
	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/logger"
	"github.com/Taichi-iskw/yt-search/internal/model"
	"github.com/Taichi-iskw/yt-search/internal/repository"
	"github.com/Taichi-iskw/yt-search/internal/service/youtube"
	"github.com/Taichi-iskw/yt-search/internal/upsert"
)

// Resolver resolves the captions of one video for one language
type Resolver interface {
	Resolve(ctx context.Context, meta *model.VideoMetadata, lang string) (*caption.Resolution, error)
}

// Index is the search index collaborator
type Index interface {
	upsert.Indexer
	DeleteByChannel(ctx context.Context, channelID string) (int, error)
}

// Options are the batch sizes and limits of a run
type Options struct {
	Languages         []string
	VideoBatchSize    int
	MetadataBatchSize int
	TrackBatchSize    int
	Workers           int
}

// Request selects the channel and language of a run
type Request struct {
	ChannelURL  string
	Lang        string
	ChannelLang string // defaults to Lang
	MaxVideos   int    // 0 means every listed video
}

// Service ingests channels
type Service struct {
	scraper  youtube.Scraper
	resolver Resolver
	store    repository.Store
	index    Index
	coord    *upsert.Coordinator
	log      *logger.Logger
	opts     Options
}

// NewService creates a Service
func NewService(scraper youtube.Scraper, resolver Resolver, store repository.Store, index Index, log *logger.Logger, opts Options) *Service {
	opts.VideoBatchSize = max(opts.VideoBatchSize, 1)
	opts.MetadataBatchSize = max(opts.MetadataBatchSize, 1)
	opts.TrackBatchSize = max(opts.TrackBatchSize, 1)
	opts.Workers = max(opts.Workers, 1)
	return &Service{
		scraper:  scraper,
		resolver: resolver,
		store:    store,
		index:    index,
		coord:    upsert.NewCoordinator(store, index, log),
		log:      log,
		opts:     opts,
	}
}

// SupportsLanguage reports whether lang is one of the configured languages
func (s *Service) SupportsLanguage(lang string) bool {
	return slices.Contains(s.opts.Languages, lang)
}

// IngestChannel replaces everything stored and indexed for the channel with a
// fresh scrape. Videos without a caption in req.Lang are skipped. The channel
// record is stored after all of its videos.
func (s *Service) IngestChannel(ctx context.Context, req Request) (*Report, error) {
	if !s.SupportsLanguage(req.Lang) {
		return nil, errors.New(errors.CodeUnsupportedLanguage,
			fmt.Sprintf("language %q is not supported (supported: %s)", req.Lang, strings.Join(s.opts.Languages, ", ")))
	}
	channelLang := req.ChannelLang
	if channelLang == "" {
		channelLang = req.Lang
	}

	report := &Report{RunID: uuid.NewString(), Lang: req.Lang}
	log := s.log.With("run_id", report.RunID)

	channel, err := s.scraper.FetchChannel(ctx, req.ChannelURL, channelLang)
	if err != nil {
		return nil, err
	}
	report.ChannelID = channel.ID
	log = log.With("channel_id", channel.ID)

	reset, err := s.Reset(ctx, channel.ID)
	if err != nil {
		return report, err
	}
	report.Reset = *reset

	videoIDs := channel.VideoIDs
	if req.MaxVideos > 0 && len(videoIDs) > req.MaxVideos {
		videoIDs = videoIDs[:req.MaxVideos]
	}
	report.VideosListed = len(videoIDs)
	if len(videoIDs) == 0 {
		log.Warn("channel lists no videos", "url", req.ChannelURL)
		report.Warnings = append(report.Warnings, formatWarning(channel.ID, "channel lists no videos", "url", req.ChannelURL))
	}
	log.Info("ingesting channel", "videos", len(videoIDs), "lang", req.Lang)

	results := &collector{report: report}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for batch := range upsert.Batches(slices.Values(videoIDs), s.opts.VideoBatchSize) {
		g.Go(func() error {
			return s.processBatch(gctx, log, channel, batch, req.Lang, results)
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	w, err := s.coord.StoreOne(ctx, repository.CollectionChannels, repository.Record{ID: channel.ID, Body: channel})
	if err != nil {
		return report, err
	}
	if w.Overwritten {
		report.Overwrites++
		report.Warnings = append(report.Warnings, overwriteWarning(channel.ID, repository.CollectionChannels, w.Report()))
	}

	log.Info("channel ingested",
		"processed", report.VideosProcessed,
		"skipped", report.VideosSkipped,
		"captions", report.CaptionsStored,
		"tracks", report.TracksStored,
		"overwrites", report.Overwrites,
		"warnings", len(report.Warnings))
	return report, nil
}

// processBatch handles the videos of one batch in order
func (s *Service) processBatch(ctx context.Context, log *logger.Logger, channel *model.Channel, videoIDs []string, lang string, results *collector) error {
	log.Debug("processing batch", "first", videoIDs[0], "size", len(videoIDs))
	defer log.Debug("batch done", "first", videoIDs[0])

	for _, id := range videoIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := s.processVideo(ctx, log.With("video_id", id), channel, id, lang)
		results.add(v)
		if err != nil {
			return fmt.Errorf("video %s: %w", id, err)
		}
	}
	return nil
}

// processVideo stores and indexes one video. Scrape failures and missing
// captions skip the video; write failures are returned.
func (s *Service) processVideo(ctx context.Context, log *logger.Logger, channel *model.Channel, videoID, lang string) (videoReport, error) {
	var v videoReport
	warn := func(msg string, keysAndValues ...interface{}) {
		log.Warn(msg, keysAndValues...)
		v.warnings = append(v.warnings, formatWarning(videoID, msg, keysAndValues...))
	}
	overwrites := func(collection repository.Collection, r upsert.Report) {
		if len(r.OverwrittenIDs) > 0 {
			v.warnings = append(v.warnings, overwriteWarning(videoID, collection, r))
		}
	}

	meta, err := s.scraper.FetchVideo(ctx, videoID)
	if err != nil {
		if ctx.Err() != nil {
			return v, ctx.Err()
		}
		warn("video metadata unavailable, skipping", "error", err)
		return v, nil
	}
	if meta.Video.ChannelID != channel.ID {
		warn("video listed under another channel", "reported_channel_id", meta.Video.ChannelID)
		meta.Video.ChannelID = channel.ID
	}

	res, err := s.resolver.Resolve(ctx, meta, lang)
	if err != nil {
		return v, err
	}
	for _, w := range res.Warnings {
		v.warnings = append(v.warnings, videoID+": "+w)
	}
	if len(res.Captions) == 0 {
		warn("no caption for language, skipping", "lang", lang)
		return v, nil
	}

	video := &meta.Video
	w, err := s.coord.StoreOne(ctx, repository.CollectionVideos, repository.Record{ID: video.ID, ParentID: channel.ID, Body: video})
	if err != nil {
		return v, err
	}
	v.video = w.Report()
	overwrites(repository.CollectionVideos, v.video)

	if v.captions, err = s.coord.StoreMany(ctx, repository.CollectionCaptions, captionRecords(res.Captions), s.opts.MetadataBatchSize); err != nil {
		return v, err
	}
	overwrites(repository.CollectionCaptions, v.captions)
	if v.tracks, err = s.coord.StoreMany(ctx, repository.CollectionTracks, trackRecords(res.Captions), s.opts.TrackBatchSize); err != nil {
		return v, err
	}
	overwrites(repository.CollectionTracks, v.tracks)
	if v.documents, err = s.coord.IndexDocuments(ctx, assembler.Documents(channel, video, res.Captions), s.opts.TrackBatchSize); err != nil {
		return v, err
	}

	v.processed = true
	log.Info("video ingested", "captions", len(res.Captions), "tracks", res.Tracks())
	return v, nil
}

func captionRecords(captions []*model.Caption) iter.Seq[repository.Record] {
	return func(yield func(repository.Record) bool) {
		for _, c := range captions {
			if !yield(repository.Record{ID: c.ID, ParentID: c.VideoID, Body: c}) {
				return
			}
		}
	}
}

func trackRecords(captions []*model.Caption) iter.Seq[repository.Record] {
	return func(yield func(repository.Record) bool) {
		for _, c := range captions {
			for _, t := range c.Tracks {
				if !yield(repository.Record{ID: t.ID, ParentID: t.CaptionID, Body: t}) {
					return
				}
			}
		}
	}
}

// overwriteWarning names the records of r that replaced existing ones.
// The coordinator has already logged each overwrite.
func overwriteWarning(ownerID string, collection repository.Collection, r upsert.Report) string {
	return formatWarning(ownerID, "overwrote existing records", "collection", collection, "ids", strings.Join(r.OverwrittenIDs, ","))
}

func formatWarning(videoID, msg string, keysAndValues ...interface{}) string {
	var b strings.Builder
	b.WriteString(videoID)
	b.WriteString(": ")
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return b.String()
}
