package cmd

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/yt-search/internal/caption"
	"github.com/Taichi-iskw/yt-search/internal/config"
	"github.com/Taichi-iskw/yt-search/internal/linker"
	"github.com/Taichi-iskw/yt-search/internal/logger"
	"github.com/Taichi-iskw/yt-search/internal/repository"
	"github.com/Taichi-iskw/yt-search/internal/repository/mongodb"
	"github.com/Taichi-iskw/yt-search/internal/repository/postgres"
	"github.com/Taichi-iskw/yt-search/internal/search"
	"github.com/Taichi-iskw/yt-search/internal/service/ingest"
	"github.com/Taichi-iskw/yt-search/internal/service/youtube"
	"github.com/Taichi-iskw/yt-search/internal/timedtext"
	"github.com/Taichi-iskw/yt-search/migrations"
)

// ServiceFactory creates services with their dependencies from the configuration
type ServiceFactory struct {
	cfg *config.Config
	log *logger.Logger
}

// NewServiceFactory loads the configuration and builds the logger
func NewServiceFactory() (*ServiceFactory, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &ServiceFactory{cfg: cfg, log: log}, nil
}

// Config returns the loaded configuration
func (f *ServiceFactory) Config() *config.Config {
	return f.cfg
}

// Close flushes the logger
func (f *ServiceFactory) Close() {
	f.log.Sync()
}

// CreateResolver creates a caption resolver over HTTP
func (f *ServiceFactory) CreateResolver() *caption.Resolver {
	fetcher := timedtext.NewHTTPFetcher(timedtext.WithTimeout(f.cfg.FetchTimeout))
	return caption.NewResolver(fetcher, linker.New(f.cfg.ContextWindow), f.log, caption.Options{
		Policy:      caption.FallbackPolicy(f.cfg.FallbackPolicy),
		CollectBoth: f.cfg.CollectBoth,
	})
}

// CreateScraper creates the yt-dlp scraper
func (f *ServiceFactory) CreateScraper() youtube.Scraper {
	return youtube.NewYouTubeService()
}

// OpenIndex opens the search index
func (f *ServiceFactory) OpenIndex() (*search.Index, func(), error) {
	idx, err := search.Open(f.cfg.IndexPath, f.log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := idx.Close(); err != nil {
			f.log.Warn("failed to close search index", "error", err)
		}
	}
	return idx, cleanup, nil
}

// OpenStore connects to the configured document store. PostgreSQL migrations
// are applied first.
func (f *ServiceFactory) OpenStore(ctx context.Context) (repository.Store, func(), error) {
	var (
		store repository.Store
		err   error
	)
	switch f.cfg.Store {
	case config.StorePostgres:
		store, err = f.openPostgres(ctx)
	case config.StoreMongo:
		store, err = mongodb.Connect(ctx, f.cfg.MongoURI, f.cfg.MongoDatabase)
	default:
		err = fmt.Errorf("unknown store %q", f.cfg.Store)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(context.Background()); err != nil {
			f.log.Warn("failed to close store", "error", err)
		}
	}
	return store, cleanup, nil
}

func (f *ServiceFactory) openPostgres(ctx context.Context) (repository.Store, error) {
	version, err := migrations.Up(f.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	f.log.Debug("database schema ready", "version", version)

	pool, err := config.NewDatabasePool(ctx, f.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return postgres.NewStore(pool), nil
}

// CreateIngestService creates the channel pipeline with all dependencies.
// The returned cleanup closes the index and the store.
func (f *ServiceFactory) CreateIngestService(ctx context.Context) (*ingest.Service, func(), error) {
	store, closeStore, err := f.OpenStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	idx, closeIndex, err := f.OpenIndex()
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	service := ingest.NewService(f.CreateScraper(), f.CreateResolver(), store, idx, f.log, ingest.Options{
		Languages:         f.cfg.Languages,
		VideoBatchSize:    f.cfg.VideoBatchSize,
		MetadataBatchSize: f.cfg.MetadataBatchSize,
		TrackBatchSize:    f.cfg.TrackBatchSize,
		Workers:           f.cfg.Workers,
	})

	cleanup := func() {
		closeIndex()
		closeStore()
	}
	return service, cleanup, nil
}
