package ingest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Taichi-iskw/yt-search/internal/caption"
	"github.com/Taichi-iskw/yt-search/internal/model"
	"github.com/Taichi-iskw/yt-search/internal/repository"
)

type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) FetchChannel(ctx context.Context, channelURL, langCode string) (*model.Channel, error) {
	args := m.Called(ctx, channelURL, langCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Channel), args.Error(1)
}

func (m *MockScraper) FetchVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoMetadata), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, meta *model.VideoMetadata, lang string) (*caption.Resolution, error) {
	args := m.Called(ctx, meta.Video.ID, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caption.Resolution), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) InsertOne(ctx context.Context, collection repository.Collection, record repository.Record) error {
	args := m.Called(ctx, collection, record.ID)
	return args.Error(0)
}

func (m *MockStore) InsertMany(ctx context.Context, collection repository.Collection, records []repository.Record) error {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	args := m.Called(ctx, collection, ids)
	return args.Error(0)
}

func (m *MockStore) DeleteOne(ctx context.Context, collection repository.Collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *MockStore) DeleteMany(ctx context.Context, collection repository.Collection, ids []string) (int64, error) {
	args := m.Called(ctx, collection, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteByParent(ctx context.Context, collection repository.Collection, parentIDs []string) (int64, error) {
	args := m.Called(ctx, collection, parentIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListIDsByParent(ctx context.Context, collection repository.Collection, parentIDs []string) ([]string, error) {
	args := m.Called(ctx, collection, parentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Bulk(ctx context.Context, actions []model.IndexAction) error {
	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockIndex) DeleteByChannel(ctx context.Context, channelID string) (int, error) {
	args := m.Called(ctx, channelID)
	return args.Int(0), args.Error(1)
}
