package repository

import (
	"context"
	"fmt"

	apperrors "github.com/Taichi-iskw/yt-search/internal/errors"
)

// Collection names a group of records in the document store
type Collection string

const (
	CollectionChannels Collection = "channels"
	CollectionVideos   Collection = "videos"
	CollectionCaptions Collection = "captions"
	CollectionTracks   Collection = "tracks"
)

// Collections lists every collection, parents first
var Collections = []Collection{CollectionChannels, CollectionVideos, CollectionCaptions, CollectionTracks}

// Validate rejects unknown collection names
func (c Collection) Validate() error {
	for _, known := range Collections {
		if c == known {
			return nil
		}
	}
	return apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("unknown collection %q", c))
}

// Record is one document of the store. ParentID references the owning record
// (channel of a video, video of a caption, caption of a track).
type Record struct {
	ID       string
	ParentID string
	Body     any
}

// Store is the persistent document store.
// Inserting a record whose ID already exists fails with a CONFLICT AppError.
type Store interface {
	// InsertOne inserts a single record
	InsertOne(ctx context.Context, collection Collection, record Record) error

	// InsertMany inserts records atomically where the backend allows it
	InsertMany(ctx context.Context, collection Collection, records []Record) error

	// DeleteOne deletes the record with the given id, if any
	DeleteOne(ctx context.Context, collection Collection, id string) error

	// DeleteMany deletes the records with the given ids and returns how many were removed
	DeleteMany(ctx context.Context, collection Collection, ids []string) (int64, error)

	// DeleteByParent deletes the records owned by any of parentIDs
	DeleteByParent(ctx context.Context, collection Collection, parentIDs []string) (int64, error)

	// ListIDsByParent returns the ids of the records owned by any of parentIDs
	ListIDsByParent(ctx context.Context, collection Collection, parentIDs []string) ([]string, error)

	// Close releases the backend connection
	Close(ctx context.Context) error
}
