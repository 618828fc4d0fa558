// Package mongodb implements the document store on MongoDB. Each collection
// holds documents shaped {_id, parent_id, body}.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/repository"
)

// document is the stored shape of a repository.Record
type document struct {
	ID       string `bson:"_id"`
	ParentID string `bson:"parent_id"`
	Body     any    `bson:"body"`
}

// store implements repository.Store using MongoDB
type store struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect opens a client, verifies it with a ping and returns a store on databaseName
func Connect(ctx context.Context, uri, databaseName string) (repository.Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to ping mongo")
	}
	return &store{client: client, database: client.Database(databaseName)}, nil
}

// NewStore creates a store on an already connected database. Close does not
// disconnect a client it did not open.
func NewStore(database *mongo.Database) repository.Store {
	return &store{database: database}
}

func (s *store) collection(c repository.Collection) (*mongo.Collection, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.database.Collection(string(c)), nil
}

// InsertOne inserts a single record
func (s *store) InsertOne(ctx context.Context, collection repository.Collection, record repository.Record) error {
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, toDocument(record)); err != nil {
		return handleMongoError(err, collection, "failed to insert record")
	}
	return nil
}

// InsertMany inserts records in order. Records before a duplicate stay
// inserted; the caller replaces the whole batch on conflict.
func (s *store) InsertMany(ctx context.Context, collection repository.Collection, records []repository.Record) error {
	if len(records) == 0 {
		return nil
	}
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = toDocument(r)
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return handleMongoError(err, collection, "failed to insert records")
	}
	return nil
}

// DeleteOne deletes the record with the given id, if any
func (s *store) DeleteOne(ctx context.Context, collection repository.Collection, id string) error {
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return handleMongoError(err, collection, "failed to delete record")
	}
	return nil
}

// DeleteMany deletes the records with the given ids
func (s *store) DeleteMany(ctx context.Context, collection repository.Collection, ids []string) (int64, error) {
	return s.deleteWhere(ctx, collection, "_id", ids)
}

// DeleteByParent deletes the records owned by any of parentIDs
func (s *store) DeleteByParent(ctx context.Context, collection repository.Collection, parentIDs []string) (int64, error) {
	return s.deleteWhere(ctx, collection, "parent_id", parentIDs)
}

func (s *store) deleteWhere(ctx context.Context, collection repository.Collection, field string, values []string) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	coll, err := s.collection(collection)
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, bson.M{field: bson.M{"$in": values}})
	if err != nil {
		return 0, handleMongoError(err, collection, "failed to delete records")
	}
	return res.DeletedCount, nil
}

// ListIDsByParent returns the ids of the records owned by any of parentIDs, sorted
func (s *store) ListIDsByParent(ctx context.Context, collection repository.Collection, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		return []string{}, nil
	}
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{"parent_id": bson.M{"$in": parentIDs}}, opts)
	if err != nil {
		return nil, handleMongoError(err, collection, "failed to list records")
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var result struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&result); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to decode record id")
		}
		ids = append(ids, result.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, handleMongoError(err, collection, "cursor error")
	}
	return ids, nil
}

// Close disconnects the client opened by Connect
func (s *store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func toDocument(r repository.Record) document {
	return document{ID: r.ID, ParentID: r.ParentID, Body: r.Body}
}

// handleMongoError converts driver errors to AppErrors; duplicate keys become CONFLICT
func handleMongoError(err error, collection repository.Collection, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Wrap(err, apperrors.CodeConflict, "record with this ID already exists in "+string(collection))
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return apperrors.Wrap(err, apperrors.CodeExternal, "mongo connection error")
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, fmt.Sprintf("%s in %s", operation, collection))
}
