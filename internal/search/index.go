// Package search is the search index of track documents, kept in a local bleve index.
package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/logger"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

// deletePageSize bounds how many ids are collected per delete-by-query round
const deletePageSize = 1000

// Index wraps a bleve index of model.Document
type Index struct {
	idx bleve.Index
	log *logger.Logger
}

// Open opens the index at path, creating it with NewMapping when absent
func Open(path string, log *logger.Logger) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		log.Info("creating search index", "path", path)
		idx, err = bleve.New(path, NewMapping())
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, fmt.Sprintf("failed to open search index %s", path))
	}
	return &Index{idx: idx, log: log}, nil
}

// NewInMemory creates an index that lives only in memory
func NewInMemory(log *logger.Logger) (*Index, error) {
	idx, err := bleve.NewMemOnly(NewMapping())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create in-memory index")
	}
	return &Index{idx: idx, log: log}, nil
}

// Close releases the index
func (i *Index) Close() error {
	return i.idx.Close()
}

// Count returns the number of indexed documents
func (i *Index) Count() (uint64, error) {
	return i.idx.DocCount()
}

// Bulk applies actions as a single batch. Indexing an existing id replaces it.
func (i *Index) Bulk(ctx context.Context, actions []model.IndexAction) error {
	if len(actions) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := i.idx.NewBatch()
	for _, a := range actions {
		switch a.Op {
		case model.IndexOpIndex:
			if a.Document == nil {
				return errors.New(errors.CodeInvalidArg, fmt.Sprintf("index action for %s has no document", a.ID))
			}
			if err := batch.Index(a.ID, a.Document); err != nil {
				return errors.Wrap(err, errors.CodeInternal, fmt.Sprintf("failed to index %s", a.ID))
			}
		case model.IndexOpDelete:
			batch.Delete(a.ID)
		default:
			return errors.New(errors.CodeInvalidArg, fmt.Sprintf("unknown index operation %q", a.Op))
		}
	}

	if err := i.idx.Batch(batch); err != nil {
		return errors.Wrap(err, errors.CodeExternal, "failed to apply index batch")
	}
	return nil
}

// DeleteByChannel removes every document whose channel id equals channelID
// and returns how many were removed
func (i *Index) DeleteByChannel(ctx context.Context, channelID string) (int, error) {
	q := bleve.NewTermQuery(channelID)
	q.SetField(FieldChannelID)

	deleted := 0
	for {
		req := bleve.NewSearchRequestOptions(q, deletePageSize, 0, false)
		res, err := i.idx.SearchInContext(ctx, req)
		if err != nil {
			return deleted, errors.Wrap(err, errors.CodeExternal, "failed to query channel documents")
		}
		if len(res.Hits) == 0 {
			break
		}

		actions := make([]model.IndexAction, len(res.Hits))
		for n, hit := range res.Hits {
			actions[n] = model.IndexAction{Op: model.IndexOpDelete, ID: hit.ID}
		}
		if err := i.Bulk(ctx, actions); err != nil {
			return deleted, err
		}
		deleted += len(actions)
	}

	i.log.Info("deleted channel documents", "channel_id", channelID, "count", deleted)
	return deleted, nil
}

// Get returns the documents with the given ids, keyed by id. Missing ids are absent.
func (i *Index) Get(ctx context.Context, ids ...string) (map[string]model.Document, error) {
	docs := make(map[string]model.Document, len(ids))
	if len(ids) == 0 {
		return docs, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery(ids), len(ids), 0, false)
	req.Fields = []string{"*"}
	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch documents")
	}
	for _, hit := range res.Hits {
		docs[hit.ID] = documentFromFields(hit.ID, hit.Fields)
	}
	return docs, nil
}
