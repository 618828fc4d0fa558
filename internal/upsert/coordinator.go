// Package upsert writes records and search documents in fixed-size batches,
// replacing existing documents on primary-key conflict.
package upsert

import (
	"context"
	"fmt"
	"iter"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/logger"
	"github.com/Taichi-iskw/yt-search/internal/model"
	"github.com/Taichi-iskw/yt-search/internal/repository"
)

// State is the write state of a single document
type State string

const (
	StatePending     State = "PENDING"
	StateOverwriting State = "OVERWRITING"
	StateStored      State = "STORED"
)

// Indexer is the search index collaborator
type Indexer interface {
	Bulk(ctx context.Context, actions []model.IndexAction) error
}

// Report counts the outcome of a write. OverwrittenIDs lists the ids of the
// records that replaced existing ones.
type Report struct {
	Batches        int
	Stored         int
	Overwritten    int
	OverwrittenIDs []string
}

// Add accumulates other into r
func (r *Report) Add(other Report) {
	r.Batches += other.Batches
	r.Stored += other.Stored
	r.Overwritten += other.Overwritten
	r.OverwrittenIDs = append(r.OverwrittenIDs, other.OverwrittenIDs...)
}

// Coordinator submits batches to the store and the index
type Coordinator struct {
	store repository.Store
	index Indexer
	log   *logger.Logger
}

// NewCoordinator creates a Coordinator. index may be nil when only the store is written.
func NewCoordinator(store repository.Store, index Indexer, log *logger.Logger) *Coordinator {
	return &Coordinator{store: store, index: index, log: log}
}

// Write is the outcome of a single record write
type Write struct {
	ID          string
	State       State
	Overwritten bool
}

// Report counts w as a one-record batch
func (w Write) Report() Report {
	switch {
	case w.State != StateStored:
		return Report{}
	case w.Overwritten:
		return Report{Batches: 1, Overwritten: 1, OverwrittenIDs: []string{w.ID}}
	default:
		return Report{Batches: 1, Stored: 1}
	}
}

// StoreOne inserts record. On conflict the existing record is deleted and the
// record inserted again; a second conflict is returned as an error.
func (c *Coordinator) StoreOne(ctx context.Context, collection repository.Collection, record repository.Record) (Write, error) {
	err := c.store.InsertOne(ctx, collection, record)
	if err == nil {
		return Write{ID: record.ID, State: StateStored}, nil
	}
	if !errors.IsConflict(err) {
		return Write{ID: record.ID, State: StatePending}, err
	}

	c.log.Warn("record exists, overwriting", "collection", collection, "id", record.ID)
	if err := c.store.DeleteOne(ctx, collection, record.ID); err != nil {
		return Write{ID: record.ID, State: StateOverwriting}, err
	}
	if err := c.store.InsertOne(ctx, collection, record); err != nil {
		return Write{ID: record.ID, State: StateOverwriting}, overwriteError(err, fmt.Sprintf("overwrite of %s %s failed", collection, record.ID))
	}
	return Write{ID: record.ID, State: StateStored, Overwritten: true}, nil
}

// StoreMany writes records in batches of batchSize. A conflicting batch is
// deleted by id and inserted again as a whole. Any other error stops the
// write; batches already written stay written.
func (c *Coordinator) StoreMany(ctx context.Context, collection repository.Collection, records iter.Seq[repository.Record], batchSize int) (Report, error) {
	var report Report
	for batch := range Batches(records, batchSize) {
		overwritten, err := c.storeBatch(ctx, collection, batch)
		if err != nil {
			return report, err
		}
		report.Batches++
		if overwritten {
			report.Overwritten += len(batch)
			for _, r := range batch {
				report.OverwrittenIDs = append(report.OverwrittenIDs, r.ID)
			}
		} else {
			report.Stored += len(batch)
		}
	}
	return report, nil
}

func (c *Coordinator) storeBatch(ctx context.Context, collection repository.Collection, batch []repository.Record) (bool, error) {
	err := c.store.InsertMany(ctx, collection, batch)
	if err == nil {
		return false, nil
	}
	if !errors.IsConflict(err) {
		return false, err
	}

	ids := make([]string, len(batch))
	for i, r := range batch {
		ids[i] = r.ID
	}
	c.log.Warn("batch has existing records, overwriting", "collection", collection, "size", len(batch))

	if _, err := c.store.DeleteMany(ctx, collection, ids); err != nil {
		return false, err
	}
	if err := c.store.InsertMany(ctx, collection, batch); err != nil {
		return false, overwriteError(err, fmt.Sprintf("overwrite of %s batch failed", collection))
	}
	return true, nil
}

// overwriteError reports a conflict that survived the delete as CONFLICT.
// Other failures are returned unchanged.
func overwriteError(err error, message string) error {
	if errors.IsConflict(err) {
		return errors.Wrap(err, errors.CodeConflict, message)
	}
	return err
}

// IndexDocuments sends docs to the index as index actions in batches of batchSize.
// Indexing an existing id replaces the document.
func (c *Coordinator) IndexDocuments(ctx context.Context, docs iter.Seq[model.Document], batchSize int) (Report, error) {
	var report Report
	if c.index == nil {
		return report, errors.New(errors.CodeInternal, "no index configured")
	}

	for batch := range Batches(docs, batchSize) {
		actions := make([]model.IndexAction, len(batch))
		for i := range batch {
			actions[i] = model.IndexAction{Op: model.IndexOpIndex, ID: batch[i].ID, Document: &batch[i]}
		}
		if err := c.index.Bulk(ctx, actions); err != nil {
			return report, errors.Wrap(err, errors.CodeExternal, "bulk index failed")
		}
		report.Batches++
		report.Stored += len(batch)
	}
	return report, nil
}
