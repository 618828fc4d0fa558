// Package postgres implements the document store on PostgreSQL. Every
// collection is a table of (id, parent_id, body jsonb).
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/repository"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

var columns = []string{"id", "parent_id", "body"}

// store implements repository.Store using PostgreSQL
type store struct {
	pool Pool
}

// NewStore creates a new PostgreSQL backed repository.Store
func NewStore(pool Pool) repository.Store {
	return &store{pool: pool}
}

// table returns the quoted table name of a collection
func table(collection repository.Collection) (string, error) {
	if err := collection.Validate(); err != nil {
		return "", err
	}
	return pgx.Identifier{string(collection)}.Sanitize(), nil
}

func encodeBody(record repository.Record) ([]byte, error) {
	body, err := json.Marshal(record.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, fmt.Sprintf("failed to encode record %s", record.ID))
	}
	return body, nil
}

// InsertOne inserts a single record
func (s *store) InsertOne(ctx context.Context, collection repository.Collection, record repository.Record) error {
	tbl, err := table(collection)
	if err != nil {
		return err
	}
	body, err := encodeBody(record)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf("INSERT INTO %s (id, parent_id, body) VALUES ($1, $2, $3)", tbl)
	if _, err := s.pool.Exec(ctx, sql, record.ID, record.ParentID, body); err != nil {
		return handlePostgreSQLError(err, collection, "failed to insert record")
	}
	return nil
}

// InsertMany inserts records with a single COPY, which either stores every row or none
func (s *store) InsertMany(ctx context.Context, collection repository.Collection, records []repository.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := collection.Validate(); err != nil {
		return err
	}

	rows := make([][]any, len(records))
	for i, record := range records {
		body, err := encodeBody(record)
		if err != nil {
			return err
		}
		rows[i] = []any{record.ID, record.ParentID, body}
	}

	if _, err := s.pool.CopyFrom(ctx, pgx.Identifier{string(collection)}, columns, pgx.CopyFromRows(rows)); err != nil {
		return handlePostgreSQLError(err, collection, "failed to insert records")
	}
	return nil
}

// DeleteOne deletes the record with the given id, if any
func (s *store) DeleteOne(ctx context.Context, collection repository.Collection, id string) error {
	tbl, err := table(collection)
	if err != nil {
		return err
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", tbl)
	if _, err := s.pool.Exec(ctx, sql, id); err != nil {
		return handlePostgreSQLError(err, collection, "failed to delete record")
	}
	return nil
}

// DeleteMany deletes the records with the given ids
func (s *store) DeleteMany(ctx context.Context, collection repository.Collection, ids []string) (int64, error) {
	return s.deleteWhere(ctx, collection, "id", ids)
}

// DeleteByParent deletes the records owned by any of parentIDs
func (s *store) DeleteByParent(ctx context.Context, collection repository.Collection, parentIDs []string) (int64, error) {
	return s.deleteWhere(ctx, collection, "parent_id", parentIDs)
}

func (s *store) deleteWhere(ctx context.Context, collection repository.Collection, column string, values []string) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	tbl, err := table(collection)
	if err != nil {
		return 0, err
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1)", tbl, column)
	tag, err := s.pool.Exec(ctx, sql, values)
	if err != nil {
		return 0, handlePostgreSQLError(err, collection, "failed to delete records")
	}
	return tag.RowsAffected(), nil
}

// ListIDsByParent returns the ids of the records owned by any of parentIDs, sorted
func (s *store) ListIDsByParent(ctx context.Context, collection repository.Collection, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		return []string{}, nil
	}
	tbl, err := table(collection)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT id FROM %s WHERE parent_id = ANY($1) ORDER BY id", tbl)
	rows, err := s.pool.Query(ctx, sql, parentIDs)
	if err != nil {
		return nil, handlePostgreSQLError(err, collection, "failed to list records")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan record id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, collection, "failed to iterate records")
	}
	return ids, nil
}

// Close releases the pool
func (s *store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}
