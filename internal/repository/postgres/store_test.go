package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/model"
	"github.com/Taichi-iskw/yt-search/internal/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

var duplicateKey = &pgconn.PgError{Code: "23505", ConstraintName: "videos_pkey"}

func TestStore_InsertOne(t *testing.T) {
	video := model.Video{ID: "dQw4w9WgXcQ", ChannelID: "UC123", Title: "Never Gonna Give You Up"}
	record := repository.Record{ID: video.ID, ParentID: video.ChannelID, Body: video}
	insertSQL := regexp.QuoteMeta(`INSERT INTO "videos" (id, parent_id, body) VALUES ($1, $2, $3)`)

	tests := []struct {
		name     string
		setup    func(mock pgxmock.PgxPoolIface)
		wantCode string
	}{
		{
			name: "successful insert",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(insertSQL).
					WithArgs("dQw4w9WgXcQ", "UC123", pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate key is a conflict",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(insertSQL).
					WithArgs("dQw4w9WgXcQ", "UC123", pgxmock.AnyArg()).
					WillReturnError(duplicateKey)
			},
			wantCode: apperrors.CodeConflict,
		},
		{
			name: "other database error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(insertSQL).
					WithArgs("dQw4w9WgXcQ", "UC123", pgxmock.AnyArg()).
					WillReturnError(assert.AnError)
			},
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)

			err := NewStore(mock).InsertOne(testContext(t), repository.CollectionVideos, record)
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestStore_InsertOne_BodyIsJSON(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "channels"`)).
		WithArgs("UC1", "", []byte(`{"id":"UC1","url":"","title":"t","subs":3,"lang_code":"ko","vid_id_list":["a"]}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	channel := model.Channel{ID: "UC1", Title: "t", Subs: 3, LangCode: "ko", VideoIDs: []string{"a"}}
	err := NewStore(mock).InsertOne(testContext(t), repository.CollectionChannels, repository.Record{ID: "UC1", Body: channel})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UnknownCollection(t *testing.T) {
	mock := newMock(t)
	s := NewStore(mock)
	ctx := testContext(t)

	err := s.InsertOne(ctx, repository.Collection("users; DROP TABLE videos"), repository.Record{ID: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))

	err = s.InsertMany(ctx, repository.Collection("users"), []repository.Record{{ID: "x"}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))

	_, err = s.DeleteMany(ctx, repository.Collection("users"), []string{"x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertMany(t *testing.T) {
	records := []repository.Record{
		{ID: "vid|manual|en|000000", ParentID: "vid|manual|en", Body: model.Track{ID: "vid|manual|en|000000", Content: "a"}},
		{ID: "vid|manual|en|000001", ParentID: "vid|manual|en", Body: model.Track{ID: "vid|manual|en|000001", Content: "b"}},
	}

	tests := []struct {
		name     string
		records  []repository.Record
		setup    func(mock pgxmock.PgxPoolIface)
		wantCode string
	}{
		{
			name:    "successful batch insert with COPY FROM",
			records: records,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectCopyFrom(pgx.Identifier{"tracks"}, []string{"id", "parent_id", "body"}).
					WillReturnResult(2)
			},
		},
		{
			name:    "empty batch",
			records: []repository.Record{},
			setup:   func(mock pgxmock.PgxPoolIface) {},
		},
		{
			name:    "duplicate key in batch",
			records: records,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectCopyFrom(pgx.Identifier{"tracks"}, []string{"id", "parent_id", "body"}).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tracks_pkey"})
			},
			wantCode: apperrors.CodeConflict,
		},
		{
			name:    "missing table",
			records: records,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectCopyFrom(pgx.Identifier{"tracks"}, []string{"id", "parent_id", "body"}).
					WillReturnError(&pgconn.PgError{Code: "42P01"})
			},
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)

			err := NewStore(mock).InsertMany(testContext(t), repository.CollectionTracks, tt.records)
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestStore_Delete(t *testing.T) {
	mock := newMock(t)
	s := NewStore(mock)
	ctx := testContext(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "captions" WHERE id = $1`)).
		WithArgs("vid|manual|en").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "captions" WHERE id = ANY($1)`)).
		WithArgs([]string{"a", "b"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tracks" WHERE parent_id = ANY($1)`)).
		WithArgs([]string{"vid|manual|en"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 40))

	require.NoError(t, s.DeleteOne(ctx, repository.CollectionCaptions, "vid|manual|en"))

	n, err := s.DeleteMany(ctx, repository.CollectionCaptions, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.DeleteByParent(ctx, repository.CollectionTracks, []string{"vid|manual|en"})
	require.NoError(t, err)
	assert.Equal(t, int64(40), n)

	n, err = s.DeleteMany(ctx, repository.CollectionCaptions, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "videos" WHERE id = $1`)).
		WithArgs("vid").
		WillReturnError(&pgconn.PgError{Code: "08006"})

	err := NewStore(mock).DeleteOne(testContext(t), repository.CollectionVideos, "vid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListIDsByParent(t *testing.T) {
	tests := []struct {
		name    string
		parents []string
		setup   func(mock pgxmock.PgxPoolIface)
		want    []string
		wantErr bool
	}{
		{
			name:    "returns ids",
			parents: []string{"UC1"},
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id"}).AddRow("v1").AddRow("v2")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM "videos" WHERE parent_id = ANY($1) ORDER BY id`)).
					WithArgs([]string{"UC1"}).
					WillReturnRows(rows)
			},
			want: []string{"v1", "v2"},
		},
		{
			name:    "no rows",
			parents: []string{"UC2"},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM "videos"`)).
					WithArgs([]string{"UC2"}).
					WillReturnRows(pgxmock.NewRows([]string{"id"}))
			},
			want: []string{},
		},
		{
			name:    "no parents",
			parents: nil,
			setup:   func(mock pgxmock.PgxPoolIface) {},
			want:    []string{},
		},
		{
			name:    "query error",
			parents: []string{"UC1"},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM "videos"`)).
					WithArgs([]string{"UC1"}).
					WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)

			ids, err := NewStore(mock).ListIDsByParent(testContext(t), repository.CollectionVideos, tt.parents)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandlePostgreSQLError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{name: "nil", err: nil},
		{name: "primary key", err: &pgconn.PgError{Code: "23505", ConstraintName: "tracks_pkey"}, wantCode: apperrors.CodeConflict, wantMsg: "ID already exists in tracks"},
		{name: "other unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "uniq"}, wantCode: apperrors.CodeConflict, wantMsg: "record already exists"},
		{name: "not null", err: &pgconn.PgError{Code: "23502"}, wantCode: apperrors.CodeInvalidArg},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, wantCode: apperrors.CodeInternal, wantMsg: "limit reached"},
		{name: "unknown code", err: &pgconn.PgError{Code: "XX000"}, wantCode: apperrors.CodeInternal, wantMsg: "XX000"},
		{name: "not a pg error", err: assert.AnError, wantCode: apperrors.CodeInternal, wantMsg: "op in tracks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handlePostgreSQLError(tt.err, repository.CollectionTracks, "op")
			if tt.err == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Contains(t, got.Error(), tt.wantMsg)
		})
	}
}
