package journal

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/feedupload/internal/common"
)

func newRepoWithMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestFinishRun_UnknownRun(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^update runs set finished_at = \? where id = \?$`).
		WithArgs(sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.FinishRun(context.Background(), "ghost", time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInsertRun_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`insert into runs`).WillReturnError(errors.New("db down"))

	err := repo.InsertRun(context.Background(), &Run{ID: "r", Folder: "/x", StartedAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert run: db down")
}

func TestGetRun_BadTimestamp(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "folder", "started_at", "finished_at", "total", "completed", "failed"}).
		AddRow("r", "/x", "yesterday", nil, 1, 0, 0)
	mock.ExpectQuery(`select id, folder`).WithArgs("r").WillReturnRows(rows)

	_, err := repo.GetRun(context.Background(), "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse time")
}

func TestListRecent_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`from uploads order by id desc limit \?`).
		WithArgs(5).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.ListRecent(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestListOrphans_Scans(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	ts := "2026-10-17T12:00:00Z"
	rows := sqlmock.NewRows([]string{"id", "run_id", "file_name", "path", "size_bytes", "outcome", "record_id",
		"media_url", "location", "error", "orphaned", "started_at", "finished_at"}).
		AddRow(3, "run", "a.mp4", "/v/a.mp4", 10, "finalize_failed", "9", "https://m", "/v/a.mp4", "404", true, ts, ts)
	mock.ExpectQuery(`where orphaned = 1`).WillReturnRows(rows)

	got, err := repo.ListOrphans(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
	assert.True(t, got[0].Orphaned)
	assert.Equal(t, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), got[0].StartedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
