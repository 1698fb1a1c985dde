package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/feedupload/internal/common"
	"github.com/dmitrijs2005/feedupload/internal/dbx"
)

// Repository is the storage contract behind Journal.
type Repository interface {
	InsertRun(ctx context.Context, r *Run) error
	FinishRun(ctx context.Context, id string, at time.Time) error
	GetRun(ctx context.Context, id string) (*Run, error)

	InsertUpload(ctx context.Context, u *Upload) error
	BumpRunCounters(ctx context.Context, id string, completed, failed int) error

	ListOrphans(ctx context.Context) ([]Upload, error)
	ListRecent(ctx context.Context, limit int) ([]Upload, error)
}

// SQLiteRepository implements Repository over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func (r *SQLiteRepository) InsertRun(ctx context.Context, run *Run) error {
	query := `insert into runs (id, folder, started_at, total) values (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, run.ID, run.Folder, formatTime(run.StartedAt), run.Total)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FinishRun(ctx context.Context, id string, at time.Time) error {
	query := `update runs set finished_at = ? where id = ?`

	result, err := r.db.ExecContext(ctx, query, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return dbx.ExpectOneRow(result)
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `select id, folder, started_at, finished_at, total, completed, failed from runs where id = ?`

	var (
		run      Run
		started  string
		finished sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&run.ID, &run.Folder, &started, &finished, &run.Total, &run.Completed, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = &t
	}
	return &run, nil
}

func (r *SQLiteRepository) InsertUpload(ctx context.Context, u *Upload) error {
	query := `insert into uploads (run_id, file_name, path, size_bytes, outcome, record_id, media_url,
			location, error, orphaned, started_at, finished_at)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		u.RunID, u.FileName, u.Path, u.SizeBytes, u.Outcome, u.RecordID, u.MediaURL,
		u.Location, u.Error, u.Orphaned, formatTime(u.StartedAt), formatTime(u.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get upload id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *SQLiteRepository) BumpRunCounters(ctx context.Context, id string, completed, failed int) error {
	query := `update runs set completed = completed + ?, failed = failed + ? where id = ?`

	result, err := r.db.ExecContext(ctx, query, completed, failed, id)
	if err != nil {
		return fmt.Errorf("failed to update run counters: %w", err)
	}
	return dbx.ExpectOneRow(result)
}

const uploadColumns = `id, run_id, file_name, path, size_bytes, outcome, record_id, media_url,
	location, error, orphaned, started_at, finished_at`

func (r *SQLiteRepository) ListOrphans(ctx context.Context) ([]Upload, error) {
	query := `select ` + uploadColumns + ` from uploads where orphaned = 1 order by id`
	return r.list(ctx, query)
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]Upload, error) {
	query := `select ` + uploadColumns + ` from uploads order by id desc limit ?`
	return r.list(ctx, query, limit)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]Upload, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting uploads: %w", err)
	}
	defer rows.Close()

	var result []Upload
	for rows.Next() {
		var (
			u                 Upload
			started, finished string
		)
		err := rows.Scan(&u.ID, &u.RunID, &u.FileName, &u.Path, &u.SizeBytes, &u.Outcome, &u.RecordID,
			&u.MediaURL, &u.Location, &u.Error, &u.Orphaned, &started, &finished)
		if err != nil {
			return nil, err
		}
		if u.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if u.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		result = append(result, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
