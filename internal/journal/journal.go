package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/feedupload/internal/dbx"
	"github.com/dmitrijs2005/feedupload/internal/journal/migrations"
	"github.com/dmitrijs2005/feedupload/internal/logging"
)

// Journal records runs and uploads in a SQLite database.
type Journal struct {
	db     *sql.DB
	repo   func(dbx.DBTX) Repository
	logger logging.Logger
	now    func() time.Time
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate journal: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the journal at path and migrates it.
func Open(ctx context.Context, path string, logger logging.Logger) (*Journal, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db, logger), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, logger logging.Logger) *Journal {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Journal{
		db:     db,
		repo:   func(tx dbx.DBTX) Repository { return NewSQLiteRepository(tx) },
		logger: logger,
		now:    time.Now,
	}
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// StartRun opens a new run for folder with total discovered files.
func (j *Journal) StartRun(ctx context.Context, folder string, total int) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Folder:    folder,
		StartedAt: j.now(),
		Total:     total,
	}
	if err := j.repo(j.db).InsertRun(ctx, run); err != nil {
		return nil, err
	}
	j.logger.Debug(ctx, "journal run started", "run_id", run.ID, "folder", folder)
	return run, nil
}

// RecordResult stores one upload and updates its run's counters atomically.
func (j *Journal) RecordResult(ctx context.Context, runID string, u Upload) error {
	u.RunID = runID

	var completed, failed int
	if u.Completed {
		completed = 1
	}
	if u.Failed {
		failed = 1
	}

	return dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := j.repo(tx)
		if err := repo.InsertUpload(ctx, &u); err != nil {
			return err
		}
		return repo.BumpRunCounters(ctx, runID, completed, failed)
	})
}

func (j *Journal) FinishRun(ctx context.Context, runID string) error {
	return j.repo(j.db).FinishRun(ctx, runID, j.now())
}

func (j *Journal) GetRun(ctx context.Context, runID string) (*Run, error) {
	return j.repo(j.db).GetRun(ctx, runID)
}

// ListOrphans returns uploads whose bytes were stored but whose record was
// never finalized, oldest first.
func (j *Journal) ListOrphans(ctx context.Context) ([]Upload, error) {
	return j.repo(j.db).ListOrphans(ctx)
}

// ListRecent returns up to limit uploads, newest first.
func (j *Journal) ListRecent(ctx context.Context, limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = 20
	}
	return j.repo(j.db).ListRecent(ctx, limit)
}
