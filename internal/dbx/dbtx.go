// Package dbx holds the small database/sql helpers the journal
// repositories share: the DBTX handle and transaction plumbing.
package dbx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/feedupload/internal/common"
)

// DBTX is what a repository needs from the database. *sql.DB and *sql.Tx
// both satisfy it, so one repository type serves plain and transactional
// use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction on db. It commits when fn returns
// nil and rolls back when fn fails or panics; a panic is re-raised after
// the rollback.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := repo(tx).InsertUpload(ctx, &u); err != nil {
//	        return err
//	    }
//	    return repo(tx).BumpRunCounters(ctx, runID, 1, 0)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}

// ExpectOneRow checks that an update or delete touched exactly one row.
// Zero rows means the key did not exist and yields common.ErrorNotFound.
func ExpectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	switch {
	case n == 0:
		return common.ErrorNotFound
	case n > 1:
		return fmt.Errorf("expected 1 row affected, got %d", n)
	}
	return nil
}
