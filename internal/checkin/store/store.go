// Package store persists occurrences, security codes and attendances, and
// serves the batched people queries the kiosk loader issues. SQLStore runs on
// PostgreSQL (lib/pq or pgx) and SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"checkin/internal/checkin/loader"
	"checkin/internal/checkin/models"
	"checkin/internal/platform/database"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/platform/tx"
)

// SQLStore issues statements on exec, which is either the pool or a transaction.
type SQLStore struct {
	db   *database.DB
	exec tx.Executor
}

// NewSQL returns a store whose statements autocommit on the pool.
func NewSQL(db *database.DB) *SQLStore {
	return &SQLStore{db: db, exec: db.DB}
}

// TxStore is the view of the store available inside RunInTx.
type TxStore interface {
	LockOccurrence(ctx context.Context, occurrenceID int64) error
	FindOpenAttendance(ctx context.Context, occurrenceID, personAliasID int64) (*models.Attendance, error)
	InsertAttendance(ctx context.Context, a *models.Attendance) (*models.Attendance, error)
}

// RunInTx runs fn inside one transaction. Rollback is deferred on every exit
// path; fn's error is returned unchanged.
func (s *SQLStore) RunInTx(ctx context.Context, fn func(TxStore) error) error {
	return tx.Run(ctx, s.db.DB, func(sqlTx *sql.Tx) error {
		return fn(&SQLStore{db: s.db, exec: sqlTx})
	})
}

func (s *SQLStore) q(query string) string {
	return s.db.Dialect.Rebind(query)
}

// insertErr maps a unique violation to sentinel.ErrConflict.
func insertErr(what string, err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("insert %s: %w", what, sentinel.ErrConflict)
	}
	return fmt.Errorf("insert %s: %w", what, err)
}

// readErr maps sql.ErrNoRows to sentinel.ErrNotFound.
func readErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find %s: %w", what, sentinel.ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func int64Args(ids []int64) []any {
	return database.Args(ids)
}

func placeholders(n int) string {
	return database.Placeholders(n)
}

var (
	_ loader.Queries = (*SQLStore)(nil)
	_ TxStore        = (*SQLStore)(nil)
)
