// Package database opens the attendance store and hides the differences
// between the supported SQL drivers: lib/pq and pgx for PostgreSQL, and
// go-sqlite3 for single-site kiosk deployments.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"checkin/internal/platform/config"
)

// DB is a connection pool paired with the dialect of its driver.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects using cfg.Driver and verifies the connection.
func Open(ctx context.Context, cfg config.Database) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if dialect.SingleWriter {
		// SQLite only supports one writer at a time; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLife > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLife)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	for _, pragma := range dialect.Pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// Health checks if the database connection is healthy.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}
