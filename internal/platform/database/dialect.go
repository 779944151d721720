package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences stores care about. Store queries are
// written with ? placeholders and passed through Rebind.
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2, ...) instead of ?.
	Numbered bool
	// SingleWriter limits the pool to one connection.
	SingleWriter bool
	// ForUpdate is appended to a SELECT to lock the selected rows for the
	// rest of the transaction; empty where the engine serializes writers.
	ForUpdate string
	// Pragmas run once on open.
	Pragmas []string
	// MigrationsDir is the embedded directory holding this dialect's schema.
	MigrationsDir string
	nullSafeEq    string
}

var (
	Postgres = Dialect{
		Name:          "postgres",
		Numbered:      true,
		ForUpdate:     " FOR UPDATE",
		MigrationsDir: "migrations/postgres",
		nullSafeEq:    "IS NOT DISTINCT FROM",
	}
	SQLite = Dialect{
		Name:         "sqlite3",
		SingleWriter: true,
		Pragmas: []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA foreign_keys = ON",
		},
		MigrationsDir: "migrations/sqlite3",
		nullSafeEq:    "IS",
	}
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Rebind rewrites ? placeholders into the dialect's native form.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// NullSafeEq renders "column = ?" where NULL compares equal to NULL.
func (d Dialect) NullSafeEq(column string) string {
	return column + " " + d.nullSafeEq + " ?"
}

// Placeholders returns n comma-separated ? placeholders for an IN list.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// Args converts ids into a []any for variadic query arguments.
func Args[T any](ids []T) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
