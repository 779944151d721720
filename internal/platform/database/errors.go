package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorClass is the only distinction coordinators draw between driver errors.
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassUniqueViolation
)

const pgUniqueViolation = "23505"

// Classify inspects the typed error of each supported driver.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return ClassUniqueViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ClassUniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) &&
		(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return ClassUniqueViolation
	}

	return ClassOther
}

// IsUniqueViolation reports whether err was raised by a unique index.
func IsUniqueViolation(err error) bool {
	return Classify(err) == ClassUniqueViolation
}
