package store

import (
	"context"
	"database/sql"
	"fmt"

	"checkin/internal/checkin/models"
	"checkin/pkg/platform/sentinel"
)

const occurrenceColumns = `id, group_id, location_id, schedule_id, occurrence_date, sunday_date, did_not_occur, created_at`

// InsertOccurrence inserts occ as a single statement. A concurrent winner
// for the same (group_id, schedule_id, occurrence_date) yields sentinel.ErrConflict.
func (s *SQLStore) InsertOccurrence(ctx context.Context, occ *models.Occurrence) (*models.Occurrence, error) {
	created := *occ
	created.CreatedAt = occ.CreatedAt.UTC()
	err := s.exec.QueryRowContext(ctx, s.q(`
		INSERT INTO attendance_occurrences
			(group_id, location_id, schedule_id, occurrence_date, sunday_date, did_not_occur, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		occ.GroupID, nullInt64(occ.LocationID), nullInt64(occ.ScheduleID),
		occ.OccurrenceDate, occ.SundayDate, occ.DidNotOccur, created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, insertErr("occurrence", err)
	}
	return &created, nil
}

// FindOccurrence reads the occurrence for key; a NULL schedule matches a nil ScheduleID.
func (s *SQLStore) FindOccurrence(ctx context.Context, key models.OccurrenceKey) (*models.Occurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM attendance_occurrences
		WHERE group_id = ? AND ` + s.db.Dialect.NullSafeEq("schedule_id") + ` AND occurrence_date = ?`
	occ, err := scanOccurrence(s.exec.QueryRowContext(ctx, s.q(query),
		key.GroupID, nullInt64(key.ScheduleID), key.Date,
	))
	if err != nil {
		return nil, readErr("occurrence", err)
	}
	return occ, nil
}

// GetOccurrence reads an occurrence by id.
func (s *SQLStore) GetOccurrence(ctx context.Context, id int64) (*models.Occurrence, error) {
	occ, err := scanOccurrence(s.exec.QueryRowContext(ctx, s.q(
		`SELECT `+occurrenceColumns+` FROM attendance_occurrences WHERE id = ?`), id))
	if err != nil {
		return nil, readErr("occurrence", err)
	}
	return occ, nil
}

// MarkDidNotOccur sets the soft marker. It is the only update an occurrence receives.
func (s *SQLStore) MarkDidNotOccur(ctx context.Context, id int64) (*models.Occurrence, error) {
	res, err := s.exec.ExecContext(ctx, s.q(`UPDATE attendance_occurrences SET did_not_occur = ? WHERE id = ?`), true, id)
	if err != nil {
		return nil, fmt.Errorf("mark did not occur: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("mark did not occur: %w", sentinel.ErrNotFound)
	}
	return s.GetOccurrence(ctx, id)
}

// LockOccurrence holds the occurrence row for the rest of the transaction.
// SQLite serializes writers already, so the plain read suffices there.
func (s *SQLStore) LockOccurrence(ctx context.Context, occurrenceID int64) error {
	var id int64
	err := s.exec.QueryRowContext(ctx, s.q(
		`SELECT id FROM attendance_occurrences WHERE id = ?`+s.db.Dialect.ForUpdate), occurrenceID,
	).Scan(&id)
	if err != nil {
		return readErr("occurrence", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOccurrence(row rowScanner) (*models.Occurrence, error) {
	var (
		occ        models.Occurrence
		locationID sql.NullInt64
		scheduleID sql.NullInt64
	)
	err := row.Scan(&occ.ID, &occ.GroupID, &locationID, &scheduleID,
		&occ.OccurrenceDate, &occ.SundayDate, &occ.DidNotOccur, &occ.CreatedAt)
	if err != nil {
		return nil, err
	}
	occ.LocationID = int64Ptr(locationID)
	occ.ScheduleID = int64Ptr(scheduleID)
	return &occ, nil
}
