package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"checkin/internal/checkin/models"
	"checkin/pkg/platform/sentinel"
)

const attendanceColumns = `a.id, a.occurrence_id, a.person_alias_id, a.attendance_code_id,
	a.location_id, a.start_at, a.end_at, a.device, COALESCE(pa.person_id, 0)`

const attendanceFrom = ` FROM attendances a LEFT JOIN person_aliases pa ON pa.id = a.person_alias_id`

// FindOpenAttendance returns the open attendance of an alias on an occurrence.
func (s *SQLStore) FindOpenAttendance(ctx context.Context, occurrenceID, personAliasID int64) (*models.Attendance, error) {
	a, err := scanAttendance(s.exec.QueryRowContext(ctx, s.q(`SELECT `+attendanceColumns+attendanceFrom+`
		WHERE a.occurrence_id = ? AND a.person_alias_id = ? AND a.end_at IS NULL
		ORDER BY a.id
		LIMIT 1`), occurrenceID, personAliasID))
	if err != nil {
		return nil, readErr("open attendance", err)
	}
	return a, nil
}

// GetAttendance reads an attendance by id.
func (s *SQLStore) GetAttendance(ctx context.Context, id int64) (*models.Attendance, error) {
	a, err := scanAttendance(s.exec.QueryRowContext(ctx, s.q(
		`SELECT `+attendanceColumns+attendanceFrom+` WHERE a.id = ?`), id))
	if err != nil {
		return nil, readErr("attendance", err)
	}
	return a, nil
}

// InsertAttendance persists a new attendance. Callers run it inside RunInTx
// after locking the occurrence and re-checking for an open attendance.
func (s *SQLStore) InsertAttendance(ctx context.Context, a *models.Attendance) (*models.Attendance, error) {
	created := *a
	created.StartAt = a.StartAt.UTC()
	err := s.exec.QueryRowContext(ctx, s.q(`
		INSERT INTO attendances
			(occurrence_id, person_alias_id, attendance_code_id, location_id, start_at, device)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		a.OccurrenceID, a.PersonAliasID, nullInt64(a.AttendanceCodeID), nullInt64(a.LocationID),
		created.StartAt, a.Device,
	).Scan(&created.ID)
	if err != nil {
		return nil, insertErr("attendance", err)
	}
	return &created, nil
}

// CheckoutAttendance sets end_at on an open attendance. It returns
// sentinel.ErrInvalidState when the attendance was already checked out.
func (s *SQLStore) CheckoutAttendance(ctx context.Context, id int64, endAt time.Time) (*models.Attendance, error) {
	res, err := s.exec.ExecContext(ctx, s.q(
		`UPDATE attendances SET end_at = ? WHERE id = ? AND end_at IS NULL`), endAt.UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("checkout attendance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checkout attendance: %w", err)
	}
	a, err := s.GetAttendance(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return a, fmt.Errorf("checkout attendance %d: %w", id, sentinel.ErrInvalidState)
	}
	return a, nil
}

// AttendancesForAliasesSince returns attendances of the aliases starting at
// or after since, oldest first.
func (s *SQLStore) AttendancesForAliasesSince(ctx context.Context, aliasIDs []int64, since time.Time) ([]models.Attendance, error) {
	if len(aliasIDs) == 0 {
		return nil, nil
	}
	args := append(int64Args(aliasIDs), since.UTC())
	rows, err := s.exec.QueryContext(ctx, s.q(`SELECT `+attendanceColumns+attendanceFrom+`
		WHERE a.person_alias_id IN (`+placeholders(len(aliasIDs))+`) AND a.start_at >= ?
		ORDER BY a.start_at, a.id`), args...)
	if err != nil {
		return nil, fmt.Errorf("query attendances: %w", err)
	}
	defer rows.Close()

	var out []models.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendances: %w", err)
	}
	return out, nil
}

func scanAttendance(row rowScanner) (*models.Attendance, error) {
	var (
		a          models.Attendance
		codeID     sql.NullInt64
		locationID sql.NullInt64
		endAt      sql.NullTime
	)
	err := row.Scan(&a.ID, &a.OccurrenceID, &a.PersonAliasID, &codeID,
		&locationID, &a.StartAt, &endAt, &a.Device, &a.PersonID)
	if err != nil {
		return nil, err
	}
	a.AttendanceCodeID = int64Ptr(codeID)
	a.LocationID = int64Ptr(locationID)
	if endAt.Valid {
		t := endAt.Time
		a.EndAt = &t
	}
	return &a, nil
}
