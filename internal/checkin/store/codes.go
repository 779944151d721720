package store

import (
	"context"

	"checkin/internal/checkin/models"
)

// InsertCode issues code for its date. A code already issued that day yields
// sentinel.ErrConflict.
func (s *SQLStore) InsertCode(ctx context.Context, code *models.AttendanceCode) (*models.AttendanceCode, error) {
	created := *code
	created.IssuedAt = code.IssuedAt.UTC()
	err := s.exec.QueryRowContext(ctx, s.q(`
		INSERT INTO attendance_codes (issue_date, code, issued_at)
		VALUES (?, ?, ?)
		RETURNING id`),
		code.IssueDate, code.Code, created.IssuedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, insertErr("attendance code", err)
	}
	return &created, nil
}

// GetCode reads a code by id.
func (s *SQLStore) GetCode(ctx context.Context, id int64) (*models.AttendanceCode, error) {
	var code models.AttendanceCode
	err := s.exec.QueryRowContext(ctx, s.q(
		`SELECT id, issue_date, code, issued_at FROM attendance_codes WHERE id = ?`), id,
	).Scan(&code.ID, &code.IssueDate, &code.Code, &code.IssuedAt)
	if err != nil {
		return nil, readErr("attendance code", err)
	}
	return &code, nil
}
