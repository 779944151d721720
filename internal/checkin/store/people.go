package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"checkin/internal/checkin/models"
)

// PersonsWithPrimaryAlias returns the persons with their primary alias id.
// A person without a primary alias comes back with PrimaryAliasID 0.
func (s *SQLStore) PersonsWithPrimaryAlias(ctx context.Context, personIDs []int64) ([]models.PersonWithAlias, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	rows, err := s.exec.QueryContext(ctx, s.q(`
		SELECT p.id, p.first_name, p.nick_name, p.last_name, p.birth_date, p.is_deceased,
			COALESCE(pa.id, 0)
		FROM persons p
		LEFT JOIN person_aliases pa ON pa.person_id = p.id AND pa.is_primary
		WHERE p.id IN (`+placeholders(len(personIDs))+`)
		ORDER BY p.id`), int64Args(personIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query persons: %w", err)
	}
	defer rows.Close()

	var out []models.PersonWithAlias
	for rows.Next() {
		var (
			p         models.PersonWithAlias
			birthDate sql.Null[models.Date]
		)
		if err := rows.Scan(&p.ID, &p.FirstName, &p.NickName, &p.LastName, &birthDate, &p.IsDeceased,
			&p.PrimaryAliasID); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.BirthDate = datePtr(birthDate)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return out, nil
}

// AliasesForPersons returns every alias of the persons.
func (s *SQLStore) AliasesForPersons(ctx context.Context, personIDs []int64) ([]models.PersonAlias, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	rows, err := s.exec.QueryContext(ctx, s.q(`
		SELECT id, person_id, is_primary FROM person_aliases
		WHERE person_id IN (`+placeholders(len(personIDs))+`)
		ORDER BY person_id, id`), int64Args(personIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	var out []models.PersonAlias
	for rows.Next() {
		var a models.PersonAlias
		if err := rows.Scan(&a.ID, &a.PersonID, &a.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aliases: %w", err)
	}
	return out, nil
}

// FamilyMembers returns one row per (family, member) joined with the member's
// role. A family without members yields a single row with a zero Person.
func (s *SQLStore) FamilyMembers(ctx context.Context, familyIDs []int64) ([]models.FamilyMemberRow, error) {
	if len(familyIDs) == 0 {
		return nil, nil
	}
	rows, err := s.exec.QueryContext(ctx, s.q(`
		SELECT f.id, f.name, f.campus_id,
			COALESCE(p.id, 0), COALESCE(p.first_name, ''), COALESCE(p.nick_name, ''),
			COALESCE(p.last_name, ''), p.birth_date, COALESCE(p.is_deceased, FALSE),
			COALESCE(r.id, 0), COALESCE(r.name, ''), COALESCE(r.is_adult, FALSE)
		FROM families f
		LEFT JOIN family_members fm ON fm.family_id = f.id
		LEFT JOIN persons p ON p.id = fm.person_id
		LEFT JOIN family_roles r ON r.id = fm.role_id
		WHERE f.id IN (`+placeholders(len(familyIDs))+`)
		ORDER BY f.id, r.is_adult DESC, p.birth_date, p.id`),
		int64Args(familyIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query family members: %w", err)
	}
	defer rows.Close()

	var out []models.FamilyMemberRow
	for rows.Next() {
		var (
			row       models.FamilyMemberRow
			campusID  sql.NullInt64
			birthDate sql.Null[models.Date]
		)
		if err := rows.Scan(&row.Family.ID, &row.Family.Name, &campusID,
			&row.Person.ID, &row.Person.FirstName, &row.Person.NickName,
			&row.Person.LastName, &birthDate, &row.Person.IsDeceased,
			&row.Role.ID, &row.Role.Name, &row.Role.IsAdult); err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		row.Family.CampusID = int64Ptr(campusID)
		row.Person.BirthDate = datePtr(birthDate)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family members: %w", err)
	}
	return out, nil
}

// PersonIDsCheckedInSince returns the distinct persons, among personIDs, with
// an attendance starting at or after since.
func (s *SQLStore) PersonIDsCheckedInSince(ctx context.Context, personIDs []int64, since time.Time) ([]int64, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	args := append(int64Args(personIDs), since.UTC())
	rows, err := s.exec.QueryContext(ctx, s.q(`
		SELECT DISTINCT pa.person_id
		FROM attendances a
		JOIN person_aliases pa ON pa.id = a.person_alias_id
		WHERE pa.person_id IN (`+placeholders(len(personIDs))+`) AND a.start_at >= ?
		ORDER BY pa.person_id`), args...)
	if err != nil {
		return nil, fmt.Errorf("query recent check-ins: %w", err)
	}
	return scanIDs(rows)
}

// FamilyIDsByPhone returns families with a member whose phone number ends in digits.
func (s *SQLStore) FamilyIDsByPhone(ctx context.Context, digits string) ([]int64, error) {
	rows, err := s.exec.QueryContext(ctx, s.q(`
		SELECT DISTINCT fm.family_id
		FROM phone_numbers ph
		JOIN family_members fm ON fm.person_id = ph.person_id
		WHERE ph.digits LIKE ?
		ORDER BY fm.family_id`), "%"+digits)
	if err != nil {
		return nil, fmt.Errorf("query families by phone: %w", err)
	}
	return scanIDs(rows)
}

// FamilyIDsBySecurityCode returns the families of persons checked in with code on issueDate.
func (s *SQLStore) FamilyIDsBySecurityCode(ctx context.Context, code string, issueDate models.Date) ([]int64, error) {
	rows, err := s.exec.QueryContext(ctx, s.q(`
		SELECT DISTINCT fm.family_id
		FROM attendance_codes c
		JOIN attendances a ON a.attendance_code_id = c.id
		JOIN person_aliases pa ON pa.id = a.person_alias_id
		JOIN family_members fm ON fm.person_id = pa.person_id
		WHERE c.issue_date = ? AND c.code = ?
		ORDER BY fm.family_id`), issueDate, code)
	if err != nil {
		return nil, fmt.Errorf("query families by code: %w", err)
	}
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}

func datePtr(v sql.Null[models.Date]) *models.Date {
	if !v.Valid {
		return nil
	}
	d := v.V
	return &d
}
