package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"checkin/internal/platform/database"
)

// Fixture inserts people and families directly, bypassing the stores.
type Fixture struct {
	t  *testing.T
	db *database.DB
}

func NewFixture(t *testing.T, db *database.DB) *Fixture {
	return &Fixture{t: t, db: db}
}

func (f *Fixture) insert(query string, args ...any) int64 {
	f.t.Helper()
	var id int64
	err := f.db.QueryRowContext(context.Background(), f.db.Dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
	require.NoError(f.t, err, "fixture insert")
	return id
}

func (f *Fixture) exec(query string, args ...any) {
	f.t.Helper()
	_, err := f.db.ExecContext(context.Background(), f.db.Dialect.Rebind(query), args...)
	require.NoError(f.t, err, "fixture exec")
}

// Person inserts a person with a primary alias and returns both ids.
func (f *Fixture) Person(first, last string) (personID, aliasID int64) {
	f.t.Helper()
	personID = f.PersonWithoutAlias(first, last)
	aliasID = f.Alias(personID, true)
	return personID, aliasID
}

// PersonWithoutAlias inserts a person with no alias at all.
func (f *Fixture) PersonWithoutAlias(first, last string) int64 {
	f.t.Helper()
	return f.insert(`INSERT INTO persons (first_name, last_name) VALUES (?, ?)`, first, last)
}

// Alias adds an alias to personID.
func (f *Fixture) Alias(personID int64, primary bool) int64 {
	f.t.Helper()
	return f.insert(`INSERT INTO person_aliases (person_id, is_primary) VALUES (?, ?)`, personID, primary)
}

// Phone records digits for personID.
func (f *Fixture) Phone(personID int64, digits string) {
	f.t.Helper()
	f.exec(`INSERT INTO phone_numbers (person_id, digits) VALUES (?, ?)`, personID, digits)
}

// Role inserts a family role.
func (f *Fixture) Role(name string, adult bool) int64 {
	f.t.Helper()
	return f.insert(`INSERT INTO family_roles (name, is_adult) VALUES (?, ?)`, name, adult)
}

// Family inserts a family and its members, all with roleID.
func (f *Fixture) Family(name string, roleID int64, personIDs ...int64) int64 {
	f.t.Helper()
	familyID := f.insert(`INSERT INTO families (name) VALUES (?)`, name)
	for _, personID := range personIDs {
		f.Member(familyID, personID, roleID)
	}
	return familyID
}

// Member adds personID to familyID.
func (f *Fixture) Member(familyID, personID, roleID int64) {
	f.t.Helper()
	f.exec(`INSERT INTO family_members (family_id, person_id, role_id) VALUES (?, ?, ?)`, familyID, personID, roleID)
}
