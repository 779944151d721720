package models

import "time"

// Person is the subset of a person record the kiosk needs.
type Person struct {
	ID         int64
	FirstName  string
	NickName   string
	LastName   string
	BirthDate  *Date
	IsDeceased bool
}

// DisplayName prefers the nick name.
func (p Person) DisplayName() string {
	first := p.FirstName
	if p.NickName != "" {
		first = p.NickName
	}
	if p.LastName == "" {
		return first
	}
	return first + " " + p.LastName
}

// PersonWithAlias pairs a person with their primary alias id.
type PersonWithAlias struct {
	Person
	PrimaryAliasID int64
}

// PersonAlias maps an alias id to its person.
type PersonAlias struct {
	ID        int64
	PersonID  int64
	IsPrimary bool
}

// Family is a household as the kiosk shows it.
type Family struct {
	ID       int64
	Name     string
	CampusID *int64
}

// FamilyRole is a member's role within a family.
type FamilyRole struct {
	ID      int64
	Name    string
	IsAdult bool
}

// FamilyMemberRow is one row of the family+members+roles query. Person.ID is
// zero for a family without members.
type FamilyMemberRow struct {
	Family Family
	Person Person
	Role   FamilyRole
}

// FamilyMember is a person within a loaded family.
type FamilyMember struct {
	Person            Person
	Role              FamilyRole
	PrimaryAliasID    int64
	RecentlyCheckedIn bool
	// LastAttendedAt is the start of the member's latest recent attendance.
	LastAttendedAt *time.Time
}

// FamilyData is a family with its members, ready for the kiosk.
type FamilyData struct {
	Family  Family
	Members []FamilyMember
}
