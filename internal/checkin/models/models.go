// Package models holds the attendance domain types shared by the check-in packages.
package models

import "time"

// OccurrenceKey identifies one meeting of a group. At most one occurrence
// exists per (GroupID, ScheduleID, Date); a nil schedule is a value of its own.
// LocationID is recorded on the occurrence but is not part of its identity.
type OccurrenceKey struct {
	GroupID    int64
	LocationID *int64
	ScheduleID *int64
	Date       Date
}

// Occurrence is a single meeting of a group on a date.
type Occurrence struct {
	ID             int64
	GroupID        int64
	LocationID     *int64
	ScheduleID     *int64
	OccurrenceDate Date
	SundayDate     Date
	DidNotOccur    bool
	CreatedAt      time.Time
}

// Key returns the identity of the occurrence.
func (o *Occurrence) Key() OccurrenceKey {
	return OccurrenceKey{
		GroupID:    o.GroupID,
		LocationID: o.LocationID,
		ScheduleID: o.ScheduleID,
		Date:       o.OccurrenceDate,
	}
}

// NewOccurrence builds the candidate row for key.
func NewOccurrence(key OccurrenceKey, now time.Time) *Occurrence {
	return &Occurrence{
		GroupID:        key.GroupID,
		LocationID:     key.LocationID,
		ScheduleID:     key.ScheduleID,
		OccurrenceDate: key.Date,
		SundayDate:     key.Date.SundayDate(),
		CreatedAt:      now,
	}
}

// AttendanceCode is a short security code unique within its issue date.
type AttendanceCode struct {
	ID        int64
	IssueDate Date
	Code      string
	IssuedAt  time.Time
}

// Attendance records that a person (via a person alias) was checked in to an occurrence.
type Attendance struct {
	ID               int64
	OccurrenceID     int64
	PersonAliasID    int64
	AttendanceCodeID *int64
	LocationID       *int64
	StartAt          time.Time
	EndAt            *time.Time
	Device           string

	// PersonID is resolved through the alias on reads; it is not stored on the row.
	PersonID int64
}

// IsOpen reports whether the attendance has not been checked out.
func (a *Attendance) IsOpen() bool {
	return a.EndAt == nil
}

// AttendanceResult is the outcome of a check-in.
type AttendanceResult struct {
	Attendance       *Attendance
	Occurrence       *Occurrence
	Code             *AttendanceCode
	AlreadyCheckedIn bool
}

// RecordAttendanceRequest asks to check PersonID in to GroupID at LocationID.
// Replayed offline check-ins carry the kiosk's original CheckedInAt; a zero
// value means the request time. A zero OccurrenceDate is derived from CheckedInAt.
type RecordAttendanceRequest struct {
	PersonID       int64
	GroupID        int64
	LocationID     int64
	ScheduleID     *int64
	OccurrenceDate Date
	CheckedInAt    time.Time
}

// BatchItemResult reports one item of a batch check-in.
type BatchItemResult struct {
	Index    int
	PersonID int64
	Result   *AttendanceResult
	Err      error
}

// CheckoutRequest ends an attendance. The security code printed on the label
// must be presented.
type CheckoutRequest struct {
	AttendanceID int64
	SecurityCode string
}

// CheckoutResult is the outcome of a checkout.
type CheckoutResult struct {
	Attendance        *Attendance
	AlreadyCheckedOut bool
}

// SearchRequest is a kiosk family search by phone digits or security code.
type SearchRequest struct {
	Term       string
	LocationID int64
}

// SearchResult lists the families a search resolved to.
type SearchResult struct {
	Families []FamilyData
}
