package handler

import (
	"fmt"
	"strings"

	"checkin/internal/checkin/models"
	"checkin/internal/checkin/service"
	dErrors "checkin/pkg/domain-errors"
)

// Upper bounds for free-text fields, checked before anything else.
const (
	maxTermLength = 32
	maxCodeLength = 16
)

// CheckinRequest is the body of POST /kiosk/checkin and one item of a batch.
type CheckinRequest struct {
	PersonID       int64  `json:"person_id"`
	GroupID        int64  `json:"group_id"`
	LocationID     int64  `json:"location_id"`
	ScheduleID     *int64 `json:"schedule_id,omitempty"`
	OccurrenceDate string `json:"occurrence_date,omitempty"`

	parsedDate models.Date
}

// Validate parses the optional occurrence date. Id checks belong to the service.
func (r *CheckinRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.OccurrenceDate = strings.TrimSpace(r.OccurrenceDate)
	if r.OccurrenceDate == "" {
		return nil
	}
	date, err := models.ParseDate(r.OccurrenceDate)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "occurrence_date must be YYYY-MM-DD")
	}
	r.parsedDate = date
	return nil
}

// ToModel converts a validated request.
func (r *CheckinRequest) ToModel() models.RecordAttendanceRequest {
	return models.RecordAttendanceRequest{
		PersonID:       r.PersonID,
		GroupID:        r.GroupID,
		LocationID:     r.LocationID,
		ScheduleID:     r.ScheduleID,
		OccurrenceDate: r.parsedDate,
	}
}

// BatchCheckinRequest is the body of POST /kiosk/checkin/batch.
type BatchCheckinRequest struct {
	Items []CheckinRequest `json:"items"`
}

func (r *BatchCheckinRequest) Validate() error {
	if r == nil || len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "items are required")
	}
	if len(r.Items) > service.MaxBatchSize {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("batch exceeds %d items", service.MaxBatchSize))
	}
	for i := range r.Items {
		if err := r.Items[i].Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("items[%d]: %s", i, dErrors.MessageOf(err)))
		}
	}
	return nil
}

func (r *BatchCheckinRequest) ToModel() []models.RecordAttendanceRequest {
	out := make([]models.RecordAttendanceRequest, len(r.Items))
	for i := range r.Items {
		out[i] = r.Items[i].ToModel()
	}
	return out
}

// CheckoutRequest is the body of POST /kiosk/checkout.
type CheckoutRequest struct {
	AttendanceID int64  `json:"attendance_id"`
	SecurityCode string `json:"security_code"`
}

func (r *CheckoutRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.SecurityCode) > maxCodeLength {
		return dErrors.New(dErrors.CodeValidation, "security_code is too long")
	}
	r.SecurityCode = strings.TrimSpace(r.SecurityCode)
	if r.SecurityCode == "" {
		return dErrors.New(dErrors.CodeValidation, "security_code is required")
	}
	return nil
}

// SearchRequest is the body of POST /kiosk/search.
type SearchRequest struct {
	Term       string `json:"term"`
	LocationID int64  `json:"location_id,omitempty"`
}

func (r *SearchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Term) > maxTermLength {
		return dErrors.New(dErrors.CodeValidation, "term is too long")
	}
	r.Term = strings.TrimSpace(r.Term)
	if r.Term == "" {
		return dErrors.New(dErrors.CodeValidation, "term is required")
	}
	return nil
}

// DidNotOccurRequest is the body of POST /kiosk/occurrences/{id}/did-not-occur.
type DidNotOccurRequest struct {
	LocationID int64 `json:"location_id"`
}

func (r *DidNotOccurRequest) Validate() error {
	if r == nil || r.LocationID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "location_id is required")
	}
	return nil
}
