package handler

import (
	"time"

	"checkin/internal/checkin/models"
	"checkin/pkg/platform/httputil"
)

// AttendanceResponse is a recorded or replayed check-in.
type AttendanceResponse struct {
	AttendanceID     int64     `json:"attendance_id"`
	OccurrenceID     int64     `json:"occurrence_id"`
	PersonID         int64     `json:"person_id"`
	OccurrenceDate   string    `json:"occurrence_date"`
	SecurityCode     string    `json:"security_code,omitempty"`
	StartAt          time.Time `json:"start_at"`
	AlreadyCheckedIn bool      `json:"already_checked_in"`
}

func fromAttendanceResult(result *models.AttendanceResult) *AttendanceResponse {
	resp := &AttendanceResponse{
		AttendanceID:     result.Attendance.ID,
		OccurrenceID:     result.Occurrence.ID,
		PersonID:         result.Attendance.PersonID,
		OccurrenceDate:   result.Occurrence.OccurrenceDate.String(),
		StartAt:          result.Attendance.StartAt.UTC(),
		AlreadyCheckedIn: result.AlreadyCheckedIn,
	}
	if result.Code != nil {
		resp.SecurityCode = result.Code.Code
	}
	return resp
}

// BatchItemResponse reports one item of a batch check-in. Exactly one of
// Attendance and Error is set.
type BatchItemResponse struct {
	Index      int                     `json:"index"`
	PersonID   int64                   `json:"person_id"`
	Attendance *AttendanceResponse     `json:"attendance,omitempty"`
	Error      *httputil.ErrorResponse `json:"error,omitempty"`
}

type BatchCheckinResponse struct {
	Results  []BatchItemResponse `json:"results"`
	Recorded int                 `json:"recorded"`
	Failed   int                 `json:"failed"`
}

func fromBatchResults(results []models.BatchItemResult) *BatchCheckinResponse {
	resp := &BatchCheckinResponse{Results: make([]BatchItemResponse, 0, len(results))}
	for _, r := range results {
		item := BatchItemResponse{Index: r.Index, PersonID: r.PersonID}
		if r.Err != nil {
			_, body := httputil.NewErrorResponse(r.Err)
			item.Error = &body
			resp.Failed++
		} else {
			item.Attendance = fromAttendanceResult(r.Result)
			resp.Recorded++
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}

type CheckoutResponse struct {
	AttendanceID      int64     `json:"attendance_id"`
	EndAt             time.Time `json:"end_at"`
	AlreadyCheckedOut bool      `json:"already_checked_out"`
}

func fromCheckoutResult(result *models.CheckoutResult) *CheckoutResponse {
	resp := &CheckoutResponse{
		AttendanceID:      result.Attendance.ID,
		AlreadyCheckedOut: result.AlreadyCheckedOut,
	}
	if result.Attendance.EndAt != nil {
		resp.EndAt = result.Attendance.EndAt.UTC()
	}
	return resp
}

type MemberResponse struct {
	PersonID          int64   `json:"person_id"`
	PersonAliasID     int64   `json:"person_alias_id"`
	Name              string  `json:"name"`
	BirthDate         *string `json:"birth_date,omitempty"`
	Role              string  `json:"role"`
	IsAdult           bool    `json:"is_adult"`
	RecentlyCheckedIn bool    `json:"recently_checked_in"`
	LastAttendedAt    *string `json:"last_attended_at,omitempty"`
}

type FamilyResponse struct {
	FamilyID int64            `json:"family_id"`
	Name     string           `json:"name"`
	Members  []MemberResponse `json:"members"`
}

type SearchResponse struct {
	Families []FamilyResponse `json:"families"`
}

func fromSearchResult(result *models.SearchResult) *SearchResponse {
	resp := &SearchResponse{Families: make([]FamilyResponse, 0, len(result.Families))}
	for _, f := range result.Families {
		family := FamilyResponse{
			FamilyID: f.Family.ID,
			Name:     f.Family.Name,
			Members:  make([]MemberResponse, 0, len(f.Members)),
		}
		for _, m := range f.Members {
			member := MemberResponse{
				PersonID:          m.Person.ID,
				PersonAliasID:     m.PrimaryAliasID,
				Name:              m.Person.DisplayName(),
				Role:              m.Role.Name,
				IsAdult:           m.Role.IsAdult,
				RecentlyCheckedIn: m.RecentlyCheckedIn,
			}
			if m.Person.BirthDate != nil {
				birth := m.Person.BirthDate.String()
				member.BirthDate = &birth
			}
			if m.LastAttendedAt != nil {
				last := m.LastAttendedAt.UTC().Format(time.RFC3339)
				member.LastAttendedAt = &last
			}
			family.Members = append(family.Members, member)
		}
		resp.Families = append(resp.Families, family)
	}
	return resp
}

type OccurrenceResponse struct {
	OccurrenceID   int64  `json:"occurrence_id"`
	OccurrenceDate string `json:"occurrence_date"`
	DidNotOccur    bool   `json:"did_not_occur"`
}

func fromOccurrence(occ *models.Occurrence) *OccurrenceResponse {
	return &OccurrenceResponse{
		OccurrenceID:   occ.ID,
		OccurrenceDate: occ.OccurrenceDate.String(),
		DidNotOccur:    occ.DidNotOccur,
	}
}
