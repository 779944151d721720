package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"checkin/internal/checkin/authz"
	"checkin/internal/checkin/handler/mocks"
	"checkin/internal/checkin/models"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/httputil"
	"checkin/pkg/testutil"
)

// =============================================================================
// Handler Test Suite
// =============================================================================
// Justification: the kiosk depends on exact envelopes (status, error category,
// already_checked_in). Golden files pin the response bodies; the service is
// mocked so every outcome can be produced directly.

var (
	startAt = time.Date(2025, time.June, 4, 9, 30, 0, 0, time.UTC)
	day     = models.Date{Year: 2025, Month: time.June, Day: 4}
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	logs    *bytes.Buffer
	golden  *goldie.Goldie
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.logs = &bytes.Buffer{}
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewJSONHandler(s.logs, nil))).Register(s.router)
	s.golden = goldie.New(s.T(),
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden.json"),
	)
}

func (s *HandlerSuite) do(path string, body any) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewKioskRequest(s.T(), http.MethodPost, path, "kiosk-1", body))
}

func (s *HandlerSuite) doRaw(path, body string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, path, body))
}

// assertGolden compares the response body, re-encoded with sorted keys.
func (s *HandlerSuite) assertGolden(name string, rr *httptest.ResponseRecorder) {
	var body any
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.golden.AssertJson(s.T(), name, body)
}

func attendanceResult(replayed bool) *models.AttendanceResult {
	codeID := int64(90)
	return &models.AttendanceResult{
		Attendance: &models.Attendance{
			ID: 501, OccurrenceID: 40, PersonAliasID: 70, PersonID: 7,
			AttendanceCodeID: &codeID, StartAt: startAt,
		},
		Occurrence:       &models.Occurrence{ID: 40, GroupID: 10, OccurrenceDate: day},
		Code:             &models.AttendanceCode{ID: codeID, Code: "K7Q4", IssueDate: day},
		AlreadyCheckedIn: replayed,
	}
}

// =============================================================================
// POST /kiosk/checkin
// =============================================================================

func (s *HandlerSuite) TestCheckin() {
	s.Run("new check-in is created", func() {
		s.service.EXPECT().RecordAttendance(gomock.Any(), models.RecordAttendanceRequest{
			PersonID: 7, GroupID: 10, LocationID: 3,
		}).Return(attendanceResult(false), nil)

		rr := s.do("/kiosk/checkin", map[string]any{"person_id": 7, "group_id": 10, "location_id": 3})
		s.Equal(http.StatusCreated, rr.Code)
		s.assertGolden("checkin_created", rr)
	})

	s.Run("replay answers ok with the original code", func() {
		s.service.EXPECT().RecordAttendance(gomock.Any(), gomock.Any()).Return(attendanceResult(true), nil)

		rr := s.do("/kiosk/checkin", map[string]any{"person_id": 7, "group_id": 10, "location_id": 3})
		s.Equal(http.StatusOK, rr.Code)
		s.assertGolden("checkin_replayed", rr)
	})

	s.Run("schedule and date reach the service", func() {
		s.service.EXPECT().RecordAttendance(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.RecordAttendanceRequest) (*models.AttendanceResult, error) {
				s.Require().NotNil(req.ScheduleID)
				s.Equal(int64(5), *req.ScheduleID)
				s.Equal("2025-06-01", req.OccurrenceDate.String())
				return attendanceResult(false), nil
			})

		rr := s.do("/kiosk/checkin", map[string]any{
			"person_id": 7, "group_id": 10, "location_id": 3,
			"schedule_id": 5, "occurrence_date": "2025-06-01",
		})
		s.Equal(http.StatusCreated, rr.Code)
	})

	s.Run("denied check-in", func() {
		s.service.EXPECT().RecordAttendance(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, authz.Message))

		rr := s.do("/kiosk/checkin", map[string]any{"person_id": 7, "group_id": 10, "location_id": 3})
		s.Equal(http.StatusForbidden, rr.Code)
		s.assertGolden("error_not_authorized", rr)
	})

	s.Run("exhausted retries ask the kiosk to retry", func() {
		s.service.EXPECT().RecordAttendance(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeBusy, "system busy, try again"))

		rr := s.do("/kiosk/checkin", map[string]any{"person_id": 7, "group_id": 10, "location_id": 3})
		s.Equal(http.StatusServiceUnavailable, rr.Code)
		s.Equal("1", rr.Header().Get("Retry-After"))
		s.assertGolden("error_busy", rr)
	})

	s.Run("internal errors are opaque", func() {
		s.service.EXPECT().RecordAttendance(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("pq: deadlock detected"), dErrors.CodeInternal, "internal error"))

		rr := s.do("/kiosk/checkin", map[string]any{"person_id": 7, "group_id": 10, "location_id": 3})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, httputil.CategoryInternal)
		s.NotContains(rr.Body.String(), "deadlock")
		s.Contains(s.logs.String(), "deadlock", "the cause is logged")
	})

	s.Run("malformed bodies never reach the service", func() {
		for _, body := range []string{``, `{`, `{"person_id":"seven"}`, `{"persn_id":7}`, `{"occurrence_date":"06/01/2025"}`} {
			rr := s.doRaw("/kiosk/checkin", body)
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, httputil.CategoryBadRequest)
		}
	})
}

// =============================================================================
// POST /kiosk/checkin/batch
// =============================================================================

func (s *HandlerSuite) TestBatchCheckin() {
	s.Run("reports each item", func() {
		s.service.EXPECT().RecordBatch(gomock.Any(), []models.RecordAttendanceRequest{
			{PersonID: 7, GroupID: 10, LocationID: 3},
			{PersonID: 8, GroupID: 10, LocationID: 3},
		}).Return([]models.BatchItemResult{
			{Index: 0, PersonID: 7, Result: attendanceResult(false)},
			{Index: 1, PersonID: 8, Err: dErrors.New(dErrors.CodeForbidden, authz.Message)},
		}, nil)

		rr := s.do("/kiosk/checkin/batch", map[string]any{"items": []map[string]any{
			{"person_id": 7, "group_id": 10, "location_id": 3},
			{"person_id": 8, "group_id": 10, "location_id": 3},
		}})
		s.Equal(http.StatusOK, rr.Code)
		s.assertGolden("batch_mixed", rr)
	})

	s.Run("empty batch is rejected", func() {
		rr := s.doRaw("/kiosk/checkin/batch", `{"items":[]}`)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, httputil.CategoryBadRequest)
	})

	s.Run("oversized batch is rejected", func() {
		items := make([]map[string]any, 51)
		for i := range items {
			items[i] = map[string]any{"person_id": i + 1, "group_id": 10, "location_id": 3}
		}
		rr := s.do("/kiosk/checkin/batch", map[string]any{"items": items})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, httputil.CategoryBadRequest)
	})

	s.Run("bad item date names the item", func() {
		rr := s.doRaw("/kiosk/checkin/batch", `{"items":[{"person_id":1},{"person_id":2,"occurrence_date":"soon"}]}`)
		resp := testutil.UnmarshalResponse[httputil.ErrorResponse](s.T(), rr)
		s.Equal(http.StatusBadRequest, rr.Code)
		s.True(strings.HasPrefix(resp.Description, "items[1]:"), resp.Description)
	})
}

// =============================================================================
// POST /kiosk/checkout
// =============================================================================

func (s *HandlerSuite) TestCheckout() {
	s.Run("checks out", func() {
		endAt := startAt.Add(2 * time.Hour)
		s.service.EXPECT().Checkout(gomock.Any(), models.CheckoutRequest{AttendanceID: 501, SecurityCode: "k7q4"}).
			Return(&models.CheckoutResult{Attendance: &models.Attendance{ID: 501, EndAt: &endAt}}, nil)

		rr := s.do("/kiosk/checkout", map[string]any{"attendance_id": 501, "security_code": " k7q4 "})
		s.Equal(http.StatusOK, rr.Code)
		s.assertGolden("checkout", rr)
	})

	s.Run("wrong code looks like any denial", func() {
		s.service.EXPECT().Checkout(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, authz.Message))

		rr := s.do("/kiosk/checkout", map[string]any{"attendance_id": 501, "security_code": "ZZZZ"})
		s.Equal(http.StatusForbidden, rr.Code)
		s.assertGolden("error_not_authorized", rr)
	})

	s.Run("missing code is rejected", func() {
		rr := s.do("/kiosk/checkout", map[string]any{"attendance_id": 501})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, httputil.CategoryBadRequest)
	})
}

// =============================================================================
// POST /kiosk/search
// =============================================================================

func (s *HandlerSuite) TestSearch() {
	s.Run("returns families with members", func() {
		birth := models.Date{Year: 2019, Month: time.March, Day: 2}
		lastAttended := time.Date(2026, time.March, 8, 10, 15, 0, 0, time.FixedZone("CET", 3600))
		s.service.EXPECT().SearchFamilies(gomock.Any(), models.SearchRequest{Term: "555-1234"}).
			Return(&models.SearchResult{Families: []models.FamilyData{{
				Family: models.Family{ID: 12, Name: "Reyes"},
				Members: []models.FamilyMember{
					{
						Person:         models.Person{ID: 7, FirstName: "Dana", LastName: "Reyes"},
						Role:           models.FamilyRole{ID: 1, Name: "Adult", IsAdult: true},
						PrimaryAliasID: 70,
					},
					{
						Person:            models.Person{ID: 8, FirstName: "Milo", LastName: "Reyes", BirthDate: &birth},
						Role:              models.FamilyRole{ID: 2, Name: "Child"},
						PrimaryAliasID:    80,
						RecentlyCheckedIn: true,
						LastAttendedAt:    &lastAttended,
					},
				},
			}}}, nil)

		rr := s.do("/kiosk/search", map[string]any{"term": "555-1234"})
		s.Equal(http.StatusOK, rr.Code)
		s.assertGolden("search_family", rr)
	})

	s.Run("miss is an empty list", func() {
		s.service.EXPECT().SearchFamilies(gomock.Any(), gomock.Any()).Return(&models.SearchResult{}, nil)

		rr := s.do("/kiosk/search", map[string]any{"term": "9876"})
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"families":[]}`, rr.Body.String())
	})

	s.Run("throttled search is busy", func() {
		s.service.EXPECT().SearchFamilies(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeBusy, "too many searches, try again"))

		rr := s.do("/kiosk/search", map[string]any{"term": "9876"})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, httputil.CategoryBusy)
	})

	s.Run("overlong term is rejected", func() {
		rr := s.do("/kiosk/search", map[string]any{"term": strings.Repeat("5", 40)})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, httputil.CategoryBadRequest)
	})
}

// =============================================================================
// POST /kiosk/occurrences/{occurrenceID}/did-not-occur
// =============================================================================

func (s *HandlerSuite) TestDidNotOccur() {
	s.Run("marks the occurrence", func() {
		s.service.EXPECT().MarkDidNotOccur(gomock.Any(), int64(40), int64(3)).
			Return(&models.Occurrence{ID: 40, OccurrenceDate: day, DidNotOccur: true}, nil)

		rr := s.do("/kiosk/occurrences/40/did-not-occur", map[string]any{"location_id": 3})
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"occurrence_id":40,"occurrence_date":"2025-06-04","did_not_occur":true}`, rr.Body.String())
	})

	s.Run("bad occurrence id", func() {
		rr := s.do("/kiosk/occurrences/abc/did-not-occur", map[string]any{"location_id": 3})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, httputil.CategoryBadRequest)
	})

	s.Run("unknown occurrence", func() {
		s.service.EXPECT().MarkDidNotOccur(gomock.Any(), int64(41), int64(3)).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "not found"))

		rr := s.do("/kiosk/occurrences/41/did-not-occur", map[string]any{"location_id": 3})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, httputil.CategoryNotFound)
	})
}

func TestRoutesOnlyAcceptPost(t *testing.T) {
	router := chi.NewRouter()
	New(nil, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(router)

	rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/kiosk/checkin", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
