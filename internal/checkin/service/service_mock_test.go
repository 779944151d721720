package service_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"checkin/internal/checkin/authz"
	"checkin/internal/checkin/coordinator"
	"checkin/internal/checkin/metrics"
	"checkin/internal/checkin/models"
	"checkin/internal/checkin/service"
	"checkin/internal/checkin/service/mocks"
	"checkin/internal/checkin/store"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/audit"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/requestcontext"
	"checkin/pkg/testutil"
	"checkin/pkg/testutil/memstore"
)

// =============================================================================
// Service Mock Test Suite
// =============================================================================
// Justification for unit tests: exhausted retry budgets, an attendance that
// appears between the first lookup and the transaction, and infrastructure
// failures cannot be provoked reliably against a real database. Mocks script
// those outcomes and assert which collaborators are never reached.

const (
	mockPerson   = int64(1)
	mockAlias    = int64(11)
	mockLocation = int64(3)
	mockGroup    = int64(20)
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

type ServiceMockSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	store       *mocks.MockStore
	coordinator *mocks.MockCoordinator
	loader      *mocks.MockPeopleLoader
	gate        *mocks.MockAuthorizer
	emitter     *recordingEmitter
	metrics     *metrics.Metrics
	service     *service.Service
	ctx         context.Context
}

func TestServiceMockSuite(t *testing.T) {
	suite.Run(t, new(ServiceMockSuite))
}

func (s *ServiceMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.coordinator = mocks.NewMockCoordinator(s.ctrl)
	s.loader = mocks.NewMockPeopleLoader(s.ctrl)
	s.gate = mocks.NewMockAuthorizer(s.ctrl)
	s.emitter = &recordingEmitter{}
	s.metrics = metrics.New(prometheus.NewRegistry())

	svc, err := service.New(s.store, s.coordinator, s.loader, s.gate,
		service.WithAuditEmitter(s.emitter),
		service.WithMetrics(s.metrics),
		service.WithBusyWork(func() {}),
	)
	s.Require().NoError(err)
	s.service = svc
	s.ctx = requestcontext.WithTime(testutil.KioskContext([]int64{mockPerson}, []int64{mockLocation}), now)
}

func (s *ServiceMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceMockSuite) request() models.RecordAttendanceRequest {
	return models.RecordAttendanceRequest{PersonID: mockPerson, GroupID: mockGroup, LocationID: mockLocation}
}

func (s *ServiceMockSuite) occurrence() *models.Occurrence {
	loc := mockLocation
	return &models.Occurrence{ID: 100, GroupID: mockGroup, LocationID: &loc, OccurrenceDate: today}
}

// allowAndLoad expects the gate to pass and the loader to resolve the person.
func (s *ServiceMockSuite) allowAndLoad() {
	s.gate.EXPECT().RequireCheckinAccess(gomock.Any(), mockPerson, mockLocation, service.OpRecordAttendance).Return(nil)
	s.loader.EXPECT().LoadPersonsWithPrimaryAlias(gomock.Any(), []int64{mockPerson}).Return(map[int64]models.PersonWithAlias{
		mockPerson: {Person: models.Person{ID: mockPerson}, PrimaryAliasID: mockAlias},
	}, nil)
}

func exhausted(resource string) error {
	return fmt.Errorf("%w: %s after 5 attempts", coordinator.ErrConcurrencyExhausted, resource)
}

// =============================================================================
// Construction
// =============================================================================

func (s *ServiceMockSuite) TestNew() {
	tests := []struct {
		name    string
		build   func() (*service.Service, error)
		wantErr string
	}{
		{"nil store", func() (*service.Service, error) {
			return service.New(nil, s.coordinator, s.loader, s.gate)
		}, "store is required"},
		{"nil coordinator", func() (*service.Service, error) {
			return service.New(s.store, nil, s.loader, s.gate)
		}, "coordinator is required"},
		{"nil loader", func() (*service.Service, error) {
			return service.New(s.store, s.coordinator, nil, s.gate)
		}, "loader is required"},
		{"nil authorizer", func() (*service.Service, error) {
			return service.New(s.store, s.coordinator, s.loader, nil)
		}, "authorizer is required"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			svc, err := tt.build()
			s.Nil(svc)
			s.EqualError(err, tt.wantErr)
		})
	}
}

// =============================================================================
// Ordering
// =============================================================================

func (s *ServiceMockSuite) TestDeniedCallerReachesNothing() {
	denied := dErrors.New(dErrors.CodeForbidden, authz.Message)
	s.gate.EXPECT().RequireCheckinAccess(gomock.Any(), mockPerson, mockLocation, service.OpRecordAttendance).Return(denied)

	_, err := s.service.RecordAttendance(s.ctx, s.request())
	s.ErrorIs(err, denied)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Checkins.WithLabelValues("not_authorized")))
}

func (s *ServiceMockSuite) TestOpenAttendanceSkipsCodeGeneration() {
	s.allowAndLoad()
	occ := s.occurrence()
	codeID := int64(7)
	existing := &models.Attendance{ID: 55, OccurrenceID: occ.ID, PersonAliasID: mockAlias, AttendanceCodeID: &codeID, PersonID: mockPerson}

	s.coordinator.EXPECT().GetOrCreateOccurrence(gomock.Any(), gomock.Any()).Return(occ, nil)
	s.store.EXPECT().FindOpenAttendance(gomock.Any(), occ.ID, mockAlias).Return(existing, nil)
	s.store.EXPECT().GetCode(gomock.Any(), codeID).Return(&models.AttendanceCode{ID: codeID, Code: "K7Q4", IssueDate: today}, nil)
	s.coordinator.EXPECT().GenerateSecurityCode(gomock.Any(), gomock.Any()).Times(0)
	s.store.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Times(0)

	result, err := s.service.RecordAttendance(s.ctx, s.request())
	s.Require().NoError(err)
	s.True(result.AlreadyCheckedIn)
	s.Equal(int64(55), result.Attendance.ID)
	s.Equal("K7Q4", result.Code.Code)
	s.Contains(s.emitter.actions(), audit.ActionAttendanceReplayed)
}

func (s *ServiceMockSuite) TestOccurrenceKeyCarriesRequest() {
	s.allowAndLoad()
	schedule := int64(4)
	req := s.request()
	req.ScheduleID = &schedule
	req.OccurrenceDate = models.Date{Year: 2025, Month: time.June, Day: 1}

	s.coordinator.EXPECT().GetOrCreateOccurrence(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key models.OccurrenceKey) (*models.Occurrence, error) {
			s.Equal(mockGroup, key.GroupID)
			s.Require().NotNil(key.LocationID)
			s.Equal(mockLocation, *key.LocationID)
			s.Equal(&schedule, key.ScheduleID)
			s.Equal(req.OccurrenceDate, key.Date)
			return nil, context.DeadlineExceeded
		})

	_, err := s.service.RecordAttendance(s.ctx, req)
	s.True(dErrors.Is(err, dErrors.CodeTimeout))
}

// =============================================================================
// Replay inside the transaction
// =============================================================================

// A concurrent caller can insert the attendance after the first lookup missed.
// The re-check under the occurrence lock must return it instead of inserting.
func (s *ServiceMockSuite) TestReplayFoundInsideTransaction() {
	s.allowAndLoad()
	mem := memstore.New()
	occ, err := mem.InsertOccurrence(context.Background(), models.NewOccurrence(s.occurrence().Key(), now))
	s.Require().NoError(err)
	winner, err := mem.InsertAttendance(context.Background(), &models.Attendance{
		OccurrenceID: occ.ID, PersonAliasID: mockAlias, StartAt: now,
	})
	s.Require().NoError(err)

	s.coordinator.EXPECT().GetOrCreateOccurrence(gomock.Any(), gomock.Any()).Return(occ, nil)
	s.store.EXPECT().FindOpenAttendance(gomock.Any(), occ.ID, mockAlias).
		Return(nil, fmt.Errorf("find attendance: %w", sentinel.ErrNotFound))
	s.coordinator.EXPECT().GenerateSecurityCode(gomock.Any(), today).
		Return(&models.AttendanceCode{ID: 9, Code: "ZZ22", IssueDate: today}, nil)
	s.store.EXPECT().RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(store.TxStore) error) error {
			return mem.RunInTx(ctx, fn)
		})

	result, err := s.service.RecordAttendance(s.ctx, s.request())
	s.Require().NoError(err)
	s.True(result.AlreadyCheckedIn)
	s.Equal(winner.ID, result.Attendance.ID)
	s.Nil(result.Code, "the replayed attendance had no code")

	_, _, attendances := mem.Counts()
	s.Equal(1, attendances)
}

// =============================================================================
// Error translation
// =============================================================================

func (s *ServiceMockSuite) TestOccurrenceExhausted() {
	s.allowAndLoad()
	s.coordinator.EXPECT().GetOrCreateOccurrence(gomock.Any(), gomock.Any()).Return(nil, exhausted("occurrence"))
	s.coordinator.EXPECT().GenerateSecurityCode(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.RecordAttendance(s.ctx, s.request())
	s.True(dErrors.Is(err, dErrors.CodeBusy))
	s.Equal("system busy, try again", dErrors.MessageOf(err))
	s.Contains(s.emitter.actions(), audit.ActionConcurrencyExhausted)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Checkins.WithLabelValues("busy")))
}

func (s *ServiceMockSuite) TestCodeExhausted() {
	s.allowAndLoad()
	occ := s.occurrence()
	s.coordinator.EXPECT().GetOrCreateOccurrence(gomock.Any(), gomock.Any()).Return(occ, nil)
	s.store.EXPECT().FindOpenAttendance(gomock.Any(), occ.ID, mockAlias).Return(nil, sentinel.ErrNotFound)
	s.coordinator.EXPECT().GenerateSecurityCode(gomock.Any(), today).Return(nil, exhausted("code"))
	s.store.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.RecordAttendance(s.ctx, s.request())
	s.True(dErrors.Is(err, dErrors.CodeBusy))
	s.Equal("system busy, try again", dErrors.MessageOf(err))
}

func (s *ServiceMockSuite) TestInfrastructureErrorIsInternal() {
	s.allowAndLoad()
	occ := s.occurrence()
	s.coordinator.EXPECT().GetOrCreateOccurrence(gomock.Any(), gomock.Any()).Return(occ, nil)
	s.store.EXPECT().FindOpenAttendance(gomock.Any(), occ.ID, mockAlias).Return(nil, errors.New("pq: relation \"attendances\" does not exist"))

	_, err := s.service.RecordAttendance(s.ctx, s.request())
	s.True(dErrors.Is(err, dErrors.CodeInternal))
	s.Equal("internal error", dErrors.MessageOf(err))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Checkins.WithLabelValues("error")))
}

func (s *ServiceMockSuite) TestTransactionErrorIsTranslated() {
	s.allowAndLoad()
	occ := s.occurrence()
	s.coordinator.EXPECT().GetOrCreateOccurrence(gomock.Any(), gomock.Any()).Return(occ, nil)
	s.store.EXPECT().FindOpenAttendance(gomock.Any(), occ.ID, mockAlias).Return(nil, sentinel.ErrNotFound)
	s.coordinator.EXPECT().GenerateSecurityCode(gomock.Any(), today).Return(&models.AttendanceCode{ID: 9, Code: "ZZ22"}, nil)
	s.store.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(fmt.Errorf("commit: %w", context.Canceled))

	_, err := s.service.RecordAttendance(s.ctx, s.request())
	s.True(dErrors.Is(err, dErrors.CodeTimeout))
}

// =============================================================================
// Search
// =============================================================================

func (s *ServiceMockSuite) TestSearchThrottleUnavailableFailsClosed() {
	svc, err := service.New(s.store, s.coordinator, s.loader, s.gate,
		service.WithThrottle(failingLimiter{}),
		service.WithBusyWork(func() {}),
	)
	s.Require().NoError(err)
	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpSearchFamilies).Return(nil)
	s.store.EXPECT().FamilyIDsByPhone(gomock.Any(), gomock.Any()).Times(0)

	_, err = svc.SearchFamilies(s.ctx, models.SearchRequest{Term: "5551234"})
	s.True(dErrors.Is(err, dErrors.CodeBusy))
}

func (s *ServiceMockSuite) TestSearchMissRunsBusyWork() {
	ran := 0
	svc, err := service.New(s.store, s.coordinator, s.loader, s.gate,
		service.WithBusyWork(func() { ran++ }),
	)
	s.Require().NoError(err)
	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpSearchFamilies).Return(nil)
	s.store.EXPECT().FamilyIDsByPhone(gomock.Any(), "5551234").Return(nil, nil)
	s.loader.EXPECT().LoadFamilyData(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	result, err := svc.SearchFamilies(s.ctx, models.SearchRequest{Term: "555-1234"})
	s.Require().NoError(err)
	s.Empty(result.Families)
	s.Equal(1, ran)
}

func (s *ServiceMockSuite) TestSearchDigitsCanBeCode() {
	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpSearchFamilies).Return(nil)
	s.store.EXPECT().FamilyIDsByPhone(gomock.Any(), "4567").Return([]int64{8}, nil)
	s.store.EXPECT().FamilyIDsBySecurityCode(gomock.Any(), "4567", today).Return([]int64{8, 9}, nil)
	s.loader.EXPECT().LoadFamilyData(gomock.Any(), []int64{8, 9}, now.Add(-30*24*time.Hour)).
		Return(map[int64]models.FamilyData{
			8: {Family: models.Family{ID: 8, Name: "Reyes"}},
			9: {Family: models.Family{ID: 9, Name: "Okafor"}},
		}, nil)

	result, err := s.service.SearchFamilies(s.ctx, models.SearchRequest{Term: "4567"})
	s.Require().NoError(err)
	s.Require().Len(result.Families, 2)
	s.Equal("Reyes", result.Families[0].Family.Name)
	s.Equal("Okafor", result.Families[1].Family.Name)
}

func (s *ServiceMockSuite) TestSearchAttachesLastAttended() {
	earlier := now.Add(-72 * time.Hour)
	latest := now.Add(-2 * time.Hour)
	since := now.Add(-30 * 24 * time.Hour)

	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpSearchFamilies).Return(nil)
	s.store.EXPECT().FamilyIDsByPhone(gomock.Any(), "5551234").Return([]int64{8}, nil)
	s.loader.EXPECT().LoadFamilyData(gomock.Any(), []int64{8}, since).
		Return(map[int64]models.FamilyData{
			8: {Family: models.Family{ID: 8}, Members: []models.FamilyMember{
				{Person: models.Person{ID: 1}, RecentlyCheckedIn: true},
				{Person: models.Person{ID: 2}},
			}},
		}, nil)
	s.loader.EXPECT().LoadRecentAttendances(gomock.Any(), []int64{1}, since).
		Return(map[int64][]models.Attendance{
			1: {{ID: 10, StartAt: earlier}, {ID: 11, StartAt: latest}},
		}, nil)

	result, err := s.service.SearchFamilies(s.ctx, models.SearchRequest{Term: "5551234"})
	s.Require().NoError(err)
	members := result.Families[0].Members
	s.Require().NotNil(members[0].LastAttendedAt)
	s.Equal(latest, *members[0].LastAttendedAt)
	s.Nil(members[1].LastAttendedAt)
}

func (s *ServiceMockSuite) TestSearchSkipsAttendanceLoadWithoutRecentMembers() {
	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpSearchFamilies).Return(nil)
	s.store.EXPECT().FamilyIDsByPhone(gomock.Any(), "5551234").Return([]int64{8}, nil)
	s.loader.EXPECT().LoadFamilyData(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(map[int64]models.FamilyData{
			8: {Family: models.Family{ID: 8}, Members: []models.FamilyMember{{Person: models.Person{ID: 2}}}},
		}, nil)
	s.loader.EXPECT().LoadRecentAttendances(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	result, err := s.service.SearchFamilies(s.ctx, models.SearchRequest{Term: "5551234"})
	s.Require().NoError(err)
	s.Nil(result.Families[0].Members[0].LastAttendedAt)
}

func (s *ServiceMockSuite) TestSearchAttendanceLoadFailureIsInternal() {
	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpSearchFamilies).Return(nil)
	s.store.EXPECT().FamilyIDsByPhone(gomock.Any(), "5551234").Return([]int64{8}, nil)
	s.loader.EXPECT().LoadFamilyData(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(map[int64]models.FamilyData{
			8: {Family: models.Family{ID: 8}, Members: []models.FamilyMember{{Person: models.Person{ID: 1}, RecentlyCheckedIn: true}}},
		}, nil)
	s.loader.EXPECT().LoadRecentAttendances(gomock.Any(), []int64{1}, gomock.Any()).
		Return(nil, errors.New("connection reset"))

	_, err := s.service.SearchFamilies(s.ctx, models.SearchRequest{Term: "5551234"})
	s.True(dErrors.Is(err, dErrors.CodeInternal))
}

// =============================================================================
// Checkout
// =============================================================================

func (s *ServiceMockSuite) TestCheckoutUnknownAttendanceRunsBusyWork() {
	ran := 0
	svc, err := service.New(s.store, s.coordinator, s.loader, s.gate,
		service.WithBusyWork(func() { ran++ }),
	)
	s.Require().NoError(err)
	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpCheckout).Return(nil)
	s.store.EXPECT().GetAttendance(gomock.Any(), int64(404)).Return(nil, fmt.Errorf("attendance 404: %w", sentinel.ErrNotFound))
	s.gate.EXPECT().RequireCheckinAccess(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.store.EXPECT().GetCode(gomock.Any(), gomock.Any()).Times(0)

	_, err = svc.Checkout(s.ctx, models.CheckoutRequest{AttendanceID: 404, SecurityCode: "ABCD"})
	s.True(authz.IsDenied(err))
	s.Equal(authz.Message, dErrors.MessageOf(err))
	s.Equal(1, ran, "a miss costs the same busy work as a search miss")
}

func (s *ServiceMockSuite) TestCheckoutKnownAttendanceSkipsBusyWork() {
	ran := 0
	svc, err := service.New(s.store, s.coordinator, s.loader, s.gate,
		service.WithBusyWork(func() { ran++ }),
	)
	s.Require().NoError(err)
	loc := mockLocation
	codeID := int64(9)
	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpCheckout).Return(nil)
	s.store.EXPECT().GetAttendance(gomock.Any(), int64(5)).Return(&models.Attendance{
		ID: 5, PersonID: mockPerson, LocationID: &loc, AttendanceCodeID: &codeID,
	}, nil)
	s.gate.EXPECT().RequireCheckinAccess(gomock.Any(), mockPerson, mockLocation, service.OpCheckout).Return(nil)
	s.store.EXPECT().GetCode(gomock.Any(), codeID).Return(&models.AttendanceCode{ID: codeID, Code: "ZZ22"}, nil)

	_, err = svc.Checkout(s.ctx, models.CheckoutRequest{AttendanceID: 5, SecurityCode: "AB34"})
	s.True(authz.IsDenied(err))
	s.Zero(ran)
}

func (s *ServiceMockSuite) TestCheckoutLookupFailureIsInternal() {
	s.gate.EXPECT().RequireAuthenticated(gomock.Any(), service.OpCheckout).Return(nil)
	s.store.EXPECT().GetAttendance(gomock.Any(), int64(5)).Return(nil, errors.New("driver: bad connection"))

	_, err := s.service.Checkout(s.ctx, models.CheckoutRequest{AttendanceID: 5, SecurityCode: "ZZ22"})
	s.True(dErrors.Is(err, dErrors.CodeInternal))
}
