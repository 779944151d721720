package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"checkin/internal/checkin/metrics"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/audit"
	"checkin/pkg/requestcontext"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []audit.SecurityEvent
}

func (r *recordingEmitter) Emit(_ context.Context, ev audit.SecurityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type GateSuite struct {
	suite.Suite
	logs    *bytes.Buffer
	emitter *recordingEmitter
	metrics *metrics.Metrics
	gate    *Gate
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.logs = &bytes.Buffer{}
	s.emitter = &recordingEmitter{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.gate = New(
		WithLogger(slog.New(slog.NewJSONHandler(s.logs, nil))),
		WithAuditEmitter(s.emitter),
		WithMetrics(s.metrics),
	)
}

func asCaller(p *requestcontext.CallerPrincipal) context.Context {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	if p == nil {
		return ctx
	}
	return requestcontext.WithPrincipal(ctx, p)
}

func (s *GateSuite) TestRequireAuthenticated() {
	s.Run("anonymous caller is unauthenticated", func() {
		err := s.gate.RequireAuthenticated(asCaller(nil), "SearchFamilies")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		s.Equal(Message, dErrors.MessageOf(err))
		s.True(IsDenied(err))
	})

	s.Run("empty caller id is unauthenticated", func() {
		err := s.gate.RequireAuthenticated(asCaller(requestcontext.NewPrincipal("")), "SearchFamilies")
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("authenticated caller passes", func() {
		s.NoError(s.gate.RequireAuthenticated(asCaller(requestcontext.NewPrincipal("kiosk-1")), "SearchFamilies"))
	})
}

func (s *GateSuite) TestRequirePersonAccess() {
	ctx := asCaller(requestcontext.NewPrincipal("kiosk-1").WithPersons(7))

	s.NoError(s.gate.RequirePersonAccess(ctx, 7, "Checkout"))

	err := s.gate.RequirePersonAccess(ctx, 8, "Checkout")
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
	s.Equal(Message, dErrors.MessageOf(err))

	err = s.gate.RequirePersonAccess(asCaller(nil), 7, "Checkout")
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *GateSuite) TestRequireLocationAccess() {
	ctx := asCaller(requestcontext.NewPrincipal("kiosk-1").WithLocations(3))

	s.NoError(s.gate.RequireLocationAccess(ctx, 3, "MarkDidNotOccur"))

	err := s.gate.RequireLocationAccess(ctx, 4, "MarkDidNotOccur")
	s.True(dErrors.Is(err, dErrors.CodeForbidden))

	all := requestcontext.NewPrincipal("admin")
	all.AllLocations = true
	s.NoError(s.gate.RequireLocationAccess(asCaller(all), 99, "MarkDidNotOccur"))
}

// A caller lacking location access and a caller lacking person access must
// see exactly the same error for the same check-in.
func (s *GateSuite) TestRequireCheckinAccess_IdenticalErrors() {
	noLocation := asCaller(requestcontext.NewPrincipal("kiosk-1").WithPersons(7))
	noPerson := asCaller(requestcontext.NewPrincipal("kiosk-2").WithLocations(3))
	anonymous := asCaller(nil)

	errLocation := s.gate.RequireCheckinAccess(noLocation, 7, 3, "CheckIn")
	errPerson := s.gate.RequireCheckinAccess(noPerson, 7, 3, "CheckIn")
	errAnonymous := s.gate.RequireCheckinAccess(anonymous, 7, 3, "CheckIn")

	s.Require().Error(errLocation)
	s.Require().Error(errPerson)
	s.Require().Error(errAnonymous)

	for _, err := range []error{errPerson, errAnonymous} {
		s.Equal(errLocation.Error(), err.Error())
		s.Equal(dErrors.CodeOf(errLocation), dErrors.CodeOf(err))
		s.Equal(dErrors.MessageOf(errLocation), dErrors.MessageOf(err))
		s.IsType(errLocation, err)
	}
	s.Equal(Message, errLocation.Error())

	s.Run("failures are logged with the failing check", func() {
		out := s.logs.String()
		s.Contains(out, `"reason":"location_access"`)
		s.Contains(out, `"reason":"person_access"`)
		s.Contains(out, `"reason":"authentication"`)
		s.Contains(out, `"operation":"CheckIn"`)
		s.Contains(out, `"request_id":"req-1"`)

		first := strings.SplitN(out, "\n", 2)[0]
		var line map[string]any
		s.Require().NoError(json.Unmarshal([]byte(first), &line))
		s.Equal("WARN", line["level"])
		s.EqualValues(7, line["person_id"])
		s.EqualValues(3, line["location_id"])
		s.Equal("kiosk-1", line["caller_id"])
	})

	s.Run("failures are audited and counted", func() {
		s.Len(s.emitter.events, 3)
		for _, ev := range s.emitter.events {
			s.Equal(audit.ActionAuthorizationDenied, ev.Action)
			s.Equal("person:7", ev.Subject)
		}
		s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthzDenials.WithLabelValues(checkLocation)))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthzDenials.WithLabelValues(checkPerson)))
	})
}

func (s *GateSuite) TestRequireCheckinAccess_Granted() {
	ctx := asCaller(requestcontext.NewPrincipal("kiosk-1").WithPersons(7).WithLocations(3))
	s.NoError(s.gate.RequireCheckinAccess(ctx, 7, 3, "CheckIn"))
	s.Empty(s.emitter.events)
	s.Empty(s.logs.String())
}
