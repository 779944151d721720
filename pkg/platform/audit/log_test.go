package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkin/pkg/requestcontext"
)

type captureEmitter struct {
	events []SecurityEvent
}

func (c *captureEmitter) Emit(_ context.Context, ev SecurityEvent) {
	c.events = append(c.events, ev)
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	emitter := &captureEmitter{}

	ctx := requestcontext.WithPrincipal(context.Background(), requestcontext.NewPrincipal("kiosk-9"))
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithDevice(ctx, requestcontext.Device{ID: "k9", Description: "Chrome on Android"})

	Log(ctx, logger, emitter, slog.LevelWarn, ActionAuthorizationDenied,
		"subject", "person:7",
		"reason", "location_access",
		"location_id", int64(3),
		"operation", "CheckIn",
	)

	out := buf.String()
	assert.Contains(t, out, `"event":"authorization_denied"`)
	assert.Contains(t, out, `"log_type":"audit"`)
	assert.Contains(t, out, `"caller_id":"kiosk-9"`)
	assert.Contains(t, out, `"request_id":"req-42"`)

	require.Len(t, emitter.events, 1)
	ev := emitter.events[0]
	assert.Equal(t, "person:7", ev.Subject)
	assert.Equal(t, "location_access", ev.Reason)
	assert.Equal(t, "kiosk-9", ev.CallerID)
	assert.Equal(t, "Chrome on Android", ev.Device)
	assert.Equal(t, SeverityWarning, ev.Severity)
	assert.Equal(t, map[string]string{"location_id": "3", "operation": "CheckIn"}, ev.Details)
}

func TestLogWithoutEmitter(t *testing.T) {
	var buf bytes.Buffer
	Log(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)), nil, slog.LevelError, ActionConcurrencyExhausted)
	assert.Contains(t, buf.String(), "concurrency_exhausted")
}

func TestActionCategory(t *testing.T) {
	assert.Equal(t, CategorySecurity, ActionAuthorizationDenied.Category())
	assert.Equal(t, CategoryOperations, ActionAttendanceRecorded.Category())
	assert.Equal(t, CategoryOperations, Action("unknown").Category())
}
