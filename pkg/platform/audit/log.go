package audit

import (
	"context"
	"fmt"
	"log/slog"

	"checkin/pkg/requestcontext"
)

// Emitter accepts audit events. security.Publisher implements it.
type Emitter interface {
	Emit(ctx context.Context, event SecurityEvent)
}

// Log writes an audited action to the structured logger and, when an emitter
// is configured, to the audit stream. attrList is slog-style key/value pairs;
// "subject" and "reason" are lifted into the event, everything else lands in Details.
func Log(ctx context.Context, logger *slog.Logger, emitter Emitter, level slog.Level, action Action, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)
	device := requestcontext.DeviceInfo(ctx)

	args := append([]any{}, attrList...)
	args = append(args,
		"event", string(action),
		"log_type", "audit",
		"caller_id", principal.ID(),
	)
	if requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if device.Description != "" {
		args = append(args, "device", device.Description)
	}

	if logger != nil {
		logger.Log(ctx, level, string(action), args...)
	}

	if emitter == nil {
		return
	}

	severity := SeverityInfo
	switch {
	case level >= slog.LevelError:
		severity = SeverityCritical
	case level >= slog.LevelWarn:
		severity = SeverityWarning
	}

	emitter.Emit(ctx, SecurityEvent{
		Action:    action,
		Subject:   extractString(attrList, "subject"),
		Reason:    extractString(attrList, "reason"),
		CallerID:  principal.ID(),
		Device:    device.Description,
		RequestID: requestID,
		Severity:  severity,
		Details:   details(attrList),
	})
}

// extractString returns the value for key from a [k1, v1, k2, v2, ...] slice.
func extractString(attrList []any, key string) string {
	for i := 0; i < len(attrList)-1; i += 2 {
		if k, ok := attrList[i].(string); ok && k == key {
			if v, ok := attrList[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}

func details(attrList []any) map[string]string {
	out := make(map[string]string, len(attrList)/2)
	for i := 0; i < len(attrList)-1; i += 2 {
		k, ok := attrList[i].(string)
		if !ok || k == "subject" || k == "reason" {
			continue
		}
		out[k] = fmt.Sprint(attrList[i+1])
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
