package service

import (
	"context"
	"errors"
	"log/slog"

	"checkin/internal/checkin/authz"
	"checkin/internal/checkin/coordinator"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/audit"
	"checkin/pkg/platform/sentinel"
)

// Check-in outcomes, as counted.
const (
	outcomeRecorded      = "recorded"
	outcomeAlreadyIn     = "already_checked_in"
	outcomeNotAuthorized = "not_authorized"
	outcomeBusy          = "busy"
	outcomeError         = "error"
)

const busyMessage = "system busy, try again"

// notAuthorized is the error for failures that must look like a denied
// authorization, such as a wrong checkout code or an unknown attendance id.
func notAuthorized() error {
	return dErrors.New(dErrors.CodeForbidden, authz.Message)
}

// translate maps infrastructure errors to domain errors. Domain errors pass through.
func (s *Service) translate(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}

	switch {
	case errors.Is(err, coordinator.ErrConcurrencyExhausted):
		audit.Log(ctx, s.logger, s.auditor, slog.LevelError, audit.ActionConcurrencyExhausted,
			"operation", op,
			"error", err.Error(),
		)
		return dErrors.Wrap(err, dErrors.CodeBusy, busyMessage)
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request cancelled")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "not found")
	default:
		s.logger.ErrorContext(ctx, "check-in operation failed",
			"operation", op,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "internal error")
	}
}

// outcome classifies an error returned to the caller for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeRecorded
	case authz.IsDenied(err):
		return outcomeNotAuthorized
	case dErrors.Is(err, dErrors.CodeBusy):
		return outcomeBusy
	default:
		return outcomeError
	}
}
