package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"checkin/internal/checkin/models"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/audit"
	"checkin/pkg/platform/secure"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/requestcontext"
)

// Checkout ends an attendance. The caller must be allowed to act on the
// attendee at the attendance's location and must present the security code
// printed at check-in. An unknown attendance and a wrong code both fail as
// not authorized. Checking out twice returns the original end time.
func (s *Service) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.Checkout", trace.WithAttributes(
		attribute.Int64("attendance_id", req.AttendanceID),
	))
	defer span.End()

	result, err := s.checkout(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	return result, err
}

func (s *Service) checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	if req.AttendanceID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "attendance_id is required")
	}
	if err := s.gate.RequireAuthenticated(ctx, OpCheckout); err != nil {
		return nil, err
	}

	// An unknown id pays for busy work so its timing matches a wrong code.
	attendance, found, err := secure.SearchWithConstantTiming(ctx, func(ctx context.Context) (*models.Attendance, bool, error) {
		a, err := s.store.GetAttendance(ctx, req.AttendanceID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return a, true, nil
	}, s.busyWork)
	if err != nil {
		return nil, s.translate(ctx, OpCheckout, err)
	}
	if !found {
		s.logger.WarnContext(ctx, "checkout of unknown attendance",
			"attendance_id", req.AttendanceID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, notAuthorized()
	}

	var locationID int64
	if attendance.LocationID != nil {
		locationID = *attendance.LocationID
	}
	if err := s.gate.RequireCheckinAccess(ctx, attendance.PersonID, locationID, OpCheckout); err != nil {
		return nil, err
	}

	if !s.codeMatches(ctx, attendance, req.SecurityCode) {
		audit.Log(ctx, s.logger, s.auditor, slog.LevelWarn, audit.ActionCheckoutCodeMismatch,
			"subject", personSubject(attendance.PersonID),
			"reason", "security_code_mismatch",
			"attendance_id", attendance.ID,
		)
		return nil, notAuthorized()
	}

	updated, err := s.store.CheckoutAttendance(ctx, attendance.ID, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrInvalidState) && updated != nil {
		return &models.CheckoutResult{Attendance: updated, AlreadyCheckedOut: true}, nil
	}
	if err != nil {
		return nil, s.translate(ctx, OpCheckout, err)
	}

	audit.Log(ctx, s.logger, s.auditor, slog.LevelInfo, audit.ActionAttendanceCheckedOut,
		"subject", personSubject(attendance.PersonID),
		"attendance_id", attendance.ID,
	)
	return &models.CheckoutResult{Attendance: updated}, nil
}

// codeMatches compares the presented code with the issued one in constant time.
// A missing code still runs the comparison against an empty string.
func (s *Service) codeMatches(ctx context.Context, attendance *models.Attendance, presented string) bool {
	presented = strings.ToUpper(strings.TrimSpace(presented))
	issued := ""
	if attendance.AttendanceCodeID != nil {
		code, err := s.store.GetCode(ctx, *attendance.AttendanceCodeID)
		if err != nil {
			s.logger.ErrorContext(ctx, "load security code for checkout",
				"attendance_id", attendance.ID,
				"error", err,
			)
		} else {
			issued = code.Code
		}
	}
	return secure.Equal(presented, issued) && issued != ""
}
