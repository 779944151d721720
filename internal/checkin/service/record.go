package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"checkin/internal/checkin/models"
	"checkin/internal/checkin/store"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/audit"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/requestcontext"
)

// RecordAttendance checks a person in. Authorization runs before anything is
// read or written. A person already checked in to the occurrence gets the
// existing attendance back with AlreadyCheckedIn set.
func (s *Service) RecordAttendance(ctx context.Context, req models.RecordAttendanceRequest) (*models.AttendanceResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "service.RecordAttendance", trace.WithAttributes(
		attribute.Int64("person_id", req.PersonID),
		attribute.Int64("group_id", req.GroupID),
		attribute.Int64("location_id", req.LocationID),
	))
	defer span.End()

	result, err := s.recordAttendance(ctx, req)
	s.observe(span, start, result, err)
	return result, err
}

func (s *Service) recordAttendance(ctx context.Context, req models.RecordAttendanceRequest) (*models.AttendanceResult, error) {
	if err := validateRecord(req); err != nil {
		return nil, err
	}
	if err := s.gate.RequireCheckinAccess(ctx, req.PersonID, req.LocationID, OpRecordAttendance); err != nil {
		return nil, err
	}

	persons, err := s.loader.LoadPersonsWithPrimaryAlias(ctx, []int64{req.PersonID})
	if err != nil {
		return nil, s.translate(ctx, OpRecordAttendance, err)
	}
	person, ok := persons[req.PersonID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "person not found")
	}
	return s.record(ctx, OpRecordAttendance, req, person.PrimaryAliasID)
}

// RecordBatch checks several people in. Each item is authorized and recorded
// independently; one item failing does not affect the others. Persons are
// resolved in a single query for the whole batch.
func (s *Service) RecordBatch(ctx context.Context, reqs []models.RecordAttendanceRequest) ([]models.BatchItemResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.RecordBatch", trace.WithAttributes(
		attribute.Int("items", len(reqs)),
	))
	defer span.End()

	if len(reqs) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "batch is empty")
	}
	if len(reqs) > MaxBatchSize {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("batch exceeds %d items", MaxBatchSize))
	}

	results := make([]models.BatchItemResult, len(reqs))
	var allowed []int64
	for i, req := range reqs {
		results[i] = models.BatchItemResult{Index: i, PersonID: req.PersonID}
		if err := validateRecord(req); err != nil {
			results[i].Err = err
			continue
		}
		if err := s.gate.RequireCheckinAccess(ctx, req.PersonID, req.LocationID, OpRecordBatch); err != nil {
			results[i].Err = err
			continue
		}
		allowed = append(allowed, req.PersonID)
	}

	persons, err := s.loader.LoadPersonsWithPrimaryAlias(ctx, allowed)
	if err != nil {
		err = s.translate(ctx, OpRecordBatch, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "load persons failed")
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i, req := range reqs {
		if results[i].Err != nil {
			s.metrics.IncCheckin(outcome(results[i].Err))
			continue
		}
		person, ok := persons[req.PersonID]
		if !ok {
			results[i].Err = dErrors.New(dErrors.CodeNotFound, "person not found")
			s.metrics.IncCheckin(outcomeError)
			continue
		}
		g.Go(func() error {
			start := time.Now()
			result, err := s.record(ctx, OpRecordBatch, req, person.PrimaryAliasID)
			results[i].Result = result
			results[i].Err = err
			s.observe(nil, start, result, err)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// record runs the check-in state machine for an authorized request:
// resolve the occurrence, short-circuit on an open attendance, issue a code,
// then persist under the occurrence lock.
func (s *Service) record(ctx context.Context, op string, req models.RecordAttendanceRequest, aliasID int64) (*models.AttendanceResult, error) {
	checkedInAt := req.CheckedInAt
	if checkedInAt.IsZero() {
		checkedInAt = requestcontext.Now(ctx)
	}
	date := req.OccurrenceDate
	if date.IsZero() {
		date = s.dateOf(checkedInAt)
	}
	locationID := req.LocationID

	occ, err := s.coordinator.GetOrCreateOccurrence(ctx, models.OccurrenceKey{
		GroupID:    req.GroupID,
		LocationID: &locationID,
		ScheduleID: req.ScheduleID,
		Date:       date,
	})
	if err != nil {
		return nil, s.translate(ctx, op, err)
	}

	existing, err := s.store.FindOpenAttendance(ctx, occ.ID, aliasID)
	switch {
	case err == nil:
		return s.replayed(ctx, op, existing, occ)
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, s.translate(ctx, op, err)
	}

	code, err := s.coordinator.GenerateSecurityCode(ctx, date)
	if err != nil {
		return nil, s.translate(ctx, op, err)
	}

	var (
		created *models.Attendance
		replay  *models.Attendance
	)
	err = s.store.RunInTx(ctx, func(tx store.TxStore) error {
		if err := tx.LockOccurrence(ctx, occ.ID); err != nil {
			return err
		}
		open, err := tx.FindOpenAttendance(ctx, occ.ID, aliasID)
		if err == nil {
			replay = open
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		created, err = tx.InsertAttendance(ctx, &models.Attendance{
			OccurrenceID:     occ.ID,
			PersonAliasID:    aliasID,
			AttendanceCodeID: &code.ID,
			LocationID:       &locationID,
			StartAt:          checkedInAt,
			Device:           requestcontext.DeviceInfo(ctx).Description,
		})
		return err
	})
	if err != nil {
		return nil, s.translate(ctx, op, err)
	}
	if replay != nil {
		return s.replayed(ctx, op, replay, occ)
	}

	created.PersonID = req.PersonID
	audit.Log(ctx, s.logger, s.auditor, slog.LevelInfo, audit.ActionAttendanceRecorded,
		"subject", personSubject(req.PersonID),
		"operation", op,
		"attendance_id", created.ID,
		"occurrence_id", occ.ID,
		"location_id", req.LocationID,
	)
	return &models.AttendanceResult{Attendance: created, Occurrence: occ, Code: code}, nil
}

// replayed builds the result for a person already checked in, returning the
// code issued with the original attendance.
func (s *Service) replayed(ctx context.Context, op string, existing *models.Attendance, occ *models.Occurrence) (*models.AttendanceResult, error) {
	result := &models.AttendanceResult{Attendance: existing, Occurrence: occ, AlreadyCheckedIn: true}
	if existing.AttendanceCodeID != nil {
		code, err := s.store.GetCode(ctx, *existing.AttendanceCodeID)
		if err != nil {
			return nil, s.translate(ctx, op, err)
		}
		result.Code = code
	}
	audit.Log(ctx, s.logger, s.auditor, slog.LevelInfo, audit.ActionAttendanceReplayed,
		"subject", personSubject(existing.PersonID),
		"operation", op,
		"attendance_id", existing.ID,
		"occurrence_id", occ.ID,
	)
	return result, nil
}

// observe records metrics for one check-in and closes out span, if given.
func (s *Service) observe(span trace.Span, start time.Time, result *models.AttendanceResult, err error) {
	s.metrics.ObserveCheckinLatency(time.Since(start))
	switch {
	case err != nil:
		s.metrics.IncCheckin(outcome(err))
	case result.AlreadyCheckedIn:
		s.metrics.IncCheckin(outcomeAlreadyIn)
	default:
		s.metrics.IncCheckin(outcomeRecorded)
	}

	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return
	}
	span.SetAttributes(
		attribute.Int64("attendance_id", result.Attendance.ID),
		attribute.Bool("already_checked_in", result.AlreadyCheckedIn),
	)
}

func validateRecord(req models.RecordAttendanceRequest) error {
	switch {
	case req.PersonID <= 0:
		return dErrors.New(dErrors.CodeValidation, "person_id is required")
	case req.GroupID <= 0:
		return dErrors.New(dErrors.CodeValidation, "group_id is required")
	case req.LocationID <= 0:
		return dErrors.New(dErrors.CodeValidation, "location_id is required")
	case req.ScheduleID != nil && *req.ScheduleID <= 0:
		return dErrors.New(dErrors.CodeValidation, "schedule_id must be positive")
	}
	return nil
}

func personSubject(personID int64) string {
	return fmt.Sprintf("person:%d", personID)
}
