package service

import (
	"context"
	"log/slog"

	"checkin/internal/checkin/models"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/audit"
)

// MarkDidNotOccur flags an occurrence as not having taken place. The caller
// needs access to locationID, which must be the occurrence's location.
func (s *Service) MarkDidNotOccur(ctx context.Context, occurrenceID, locationID int64) (*models.Occurrence, error) {
	if occurrenceID <= 0 || locationID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "occurrence_id and location_id are required")
	}
	if err := s.gate.RequireLocationAccess(ctx, locationID, OpMarkDidNotOccur); err != nil {
		return nil, err
	}

	occ, err := s.store.GetOccurrence(ctx, occurrenceID)
	if err != nil {
		return nil, s.translate(ctx, OpMarkDidNotOccur, err)
	}
	if occ.LocationID == nil || *occ.LocationID != locationID {
		return nil, notAuthorized()
	}
	if occ.DidNotOccur {
		return occ, nil
	}

	marked, err := s.store.MarkDidNotOccur(ctx, occurrenceID)
	if err != nil {
		return nil, s.translate(ctx, OpMarkDidNotOccur, err)
	}
	audit.Log(ctx, s.logger, s.auditor, slog.LevelInfo, audit.ActionOccurrenceNotOccurred,
		"occurrence_id", occurrenceID,
		"location_id", locationID,
	)
	return marked, nil
}
