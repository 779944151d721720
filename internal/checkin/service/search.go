package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"checkin/internal/checkin/models"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/audit"
	"checkin/pkg/platform/dedupe"
	"checkin/pkg/platform/secure"
	"checkin/pkg/requestcontext"
)

// Search outcomes, as counted.
const (
	searchHit       = "hit"
	searchMiss      = "miss"
	searchThrottled = "throttled"
	searchError     = "error"
)

// searchTerm is a normalized search. A short all-digit term can be both a
// phone suffix and a security code.
type searchTerm struct {
	phone string
	code  string
}

// SearchFamilies finds the families a kiosk term refers to: trailing phone
// digits, or a security code issued today. The lookup runs through
// secure.SearchWithConstantTiming so a miss takes about as long as a hit.
func (s *Service) SearchFamilies(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.SearchFamilies")
	defer span.End()

	result, outcome, err := s.searchFamilies(ctx, req)
	s.metrics.IncSearch(outcome)
	span.SetAttributes(attribute.String("outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	return result, err
}

func (s *Service) searchFamilies(ctx context.Context, req models.SearchRequest) (*models.SearchResult, string, error) {
	if err := s.gate.RequireAuthenticated(ctx, OpSearchFamilies); err != nil {
		return nil, searchError, err
	}
	if req.LocationID != 0 {
		if err := s.gate.RequireLocationAccess(ctx, req.LocationID, OpSearchFamilies); err != nil {
			return nil, searchError, err
		}
	}

	key := throttleKey(ctx)
	allowed, err := s.throttle.Allow(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "search throttle unavailable", "error", err)
		return nil, searchError, dErrors.Wrap(err, dErrors.CodeBusy, busyMessage)
	}
	if !allowed {
		audit.Log(ctx, s.logger, s.auditor, slog.LevelWarn, audit.ActionSearchThrottled,
			"reason", "search_rate_exceeded",
			"throttle_key", key,
		)
		return nil, searchThrottled, dErrors.New(dErrors.CodeBusy, "too many searches, try again")
	}

	term, err := s.normalizeTerm(req.Term)
	if err != nil {
		return nil, searchError, err
	}

	now := requestcontext.Now(ctx)
	familyIDs, found, err := secure.SearchWithConstantTiming(ctx, func(ctx context.Context) ([]int64, bool, error) {
		var ids []int64
		if term.phone != "" {
			byPhone, err := s.store.FamilyIDsByPhone(ctx, term.phone)
			if err != nil {
				return nil, false, err
			}
			ids = append(ids, byPhone...)
		}
		if term.code != "" {
			byCode, err := s.store.FamilyIDsBySecurityCode(ctx, term.code, s.dateOf(now))
			if err != nil {
				return nil, false, err
			}
			ids = append(ids, byCode...)
		}
		ids = dedupe.IDs(ids)
		return ids, len(ids) > 0, nil
	}, s.busyWork)
	if err != nil {
		return nil, searchError, s.translate(ctx, OpSearchFamilies, err)
	}
	if !found {
		return &models.SearchResult{}, searchMiss, nil
	}

	since := now.Add(-s.recentThreshold)
	families, err := s.loader.LoadFamilyData(ctx, familyIDs, since)
	if err != nil {
		return nil, searchError, s.translate(ctx, OpSearchFamilies, err)
	}
	result := &models.SearchResult{Families: make([]models.FamilyData, 0, len(familyIDs))}
	for _, id := range familyIDs {
		if family, ok := families[id]; ok {
			result.Families = append(result.Families, family)
		}
	}
	if err := s.attachLastAttended(ctx, result, since); err != nil {
		return nil, searchError, s.translate(ctx, OpSearchFamilies, err)
	}
	return result, searchHit, nil
}

// attachLastAttended sets LastAttendedAt on recently checked-in members with
// one batched load. Members without a recent check-in are not queried.
func (s *Service) attachLastAttended(ctx context.Context, result *models.SearchResult, since time.Time) error {
	var recent []int64
	for _, f := range result.Families {
		for _, m := range f.Members {
			if m.RecentlyCheckedIn {
				recent = append(recent, m.Person.ID)
			}
		}
	}
	if len(recent) == 0 {
		return nil
	}

	attendances, err := s.loader.LoadRecentAttendances(ctx, recent, since)
	if err != nil {
		return err
	}
	for fi := range result.Families {
		members := result.Families[fi].Members
		for mi := range members {
			// oldest first, so the last one is the latest
			if list := attendances[members[mi].Person.ID]; len(list) > 0 {
				start := list[len(list)-1].StartAt
				members[mi].LastAttendedAt = &start
			}
		}
	}
	return nil
}

// normalizeTerm upper-cases the term and decides whether it is a phone number
// (digits plus common separators), a security code, or could be either.
func (s *Service) normalizeTerm(raw string) (searchTerm, error) {
	term := cases.Upper(language.Und).String(strings.TrimSpace(raw))
	if term == "" {
		return searchTerm{}, dErrors.New(dErrors.CodeValidation, "search term is required")
	}

	var out searchTerm
	if digits, ok := phoneDigits(term); ok && len(digits) >= s.minPhoneDigits {
		out.phone = digits
	}
	if len(term) == s.codeLength && strings.Trim(term, s.codeAlphabet) == "" {
		out.code = term
	}
	if out.phone == "" && out.code == "" {
		return searchTerm{}, dErrors.New(dErrors.CodeValidation, "search term must be a phone number or security code")
	}
	return out, nil
}

// phoneDigits strips separators from a term made only of digits and
// separators. It reports false when any other character is present.
func phoneDigits(term string) (string, bool) {
	var b strings.Builder
	for _, r := range term {
		switch {
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
		case strings.ContainsRune(" -().+", r):
		default:
			return "", false
		}
	}
	return b.String(), b.Len() > 0
}

// throttleKey scopes the search budget to the kiosk, or to the caller when
// the request carries no kiosk id.
func throttleKey(ctx context.Context) string {
	if id := requestcontext.DeviceInfo(ctx).ID; id != "" {
		return "device:" + id
	}
	return "caller:" + requestcontext.Principal(ctx).ID()
}
