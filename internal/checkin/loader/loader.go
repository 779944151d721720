// Package loader fetches the people, aliases and attendance a kiosk screen
// needs in a fixed number of queries, however many persons or families are asked for.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"checkin/internal/checkin/models"
	"checkin/pkg/platform/dedupe"
	"checkin/pkg/requestcontext"
)

// Queries are the batched reads the loader composes. Each call is one query.
type Queries interface {
	PersonsWithPrimaryAlias(ctx context.Context, personIDs []int64) ([]models.PersonWithAlias, error)
	AliasesForPersons(ctx context.Context, personIDs []int64) ([]models.PersonAlias, error)
	AttendancesForAliasesSince(ctx context.Context, aliasIDs []int64, since time.Time) ([]models.Attendance, error)
	FamilyMembers(ctx context.Context, familyIDs []int64) ([]models.FamilyMemberRow, error)
	PersonIDsCheckedInSince(ctx context.Context, personIDs []int64, since time.Time) ([]int64, error)
}

// Loader batches kiosk reads.
type Loader struct {
	queries Queries
	logger  *slog.Logger
}

type Option func(*Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func New(queries Queries, opts ...Option) (*Loader, error) {
	if queries == nil {
		return nil, errors.New("queries are required")
	}
	l := &Loader{queries: queries, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// LoadPersonsWithPrimaryAlias returns the requested persons keyed by id in
// one query. A person without a primary alias is logged and left out.
func (l *Loader) LoadPersonsWithPrimaryAlias(ctx context.Context, personIDs []int64) (map[int64]models.PersonWithAlias, error) {
	ids := dedupe.IDs(personIDs)
	out := make(map[int64]models.PersonWithAlias, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	persons, err := l.queries.PersonsWithPrimaryAlias(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load persons: %w", err)
	}
	for _, p := range persons {
		if p.PrimaryAliasID == 0 {
			l.integrityWarning(ctx, "person has no primary alias", "person_id", p.ID)
			continue
		}
		out[p.ID] = p
	}
	return out, nil
}

// LoadRecentAttendances returns, per person, the attendances starting at or
// after since, oldest first. It issues two queries: aliases, then attendances.
func (l *Loader) LoadRecentAttendances(ctx context.Context, personIDs []int64, since time.Time) (map[int64][]models.Attendance, error) {
	ids := dedupe.IDs(personIDs)
	out := make(map[int64][]models.Attendance, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	aliases, err := l.queries.AliasesForPersons(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	personByAlias := make(map[int64]int64, len(aliases))
	hasAlias := make(map[int64]bool, len(ids))
	aliasIDs := make([]int64, 0, len(aliases))
	for _, a := range aliases {
		personByAlias[a.ID] = a.PersonID
		hasAlias[a.PersonID] = true
		aliasIDs = append(aliasIDs, a.ID)
	}
	for _, id := range ids {
		if !hasAlias[id] {
			l.integrityWarning(ctx, "person has no alias", "person_id", id)
		}
	}
	if len(aliasIDs) == 0 {
		return out, nil
	}

	attendances, err := l.queries.AttendancesForAliasesSince(ctx, aliasIDs, since)
	if err != nil {
		return nil, fmt.Errorf("load attendances: %w", err)
	}
	for _, a := range attendances {
		personID, ok := personByAlias[a.PersonAliasID]
		if !ok {
			continue
		}
		a.PersonID = personID
		out[personID] = append(out[personID], a)
	}
	return out, nil
}

// LoadFamilyData returns each family with its members, their primary aliases
// and whether they checked in since the cutoff. The member query runs first;
// the alias and recent check-in queries then run concurrently.
func (l *Loader) LoadFamilyData(ctx context.Context, familyIDs []int64, since time.Time) (map[int64]models.FamilyData, error) {
	ids := dedupe.IDs(familyIDs)
	out := make(map[int64]models.FamilyData, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := l.queries.FamilyMembers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load family members: %w", err)
	}

	var memberIDs []int64
	for _, row := range rows {
		if row.Person.ID != 0 {
			memberIDs = append(memberIDs, row.Person.ID)
		}
	}
	memberIDs = dedupe.IDs(memberIDs)

	var (
		aliases []models.PersonAlias
		recent  []int64
	)
	if len(memberIDs) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			aliases, err = l.queries.AliasesForPersons(gctx, memberIDs)
			if err != nil {
				return fmt.Errorf("load member aliases: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			recent, err = l.queries.PersonIDsCheckedInSince(gctx, memberIDs, since)
			if err != nil {
				return fmt.Errorf("load recent check-ins: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	primary := make(map[int64]int64, len(aliases))
	for _, a := range aliases {
		if a.IsPrimary {
			primary[a.PersonID] = a.ID
		}
	}
	checkedIn := make(map[int64]bool, len(recent))
	for _, id := range recent {
		checkedIn[id] = true
	}

	for _, row := range rows {
		family, ok := out[row.Family.ID]
		if !ok {
			family = models.FamilyData{Family: row.Family}
		}
		if row.Person.ID != 0 {
			aliasID, hasAlias := primary[row.Person.ID]
			if !hasAlias {
				l.integrityWarning(ctx, "family member has no primary alias",
					"family_id", row.Family.ID,
					"person_id", row.Person.ID,
				)
			}
			family.Members = append(family.Members, models.FamilyMember{
				Person:            row.Person,
				Role:              row.Role,
				PrimaryAliasID:    aliasID,
				RecentlyCheckedIn: checkedIn[row.Person.ID],
			})
		}
		out[row.Family.ID] = family
	}
	return out, nil
}

func (l *Loader) integrityWarning(ctx context.Context, msg string, attrs ...any) {
	args := append([]any{
		"event", "data_integrity_warning",
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	l.logger.WarnContext(ctx, msg, args...)
}
