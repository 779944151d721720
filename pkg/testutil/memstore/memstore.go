// Package memstore is an in-memory attendance store for unit tests. It
// enforces the same uniqueness the SQL schema does, so coordinator races
// behave as they would against a database.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"checkin/internal/checkin/models"
	"checkin/internal/checkin/store"
	"checkin/pkg/platform/sentinel"
)

type occurrenceIndex struct {
	groupID    int64
	scheduleID int64
	date       models.Date
}

type codeIndex struct {
	issueDate models.Date
	code      string
}

// Store keeps occurrences, codes and attendances in maps guarded by a mutex.
type Store struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	nextID      int64
	occurrences map[int64]models.Occurrence
	occByKey    map[occurrenceIndex]int64
	codes       map[int64]models.AttendanceCode
	codeByKey   map[codeIndex]int64
	attendances map[int64]models.Attendance
	aliases     map[int64]int64
}

func New() *Store {
	return &Store{
		occurrences: make(map[int64]models.Occurrence),
		occByKey:    make(map[occurrenceIndex]int64),
		codes:       make(map[int64]models.AttendanceCode),
		codeByKey:   make(map[codeIndex]int64),
		attendances: make(map[int64]models.Attendance),
		aliases:     make(map[int64]int64),
	}
}

// PutAlias registers aliasID as an alias of personID.
func (m *Store) PutAlias(aliasID, personID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[aliasID] = personID
}

func (m *Store) id() int64 {
	m.nextID++
	return m.nextID
}

func occurrenceKeyOf(groupID int64, scheduleID *int64, date models.Date) occurrenceIndex {
	idx := occurrenceIndex{groupID: groupID, date: date}
	if scheduleID != nil {
		idx.scheduleID = *scheduleID
	}
	return idx
}

func (m *Store) InsertOccurrence(ctx context.Context, occ *models.Occurrence) (*models.Occurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := occurrenceKeyOf(occ.GroupID, occ.ScheduleID, occ.OccurrenceDate)
	if _, ok := m.occByKey[key]; ok {
		return nil, fmt.Errorf("insert occurrence: %w", sentinel.ErrConflict)
	}
	created := *occ
	created.ID = m.id()
	m.occurrences[created.ID] = created
	m.occByKey[key] = created.ID
	return &created, nil
}

func (m *Store) FindOccurrence(ctx context.Context, key models.OccurrenceKey) (*models.Occurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.occByKey[occurrenceKeyOf(key.GroupID, key.ScheduleID, key.Date)]
	if !ok {
		return nil, fmt.Errorf("find occurrence: %w", sentinel.ErrNotFound)
	}
	occ := m.occurrences[id]
	return &occ, nil
}

func (m *Store) GetOccurrence(_ context.Context, id int64) (*models.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	occ, ok := m.occurrences[id]
	if !ok {
		return nil, fmt.Errorf("find occurrence: %w", sentinel.ErrNotFound)
	}
	return &occ, nil
}

func (m *Store) MarkDidNotOccur(_ context.Context, id int64) (*models.Occurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	occ, ok := m.occurrences[id]
	if !ok {
		return nil, fmt.Errorf("mark did not occur: %w", sentinel.ErrNotFound)
	}
	occ.DidNotOccur = true
	m.occurrences[id] = occ
	return &occ, nil
}

func (m *Store) InsertCode(ctx context.Context, code *models.AttendanceCode) (*models.AttendanceCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := codeIndex{issueDate: code.IssueDate, code: code.Code}
	if _, ok := m.codeByKey[key]; ok {
		return nil, fmt.Errorf("insert attendance code: %w", sentinel.ErrConflict)
	}
	created := *code
	created.ID = m.id()
	m.codes[created.ID] = created
	m.codeByKey[key] = created.ID
	return &created, nil
}

func (m *Store) GetCode(_ context.Context, id int64) (*models.AttendanceCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, ok := m.codes[id]
	if !ok {
		return nil, fmt.Errorf("find attendance code: %w", sentinel.ErrNotFound)
	}
	return &code, nil
}

// RunInTx serializes fn against every other RunInTx call. Writes made by fn
// are not rolled back on error.
func (m *Store) RunInTx(ctx context.Context, fn func(store.TxStore) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

// LockOccurrence only checks existence; RunInTx already serializes.
func (m *Store) LockOccurrence(ctx context.Context, occurrenceID int64) error {
	_, err := m.GetOccurrence(ctx, occurrenceID)
	return err
}

func (m *Store) FindOpenAttendance(_ context.Context, occurrenceID, personAliasID int64) (*models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *models.Attendance
	for _, a := range m.attendances {
		if a.OccurrenceID != occurrenceID || a.PersonAliasID != personAliasID || !a.IsOpen() {
			continue
		}
		if found == nil || a.ID < found.ID {
			a := a
			found = &a
		}
	}
	if found == nil {
		return nil, fmt.Errorf("find open attendance: %w", sentinel.ErrNotFound)
	}
	return found, nil
}

func (m *Store) GetAttendance(_ context.Context, id int64) (*models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attendances[id]
	if !ok {
		return nil, fmt.Errorf("find attendance: %w", sentinel.ErrNotFound)
	}
	return &a, nil
}

func (m *Store) InsertAttendance(ctx context.Context, a *models.Attendance) (*models.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.occurrences[a.OccurrenceID]; !ok {
		return nil, fmt.Errorf("insert attendance: occurrence %d: %w", a.OccurrenceID, sentinel.ErrNotFound)
	}
	created := *a
	created.ID = m.id()
	created.StartAt = a.StartAt.UTC()
	created.PersonID = m.aliases[a.PersonAliasID]
	m.attendances[created.ID] = created
	return &created, nil
}

func (m *Store) CheckoutAttendance(_ context.Context, id int64, endAt time.Time) (*models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attendances[id]
	if !ok {
		return nil, fmt.Errorf("find attendance: %w", sentinel.ErrNotFound)
	}
	if !a.IsOpen() {
		return &a, fmt.Errorf("checkout attendance %d: %w", id, sentinel.ErrInvalidState)
	}
	end := endAt.UTC()
	a.EndAt = &end
	m.attendances[id] = a
	return &a, nil
}

// Counts reports how many occurrences, codes and attendances are stored.
func (m *Store) Counts() (occurrences, codes, attendances int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.occurrences), len(m.codes), len(m.attendances)
}

var _ store.TxStore = (*Store)(nil)
