// Package routine holds the routine collection and the progress arithmetic
// derived from it.
package routine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"routinetracker/internal/model"
)

// Store is an ordered in-memory collection of routines. Routines keep their
// insertion order, which is creation order after a load.
type Store struct {
	mode     Mode
	mu       sync.RWMutex
	routines []model.Routine
	newID    func() string
	now      func() time.Time
}

type Option func(*Store)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

func NewStore(mode Mode, opts ...Option) *Store {
	s := &Store{
		mode:  mode,
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Mode() Mode {
	return s.mode
}

// Add appends a routine with fresh completion state. The store is left
// unchanged when content is blank or, in scheduled modes, no day is given.
func (s *Store) Add(content string, category model.Category, days []model.Weekday) (model.Routine, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Routine{}, ErrEmptyContent
	}
	if category == "" {
		category = model.DefaultCategory
	}

	var set model.DaySet
	if s.mode.Scheduled() {
		var err error
		if set, err = s.daySet(days); err != nil {
			return model.Routine{}, err
		}
	}

	r := model.Routine{
		ID:        s.newID(),
		Content:   content,
		Category:  category,
		Days:      set,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.routines = append(s.routines, r)
	s.mu.Unlock()
	return r, nil
}

// Remove deletes the routine and reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.routines = append(s.routines[:i], s.routines[i+1:]...)
	return true
}

// Rename replaces the content. changed is false when the trimmed content is
// blank or equal to the current one.
func (s *Store) Rename(id, content string) (r model.Routine, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Routine{}, false, ErrNotFound
	}
	content = strings.TrimSpace(content)
	if content == "" || content == s.routines[i].Content {
		return s.routines[i], false, nil
	}
	s.routines[i].Content = content
	return s.routines[i], true, nil
}

// Toggle flips completion. In per-day mode it flips day in the routine's
// completed days; otherwise day is ignored.
func (s *Store) Toggle(id string, day model.Weekday) (model.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Routine{}, ErrNotFound
	}
	r := &s.routines[i]
	if s.mode != ModePerDay {
		r.Completed = !r.Completed
		return *r, nil
	}
	if !day.Valid() {
		return model.Routine{}, ErrInvalidDay
	}
	if !r.Days.Has(day) {
		return model.Routine{}, ErrDayNotScheduled
	}
	r.CompletedDays = r.CompletedDays.Toggle(day)
	r.Completed = r.CompletedDays == r.Days
	return *r, nil
}

// SetDays reassigns weekdays. Completion recorded for dropped days is lost.
func (s *Store) SetDays(id string, days []model.Weekday) (r model.Routine, changed bool, err error) {
	if days == nil {
		days = []model.Weekday{}
	}
	return s.Update(id, nil, days)
}

// Update renames and reassigns days in one step. A nil content or nil days
// leaves that field alone. Everything is validated before anything changes,
// so a rejected update leaves the routine as it was.
func (s *Store) Update(id string, content *string, days []model.Weekday) (r model.Routine, changed bool, err error) {
	var set model.DaySet
	if days != nil {
		if !s.mode.Scheduled() {
			return model.Routine{}, false, fmt.Errorf("%w: %s mode", ErrDaysNotUsed, s.mode)
		}
		if set, err = s.daySet(days); err != nil {
			return model.Routine{}, false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Routine{}, false, ErrNotFound
	}
	cur := &s.routines[i]
	if content != nil {
		if c := strings.TrimSpace(*content); c != "" && c != cur.Content {
			cur.Content = c
			changed = true
		}
	}
	if days != nil && cur.Days != set {
		cur.Days = set
		if s.mode == ModePerDay {
			cur.CompletedDays = cur.CompletedDays.Intersect(set)
			cur.Completed = cur.CompletedDays == cur.Days
		}
		changed = true
	}
	return *cur, changed, nil
}

func (s *Store) daySet(days []model.Weekday) (model.DaySet, error) {
	set, err := model.NewDaySet(days...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}
	if set.Empty() {
		return 0, ErrNoDays
	}
	return set, nil
}

func (s *Store) Get(id string) (model.Routine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Routine{}, false
	}
	return s.routines[i], true
}

// List returns a copy of all routines in order.
func (s *Store) List() []model.Routine {
	return s.Snapshot()
}

// ForDay returns the routines scheduled on day.
func (s *Store) ForDay(day model.Weekday) []model.Routine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Routine
	for _, r := range s.routines {
		if s.scheduledOn(r, day) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.routines)
}

// Snapshot copies the current state.
func (s *Store) Snapshot() []model.Routine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Routine, len(s.routines))
	copy(out, s.routines)
	return out
}

// Replace swaps the whole state, as on a load or a rollback.
func (s *Store) Replace(routines []model.Routine) {
	cp := make([]model.Routine, len(routines))
	copy(cp, routines)
	if s.mode == ModePerDay {
		for i := range cp {
			cp[i].CompletedDays = cp[i].CompletedDays.Intersect(cp[i].Days)
			cp[i].Completed = cp[i].CompletedDays == cp[i].Days
		}
	}

	s.mu.Lock()
	s.routines = cp
	s.mu.Unlock()
}

// DoneOn reports whether r counts as completed for day.
func (s *Store) DoneOn(r model.Routine, day model.Weekday) bool {
	if s.mode == ModePerDay {
		return r.CompletedDays.Has(day)
	}
	return r.Completed
}

func (s *Store) scheduledOn(r model.Routine, day model.Weekday) bool {
	if !day.Valid() {
		return false
	}
	if !s.mode.Scheduled() {
		return true
	}
	return r.Days.Has(day)
}

func (s *Store) indexOf(id string) int {
	for i := range s.routines {
		if s.routines[i].ID == id {
			return i
		}
	}
	return -1
}
