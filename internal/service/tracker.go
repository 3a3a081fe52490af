package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"routinetracker/internal/model"
	"routinetracker/internal/routine"
	"routinetracker/pkg/logger"
	"routinetracker/pkg/metrics"
	"routinetracker/pkg/mq"
	"routinetracker/pkg/trace"
)

// ErrSync wraps every datastore failure of a mutation. The local change has
// already been rolled back when it is returned.
var ErrSync = errors.New("datastore sync failed")

// RoutineRemote mirrors the routine table.
type RoutineRemote interface {
	ListAll(ctx context.Context) ([]model.Routine, error)
	Insert(ctx context.Context, r model.Routine) error
	Update(ctx context.Context, r model.Routine) error
	Delete(ctx context.Context, id string) error
}

// ProfileRemote stores the theme of one profile row.
type ProfileRemote interface {
	GetTheme(ctx context.Context, profileID string) (model.Theme, bool, error)
	SetTheme(ctx context.Context, profileID string, theme model.Theme) error
}

// EventPublisher publishes activity events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Tracker applies user actions to the routine store and mirrors each one to
// the datastore with a single write. A failed write restores the local state
// that preceded the action.
type Tracker struct {
	store     *routine.Store
	routines  RoutineRemote
	profiles  ProfileRemote
	publisher EventPublisher
	profileID string
	logger    *zap.Logger

	// mu serializes actions so apply, write and rollback are not interleaved.
	mu    sync.Mutex
	theme model.Theme
}

type TrackerOption func(*Tracker)

// WithRemote enables datastore mirroring. Either argument may be nil.
func WithRemote(routines RoutineRemote, profiles ProfileRemote) TrackerOption {
	return func(t *Tracker) {
		t.routines = routines
		t.profiles = profiles
	}
}

func WithPublisher(p EventPublisher) TrackerOption {
	return func(t *Tracker) { t.publisher = p }
}

func WithProfileID(id string) TrackerOption {
	return func(t *Tracker) { t.profileID = id }
}

func NewTracker(store *routine.Store, logger *zap.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:     store,
		logger:    logger,
		profileID: "default",
		theme:     model.DefaultTheme,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Mode() routine.Mode {
	return t.store.Mode()
}

// Load replaces local state with the datastore contents.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := logger.WithTrace(ctx, t.logger)

	if t.profiles != nil {
		var (
			theme model.Theme
			found bool
		)
		err := t.call(ctx, "get_theme", func(ctx context.Context) error {
			var err error
			theme, found, err = t.profiles.GetTheme(ctx, t.profileID)
			return err
		})
		if err != nil {
			log.Error("Failed to load profile theme", zap.String("profile_id", t.profileID), zap.Error(err))
			return fmt.Errorf("%w: load theme: %v", ErrSync, err)
		}
		if found {
			if parsed, err := model.ParseTheme(string(theme)); err == nil {
				t.theme = parsed
			} else {
				log.Warn("Ignoring unknown stored theme", zap.String("theme", string(theme)))
			}
		}
	}

	if t.routines != nil {
		var routines []model.Routine
		err := t.call(ctx, "list_routines", func(ctx context.Context) error {
			var err error
			routines, err = t.routines.ListAll(ctx)
			return err
		})
		if err != nil {
			log.Error("Failed to load routines", zap.Error(err))
			return fmt.Errorf("%w: load routines: %v", ErrSync, err)
		}
		t.store.Replace(routines)
	}

	t.refreshProgress()
	log.Info("Tracker state loaded",
		zap.Int("routines", t.store.Len()),
		zap.String("theme", string(t.theme)),
	)
	return nil
}

// Add creates a routine. Validation failures leave everything unchanged.
func (t *Tracker) Add(ctx context.Context, content string, category model.Category, days []model.Weekday) (model.Routine, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.store.Snapshot()
	r, err := t.store.Add(content, category, days)
	if err != nil {
		metrics.IncrementRoutineMutation("add", "rejected")
		return model.Routine{}, err
	}

	if err := t.write(ctx, "insert_routine", snapshot, func(ctx context.Context) error {
		if t.routines == nil {
			return nil
		}
		return t.routines.Insert(ctx, r)
	}); err != nil {
		return model.Routine{}, err
	}

	t.applied(ctx, "add", mq.RoutingKeyRoutineCreated, r)
	return r, nil
}

// Remove deletes a routine. removed is false, and nothing is written, when
// the id is unknown.
func (t *Tracker) Remove(ctx context.Context, id string) (removed bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.store.Snapshot()
	if !t.store.Remove(id) {
		metrics.IncrementRoutineMutation("remove", "noop")
		return false, nil
	}

	if err := t.write(ctx, "delete_routine", snapshot, func(ctx context.Context) error {
		if t.routines == nil {
			return nil
		}
		return t.routines.Delete(ctx, id)
	}); err != nil {
		return false, err
	}

	t.applied(ctx, "remove", mq.RoutingKeyRoutineDeleted, map[string]string{"id": id})
	return true, nil
}

// Rename changes the content. changed is false, and nothing is written, when
// the new content is blank or equal to the current one.
func (t *Tracker) Rename(ctx context.Context, id, content string) (model.Routine, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.store.Snapshot()
	r, changed, err := t.store.Rename(id, content)
	if err != nil {
		metrics.IncrementRoutineMutation("rename", "rejected")
		return model.Routine{}, false, err
	}
	if !changed {
		metrics.IncrementRoutineMutation("rename", "noop")
		return r, false, nil
	}

	if err := t.update(ctx, snapshot, r); err != nil {
		return model.Routine{}, false, err
	}
	t.applied(ctx, "rename", mq.RoutingKeyRoutineUpdated, r)
	return r, true, nil
}

// SetDays reassigns the weekdays of a routine.
func (t *Tracker) SetDays(ctx context.Context, id string, days []model.Weekday) (model.Routine, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.store.Snapshot()
	r, changed, err := t.store.SetDays(id, days)
	if err != nil {
		metrics.IncrementRoutineMutation("set_days", "rejected")
		return model.Routine{}, false, err
	}
	if !changed {
		metrics.IncrementRoutineMutation("set_days", "noop")
		return r, false, nil
	}

	if err := t.update(ctx, snapshot, r); err != nil {
		return model.Routine{}, false, err
	}
	t.applied(ctx, "set_days", mq.RoutingKeyRoutineUpdated, r)
	return r, true, nil
}

// Update applies a content change and a day reassignment as one action with
// one datastore write. nil leaves the field alone.
func (t *Tracker) Update(ctx context.Context, id string, content *string, days []model.Weekday) (model.Routine, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.store.Snapshot()
	r, changed, err := t.store.Update(id, content, days)
	if err != nil {
		metrics.IncrementRoutineMutation("update", "rejected")
		return model.Routine{}, false, err
	}
	if !changed {
		metrics.IncrementRoutineMutation("update", "noop")
		return r, false, nil
	}

	if err := t.update(ctx, snapshot, r); err != nil {
		return model.Routine{}, false, err
	}
	t.applied(ctx, "update", mq.RoutingKeyRoutineUpdated, r)
	return r, true, nil
}

// Toggle flips completion of a routine, for day in per-day mode.
func (t *Tracker) Toggle(ctx context.Context, id string, day model.Weekday) (model.Routine, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.store.Snapshot()
	r, err := t.store.Toggle(id, day)
	if err != nil {
		metrics.IncrementRoutineMutation("toggle", "rejected")
		return model.Routine{}, err
	}

	if err := t.update(ctx, snapshot, r); err != nil {
		return model.Routine{}, err
	}
	t.applied(ctx, "toggle", mq.RoutingKeyRoutineToggled, toggledEvent{Routine: r, Day: day})
	return r, nil
}

type toggledEvent struct {
	Routine model.Routine `json:"routine"`
	Day     model.Weekday `json:"day"`
}

func (t *Tracker) Theme() model.Theme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

// SetTheme stores the theme on the configured profile. The previous theme is
// kept when the write fails.
func (t *Tracker) SetTheme(ctx context.Context, theme model.Theme) (model.Theme, error) {
	parsed, err := model.ParseTheme(string(theme))
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if parsed == t.theme {
		return parsed, nil
	}
	if t.profiles != nil {
		err := t.call(ctx, "set_theme", func(ctx context.Context) error {
			return t.profiles.SetTheme(ctx, t.profileID, parsed)
		})
		if err != nil {
			logger.WithTrace(ctx, t.logger).Error("Failed to save theme, keeping previous",
				zap.String("profile_id", t.profileID),
				zap.String("theme", string(parsed)),
				zap.String("previous", string(t.theme)),
				zap.Error(err),
			)
			return t.theme, fmt.Errorf("%w: set theme: %v", ErrSync, err)
		}
	}
	t.theme = parsed
	t.publish(ctx, mq.RoutingKeyProfileThemeChanged, model.Profile{ID: t.profileID, CurrentTheme: parsed})
	return parsed, nil
}

func (t *Tracker) List() []model.Routine {
	return t.store.List()
}

func (t *Tracker) Get(id string) (model.Routine, bool) {
	return t.store.Get(id)
}

func (t *Tracker) ForDay(day model.Weekday) []model.Routine {
	return t.store.ForDay(day)
}

func (t *Tracker) DayProgress(day model.Weekday) routine.DayProgress {
	return t.store.DayProgress(day)
}

func (t *Tracker) WeekProgress() routine.WeekProgress {
	return t.store.WeekProgress()
}

func (t *Tracker) update(ctx context.Context, snapshot []model.Routine, r model.Routine) error {
	return t.write(ctx, "update_routine", snapshot, func(ctx context.Context) error {
		if t.routines == nil {
			return nil
		}
		return t.routines.Update(ctx, r)
	})
}

// write runs one datastore write and restores snapshot when it fails.
func (t *Tracker) write(ctx context.Context, operation string, snapshot []model.Routine, fn func(context.Context) error) error {
	err := t.call(ctx, operation, fn)
	if err == nil {
		return nil
	}

	t.store.Replace(snapshot)
	metrics.IncrementRoutineMutation(operation, "rolled_back")
	logger.WithTrace(ctx, t.logger).Error("Datastore write failed, local change rolled back",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", ErrSync, operation, err)
}

func (t *Tracker) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	metrics.RecordDatastoreCall(operation, err, time.Since(start))
	return err
}

func (t *Tracker) applied(ctx context.Context, operation, routingKey string, payload any) {
	metrics.IncrementRoutineMutation(operation, "applied")
	t.refreshProgress()
	t.publish(ctx, routingKey, payload)
}

func (t *Tracker) refreshProgress() {
	metrics.SetWeekProgress(t.store.WeekProgress().Average)
}

// publish is best effort; failures are logged only.
func (t *Tracker) publish(ctx context.Context, routingKey string, payload any) {
	if t.publisher == nil {
		return
	}
	event := mq.Event{
		Type:       routingKey,
		TraceID:    trace.FromContext(ctx),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	if err := t.publisher.Publish(ctx, routingKey, event); err != nil {
		logger.WithTrace(ctx, t.logger).Warn("Failed to publish activity event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
