package scheduler

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/zkan/dagster/internal/ctxlog"
)

// Scheduler installs and removes the external artifacts behind a schedule,
// such as cron entries. Implementations update Storage to reflect the
// resulting status.
type Scheduler interface {
	// StartSchedule resumes a stopped schedule.
	StartSchedule(ctx context.Context, storage Storage, name string) (Schedule, error)
	// StopSchedule pauses a running schedule without deleting it.
	StopSchedule(ctx context.Context, storage Storage, name string) (Schedule, error)
	// EndSchedule retires a schedule and removes it from storage.
	EndSchedule(ctx context.Context, storage Storage, name string) (Schedule, error)
}

// Handle holds the declared schedule definitions and reconciles them
// against storage. The definitions are the source of truth: storage is
// brought in line with them, never the other way around.
type Handle struct {
	defs []Definition
}

// NewHandle validates that definition names are unique and returns a handle
// over them.
func NewHandle(defs []Definition) (*Handle, error) {
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("schedule definition with empty name")
		}
		if _, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("duplicate schedule definition '%s'", def.Name)
		}
		seen[def.Name] = struct{}{}
	}
	return &Handle{defs: defs}, nil
}

// Definitions returns all declared schedule definitions.
func (h *Handle) Definitions() []Definition { return h.defs }

// DefinitionByName returns the declared definition with the given name.
func (h *Handle) DefinitionByName(name string) (Definition, bool) {
	for _, def := range h.defs {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// ChangeSet reports what Up would do against the given storage without
// performing it.
func (h *Handle) ChangeSet(storage Storage) ([]Change, error) {
	stored, err := storage.All()
	if err != nil {
		return nil, fmt.Errorf("listing stored schedules: %w", err)
	}
	return ComputeChangeSet(stored, h.defs), nil
}

// Up reconciles storage with the declared definitions.
//
// A definition with no stored schedule is added with status stopped. A
// definition that already has a stored schedule keeps its status but has its
// definition data replaced; if it was running, it is stopped and started
// again so the external artifacts pick up the new definition. A stored
// schedule whose definition is gone is ended.
func (h *Handle) Up(ctx context.Context, scheduler Scheduler, storage Storage) error {
	logger := ctxlog.FromContext(ctx)
	var errs *multierror.Error

	var toRestart []Schedule
	for _, def := range h.defs {
		existing, found, err := storage.Get(def.Name)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("reading schedule '%s': %w", def.Name, err))
			continue
		}
		if found {
			updated := Schedule{Definition: def, Status: existing.Status}
			if err := storage.Update(updated); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("updating schedule '%s': %w", def.Name, err))
				continue
			}
			toRestart = append(toRestart, updated)
		} else {
			logger.Info("Adding new schedule.", "schedule", def.Name, "cron", def.CronSchedule)
			if err := storage.Add(Schedule{Definition: def, Status: StatusStopped}); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("adding schedule '%s': %w", def.Name, err))
			}
		}
	}

	for _, sched := range toRestart {
		if sched.Status != StatusRunning {
			continue
		}
		logger.Info("Restarting schedule to pick up definition changes.", "schedule", sched.Name())
		if _, err := scheduler.StopSchedule(ctx, storage, sched.Name()); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("stopping schedule '%s': %w", sched.Name(), err))
			continue
		}
		if _, err := scheduler.StartSchedule(ctx, storage, sched.Name()); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("starting schedule '%s': %w", sched.Name(), err))
		}
	}

	stored, err := storage.All()
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("listing stored schedules: %w", err))
		return errs.ErrorOrNil()
	}
	declared := make(map[string]struct{}, len(h.defs))
	for _, def := range h.defs {
		declared[def.Name] = struct{}{}
	}
	for _, sched := range stored {
		if _, keep := declared[sched.Name()]; keep {
			continue
		}
		logger.Info("Ending schedule with removed definition.", "schedule", sched.Name())
		if _, err := scheduler.EndSchedule(ctx, storage, sched.Name()); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("ending schedule '%s': %w", sched.Name(), err))
		}
	}

	return errs.ErrorOrNil()
}
