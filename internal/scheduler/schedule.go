package scheduler

import "fmt"

// Status is the lifecycle state of a persisted schedule.
type Status string

const (
	// StatusRunning means the schedule is installed and firing.
	StatusRunning Status = "RUNNING"
	// StatusStopped means the schedule is persisted but not firing.
	StatusStopped Status = "STOPPED"
	// StatusEnded means the schedule's definition was removed and the
	// schedule is retired.
	StatusEnded Status = "ENDED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusStopped, StatusEnded:
		return true
	}
	return false
}

// Definition declares a schedule: a name, a cron expression, and the
// environment the scheduled run should carry. Cron expressions are passed
// through to the backing scheduler verbatim and are not parsed here.
type Definition struct {
	Name            string            `json:"name"`
	CronSchedule    string            `json:"cron_schedule"`
	PipelinePath    string            `json:"pipeline_path"`
	EnvironmentVars map[string]string `json:"environment_vars,omitempty"`
}

// Schedule is a Definition paired with its persisted status.
type Schedule struct {
	Definition Definition `json:"definition"`
	Status     Status     `json:"status"`
}

// Name returns the schedule's name, the primary key in storage.
func (s Schedule) Name() string { return s.Definition.Name }

// CronSchedule returns the schedule's cron expression.
func (s Schedule) CronSchedule() string { return s.Definition.CronSchedule }

// WithStatus returns a copy of the schedule with a new status.
func (s Schedule) WithStatus(status Status) Schedule {
	return Schedule{Definition: s.Definition, Status: status}
}

// Storage persists schedules keyed by name. Implementations must treat a
// schedule's name as unique.
type Storage interface {
	All() ([]Schedule, error)
	Get(name string) (Schedule, bool, error)
	Add(s Schedule) error
	Update(s Schedule) error
	Delete(name string) error
}

// ErrScheduleNotFound is returned by operations on a schedule name that is
// not present in storage.
type ErrScheduleNotFound struct {
	Name string
}

func (e *ErrScheduleNotFound) Error() string {
	return fmt.Sprintf("schedule '%s' not found", e.Name)
}
