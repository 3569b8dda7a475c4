package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/termplan/internal/models"
)

// ErrNotFound is returned when a requested row does not exist (or is soft-deleted).
var ErrNotFound = errors.New("not found")

// PlanRunSummary describes a stored run without loading its rows.
type PlanRunSummary struct {
	Revision  int
	Today     string
	CreatedAt string
	Blocks    int
	Overflow  int
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Tasks
	AddTask(models.Task) error
	GetTask(id string) (models.Task, error)
	GetAllTasks() ([]models.Task, error)
	GetAllTasksIncludingDeleted() ([]models.Task, error)
	UpdateTask(models.Task) error
	DeleteTask(id string) error
	RestoreTask(id string) error

	// Events
	AddEvent(models.Event) error
	GetEvent(id string) (models.Event, error)
	GetAllEvents() ([]models.Event, error)
	// GetEventsInRange returns events overlapping [from, to), ordered by start.
	GetEventsInRange(from, to time.Time) ([]models.Event, error)
	DeleteEvent(id string) error

	// Energy profile
	GetEnergyProfile() (models.EnergyProfile, error)
	SaveEnergyProfile(models.EnergyProfile) error

	// Plan runs
	// SavePlanRun stores run under the next revision and returns it with
	// Revision set. Any revision already on run is ignored.
	SavePlanRun(run models.PlanRun) (models.PlanRun, error)
	GetLatestPlanRun() (models.PlanRun, error)
	GetPlanRun(revision int) (models.PlanRun, error)
	ListPlanRuns() ([]PlanRunSummary, error)

	// Utils
	GetConfigPath() string
}
