// Package planner loads a snapshot from storage, runs the scheduler over it
// and stores the result as a new plan revision.
package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/termplan/internal/logger"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/scheduler"
	"github.com/julianstephens/termplan/internal/storage"
	"github.com/julianstephens/termplan/internal/utils"
)

type Service struct {
	Store storage.Provider
	Now   func() time.Time

	// BeforeSave runs ahead of persisting a run, e.g. an automatic backup.
	BeforeSave func()
}

func New(store storage.Provider) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Request describes one planning pass.
type Request struct {
	// Day is the first planning day; zero means today.
	Day       time.Time
	Mutations []scheduler.Mutation
	DryRun    bool
	// Source names the caller in logs, e.g. "cli" or "tui".
	Source string
}

// Outcome is a finished pass. Run carries the stored revision unless DryRun.
type Outcome struct {
	Run      models.PlanRun
	Result   scheduler.Result
	Tasks    []models.Task
	Events   []models.Event
	Config   scheduler.Config
	Location *time.Location
	Saved    bool
}

// Snapshot is the stored state a pass plans over.
type Snapshot struct {
	Settings models.Settings
	Config   scheduler.Config
	Location *time.Location
	Tasks    []models.Task
	Events   []models.Event
	Energy   models.EnergyProfile
	Prior    models.PlanRun
	HasPrior bool
}

// LoadSnapshot reads settings, tasks, events, energy profile and the latest
// run for a planning window starting at today.
func (s *Service) LoadSnapshot(today time.Time) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Settings, err = s.Store.GetSettings(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to get settings: %w", err)
	}
	snap.Config = scheduler.ConfigFromSettings(snap.Settings)
	if snap.Location, err = utils.LocationFromSettings(snap.Settings); err != nil {
		return Snapshot{}, err
	}
	if snap.Tasks, err = s.Store.GetAllTasks(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to get tasks: %w", err)
	}

	if !today.IsZero() {
		from := utils.StartOfDay(today.In(snap.Location))
		to := from.AddDate(0, 0, snap.Config.DiscoveryDays()+1)
		if snap.Events, err = s.Store.GetEventsInRange(from, to); err != nil {
			return Snapshot{}, fmt.Errorf("failed to get events: %w", err)
		}
	}

	if snap.Energy, err = s.Store.GetEnergyProfile(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to get energy profile: %w", err)
	}

	prior, err := s.Store.GetLatestPlanRun()
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return Snapshot{}, fmt.Errorf("failed to get latest plan: %w", err)
	default:
		snap.Prior = prior.In(snap.Location)
		snap.HasPrior = true
	}
	return snap, nil
}

// Today returns midnight of the current day in the configured timezone.
func (s *Service) Today() (time.Time, error) {
	settings, err := s.Store.GetSettings()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := utils.LocationFromSettings(settings)
	if err != nil {
		return time.Time{}, err
	}
	return utils.StartOfDay(s.now().In(loc)), nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Generate runs one pass and, unless DryRun, saves it as the next revision.
// Planning today never places work before the current time.
func (s *Service) Generate(req Request) (Outcome, error) {
	now := s.now()
	day := req.Day
	if day.IsZero() {
		day = now
	}

	snap, err := s.LoadSnapshot(day)
	if err != nil {
		return Outcome{}, err
	}
	today := utils.StartOfDay(day.In(snap.Location))

	in := scheduler.Input{
		Today:     today,
		Tasks:     snap.Tasks,
		Events:    snap.Events,
		Mutations: req.Mutations,
		Energy:    snap.Energy,
	}
	if utils.StartOfDay(now.In(snap.Location)).Equal(today) {
		in.NotBefore = now.In(snap.Location)
	}
	if snap.HasPrior {
		for _, b := range snap.Prior.Blocks {
			if b.End.After(today) {
				in.PriorBlocks = append(in.PriorBlocks, b)
			}
		}
	}

	res, err := scheduler.NewRunner(snap.Config).Run(in)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Run:      res.PlanRun(today, now),
		Result:   res,
		Tasks:    snap.Tasks,
		Events:   snap.Events,
		Config:   snap.Config,
		Location: snap.Location,
	}
	logger.RunSummary(req.Source, len(res.Blocks), len(res.Overflow), CountDecisions(res.Log, models.DecisionSkipped), len(res.Rejections))

	if req.DryRun {
		return out, nil
	}
	if s.BeforeSave != nil {
		s.BeforeSave()
	}
	saved, err := s.Store.SavePlanRun(out.Run)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to save plan: %w", err)
	}
	out.Run = saved.In(snap.Location)
	out.Saved = true
	logger.Info("plan saved", "revision", saved.Revision, "today", saved.Today)
	return out, nil
}

// CountDecisions counts log entries with decision d.
func CountDecisions(log []models.LogEntry, d models.Decision) int {
	n := 0
	for _, e := range log {
		if e.Decision == d {
			n++
		}
	}
	return n
}
