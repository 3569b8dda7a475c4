package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/termplan/internal/backup"
	"github.com/julianstephens/termplan/internal/logger"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/planner"
	"github.com/julianstephens/termplan/internal/storage"
	"github.com/julianstephens/termplan/internal/storage/sqlite"
	"github.com/julianstephens/termplan/internal/utils"
)

type Context struct {
	Store storage.Provider

	// Now and In are replaced in tests.
	Now func() time.Time
	In  io.Reader
}

// Clock returns the current time.
func (c *Context) Clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors.
// Only SQLite stores are backed up; PostgreSQL has its own tooling.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Planner returns a planning service that backs up before each save.
func (c *Context) Planner() *planner.Service {
	svc := planner.New(c.Store)
	svc.Now = c.Clock
	svc.BeforeSave = c.PerformAutomaticBackup
	return svc
}

// Settings loads the stored settings with their resolved timezone.
func (c *Context) Settings() (models.Settings, *time.Location, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, nil, fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := utils.LocationFromSettings(settings)
	if err != nil {
		return models.Settings{}, nil, err
	}
	return settings, loc, nil
}

// Location returns the configured timezone.
func (c *Context) Location() (*time.Location, error) {
	_, loc, err := c.Settings()
	return loc, err
}

// ParseDay resolves "today", "tomorrow" or YYYY-MM-DD in the configured timezone.
func (c *Context) ParseDay(s string) (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return utils.ParseDay(s, c.Clock(), loc)
}

// ParseDateTime parses "YYYY-MM-DD HH:MM" in the configured timezone.
func (c *Context) ParseDateTime(s string) (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return utils.ParseDateTime(s, loc)
}

// Confirm asks a yes/no question on stdout and reads the answer.
func (c *Context) Confirm(prompt string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	fmt.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// TaskTitles maps task IDs to titles, including deleted tasks so old runs still read well.
func (c *Context) TaskTitles() (map[string]string, error) {
	tasks, err := c.Store.GetAllTasksIncludingDeleted()
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}
	return titles, nil
}

// ResolveTask finds a task by full ID or by a unique ID prefix.
// deleted selects soft-deleted tasks instead of live ones.
func (c *Context) ResolveTask(ref string, deleted bool) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, fmt.Errorf("task id is required")
	}
	tasks, err := c.Store.GetAllTasksIncludingDeleted()
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to get tasks: %w", err)
	}

	var matches []models.Task
	for _, t := range tasks {
		if (t.DeletedAt != nil) != deleted {
			continue
		}
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("task %s: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return models.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
}

// ShortID trims a uuid to its first block for display.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
