// Package instance guards a database against destructive commands while an
// interactive session has it open.
package instance

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/termplan/internal/constants"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// ErrInUse is returned when another live process holds the lock.
var ErrInUse = errors.New("database is in use by another session")

// Holder describes the process named in a lockfile.
type Holder struct {
	PID     int
	Started time.Time
}

// Path returns the lockfile guarding the database at dbPath.
func Path(dbPath string) string {
	return dbPath + ".lock"
}

// Acquire writes a lockfile for the current process. The returned release
// func removes it. A stale lockfile left by a dead process is replaced.
func Acquire(dbPath string) (func(), error) {
	if err := Check(dbPath); err != nil {
		return nil, err
	}
	path := Path(dbPath)
	content := fmt.Sprintf("%d|%s", getpidFunc(), time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return func() { _ = os.Remove(path) }, nil
}

// Check fails with ErrInUse when a different live termplan process holds
// the lock. Missing or malformed lockfiles count as free.
func Check(dbPath string) error {
	holder, err := readLockfile(Path(dbPath))
	if err != nil {
		return nil
	}
	if holder.PID == getpidFunc() || !alive(holder.PID) {
		return nil
	}
	return fmt.Errorf("%w (pid %d since %s)", ErrInUse, holder.PID, holder.Started.Local().Format(constants.DateTimeFormat))
}

func readLockfile(path string) (Holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Holder{}, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return Holder{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid < 1 {
		return Holder{}, errors.New("invalid process ID in lockfile")
	}
	started, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return Holder{}, errors.New("invalid start time in lockfile")
	}
	return Holder{PID: pid, Started: started}, nil
}

func alive(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}
