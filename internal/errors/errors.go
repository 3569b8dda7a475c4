package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/termplan/internal/logger"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/scheduler"
	"github.com/julianstephens/termplan/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix.
// Known failure kinds get a second line with a hint.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests the next step for errors the user can fix.
func Hint(err error) string {
	switch {
	case stderrors.Is(err, scheduler.ErrInvalidConfig):
		return "review the planner settings with 'termplan settings --list'"
	case stderrors.Is(err, scheduler.ErrConstraintViolation):
		return "locked tasks and calendar events cannot be moved; unlock the task first"
	case stderrors.Is(err, models.ErrInvalidTask):
		return "run 'termplan validate' to list tasks with invalid data"
	case stderrors.Is(err, storage.ErrNotFound):
		return "check the id with 'termplan task list' or 'termplan event list'"
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
