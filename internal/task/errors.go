package task

import (
	"errors"
	"strings"
)

// Domain errors for the task package. Check with errors.Is.
var (
	// ErrTaskNotFound is returned when a task ID does not exist.
	ErrTaskNotFound = errors.New("task: not found")

	// ErrInvalidTask is matched by every *ValidationError.
	ErrInvalidTask = errors.New("task: invalid")
)

// ValidationError carries the ordered list of problems found in a task
// payload.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "task: invalid: " + strings.Join(e.Messages, "; ")
}

// Is reports whether target is ErrInvalidTask.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidTask
}
