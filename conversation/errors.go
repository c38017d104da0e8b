package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRole is returned by SendMessage for messages not from the user.
	ErrInvalidRole = errors.New("conversation: only user messages can be sent")

	// ErrRunInProgress is returned when Run is called while another Run is active.
	ErrRunInProgress = errors.New("conversation: run already in progress")

	// ErrMaxIterations is wrapped in a RunError when the agent has not
	// finished within the iteration limit.
	ErrMaxIterations = errors.New("conversation: maximum iterations reached")
)

// RunError reports why Run stopped before the agent finished.
type RunError struct {
	// Iteration is the 1-based agent step that failed.
	Iteration int
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("conversation: run failed at iteration %d: %v", e.Iteration, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
