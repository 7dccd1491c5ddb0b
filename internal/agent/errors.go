package agent

import "fmt"

// OrchestrationError reports which stage of a turn failed. Handlers use it
// to distinguish user-facing degradation from hard failures.
type OrchestrationError struct {
	Stage   string // "history", "completion", "persist"
	Session string
	Err     error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("turn %s stage for session %s: %v", e.Stage, e.Session, e.Err)
}

func (e *OrchestrationError) Unwrap() error { return e.Err }
