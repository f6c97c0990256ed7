package pipeline

import "fmt"

// BuildError wraps a failed build with its request ID and caller-visible outcome
type BuildError struct {
	RequestID string
	Outcome   Outcome
	Err       error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s failed (%s): %v", e.RequestID, e.Outcome.Kind, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
