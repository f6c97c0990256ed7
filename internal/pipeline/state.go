package pipeline

import (
	"fmt"
	"time"
)

// State is a stage of one build request
type State string

// Build states. Done and Failed are terminal.
const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateExtracting State = "extracting"
	StateGenerating State = "generating"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// transitions lists the states reachable from each non-terminal state
var transitions = map[State][]State{
	StateIdle:       {StateValidating, StateFailed},
	StateValidating: {StateExtracting, StateFailed},
	StateExtracting: {StateGenerating, StateFailed},
	StateGenerating: {StateDone, StateFailed},
}

// IsTerminal reports whether no further transition is possible from s
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether from → to is a legal move
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError represents an attempt to make an illegal state change
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal state transition: %s -> %s", e.From, e.To)
}

// StateEvent is reported to the progress callback on every transition
type StateEvent struct {
	RequestID string    `json:"request_id"`
	From      State     `json:"from"`
	To        State     `json:"to"`
	Kind      ErrorKind `json:"kind,omitempty"` // set when To is StateFailed
	At        time.Time `json:"at"`
}

// ProgressCallback is called when a request changes state. It only observes.
type ProgressCallback func(event StateEvent)
