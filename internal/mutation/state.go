package mutation

import "fmt"

// State is the lifecycle stage of a single mutation.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInFlight   State = "in_flight"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
)

// validTransitions is the authoritative transition graph.
// Validating → Rejected covers local precondition failures.
var validTransitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateInFlight, StateRejected},
	StateInFlight:   {StateCommitted, StateRejected},
}

// IsTransitionAllowed returns true if moving from → to is a valid step.
func IsTransitionAllowed(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists from s.
func IsTerminal(s State) bool {
	return len(validTransitions[s]) == 0
}

// tracker follows one mutation through its states.
type tracker struct {
	id      string
	op      string
	state   State
	history []State
}

func newTracker(id, op string) *tracker {
	return &tracker{id: id, op: op, state: StateIdle, history: []State{StateIdle}}
}

// mustTransition panics on an edge the graph does not allow; that is always
// a bug in the coordinator.
func (t *tracker) mustTransition(to State) {
	if !IsTransitionAllowed(t.state, to) {
		panic(fmt.Sprintf("mutation %s (%s): illegal transition %s → %s", t.id, t.op, t.state, to))
	}
	t.state = to
	t.history = append(t.history, to)
}
