// Package approval defines the review state machine for companies.
//
// Valid status graph:
//
//	pending ──► accepted
//	   │
//	   └──────► rejected
//
// accepted and rejected are terminal states.
package approval

import "fmt"

// Status values mirror the company status strings used by the authority.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusAccepted, StatusRejected},
	// accepted and rejected are terminal: no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown company status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state: no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsDecision returns true for the two statuses an admin can set
// (the path segment of PUT /companies/{id}/{status}).
func IsDecision(s Status) bool { return s == StatusAccepted || s == StatusRejected }

// IsTerminal returns true when no further transition is possible.
func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok
}
