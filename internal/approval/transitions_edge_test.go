package approval_test

// ── Additional edge-case tests ────────────────────────────────────────────
//
// Status strings arrive from the authority and from CLI arguments, so
// parsing must be strict about case and padding.

import (
	"testing"

	"jobmate/board-client/internal/approval"
)

// ParseStatus must be case-sensitive; uppercase variants must not be valid.
func TestParseStatus_CaseSensitive(t *testing.T) {
	uppercase := []string{"PENDING", "Accepted", "REJECTED"}
	for _, s := range uppercase {
		_, err := approval.ParseStatus(s)
		if err == nil {
			t.Errorf("ParseStatus(%q) should reject non-lowercase value, got nil error", s)
		}
	}
}

// ParseStatus must reject whitespace-padded strings.
func TestParseStatus_WithWhitespace(t *testing.T) {
	padded := []string{" accepted", "accepted ", " accepted "}
	for _, s := range padded {
		_, err := approval.ParseStatus(s)
		if err == nil {
			t.Errorf("ParseStatus(%q) should reject padded value, got nil error", s)
		}
	}
}

// pending is the initial state for every new company and is never
// reachable from any other state.
func TestIsTransitionAllowed_PendingIsNeverReachable(t *testing.T) {
	for _, from := range []approval.Status{approval.StatusAccepted, approval.StatusRejected} {
		if approval.IsTransitionAllowed(from, approval.StatusPending) {
			t.Errorf("IsTransitionAllowed(%s → pending) must be false: pending is only an initial state", from)
		}
	}
}

// Unknown source statuses behave like terminal ones.
func TestIsTransitionAllowed_UnknownSource(t *testing.T) {
	if approval.IsTransitionAllowed(approval.Status("archived"), approval.StatusAccepted) {
		t.Error("IsTransitionAllowed(archived → accepted) must be false")
	}
}
