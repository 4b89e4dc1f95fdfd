// Package overlay brings the container onto the private mesh network:
// start the daemon if needed, poll for readiness with a bounded budget,
// join with a pre-shared auth key, and verify the assigned address.
// The daemon is driven through the narrow Tailnet interface so the
// state machine is testable without a real process.
package overlay

import "strings"

// State is the daemon lifecycle state, re-derived on every poll from
// the status command's textual markers (no structured IPC available).
type State int

const (
	// StateNotStarted means no daemon is answering on the control socket.
	StateNotStarted State = iota
	// StateStarting means the daemon answered but is not ready yet.
	StateStarting
	// StateNeedsLogin means the daemon is up and waiting for a join.
	StateNeedsLogin
	// StateConnected means the node is already on the mesh.
	StateConnected
	// StateFailed means the status query failed in an unexpected way.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateStarting:
		return "starting"
	case StateNeedsLogin:
		return "needs-login"
	case StateConnected:
		return "connected"
	default:
		return "failed"
	}
}

// readiness markers observed in status output across daemon versions.
var (
	loggedOutMarkers  = []string{"logged out", "needslogin", "tailscale is stopped", "stopped"}
	notRunningMarkers = []string{"failed to connect", "is tailscaled running", "connection refused", "no such file"}
)

// ParseStatus maps a status command's combined output and exit error to
// a daemon state.
func ParseStatus(output string, exitErr error) State {
	lower := strings.ToLower(output)
	for _, m := range loggedOutMarkers {
		if strings.Contains(lower, m) {
			return StateNeedsLogin
		}
	}
	if exitErr == nil {
		return StateConnected
	}
	for _, m := range notRunningMarkers {
		if strings.Contains(lower, m) {
			return StateNotStarted
		}
	}
	if strings.Contains(lower, "starting") {
		return StateStarting
	}
	return StateFailed
}
