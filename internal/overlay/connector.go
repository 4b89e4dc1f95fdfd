package overlay

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mpetrov/boxstrap/internal/awsx"
)

// logTailLines is how much daemon log is surfaced on a fatal timeout.
const logTailLines = 10

// Outcome is how a connector run ended. Skips exit zero: the overlay
// network never blocks container startup.
type Outcome int

const (
	// OutcomeConnected means the node is on the mesh with an address.
	OutcomeConnected Outcome = iota
	// OutcomeSkipped means a precondition (credentials, key) was
	// missing and the join was not attempted.
	OutcomeSkipped
	// OutcomeFailed means the join was attempted and something fatal
	// happened. Always paired with a non-nil error.
	OutcomeFailed
)

// Connector drives the daemon to a connected state.
type Connector struct {
	Net         Tailnet
	Params      awsx.ParameterStore // nil when no cloud credentials are available
	ProjectName string
	Hostname    string
	// AllowAnyKeyPrefix disables the literal-prefix key format check.
	AllowAnyKeyPrefix bool
	Attempts          int
	Interval          time.Duration
	LogPath           string
	Out               io.Writer
}

// AuthKeyParameter is the parameter-store path for a project's
// pre-shared join key.
func AuthKeyParameter(project string) string {
	return "/" + project + "/tailscale/auth-key"
}

// Run fetches the auth key, brings the daemon up, joins, and verifies
// the assigned address. Missing credentials, a missing key, the deploy
// placeholder, or a malformed key are graceful skips (nil error). A
// daemon that never becomes ready, a rejected join, or a missing
// address afterwards are fatal (OutcomeFailed with a non-nil error).
func (c *Connector) Run(ctx context.Context) (Outcome, error) {
	key, ok := c.fetchAuthKey(ctx)
	if !ok {
		return OutcomeSkipped, nil
	}

	state, err := c.Net.Status(ctx)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("query daemon: %w", err)
	}

	if state == StateNotStarted {
		fmt.Fprintf(c.Out, "starting overlay daemon (log: %s)\n", c.logPath())
		if err := c.Net.StartDaemon(ctx); err != nil {
			return OutcomeFailed, fmt.Errorf("start daemon: %w", err)
		}
		res, pollErr := Poll(ctx, c.Attempts, c.Interval, func(ctx context.Context) (State, bool) {
			s, _ := c.Net.Status(ctx)
			return s, s == StateNeedsLogin || s == StateConnected
		})
		if pollErr != nil {
			for _, line := range LogTail(c.logPath(), logTailLines) {
				fmt.Fprintf(c.Out, "  daemon: %s\n", line)
			}
			return OutcomeFailed, fmt.Errorf("daemon not ready after %d attempts: %w", res.Attempts, pollErr)
		}
		state = res.State
	}

	if state != StateConnected {
		fmt.Fprintln(c.Out, "joining overlay network")
		if err := c.Net.Up(ctx, key, c.Hostname); err != nil {
			return OutcomeFailed, fmt.Errorf("join failed (check that the auth key is valid and not expired): %w", err)
		}
	} else {
		fmt.Fprintln(c.Out, "already connected to overlay network")
	}

	ip, err := c.Net.IPv4(ctx)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("query assigned address: %w", err)
	}
	if ip == "" {
		return OutcomeFailed, fmt.Errorf("connected but no address assigned")
	}
	fmt.Fprintf(c.Out, "overlay network up, address %s\n", ip)
	return OutcomeConnected, nil
}

// fetchAuthKey applies the upstream key policy. Every false return has
// already printed its own warning.
func (c *Connector) fetchAuthKey(ctx context.Context) (string, bool) {
	if c.Params == nil {
		fmt.Fprintln(c.Out, "WARN: no AWS credentials available, skipping overlay network setup")
		return "", false
	}

	name := AuthKeyParameter(c.ProjectName)
	value, found, err := c.Params.Get(ctx, name, true)
	if err != nil {
		fmt.Fprintf(c.Out, "WARN: cannot fetch %s: %v, skipping overlay network setup\n", name, err)
		return "", false
	}
	if !found {
		fmt.Fprintf(c.Out, "WARN: parameter %s not found, skipping overlay network setup\n", name)
		return "", false
	}

	switch CheckAuthKey(value, c.AllowAnyKeyPrefix) {
	case KeyPlaceholder:
		fmt.Fprintf(c.Out, "WARN: auth key is still the deploy placeholder\n")
		fmt.Fprintf(c.Out, "Mint a key in the admin console and store it:\n")
		fmt.Fprintf(c.Out, "  boxstrap param put %s --secure <tskey-...>\n", name)
		return "", false
	case KeyBadPrefix:
		fmt.Fprintf(c.Out, "WARN: auth key does not look like a %s* key, skipping overlay network setup\n", KeyPrefix)
		return "", false
	case KeyEmpty:
		fmt.Fprintf(c.Out, "WARN: auth key parameter is empty, skipping overlay network setup\n")
		return "", false
	}
	return value, true
}

func (c *Connector) logPath() string {
	if c.LogPath != "" {
		return c.LogPath
	}
	return DefaultLogPath
}
