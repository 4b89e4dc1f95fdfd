package overlay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Tailnet is the narrow surface of the overlay network daemon boxstrap
// drives: query state, start the daemon, join, and read the assigned
// address.
type Tailnet interface {
	Status(ctx context.Context) (State, error)
	StartDaemon(ctx context.Context) error
	Up(ctx context.Context, authKey, hostname string) error
	IPv4(ctx context.Context) (string, error)
}

// DefaultLogPath is where the spawned daemon's output lands for
// post-mortem inspection.
const DefaultLogPath = "/tmp/tailscaled.log"

// CLIClient implements Tailnet by shelling out to the tailscale CLIs.
type CLIClient struct {
	TailscalePath  string // defaults to "tailscale"
	TailscaledPath string // defaults to "tailscaled"
	LogPath        string // defaults to DefaultLogPath
	// ExtraDaemonArgs are appended to the daemon invocation; containers
	// run userspace networking by default.
	ExtraDaemonArgs []string
}

func (c *CLIClient) tailscale() string {
	if c.TailscalePath != "" {
		return c.TailscalePath
	}
	return "tailscale"
}

func (c *CLIClient) tailscaled() string {
	if c.TailscaledPath != "" {
		return c.TailscaledPath
	}
	return "tailscaled"
}

func (c *CLIClient) logPath() string {
	if c.LogPath != "" {
		return c.LogPath
	}
	return DefaultLogPath
}

// Status runs the status command and derives a daemon state from its
// output. A non-zero exit is expected while the daemon is down or
// logged out; only exec-level failures (binary missing) are returned
// as errors.
func (c *CLIClient) Status(ctx context.Context) (State, error) {
	cmd := exec.CommandContext(ctx, c.tailscale(), "status")
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return StateFailed, fmt.Errorf("run %s status: %w", c.tailscale(), err)
		}
	}
	return ParseStatus(string(out), err), nil
}

// StartDaemon spawns the daemon detached, output redirected to the log
// file. The control socket is owned by whichever daemon instance is
// running; callers query before starting.
func (c *CLIClient) StartDaemon(_ context.Context) error {
	logFile, err := os.OpenFile(c.logPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	args := []string{"--tun=userspace-networking"}
	args = append(args, c.ExtraDaemonArgs...)

	// The daemon outlives this process; a context-bound command would
	// arm a kill watcher against the released process.
	cmd := exec.Command(c.tailscaled(), args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.tailscaled(), err)
	}
	return cmd.Process.Release()
}

// Up submits the join with the pre-shared key. Attempted exactly once;
// a rejected key will not become valid by retrying.
func (c *CLIClient) Up(ctx context.Context, authKey, hostname string) error {
	args := []string{"up", "--authkey", authKey}
	if hostname != "" {
		args = append(args, "--hostname", hostname)
	}
	cmd := exec.CommandContext(ctx, c.tailscale(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s up: %w: %s", c.tailscale(), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// IPv4 queries the node's assigned mesh address.
func (c *CLIClient) IPv4(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.tailscale(), "ip", "-4")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s ip: %w: %s", c.tailscale(), err, strings.TrimSpace(string(out)))
	}
	ip := strings.TrimSpace(string(out))
	if i := strings.IndexByte(ip, '\n'); i >= 0 {
		ip = ip[:i]
	}
	return ip, nil
}

// LogTail returns up to n trailing lines of the daemon log, for
// surfacing after a fatal start timeout.
func LogTail(path string, n int) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
