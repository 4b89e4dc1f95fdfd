package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpetrov/boxstrap/internal/awsx"
	"github.com/mpetrov/boxstrap/internal/config"
	"github.com/mpetrov/boxstrap/internal/overlay"
)

var (
	connectHostname    string
	connectLogPath     string
	connectAllowAnyKey bool
)

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVar(&connectHostname, "hostname", "", "Node name on the overlay network")
	connectCmd.Flags().StringVar(&connectLogPath, "log-path", overlay.DefaultLogPath, "Daemon log file")
	connectCmd.Flags().BoolVar(&connectAllowAnyKey, "allow-any-key", false, "Skip the auth-key prefix format check")
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Join the overlay network",
	Long: "Fetches the pre-shared auth key from the parameter store, starts the overlay\n" +
		"daemon if needed, waits for readiness, joins, and reports the assigned\n" +
		"address. Missing credentials or an unconfigured key are graceful skips — the\n" +
		"overlay network never blocks container startup.",
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return err
	}

	hostname := connectHostname
	if hostname == "" {
		hostname = cfg.OverlayHostname
	}

	c := &overlay.Connector{
		Net: &overlay.CLIClient{
			LogPath: connectLogPath,
		},
		ProjectName:       cfg.ProjectName,
		Hostname:          hostname,
		AllowAnyKeyPrefix: connectAllowAnyKey,
		Attempts:          overlay.DefaultPollAttempts,
		Interval:          overlay.DefaultPollInterval,
		LogPath:           connectLogPath,
		Out:               os.Stderr,
	}

	// Leave Params nil when the credential chain produces nothing: the
	// connector then skips gracefully instead of failing on every call.
	awsCfg, err := awsx.LoadConfig(ctx, cfg.Region, config.ActiveProfile())
	if err == nil && awsx.HasCredentials(ctx, awsCfg) {
		c.Params = awsx.NewSSMStore(awsCfg)
	}

	outcome, err := c.Run(ctx)
	if err != nil {
		return err
	}
	if outcome == overlay.OutcomeSkipped {
		fmt.Fprintln(os.Stderr, "overlay network setup skipped")
	}
	return nil
}
