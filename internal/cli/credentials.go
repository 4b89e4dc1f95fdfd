package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mpetrov/boxstrap/internal/config"
	"github.com/mpetrov/boxstrap/internal/credentials"
	"github.com/mpetrov/boxstrap/internal/envdetect"
)

var credentialsAWSDir string

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.Flags().StringVar(&credentialsAWSDir, "aws-dir", "", "Target AWS directory (default: ~/.aws)")
}

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Select and configure an AWS credential strategy",
	Long: "Classifies the runtime environment, selects exactly one credential strategy\n" +
		"(Roles Anywhere, host copy, or none), materializes credential files, and\n" +
		"validates them against the identity endpoint. A missing strategy or a failed\n" +
		"identity check is a warning, not an error: this runs on every container start.",
	RunE: runCredentials,
}

func runCredentials(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return err
	}

	awsDir := credentialsAWSDir
	if awsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		awsDir = filepath.Join(home, ".aws")
	}
	configDir, err := config.Dir()
	if err != nil {
		return err
	}

	probes := envdetect.DetectProbes(os.Getenv, cfg.HostAWSDir)
	b := &credentials.Bootstrapper{
		Env:          envdetect.Classify(probes),
		Bundle:       credentials.BundleFromEnv(os.Getenv),
		Cfg:          cfg,
		AWSDir:       awsDir,
		ConfigDir:    configDir,
		ProfileLocal: os.Getenv("AWS_PROFILE_LOCAL"),
		Identity:     credentials.STSIdentityCheck(),
		Out:          os.Stderr,
	}

	_, err = b.Run(cmd.Context())
	return err
}
