package credentials

import (
	"fmt"
	"os"
	"path/filepath"
)

// HostCredentialsFile reports whether the mounted host directory holds
// a credentials file (the viability condition for the host-copy
// strategy).
func HostCredentialsFile(hostDir string) bool {
	info, err := os.Stat(filepath.Join(hostDir, "credentials"))
	return err == nil && info.Mode().IsRegular()
}

// CopyHostCredentials copies the host's config and credentials files
// into the container's AWS directory. The credentials file keeps
// owner-only permissions; config is world-readable like any provider
// config.
func CopyHostCredentials(hostDir, awsDir string) error {
	if err := os.MkdirAll(awsDir, 0700); err != nil {
		return fmt.Errorf("create aws dir: %w", err)
	}

	creds, err := os.ReadFile(filepath.Join(hostDir, "credentials"))
	if err != nil {
		return fmt.Errorf("read host credentials: %w", err)
	}
	if err := writeFileMode(filepath.Join(awsDir, "credentials"), creds, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	// config is optional on the host.
	cfg, err := os.ReadFile(filepath.Join(hostDir, "config"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read host config: %w", err)
	}
	if err := writeFileMode(filepath.Join(awsDir, "config"), cfg, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
