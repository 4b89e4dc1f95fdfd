package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mpetrov/boxstrap/internal/config"
	"github.com/mpetrov/boxstrap/internal/credentials"
	"github.com/mpetrov/boxstrap/internal/envdetect"
	"github.com/mpetrov/boxstrap/internal/overlay"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check container readiness and diagnose configuration issues",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []checkResult

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return err
	}

	// 1. Binary location and version.
	execPath, _ := os.Executable()
	if execPath != "" {
		checks = append(checks, checkResult{
			label:  "boxstrap binary",
			ok:     true,
			detail: fmt.Sprintf("%s (v%s)", execPath, version),
		})
	} else {
		checks = append(checks, checkResult{
			label:  "boxstrap binary",
			ok:     false,
			detail: "cannot determine executable path",
		})
	}

	// 2. Environment classification.
	probes := envdetect.DetectProbes(os.Getenv, cfg.HostAWSDir)
	checks = append(checks, checkResult{
		label:  "environment",
		ok:     true,
		detail: envdetect.Classify(probes).String(),
	})

	// 3. AWS directory and credential material.
	home, homeErr := os.UserHomeDir()
	awsDir := ""
	if homeErr == nil {
		awsDir = filepath.Join(home, ".aws")
	}

	if awsDir != "" {
		if _, err := os.Stat(filepath.Join(awsDir, "config")); err == nil {
			checks = append(checks, checkResult{
				label:  "aws config",
				ok:     true,
				detail: filepath.Join(awsDir, "config"),
			})
		} else {
			checks = append(checks, checkResult{
				label:  "aws config",
				ok:     false,
				detail: "missing",
				fix:    "boxstrap credentials",
			})
		}

		m := credentials.MaterialPaths(awsDir)
		if info, err := os.Stat(m.PrivateKeyPath); err == nil {
			if perm := info.Mode().Perm(); perm&0077 != 0 {
				checks = append(checks, checkResult{
					label:  "private key",
					ok:     false,
					detail: fmt.Sprintf("mode %o grants group/world access", perm),
					fix:    "boxstrap credentials",
				})
			} else {
				checks = append(checks, checkResult{
					label:  "private key",
					ok:     true,
					detail: m.PrivateKeyPath,
				})
			}
		} else {
			checks = append(checks, checkResult{
				label:  "private key",
				ok:     false,
				detail: "no roles-anywhere material",
				fix:    "boxstrap credentials",
			})
		}
	}

	// 4. External tools.
	for _, tool := range []struct {
		name string
		fix  string
	}{
		{"aws_signing_helper", "install the Roles Anywhere signing helper"},
		{"tailscale", "install the overlay network CLI"},
		{"tailscaled", "install the overlay network daemon"},
	} {
		if path, err := exec.LookPath(tool.name); err == nil {
			checks = append(checks, checkResult{label: tool.name, ok: true, detail: path})
		} else {
			checks = append(checks, checkResult{label: tool.name, ok: false, detail: "not on PATH", fix: tool.fix})
		}
	}

	// 5. Daemon log from a prior start.
	if _, err := os.Stat(overlay.DefaultLogPath); err == nil {
		checks = append(checks, checkResult{
			label:  "daemon log",
			ok:     true,
			detail: overlay.DefaultLogPath,
		})
	}

	// Print results.
	hasFailures := false
	for _, c := range checks {
		mark := "✓"
		if !c.ok {
			mark = "✗"
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-20s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Println(line)
	}

	if hasFailures {
		fmt.Println()
		fmt.Println("Some checks failed. Run the suggested commands to fix.")
		return fmt.Errorf("doctor found issues")
	}

	fmt.Println()
	fmt.Println("All checks passed.")
	return nil
}
