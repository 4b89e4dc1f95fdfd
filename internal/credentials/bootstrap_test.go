package credentials

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mpetrov/boxstrap/internal/awsx"
	"github.com/mpetrov/boxstrap/internal/config"
	"github.com/mpetrov/boxstrap/internal/envdetect"
)

func passingIdentity(id awsx.CallerIdentity) IdentityCheck {
	return func(context.Context, string, string) (awsx.CallerIdentity, error) {
		return id, nil
	}
}

func failingIdentity(err error) IdentityCheck {
	return func(context.Context, string, string) (awsx.CallerIdentity, error) {
		return awsx.CallerIdentity{}, err
	}
}

func TestBootstrapRolesAnywhereConfigured(t *testing.T) {
	tmp := t.TempDir()
	var out bytes.Buffer
	b := &Bootstrapper{
		Env:       envdetect.Codespaces,
		Bundle:    testBundle(),
		Cfg:       config.Config{Region: "", HostAWSDir: filepath.Join(tmp, "absent")},
		AWSDir:    filepath.Join(tmp, ".aws"),
		ConfigDir: filepath.Join(tmp, "cfgdir"),
		Identity:  passingIdentity(awsx.CallerIdentity{Account: "123456789012", ARN: "arn:aws:sts::123456789012:assumed-role/dev/session"}),
		Out:       &out,
	}

	report, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Strategy != StrategyRolesAnywhere || report.Outcome != OutcomeConfigured {
		t.Errorf("report = %+v", report)
	}
	// Region came from the trust anchor ARN, not the fallback.
	if report.Region != "eu-central-1" {
		t.Errorf("region = %s, want eu-central-1", report.Region)
	}
	if _, err := os.Stat(filepath.Join(tmp, ".aws", "rolesanywhere", "private-key.pem")); err != nil {
		t.Error("expected key material on disk")
	}
	// The report names the exact files written, not just the directory.
	for _, p := range []string{"certificate.pem", "private-key.pem", filepath.Join(tmp, ".aws", "config")} {
		if !strings.Contains(out.String(), p) {
			t.Errorf("output should mention %s:\n%s", p, out.String())
		}
	}
}

func TestBootstrapPartialBundleFailsClosed(t *testing.T) {
	tmp := t.TempDir()
	bundle := testBundle()
	bundle.ProfileARN = ""
	var out bytes.Buffer
	b := &Bootstrapper{
		Env:      envdetect.Codespaces,
		Bundle:   bundle,
		Cfg:      config.Config{HostAWSDir: filepath.Join(tmp, "absent")},
		AWSDir:   filepath.Join(tmp, ".aws"),
		Identity: failingIdentity(errors.New("should not be called")),
		Out:      &out,
	}

	report, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Strategy != StrategyNone || report.Outcome != OutcomeSkipped {
		t.Errorf("report = %+v", report)
	}
	if _, err := os.Stat(filepath.Join(tmp, ".aws")); !os.IsNotExist(err) {
		t.Error("partial bundle must write no files")
	}
	if !strings.Contains(out.String(), "ROLES_ANYWHERE_PROFILE_ARN") {
		t.Error("warning should name the missing variable")
	}
}

func TestBootstrapDegradedKeepsMaterial(t *testing.T) {
	tmp := t.TempDir()
	b := &Bootstrapper{
		Env:      envdetect.Codespaces,
		Bundle:   testBundle(),
		Cfg:      config.Config{HostAWSDir: filepath.Join(tmp, "absent")},
		AWSDir:   filepath.Join(tmp, ".aws"),
		Identity: failingIdentity(errors.New("AccessDenied")),
		Out:      &bytes.Buffer{},
	}

	report, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Outcome != OutcomeDegraded {
		t.Errorf("outcome = %v, want degraded", report.Outcome)
	}
	// Material is left in place for the next container start.
	if _, err := os.Stat(filepath.Join(tmp, ".aws", "rolesanywhere", "certificate.pem")); err != nil {
		t.Error("material should be kept on identity failure")
	}
}

func TestBootstrapHostCopy(t *testing.T) {
	tmp := t.TempDir()
	hostDir := filepath.Join(tmp, "host-aws")
	if err := os.MkdirAll(hostDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(hostDir, "credentials"), []byte("[default]\naws_access_key_id = AKIA\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(hostDir, "config"), []byte("[profile work]\nregion = us-west-2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfgDir := filepath.Join(tmp, "cfgdir")
	b := &Bootstrapper{
		Env:          envdetect.LocalHost,
		Cfg:          config.Config{Region: "us-east-1", HostAWSDir: hostDir},
		AWSDir:       filepath.Join(tmp, ".aws"),
		ConfigDir:    cfgDir,
		ProfileLocal: "work",
		Identity:     passingIdentity(awsx.CallerIdentity{Account: "1"}),
		Out:          &bytes.Buffer{},
	}

	report, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Strategy != StrategyHostCopy || report.Outcome != OutcomeConfigured {
		t.Errorf("report = %+v", report)
	}

	copied, err := os.ReadFile(filepath.Join(tmp, ".aws", "credentials"))
	if err != nil || !strings.Contains(string(copied), "AKIA") {
		t.Error("credentials not copied")
	}
	if got := config.LoadActiveProfile(cfgDir); got != "work" {
		t.Errorf("persisted profile = %q, want work", got)
	}
}

func TestBootstrapLocalHostWithoutCredsWarns(t *testing.T) {
	tmp := t.TempDir()
	hostDir := filepath.Join(tmp, "host-aws")
	if err := os.MkdirAll(hostDir, 0755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	b := &Bootstrapper{
		Env:      envdetect.LocalHost,
		Cfg:      config.Config{HostAWSDir: hostDir},
		AWSDir:   filepath.Join(tmp, ".aws"),
		Identity: failingIdentity(errors.New("should not be called")),
		Out:      &out,
	}

	report, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Strategy != StrategyNone || report.Outcome != OutcomeSkipped {
		t.Errorf("report = %+v", report)
	}
	if !strings.Contains(out.String(), "WARN") {
		t.Error("expected remediation warning")
	}
}
