package credentials

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mpetrov/boxstrap/internal/awsx"
	"github.com/mpetrov/boxstrap/internal/config"
	"github.com/mpetrov/boxstrap/internal/envdetect"
)

// Outcome summarizes how a bootstrap run ended. All three are exit-zero;
// only infrastructure failures (unwritable material) are fatal.
type Outcome int

const (
	// OutcomeConfigured means material was written and the identity
	// check passed.
	OutcomeConfigured Outcome = iota
	// OutcomeSkipped means no strategy was viable; nothing was written.
	OutcomeSkipped
	// OutcomeDegraded means material was written (and kept) but the
	// identity check failed. A later run may succeed once upstream
	// state converges.
	OutcomeDegraded
)

// Report is the result of a bootstrap run.
type Report struct {
	Strategy Strategy
	Outcome  Outcome
	Region   string
	Identity awsx.CallerIdentity
}

// IdentityCheck validates written material against the provider's
// identity endpoint. Injected so the bootstrapper is testable without
// network calls.
type IdentityCheck func(ctx context.Context, region, profile string) (awsx.CallerIdentity, error)

// STSIdentityCheck is the production identity check.
func STSIdentityCheck() IdentityCheck {
	return func(ctx context.Context, region, profile string) (awsx.CallerIdentity, error) {
		cfg, err := awsx.LoadConfig(ctx, region, profile)
		if err != nil {
			return awsx.CallerIdentity{}, err
		}
		return awsx.NewSTSIdentity(cfg).WhoAmI(ctx)
	}
}

// Bootstrapper selects and executes one credential strategy.
type Bootstrapper struct {
	Env          envdetect.Environment
	Bundle       Bundle
	Cfg          config.Config
	AWSDir       string // target ~/.aws
	ConfigDir    string // ~/.config/boxstrap, for the persisted profile
	ProfileLocal string // AWS_PROFILE_LOCAL override for host-copy
	Identity     IdentityCheck
	Out          io.Writer
}

// Run executes the bootstrap procedure. Safe to re-run: selection is
// deterministic and all writes are overwrites. Returns a non-nil error
// only for fatal conditions (invalid bundle encoding, unwritable
// filesystem); a failed identity check degrades to a warning because
// the procedure is retried on every container start.
func (b *Bootstrapper) Run(ctx context.Context) (Report, error) {
	strategy := Select(b.Env, b.Bundle, HostCredentialsFile(b.Cfg.HostAWSDir))
	fmt.Fprintf(b.Out, "environment: %s, strategy: %s\n", b.Env, strategy)

	switch strategy {
	case StrategyRolesAnywhere:
		return b.runRolesAnywhere(ctx)
	case StrategyHostCopy:
		return b.runHostCopy(ctx)
	default:
		b.printRemediation()
		return Report{Strategy: StrategyNone, Outcome: OutcomeSkipped}, nil
	}
}

func (b *Bootstrapper) runRolesAnywhere(ctx context.Context) (Report, error) {
	if !b.Bundle.Complete() {
		// Partial bundle fails closed: no files, warn, exit zero.
		fmt.Fprintf(b.Out, "WARN: Roles Anywhere bundle incomplete, missing: %s\n",
			strings.Join(b.Bundle.Missing(), ", "))
		b.printRemediation()
		return Report{Strategy: StrategyNone, Outcome: OutcomeSkipped}, nil
	}

	region := DeriveRegion(b.Cfg.Region, b.Bundle.TrustAnchorARN, config.DefaultRegion)
	m, err := WriteMaterial(b.AWSDir, b.Bundle, region)
	if err != nil {
		return Report{}, fmt.Errorf("write credential material: %w", err)
	}
	fmt.Fprintf(b.Out, "wrote %s, %s, and %s\n", m.CertificatePath, m.PrivateKeyPath, m.ConfigPath)

	report := Report{Strategy: StrategyRolesAnywhere, Region: region}
	id, err := b.Identity(ctx, region, "")
	if err != nil {
		// Material stays in place; the wrapper is retried next start.
		fmt.Fprintf(b.Out, "WARN: identity check failed: %v\n", err)
		fmt.Fprintf(b.Out, "WARN: the trust anchor may not be deployed yet, or the certificate may not be registered\n")
		report.Outcome = OutcomeDegraded
		return report, nil
	}
	report.Outcome = OutcomeConfigured
	report.Identity = id
	fmt.Fprintf(b.Out, "authenticated as %s (account %s)\n", id.ARN, id.Account)
	return report, nil
}

func (b *Bootstrapper) runHostCopy(ctx context.Context) (Report, error) {
	if err := CopyHostCredentials(b.Cfg.HostAWSDir, b.AWSDir); err != nil {
		return Report{}, fmt.Errorf("copy host credentials: %w", err)
	}
	fmt.Fprintf(b.Out, "copied host AWS files from %s\n", b.Cfg.HostAWSDir)

	profile := ""
	if b.ProfileLocal != "" {
		profile = b.ProfileLocal
		if err := config.SaveActiveProfile(b.ConfigDir, profile); err != nil {
			return Report{}, fmt.Errorf("persist active profile: %w", err)
		}
		fmt.Fprintf(b.Out, "active profile persisted: %s\n", profile)
	}

	report := Report{Strategy: StrategyHostCopy, Region: b.Cfg.Region}
	id, err := b.Identity(ctx, b.Cfg.Region, profile)
	if err != nil {
		fmt.Fprintf(b.Out, "WARN: identity check failed: %v\n", err)
		fmt.Fprintf(b.Out, "WARN: the copied host credentials may be expired; refresh them on the host\n")
		report.Outcome = OutcomeDegraded
		return report, nil
	}
	report.Outcome = OutcomeConfigured
	report.Identity = id
	fmt.Fprintf(b.Out, "authenticated as %s (account %s)\n", id.ARN, id.Account)
	return report, nil
}

// printRemediation lists the ways credentials can be supplied.
func (b *Bootstrapper) printRemediation() {
	fmt.Fprintf(b.Out, "WARN: no credential strategy available\n")
	fmt.Fprintln(b.Out, "To configure AWS credentials, either:")
	fmt.Fprintln(b.Out, "  - set the five ROLES_ANYWHERE_* variables (see boxstrap certs / boxstrap infra deploy), or")
	fmt.Fprintf(b.Out, "  - mount your host ~/.aws at %s, or\n", b.Cfg.HostAWSDir)
	fmt.Fprintln(b.Out, "  - provide credentials by any standard AWS mechanism before running tooling")
}
