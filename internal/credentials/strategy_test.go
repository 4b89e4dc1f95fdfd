package credentials

import (
	"testing"

	"github.com/mpetrov/boxstrap/internal/envdetect"
)

func fullBundle() Bundle {
	return Bundle{
		CertificateB64: "Y2VydA==",
		PrivateKeyB64:  "a2V5",
		TrustAnchorARN: "arn:aws:rolesanywhere:eu-central-1:123456789012:trust-anchor/ta-1",
		ProfileARN:     "arn:aws:rolesanywhere:eu-central-1:123456789012:profile/p-1",
		RoleARN:        "arn:aws:iam::123456789012:role/dev",
	}
}

func TestSelectTable(t *testing.T) {
	tests := []struct {
		name      string
		env       envdetect.Environment
		bundle    Bundle
		hostCreds bool
		want      Strategy
	}{
		{"codespaces always roles-anywhere", envdetect.Codespaces, Bundle{}, false, StrategyRolesAnywhere},
		{"local-host with creds file", envdetect.LocalHost, Bundle{}, true, StrategyHostCopy},
		{"local-host without creds file", envdetect.LocalHost, fullBundle(), false, StrategyNone},
		{"local with full bundle", envdetect.Local, fullBundle(), false, StrategyRolesAnywhere},
		{"local without bundle", envdetect.Local, Bundle{}, false, StrategyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(tt.env, tt.bundle, tt.hostCreds); got != tt.want {
				t.Errorf("Select = %s, want %s", got, tt.want)
			}
		})
	}
}

// Dropping any single field must make the bundle incomplete, so local
// selection never picks roles-anywhere on partial secrets.
func TestSelectNeverRolesAnywhereOnPartialBundle(t *testing.T) {
	clear := []func(*Bundle){
		func(b *Bundle) { b.CertificateB64 = "" },
		func(b *Bundle) { b.PrivateKeyB64 = "" },
		func(b *Bundle) { b.TrustAnchorARN = "" },
		func(b *Bundle) { b.ProfileARN = "" },
		func(b *Bundle) { b.RoleARN = "" },
	}
	for i, drop := range clear {
		b := fullBundle()
		drop(&b)
		if b.Complete() {
			t.Errorf("field %d: bundle still complete after drop", i)
		}
		if got := Select(envdetect.Local, b, false); got != StrategyNone {
			t.Errorf("field %d: Select = %s, want none", i, got)
		}
		if len(b.Missing()) != 1 {
			t.Errorf("field %d: Missing = %v, want exactly one entry", i, b.Missing())
		}
	}
}

func TestBundleFromEnvTrimsWhitespace(t *testing.T) {
	env := map[string]string{
		"ROLES_ANYWHERE_CERTIFICATE": " Y2VydA==\n",
		"ROLES_ANYWHERE_ROLE_ARN":    "arn:aws:iam::1:role/x ",
	}
	b := BundleFromEnv(func(k string) string { return env[k] })
	if b.CertificateB64 != "Y2VydA==" {
		t.Errorf("certificate not trimmed: %q", b.CertificateB64)
	}
	if b.RoleARN != "arn:aws:iam::1:role/x" {
		t.Errorf("role arn not trimmed: %q", b.RoleARN)
	}
}

func TestDeriveRegion(t *testing.T) {
	ta := "arn:aws:rolesanywhere:ap-southeast-2:123456789012:trust-anchor/ta-1"

	if got := DeriveRegion("us-west-2", ta, "us-east-1"); got != "us-west-2" {
		t.Errorf("override ignored: %s", got)
	}
	if got := DeriveRegion("", ta, "us-east-1"); got != "ap-southeast-2" {
		t.Errorf("trust anchor region not used: %s", got)
	}
	if got := DeriveRegion("", "not-an-arn", "us-east-1"); got != "us-east-1" {
		t.Errorf("fallback not used: %s", got)
	}
	if got := DeriveRegion("", "", "us-east-1"); got != "us-east-1" {
		t.Errorf("fallback not used for empty arn: %s", got)
	}
}
