// Package credentials implements the startup credential bootstrapper:
// classify the environment, select exactly one strategy, materialize
// credential files, and validate the result against the provider's
// identity endpoint. Selection is pure; executors carry the side
// effects.
package credentials

import (
	"sort"
	"strings"
)

// bundleVars are the environment variables that carry the IAM Roles
// Anywhere secret bundle. All five must be present for the strategy to
// be viable; partial presence fails closed.
var bundleVars = []string{
	"ROLES_ANYWHERE_CERTIFICATE",
	"ROLES_ANYWHERE_PRIVATE_KEY",
	"ROLES_ANYWHERE_TRUST_ANCHOR_ARN",
	"ROLES_ANYWHERE_PROFILE_ARN",
	"ROLES_ANYWHERE_ROLE_ARN",
}

// Bundle is the five-field Roles Anywhere secret bundle. Certificate
// and private key are base64-carried PEM.
type Bundle struct {
	CertificateB64 string
	PrivateKeyB64  string
	TrustAnchorARN string
	ProfileARN     string
	RoleARN        string
}

// BundleFromEnv reads the bundle variables via the supplied getenv.
func BundleFromEnv(getenv func(string) string) Bundle {
	return Bundle{
		CertificateB64: strings.TrimSpace(getenv("ROLES_ANYWHERE_CERTIFICATE")),
		PrivateKeyB64:  strings.TrimSpace(getenv("ROLES_ANYWHERE_PRIVATE_KEY")),
		TrustAnchorARN: strings.TrimSpace(getenv("ROLES_ANYWHERE_TRUST_ANCHOR_ARN")),
		ProfileARN:     strings.TrimSpace(getenv("ROLES_ANYWHERE_PROFILE_ARN")),
		RoleARN:        strings.TrimSpace(getenv("ROLES_ANYWHERE_ROLE_ARN")),
	}
}

// Complete reports whether every bundle field is non-empty.
func (b Bundle) Complete() bool {
	return b.CertificateB64 != "" && b.PrivateKeyB64 != "" &&
		b.TrustAnchorARN != "" && b.ProfileARN != "" && b.RoleARN != ""
}

// Missing returns the sorted names of absent bundle variables, for
// remediation messages.
func (b Bundle) Missing() []string {
	present := map[string]bool{
		"ROLES_ANYWHERE_CERTIFICATE":      b.CertificateB64 != "",
		"ROLES_ANYWHERE_PRIVATE_KEY":      b.PrivateKeyB64 != "",
		"ROLES_ANYWHERE_TRUST_ANCHOR_ARN": b.TrustAnchorARN != "",
		"ROLES_ANYWHERE_PROFILE_ARN":      b.ProfileARN != "",
		"ROLES_ANYWHERE_ROLE_ARN":         b.RoleARN != "",
	}
	var missing []string
	for _, v := range bundleVars {
		if !present[v] {
			missing = append(missing, v)
		}
	}
	sort.Strings(missing)
	return missing
}
