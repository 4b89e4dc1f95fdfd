package credentials

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Material is the set of on-disk artifacts a strategy produced.
type Material struct {
	CertificatePath string
	PrivateKeyPath  string
	HelperPath      string
	ConfigPath      string
	Region          string
}

// ProfileAlias is the named profile written alongside [default].
const ProfileAlias = "boxstrap"

// signingHelper is the provider-supplied credential-process binary.
const signingHelper = "aws_signing_helper"

// MaterialPaths returns the fixed artifact layout under an AWS dir.
func MaterialPaths(awsDir string) Material {
	raDir := filepath.Join(awsDir, "rolesanywhere")
	return Material{
		CertificatePath: filepath.Join(raDir, "certificate.pem"),
		PrivateKeyPath:  filepath.Join(raDir, "private-key.pem"),
		HelperPath:      filepath.Join(raDir, "credential-helper.sh"),
		ConfigPath:      filepath.Join(awsDir, "config"),
	}
}

// WriteMaterial decodes the bundle and writes certificate, private key,
// helper wrapper, and provider config. Permission modes are enforced
// with explicit chmod so the caller's umask cannot widen them: private
// key 0600, certificate 0644. Overwrites are byte-identical for
// identical inputs, so re-running is safe.
func WriteMaterial(awsDir string, bundle Bundle, region string) (Material, error) {
	m := MaterialPaths(awsDir)
	m.Region = region

	certPEM, err := base64.StdEncoding.DecodeString(bundle.CertificateB64)
	if err != nil {
		return Material{}, fmt.Errorf("decode certificate: %w", err)
	}
	keyPEM, err := base64.StdEncoding.DecodeString(bundle.PrivateKeyB64)
	if err != nil {
		return Material{}, fmt.Errorf("decode private key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.CertificatePath), 0700); err != nil {
		return Material{}, fmt.Errorf("create material dir: %w", err)
	}

	if err := writeFileMode(m.CertificatePath, certPEM, 0644); err != nil {
		return Material{}, fmt.Errorf("write certificate: %w", err)
	}
	if err := writeFileMode(m.PrivateKeyPath, keyPEM, 0600); err != nil {
		return Material{}, fmt.Errorf("write private key: %w", err)
	}

	helper := helperScript(m, bundle)
	if err := writeFileMode(m.HelperPath, []byte(helper), 0755); err != nil {
		return Material{}, fmt.Errorf("write credential helper: %w", err)
	}

	cfg := providerConfig(m, region)
	if err := writeFileMode(m.ConfigPath, []byte(cfg), 0644); err != nil {
		return Material{}, fmt.Errorf("write provider config: %w", err)
	}
	return m, nil
}

// writeFileMode writes the file and then chmods it, because WriteFile's
// mode argument is filtered by the process umask and must not be
// trusted for the private key.
func writeFileMode(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, data, mode); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}

// helperScript renders the wrapper invoked via credential_process.
func helperScript(m Material, bundle Bundle) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Generated by boxstrap; rewritten on every container start.\n")
	fmt.Fprintf(&b, "exec %s credential-process \\\n", signingHelper)
	fmt.Fprintf(&b, "  --certificate %s \\\n", m.CertificatePath)
	fmt.Fprintf(&b, "  --private-key %s \\\n", m.PrivateKeyPath)
	fmt.Fprintf(&b, "  --trust-anchor-arn %s \\\n", bundle.TrustAnchorARN)
	fmt.Fprintf(&b, "  --profile-arn %s \\\n", bundle.ProfileARN)
	fmt.Fprintf(&b, "  --role-arn %s\n", bundle.RoleARN)
	return b.String()
}

// providerConfig renders the AWS config file: [default] plus a named
// alias, both sourcing credentials from the helper.
func providerConfig(m Material, region string) string {
	var b strings.Builder
	b.WriteString("[default]\n")
	fmt.Fprintf(&b, "credential_process = %s\n", m.HelperPath)
	fmt.Fprintf(&b, "region = %s\n", region)
	b.WriteString("\n")
	fmt.Fprintf(&b, "[profile %s]\n", ProfileAlias)
	fmt.Fprintf(&b, "credential_process = %s\n", m.HelperPath)
	fmt.Fprintf(&b, "region = %s\n", region)
	return b.String()
}
