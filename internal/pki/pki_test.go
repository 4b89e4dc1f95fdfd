package pki

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateAndVerify(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	chain, err := Generate(dir, ChainSpec{CommonName: "boxstrap", Organization: "dev"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := VerifyChain(chain.CertPath, chain.RootCertPath); err != nil {
		t.Errorf("VerifyChain: %v", err)
	}

	// Leaf must not verify against itself.
	if err := VerifyChain(chain.CertPath, chain.CertPath); err == nil {
		t.Error("leaf should not verify against itself as root")
	}
}

func TestGenerateKeyPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	chain, err := Generate(dir, ChainSpec{CommonName: "boxstrap"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, keyPath := range []string{chain.RootKeyPath, chain.KeyPath, chain.KeyB64Path} {
		info, err := os.Stat(keyPath)
		if err != nil {
			t.Fatalf("stat %s: %v", keyPath, err)
		}
		if perm := info.Mode().Perm(); perm&0077 != 0 {
			t.Errorf("%s mode = %o, grants group/world access", keyPath, perm)
		}
	}
}

func TestGenerateB64Companions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	chain, err := Generate(dir, ChainSpec{CommonName: "boxstrap"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	b64, err := os.ReadFile(chain.CertB64Path)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		t.Fatalf("b64 companion is not valid base64: %v", err)
	}
	pemData, err := os.ReadFile(chain.CertPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != string(pemData) {
		t.Error("b64 companion does not round-trip to the PEM file")
	}
	if !strings.Contains(string(decoded), "BEGIN CERTIFICATE") {
		t.Error("decoded companion is not PEM")
	}
}

func TestGenerateValidityWindows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	chain, err := Generate(dir, ChainSpec{
		CommonName:   "boxstrap",
		LeafValidity: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	leaf, err := readCert(chain.CertPath)
	if err != nil {
		t.Fatal(err)
	}
	if window := leaf.NotAfter.Sub(leaf.NotBefore); window != 24*time.Hour {
		t.Errorf("leaf validity = %s, want 24h", window)
	}

	root, err := readCert(chain.RootCertPath)
	if err != nil {
		t.Fatal(err)
	}
	if !root.IsCA {
		t.Error("root must be a CA")
	}
	if leaf.IsCA {
		t.Error("leaf must not be a CA")
	}
}

func TestGenerateRequiresCommonName(t *testing.T) {
	if _, err := Generate(t.TempDir(), ChainSpec{}); err == nil {
		t.Error("expected error for missing common name")
	}
}
