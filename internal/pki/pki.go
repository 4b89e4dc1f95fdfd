// Package pki generates the certificate chain used to register a
// container with the cloud identity service: a long-lived root CA and
// a client leaf certificate signed by it. The cryptography lives in
// crypto/x509 and crypto/ecdsa; this package owns the artifact layout
// (PEM files plus base64 companions matching the secret-bundle env
// variables) and chain verification.
package pki

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"
)

// ChainSpec controls chain generation.
type ChainSpec struct {
	CommonName   string // leaf subject CN, typically the project name
	Organization string
	RootValidity time.Duration // default 10 years
	LeafValidity time.Duration // default 1 year
}

// Chain is the set of generated artifact paths.
type Chain struct {
	RootCertPath string
	RootKeyPath  string
	CertPath     string
	KeyPath      string
	// B64 companions carry the same PEM base64-encoded, ready to paste
	// into the ROLES_ANYWHERE_CERTIFICATE / _PRIVATE_KEY variables.
	CertB64Path string
	KeyB64Path  string
}

const (
	defaultRootValidity = 10 * 365 * 24 * time.Hour
	defaultLeafValidity = 365 * 24 * time.Hour
)

// Generate writes a fresh chain under dir. Private keys are written
// owner-only; certificates world-readable, same discipline as the
// credential material writer.
func Generate(dir string, spec ChainSpec) (Chain, error) {
	if spec.CommonName == "" {
		return Chain{}, fmt.Errorf("common name is required")
	}
	if spec.RootValidity == 0 {
		spec.RootValidity = defaultRootValidity
	}
	if spec.LeafValidity == 0 {
		spec.LeafValidity = defaultLeafValidity
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Chain{}, fmt.Errorf("create output dir: %w", err)
	}

	now := time.Now()

	rootKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return Chain{}, fmt.Errorf("generate root key: %w", err)
	}
	rootTemplate := &x509.Certificate{
		SerialNumber: newSerial(),
		Subject: pkix.Name{
			CommonName:   spec.CommonName + " Root CA",
			Organization: []string{spec.Organization},
		},
		NotBefore:             now,
		NotAfter:              now.Add(spec.RootValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            0,
		MaxPathLenZero:        true,
	}
	rootDER, err := x509.CreateCertificate(rand.Reader, rootTemplate, rootTemplate, &rootKey.PublicKey, rootKey)
	if err != nil {
		return Chain{}, fmt.Errorf("create root certificate: %w", err)
	}

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return Chain{}, fmt.Errorf("generate leaf key: %w", err)
	}
	leafTemplate := &x509.Certificate{
		SerialNumber: newSerial(),
		Subject: pkix.Name{
			CommonName:   spec.CommonName,
			Organization: []string{spec.Organization},
		},
		NotBefore:   now,
		NotAfter:    now.Add(spec.LeafValidity),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	rootCert, err := x509.ParseCertificate(rootDER)
	if err != nil {
		return Chain{}, fmt.Errorf("parse root certificate: %w", err)
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, rootCert, &leafKey.PublicKey, rootKey)
	if err != nil {
		return Chain{}, fmt.Errorf("create leaf certificate: %w", err)
	}

	chain := Chain{
		RootCertPath: filepath.Join(dir, "root-ca.pem"),
		RootKeyPath:  filepath.Join(dir, "root-ca.key"),
		CertPath:     filepath.Join(dir, "certificate.pem"),
		KeyPath:      filepath.Join(dir, "private-key.pem"),
		CertB64Path:  filepath.Join(dir, "certificate.pem.b64"),
		KeyB64Path:   filepath.Join(dir, "private-key.pem.b64"),
	}

	rootKeyDER, err := x509.MarshalECPrivateKey(rootKey)
	if err != nil {
		return Chain{}, fmt.Errorf("marshal root key: %w", err)
	}
	leafKeyDER, err := x509.MarshalECPrivateKey(leafKey)
	if err != nil {
		return Chain{}, fmt.Errorf("marshal leaf key: %w", err)
	}

	rootCertPEM := pemEncode("CERTIFICATE", rootDER)
	leafCertPEM := pemEncode("CERTIFICATE", leafDER)
	rootKeyPEM := pemEncode("EC PRIVATE KEY", rootKeyDER)
	leafKeyPEM := pemEncode("EC PRIVATE KEY", leafKeyDER)

	writes := []struct {
		path string
		data []byte
		mode os.FileMode
	}{
		{chain.RootCertPath, rootCertPEM, 0644},
		{chain.RootKeyPath, rootKeyPEM, 0600},
		{chain.CertPath, leafCertPEM, 0644},
		{chain.KeyPath, leafKeyPEM, 0600},
		{chain.CertB64Path, []byte(base64.StdEncoding.EncodeToString(leafCertPEM)), 0644},
		{chain.KeyB64Path, []byte(base64.StdEncoding.EncodeToString(leafKeyPEM)), 0600},
	}
	for _, w := range writes {
		if err := os.WriteFile(w.path, w.data, w.mode); err != nil {
			return Chain{}, fmt.Errorf("write %s: %w", w.path, err)
		}
		if err := os.Chmod(w.path, w.mode); err != nil {
			return Chain{}, fmt.Errorf("chmod %s: %w", w.path, err)
		}
	}
	return chain, nil
}

// VerifyChain checks that the leaf at certPath chains to the root at
// rootPath and is valid for client authentication.
func VerifyChain(certPath, rootPath string) error {
	leaf, err := readCert(certPath)
	if err != nil {
		return err
	}
	root, err := readCert(rootPath)
	if err != nil {
		return err
	}
	// The pool treats any member as trusted, so a non-CA certificate
	// would "verify" against itself. Reject it before building the pool.
	if !root.IsCA {
		return fmt.Errorf("verify chain: %s is not a CA certificate", rootPath)
	}

	pool := x509.NewCertPool()
	pool.AddCert(root)
	_, err = leaf.Verify(x509.VerifyOptions{
		Roots:     pool,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
	if err != nil {
		return fmt.Errorf("verify chain: %w", err)
	}
	return nil
}

func readCert(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("%s: no certificate PEM block", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cert, nil
}

func pemEncode(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

// newSerial draws a random 128-bit serial.
func newSerial() *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		// rand.Reader failing is unrecoverable.
		panic(err)
	}
	return serial
}
