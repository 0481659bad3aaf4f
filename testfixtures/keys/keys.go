// Package keys generates throwaway RSA key material for tests that exercise
// metadata signing and config credential loading.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Generate creates a self-signed RSA key pair for signing tests.
func Generate(t testing.TB) (*rsa.PrivateKey, *x509.Certificate) {
	t.Helper()

	key, cert, err := generateSelfSignedCert()
	if err != nil {
		t.Fatalf("failed to generate signing certificate: %v", err)
	}
	return key, cert
}

// WritePEM writes the key pair as PEM files into dir and returns their
// paths. Used by config loading tests.
func WritePEM(t testing.TB, dir string, key *rsa.PrivateKey, cert *x509.Certificate) (keyPath, certPath string) {
	t.Helper()

	keyPath = filepath.Join(dir, "sp-key.pem")
	certPath = filepath.Join(dir, "sp-cert.pem")

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	certPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	})

	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	if err := os.WriteFile(certPath, certPEM, 0o600); err != nil {
		t.Fatalf("write cert file: %v", err)
	}
	return keyPath, certPath
}

// generateSelfSignedCert creates a self-signed certificate for signing.
func generateSelfSignedCert() (*rsa.PrivateKey, *x509.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("generate key: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName: "Test SP Signer",
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("parse certificate: %w", err)
	}
	return key, cert, nil
}
