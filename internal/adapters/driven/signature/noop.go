package signature

import (
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// NoopSigner is a pass-through signer for development/testing.
// It returns the input unchanged without signing.
type NoopSigner struct{}

// NewNoopSigner creates a new NoopSigner.
func NewNoopSigner() *NoopSigner {
	return &NoopSigner{}
}

// Sign returns the input unchanged without signing.
func (s *NoopSigner) Sign(data []byte) ([]byte, error) {
	return data, nil
}

var _ ports.MetadataSigner = (*NoopSigner)(nil)
