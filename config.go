// Package spid implements the SPID conformance layer between a generic SAML
// service provider implementation and the Italian identity federation
// profile: outbound request shaping, request/response correlation, SPID
// level resolution and metadata shaping/signing. Cryptographic validation,
// XML-DSig primitives and HTTP wiring live behind ports in
// internal/core/ports and are provided by adapters.
package spid

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mamacrowd/io-spid-commons/internal/adapters/driven/signature"
	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
)

// Duration wraps time.Duration so YAML configs can use strings like "10m".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// OrganizationConfig describes the Organization block injected into SP
// metadata.
type OrganizationConfig struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	URL         string `yaml:"url"`
	Lang        string `yaml:"lang"`
}

// Config holds the conformance layer's settings. Library callers populate it
// directly; LoadConfig reads it from YAML for tooling.
type Config struct {
	// EntityID is the service provider entity identifier.
	EntityID string `yaml:"entity_id"`

	// Issuer is the value written into the request Issuer qualifier.
	// Defaults to EntityID.
	Issuer string `yaml:"issuer"`

	// IDPIssuer is the identity provider entity identifier requests are
	// sent to; the response issuer must match it.
	IDPIssuer string `yaml:"idp_issuer"`

	// CallbackURL is the assertion consumer service URL.
	CallbackURL string `yaml:"callback_url"`

	// PrivateKeyPath and CertificatePath point at PEM files; Load reads
	// them into PrivateKey and Certificate.
	PrivateKeyPath  string `yaml:"private_key_path"`
	CertificatePath string `yaml:"certificate_path"`

	PrivateKey  *rsa.PrivateKey   `yaml:"-"`
	Certificate *x509.Certificate `yaml:"-"`

	// AuthnRequestExpiration bounds how long a correlation entry stays
	// valid; responses for older requests are rejected.
	AuthnRequestExpiration Duration `yaml:"authn_request_expiration"`

	// DefaultLevel is the SPID level to request when the caller expresses
	// no preference.
	DefaultLevel domain.Level `yaml:"default_level"`

	// AttributeServiceName names the AttributeConsumingService block.
	AttributeServiceName string `yaml:"attribute_service_name"`

	// RequiredAttributes lists the SPID attributes requested in metadata.
	RequiredAttributes []string `yaml:"required_attributes"`

	Organization OrganizationConfig `yaml:"organization"`
}

// LoadConfig reads a YAML config file, applies defaults and loads the key
// material referenced by it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.LoadCredentials(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = c.EntityID
	}
	if c.AuthnRequestExpiration <= 0 {
		c.AuthnRequestExpiration = Duration(10 * time.Minute)
	}
	if c.DefaultLevel == "" {
		c.DefaultLevel = domain.LevelL2
	}
	if c.Organization.Lang == "" {
		c.Organization.Lang = "it"
	}
}

// LoadCredentials reads the PEM files referenced by the path fields, leaving
// already-populated key material alone.
func (c *Config) LoadCredentials() error {
	if c.PrivateKey == nil && c.PrivateKeyPath != "" {
		key, err := signature.LoadPrivateKey(c.PrivateKeyPath)
		if err != nil {
			return domain.ConfigError(fmt.Sprintf("load private key: %v", err))
		}
		c.PrivateKey = key
	}
	if c.Certificate == nil && c.CertificatePath != "" {
		cert, err := signature.LoadCertificate(c.CertificatePath)
		if err != nil {
			return domain.ConfigError(fmt.Sprintf("load certificate: %v", err))
		}
		c.Certificate = cert
	}
	return nil
}

// Validate checks that the settings the conformance layer depends on are
// present.
func (c *Config) Validate() error {
	if c.EntityID == "" {
		return domain.ConfigError("entity_id is required")
	}
	if c.IDPIssuer == "" {
		return domain.ConfigError("idp_issuer is required")
	}
	if c.DefaultLevel != "" && !c.DefaultLevel.Valid() {
		return domain.ConfigError(fmt.Sprintf("unknown default_level %q", c.DefaultLevel))
	}
	return nil
}
