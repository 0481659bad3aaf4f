//go:build unit

package spid

import (
	"context"
	"net/http"
)

// fakeValidator is a controllable stand-in for the external SAML validator.
type fakeValidator struct {
	profile     *UserProfile
	err         error
	gotIDs      []string
	gotResponse []byte
}

func (f *fakeValidator) Validate(ctx context.Context, response []byte, possibleRequestIDs []string) (*UserProfile, error) {
	f.gotResponse = response
	f.gotIDs = possibleRequestIDs
	if f.err != nil {
		return nil, f.err
	}
	// Return a copy so guard-side mutation does not leak into the fixture.
	profile := *f.profile
	return &profile, nil
}

// fakePre is a controllable pre-validation hook.
type fakePre struct {
	valid     bool
	requestID string
	err       error
}

func (f *fakePre) PreValidate(ctx context.Context, response []byte, cache CorrelationCache) (bool, string, error) {
	return f.valid, f.requestID, f.err
}

// fakeMapper derives extra params or fails on demand.
type fakeMapper struct {
	params map[string]string
	err    error
}

func (f *fakeMapper) Map(r *http.Request) (map[string]string, error) {
	return f.params, f.err
}

// failingCache wraps a CorrelationCache with injectable failures.
type failingCache struct {
	CorrelationCache
	saveErr   error
	getErr    error
	removeErr error
}

func (f *failingCache) Save(ctx context.Context, requestXML, idpIssuer string, extraParams map[string]string) (*CorrelationEntry, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.CorrelationCache.Save(ctx, requestXML, idpIssuer, extraParams)
}

func (f *failingCache) Get(ctx context.Context, requestID string) (*CorrelationEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.CorrelationCache.Get(ctx, requestID)
}

func (f *failingCache) Remove(ctx context.Context, requestID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.CorrelationCache.Remove(ctx, requestID)
}

// failingCache deliberately hides the in-memory cache's Consume method, so
// guard tests built on it exercise the Get+Remove fallback path.
var _ CorrelationCache = (*failingCache)(nil)

const testAuthnRequest = `<samlp:AuthnRequest xmlns:samlp="urn:oasis:names:tc:SAML:2.0:protocol" xmlns:saml="urn:oasis:names:tc:SAML:2.0:assertion" ID="_abc123" Version="2.0" IssueInstant="2025-03-01T12:00:00Z"><saml:Issuer>https://sp.example.com</saml:Issuer><samlp:NameIDPolicy AllowCreate="true" Format="urn:oasis:names:tc:SAML:2.0:nameid-format:transient"/><samlp:RequestedAuthnContext Comparison="minimum"><saml:AuthnContextClassRef>https://www.spid.gov.it/SpidL2</saml:AuthnContextClassRef></samlp:RequestedAuthnContext></samlp:AuthnRequest>`

// testConfig returns a minimal valid config for the shaping services.
func testConfig() *Config {
	cfg := &Config{
		EntityID:  "https://sp.example.com",
		IDPIssuer: "https://idp.example/",
		Organization: OrganizationConfig{
			Name:        "Example Org",
			DisplayName: "Example",
			URL:         "https://example.com",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

var _ ExtraParamsMapper = (*fakeMapper)(nil)
var _ PreValidator = (*fakePre)(nil)
var _ ResponseValidator = (*fakeValidator)(nil)
