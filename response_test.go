//go:build unit

package spid

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

const testResponse = `<samlp:Response xmlns:samlp="urn:oasis:names:tc:SAML:2.0:protocol" xmlns:saml="urn:oasis:names:tc:SAML:2.0:assertion" ID="_resp1" InResponseTo="_abc123" Version="2.0"><saml:Issuer>https://idp.example/</saml:Issuer></samlp:Response>`

func saveTestEntry(t *testing.T, cache CorrelationCache, extras map[string]string) *CorrelationEntry {
	t.Helper()
	entry, err := cache.Save(context.Background(), testAuthnRequest, "https://idp.example/", extras)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	return entry
}

// TestHandleResponse_HappyPath verifies the full success flow: the entry is
// consumed exactly once and its extra params land on the profile.
func TestHandleResponse_HappyPath(t *testing.T) {
	cache := NewInMemoryCorrelationCache()
	saveTestEntry(t, cache, map[string]string{"clientId": "42"})

	validator := &fakeValidator{profile: &UserProfile{
		Subject: "jane.doe",
		Issuer:  "https://idp.example/",
		Attributes: map[string]string{
			"name":       "Jane",
			"familyName": "Doe",
		},
	}}
	pre := &fakePre{valid: true, requestID: "_abc123"}

	guard := NewResponseGuard(cache, validator, pre, nil, nil)
	profile, err := guard.HandleResponse(context.Background(), []byte(testResponse))
	if err != nil {
		t.Fatalf("HandleResponse() failed: %v", err)
	}

	if profile.Attributes["name"] != "Jane" {
		t.Errorf("Attributes = %v", profile.Attributes)
	}
	if profile.ExtraLoginRequestParams["clientId"] != "42" {
		t.Errorf("ExtraLoginRequestParams = %v, want clientId=42", profile.ExtraLoginRequestParams)
	}
	if len(validator.gotIDs) != 1 || validator.gotIDs[0] != "_abc123" {
		t.Errorf("validator saw request IDs %v", validator.gotIDs)
	}

	// A replay of the same response must not find the entry again.
	if _, err := cache.Get(context.Background(), "_abc123"); !IsNotFound(err) {
		t.Errorf("entry should be consumed, Get() = %v", err)
	}
}

// TestHandleResponse_HookInvalidPassthrough verifies an IdP-initiated
// response (no outstanding request) is forwarded untouched and the cache is
// left alone.
func TestHandleResponse_HookInvalidPassthrough(t *testing.T) {
	cache := NewInMemoryCorrelationCache()
	saveTestEntry(t, cache, map[string]string{"clientId": "42"})

	validator := &fakeValidator{profile: &UserProfile{Subject: "jane.doe"}}
	pre := &fakePre{valid: false}

	guard := NewResponseGuard(cache, validator, pre, nil, nil)
	profile, err := guard.HandleResponse(context.Background(), []byte(testResponse))
	if err != nil {
		t.Fatalf("HandleResponse() failed: %v", err)
	}

	if profile.ExtraLoginRequestParams != nil {
		t.Errorf("ExtraLoginRequestParams = %v, want none", profile.ExtraLoginRequestParams)
	}
	if _, err := cache.Get(context.Background(), "_abc123"); err != nil {
		t.Errorf("cache entry should be untouched, Get() = %v", err)
	}
}

// TestHandleResponse_HookErrorStopsValidation verifies a failing hook halts
// the flow before the external validator runs.
func TestHandleResponse_HookErrorStopsValidation(t *testing.T) {
	cache := NewInMemoryCorrelationCache()
	validator := &fakeValidator{profile: &UserProfile{Subject: "jane.doe"}}
	pre := &fakePre{err: MismatchError("no correlation entry")}

	guard := NewResponseGuard(cache, validator, pre, nil, nil)
	_, err := guard.HandleResponse(context.Background(), []byte(testResponse))

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrCodeCorrelationMismatch {
		t.Errorf("HandleResponse() error = %v, want correlation_mismatch", err)
	}
	if validator.gotResponse != nil {
		t.Error("validator must not run after a hook failure")
	}
}

// TestHandleResponse_ValidatorErrorSurfaces verifies validator rejections
// propagate and leave the cache untouched.
func TestHandleResponse_ValidatorErrorSurfaces(t *testing.T) {
	cache := NewInMemoryCorrelationCache()
	saveTestEntry(t, cache, nil)

	validator := &fakeValidator{err: ValidationError("bad signature", nil)}
	pre := &fakePre{valid: true, requestID: "_abc123"}

	guard := NewResponseGuard(cache, validator, pre, nil, nil)
	_, err := guard.HandleResponse(context.Background(), []byte(testResponse))

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrCodeValidationRejected {
		t.Errorf("HandleResponse() error = %v, want validation_rejected", err)
	}
	if _, err := cache.Get(context.Background(), "_abc123"); err != nil {
		t.Errorf("cache entry should be untouched, Get() = %v", err)
	}
}

// TestHandleResponse_AlreadyConsumed verifies losing the consumption race
// yields a mismatch error, not a second authenticated user.
func TestHandleResponse_AlreadyConsumed(t *testing.T) {
	cache := NewInMemoryCorrelationCache()

	validator := &fakeValidator{profile: &UserProfile{Subject: "jane.doe"}}
	pre := &fakePre{valid: true, requestID: "_abc123"}

	guard := NewResponseGuard(cache, validator, pre, nil, nil)
	_, err := guard.HandleResponse(context.Background(), []byte(testResponse))

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrCodeCorrelationMismatch {
		t.Errorf("HandleResponse() error = %v, want correlation_mismatch", err)
	}
}

// TestHandleResponse_GetRemoveFallback verifies consumption works against a
// cache without an atomic consume operation.
func TestHandleResponse_GetRemoveFallback(t *testing.T) {
	inner := NewInMemoryCorrelationCache()
	cache := &failingCache{CorrelationCache: inner}
	saveTestEntry(t, cache, map[string]string{"clientId": "42"})

	validator := &fakeValidator{profile: &UserProfile{Subject: "jane.doe"}}
	pre := &fakePre{valid: true, requestID: "_abc123"}

	guard := NewResponseGuard(cache, validator, pre, nil, nil)
	profile, err := guard.HandleResponse(context.Background(), []byte(testResponse))
	if err != nil {
		t.Fatalf("HandleResponse() failed: %v", err)
	}
	if profile.ExtraLoginRequestParams["clientId"] != "42" {
		t.Errorf("ExtraLoginRequestParams = %v", profile.ExtraLoginRequestParams)
	}
	if inner.Len() != 0 {
		t.Error("entry should be removed via the fallback path")
	}
}

// TestHandleResponse_RemoveFailureSurfaces verifies a consumption failure is
// an error, never a success with a live entry left behind.
func TestHandleResponse_RemoveFailureSurfaces(t *testing.T) {
	inner := NewInMemoryCorrelationCache()
	boom := CacheDeleteError("store down", nil)
	cache := &failingCache{CorrelationCache: inner, removeErr: boom}
	saveTestEntry(t, cache, nil)

	validator := &fakeValidator{profile: &UserProfile{Subject: "jane.doe"}}
	pre := &fakePre{valid: true, requestID: "_abc123"}

	guard := NewResponseGuard(cache, validator, pre, nil, nil)
	_, err := guard.HandleResponse(context.Background(), []byte(testResponse))
	if !errors.Is(err, boom) {
		t.Errorf("HandleResponse() error = %v, want the delete error", err)
	}
}

func TestSPIDPreValidator_Accepts(t *testing.T) {
	cache := NewInMemoryCorrelationCache()
	saveTestEntry(t, cache, nil)

	pre := NewSPIDPreValidator(testConfig(), nil, nil)
	valid, requestID, err := pre.PreValidate(context.Background(), []byte(testResponse), cache)
	if err != nil {
		t.Fatalf("PreValidate() failed: %v", err)
	}
	if !valid || requestID != "_abc123" {
		t.Errorf("PreValidate() = (%v, %q)", valid, requestID)
	}
}

func TestSPIDPreValidator_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		response string
		populate bool
		advance  time.Duration
	}{
		{
			name:     "no InResponseTo",
			response: `<samlp:Response xmlns:samlp="urn:oasis:names:tc:SAML:2.0:protocol" ID="_resp1"/>`,
			populate: true,
		},
		{
			name:     "no correlation entry",
			response: testResponse,
			populate: false,
		},
		{
			name:     "expired entry",
			response: testResponse,
			populate: true,
			advance:  11 * time.Minute,
		},
		{
			name: "issuer mismatch",
			response: fmt.Sprintf(`<samlp:Response xmlns:samlp="urn:oasis:names:tc:SAML:2.0:protocol" xmlns:saml="urn:oasis:names:tc:SAML:2.0:assertion" ID="_resp1" InResponseTo=%q><saml:Issuer>https://rogue.example/</saml:Issuer></samlp:Response>`,
				"_abc123"),
			populate: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := clockwork.NewFakeClock()
			// The cache gets a long TTL so entry expiry is exercised by the
			// hook, not by the cache's own retention sweep.
			cache := NewInMemoryCorrelationCache(WithClock(clock), WithTTL(time.Hour))
			if tc.populate {
				saveTestEntry(t, cache, nil)
			}

			pre := NewSPIDPreValidator(testConfig(), clock, nil)
			if tc.advance > 0 {
				clock.Advance(tc.advance)
			}

			_, _, err := pre.PreValidate(context.Background(), []byte(tc.response), cache)
			var appErr *AppError
			if !errors.As(err, &appErr) || appErr.Code != ErrCodeCorrelationMismatch {
				t.Errorf("PreValidate() error = %v, want correlation_mismatch", err)
			}
		})
	}
}

func TestSPIDPreValidator_UnparsableResponse(t *testing.T) {
	pre := NewSPIDPreValidator(testConfig(), nil, nil)
	_, _, err := pre.PreValidate(context.Background(), []byte("<not xml"), NewInMemoryCorrelationCache())

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrCodeValidationRejected {
		t.Errorf("PreValidate() error = %v, want validation_rejected", err)
	}
}
