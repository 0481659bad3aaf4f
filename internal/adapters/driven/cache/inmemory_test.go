//go:build unit

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
)

const testRequestXML = `<samlp:AuthnRequest xmlns:samlp="urn:oasis:names:tc:SAML:2.0:protocol" ID="_abc123" Version="2.0"><saml:Issuer xmlns:saml="urn:oasis:names:tc:SAML:2.0:assertion">https://sp.example.com</saml:Issuer></samlp:AuthnRequest>`

// TestInMemory_SaveGetRoundtrip verifies a saved entry comes back intact.
func TestInMemory_SaveGetRoundtrip(t *testing.T) {
	c := NewInMemoryCorrelationCache()
	ctx := context.Background()

	extra := map[string]string{"clientId": "42"}
	saved, err := c.Save(ctx, testRequestXML, "https://idp.example/", extra)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if saved.RequestID != "_abc123" {
		t.Errorf("RequestID = %q, want %q", saved.RequestID, "_abc123")
	}

	got, err := c.Get(ctx, "_abc123")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.RequestXML != testRequestXML {
		t.Error("RequestXML changed across the roundtrip")
	}
	if got.IDPIssuer != "https://idp.example/" {
		t.Errorf("IDPIssuer = %q", got.IDPIssuer)
	}
	if got.ExtraLoginRequestParams["clientId"] != "42" {
		t.Errorf("ExtraLoginRequestParams = %v", got.ExtraLoginRequestParams)
	}
}

// TestInMemory_SaveRejectsMalformedXML verifies Save fails when no request ID
// can be extracted.
func TestInMemory_SaveRejectsMalformedXML(t *testing.T) {
	c := NewInMemoryCorrelationCache()
	ctx := context.Background()

	tests := []struct {
		name string
		xml  string
	}{
		{"not xml", "not xml at all <"},
		{"no id attribute", `<samlp:AuthnRequest xmlns:samlp="urn:oasis:names:tc:SAML:2.0:protocol"/>`},
		{"empty", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Save(ctx, tc.xml, "https://idp.example/", nil); err == nil {
				t.Error("Save() should fail")
			}
		})
	}
}

// TestInMemory_GetUnknown verifies a miss is ErrEntryNotFound, never a hard
// error or a fabricated entry.
func TestInMemory_GetUnknown(t *testing.T) {
	c := NewInMemoryCorrelationCache()

	entry, err := c.Get(context.Background(), "_never_saved")
	if !domain.IsNotFound(err) {
		t.Errorf("Get() error = %v, want ErrEntryNotFound", err)
	}
	if entry != nil {
		t.Error("Get() should not fabricate an entry")
	}
}

// TestInMemory_RemoveIdempotent verifies removing an absent ID is not an
// error and a removed entry stays gone.
func TestInMemory_RemoveIdempotent(t *testing.T) {
	c := NewInMemoryCorrelationCache()
	ctx := context.Background()

	if err := c.Remove(ctx, "_absent"); err != nil {
		t.Errorf("Remove() of absent ID failed: %v", err)
	}

	if _, err := c.Save(ctx, testRequestXML, "https://idp.example/", nil); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := c.Remove(ctx, "_abc123"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if _, err := c.Get(ctx, "_abc123"); !domain.IsNotFound(err) {
		t.Errorf("Get() after Remove() = %v, want ErrEntryNotFound", err)
	}
	if err := c.Remove(ctx, "_abc123"); err != nil {
		t.Errorf("second Remove() failed: %v", err)
	}
}

// TestInMemory_Expiry verifies entries age out after the TTL.
func TestInMemory_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewInMemoryCorrelationCache(WithClock(clock), WithTTL(10*time.Minute))
	ctx := context.Background()

	if _, err := c.Save(ctx, testRequestXML, "https://idp.example/", nil); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	clock.Advance(9 * time.Minute)
	if _, err := c.Get(ctx, "_abc123"); err != nil {
		t.Fatalf("Get() before expiry failed: %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, err := c.Get(ctx, "_abc123"); !domain.IsNotFound(err) {
		t.Errorf("Get() after expiry = %v, want ErrEntryNotFound", err)
	}
}

// TestInMemory_ConsumeOnce verifies Consume returns the entry exactly once.
func TestInMemory_ConsumeOnce(t *testing.T) {
	c := NewInMemoryCorrelationCache()
	ctx := context.Background()

	if _, err := c.Save(ctx, testRequestXML, "https://idp.example/", nil); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	entry, err := c.Consume(ctx, "_abc123")
	if err != nil {
		t.Fatalf("Consume() failed: %v", err)
	}
	if entry.RequestID != "_abc123" {
		t.Errorf("RequestID = %q", entry.RequestID)
	}

	if _, err := c.Consume(ctx, "_abc123"); !domain.IsNotFound(err) {
		t.Errorf("second Consume() = %v, want ErrEntryNotFound", err)
	}
	if _, err := c.Get(ctx, "_abc123"); !domain.IsNotFound(err) {
		t.Errorf("Get() after Consume() = %v, want ErrEntryNotFound", err)
	}
}

// TestInMemory_CleanupLoop verifies the background sweep evicts expired
// entries.
func TestInMemory_CleanupLoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	swept := make(chan int, 1)

	c := NewInMemoryCorrelationCacheWithCleanup(time.Minute,
		WithClock(clock),
		WithTTL(10*time.Minute),
		WithOnCleanup(func(removed int) { swept <- removed }),
	)
	defer c.Close()

	if _, err := c.Save(context.Background(), testRequestXML, "https://idp.example/", nil); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// Let the cleanup goroutine reach its ticker before advancing.
	clock.BlockUntil(1)
	clock.Advance(11 * time.Minute)

	select {
	case removed := <-swept:
		if removed != 1 {
			t.Errorf("cleanup removed %d entries, want 1", removed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup pass did not run")
	}

	if c.Len() != 0 {
		t.Errorf("Len() = %d after cleanup, want 0", c.Len())
	}
}
