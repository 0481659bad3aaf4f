package domain

import "time"

// CorrelationEntry ties an outbound AuthnRequest to its eventual response.
// One entry exists per outstanding request; the request ID (the ID attribute
// of the request XML) is the primary key. Entry existence is the sole replay
// protection signal: an entry is created when the request is shaped, and
// removed exactly once when the matching response is consumed.
type CorrelationEntry struct {
	// RequestID is the unique identifier extracted from the request XML.
	RequestID string `json:"requestId"`

	// RequestXML is the exact shaped XML sent to the identity provider,
	// retained for replay and audit checks.
	RequestXML string `json:"requestXml"`

	// CreatedAt is when the entry was stored; used for age policies.
	CreatedAt time.Time `json:"createdAt"`

	// IDPIssuer is the identity provider the request was sent to. The
	// response issuer must match it.
	IDPIssuer string `json:"idpIssuer"`

	// ExtraLoginRequestParams holds opaque caller-supplied key/value pairs
	// threaded through to the authenticated user profile.
	ExtraLoginRequestParams map[string]string `json:"extraLoginRequestParams,omitempty"`
}

// Expired reports whether the entry is older than maxAge at the given instant.
// A non-positive maxAge means entries never age out locally (the backing
// store's own TTL still applies).
func (e *CorrelationEntry) Expired(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.After(e.CreatedAt.Add(maxAge))
}

// UserProfile is the authenticated user produced by response validation.
// Subject, Issuer, SessionIndex and Attributes come from the external SAML
// validator; ExtraLoginRequestParams is filled from the consumed correlation
// entry. The entry's bookkeeping fields (request XML, creation time, IdP
// issuer) are never copied into the profile.
type UserProfile struct {
	Subject                 string
	Issuer                  string
	SessionIndex            string
	Attributes              map[string]string
	ExtraLoginRequestParams map[string]string
}
