package ports

import (
	"context"
	"net/http"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
)

// ResponseValidator is the boundary to the external SAML library's response
// validation (signature and assertion structural checks). The conformance
// layer never inspects cryptographic material itself.
type ResponseValidator interface {
	// Validate checks the decoded response XML against the given candidate
	// request IDs and returns the authenticated user on success.
	Validate(ctx context.Context, response []byte, possibleRequestIDs []string) (*domain.UserProfile, error)
}

// PreValidator is the profile-specific hook invoked before cryptographic
// validation. It must consult the cache to resolve the response's
// InResponseTo against a correlation entry and report whether the response
// is acceptable along with the matched request ID.
type PreValidator interface {
	// PreValidate returns (valid, matchedRequestID, err). A returned error
	// stops response handling before the external validator runs.
	PreValidate(ctx context.Context, response []byte, cache CorrelationCache) (bool, string, error)
}

// ExtraParamsMapper derives opaque caller parameters from the originating
// HTTP request, to be threaded through the correlation entry into the final
// user profile. Zero or one mapper is attached to a request shaper.
type ExtraParamsMapper interface {
	// Map extracts the extra parameters. Errors are logged and swallowed
	// by the shaper; they never abort the outbound flow.
	Map(r *http.Request) (map[string]string, error)
}
