package spid

import (
	"net/http"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
)

// AuthLevelParam is the query parameter carrying an explicit level selector.
const AuthLevelParam = "authLevel"

// Level re-exports the domain level type and tables for callers.
type Level = domain.Level

const (
	LevelL1 = domain.LevelL1
	LevelL2 = domain.LevelL2
	LevelL3 = domain.LevelL3
)

// AuthnLevelDecision re-exports the resolver outcome type.
type AuthnLevelDecision = domain.AuthnLevelDecision

// AuthnLevelResolver derives the authentication level and force-authn flag
// from a request's query parameters or from a decoded response. It is total:
// an unmappable selector is logged and treated as absence, never as an
// error.
type AuthnLevelResolver struct {
	logger *zap.Logger
}

// NewAuthnLevelResolver creates a resolver. logger may be nil.
func NewAuthnLevelResolver(logger *zap.Logger) *AuthnLevelResolver {
	return &AuthnLevelResolver{logger: logger}
}

// Resolve walks the fallback chain: explicit request selector first, then
// the response's AuthnContextClassRef. The second return is false when
// neither source yields a decision; the caller merges in defaults.
func (a *AuthnLevelResolver) Resolve(r *http.Request, response []byte) (AuthnLevelDecision, bool) {
	if r != nil {
		if decision, ok := a.FromRequest(r); ok {
			return decision, true
		}
	}
	if len(response) > 0 {
		if decision, ok := a.FromResponse(response); ok {
			return decision, true
		}
	}
	return AuthnLevelDecision{}, false
}

// FromRequest reads the explicit level selector from the query string.
func (a *AuthnLevelResolver) FromRequest(r *http.Request) (AuthnLevelDecision, bool) {
	selector := r.URL.Query().Get(AuthLevelParam)
	if selector == "" {
		return AuthnLevelDecision{}, false
	}
	decision, ok := domain.DecisionForLevel(domain.Level(selector))
	if !ok {
		if a.logger != nil {
			a.logger.Warn("unknown authentication level selector",
				zap.String("selector", selector))
		}
		return AuthnLevelDecision{}, false
	}
	return decision, true
}

// FromResponse extracts the AuthnContextClassRef from a decoded response and
// maps it back through the inverse level table.
func (a *AuthnLevelResolver) FromResponse(response []byte) (AuthnLevelDecision, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(response); err != nil {
		if a.logger != nil {
			a.logger.Warn("failed to parse response for level resolution",
				zap.Error(err))
		}
		return AuthnLevelDecision{}, false
	}
	root := doc.Root()
	if root == nil {
		return AuthnLevelDecision{}, false
	}

	contextURI := elementText(root, "AuthnContextClassRef")
	if contextURI == "" {
		return AuthnLevelDecision{}, false
	}
	level, ok := domain.LevelByAuthnContext[contextURI]
	if !ok {
		if a.logger != nil {
			a.logger.Warn("unknown authentication context in response",
				zap.String("authn_context", contextURI))
		}
		return AuthnLevelDecision{}, false
	}
	decision, _ := domain.DecisionForLevel(level)
	return decision, true
}

// DefaultDecision returns the decision for the configured default level.
func (a *AuthnLevelResolver) DefaultDecision(cfg *Config) AuthnLevelDecision {
	decision, ok := domain.DecisionForLevel(cfg.DefaultLevel)
	if !ok {
		decision, _ = domain.DecisionForLevel(domain.LevelL2)
	}
	return decision
}
