package spid

import (
	"context"

	"github.com/beevik/etree"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamacrowd/io-spid-commons/internal/adapters/driven/metrics"
	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// ResponseGuard drives an inbound response through pre-validation, external
// SAML validation and correlation-entry consumption. Each response
// terminates in exactly one of: an authenticated user profile with merged
// extra parameters, or a single error. The guard never returns a user whose
// correlation entry could not be cleanly retired.
type ResponseGuard struct {
	cache     ports.CorrelationCache
	validator ports.ResponseValidator
	pre       ports.PreValidator
	logger    *zap.Logger
	metrics   ports.MetricsRecorder
}

// NewResponseGuard creates a guard. pre is the profile-specific
// pre-validation hook; pass a SPIDPreValidator unless the caller supplies
// its own. logger and recorder may be nil.
func NewResponseGuard(cache ports.CorrelationCache, validator ports.ResponseValidator, pre ports.PreValidator, logger *zap.Logger, recorder ports.MetricsRecorder) *ResponseGuard {
	if recorder == nil {
		recorder = metrics.NewNoopMetricsRecorder()
	}
	return &ResponseGuard{
		cache:     cache,
		validator: validator,
		pre:       pre,
		logger:    logger,
		metrics:   recorder,
	}
}

// HandleResponse validates a decoded SAML response and, on the success path,
// consumes the matching correlation entry and merges its extra parameters
// into the user profile.
func (g *ResponseGuard) HandleResponse(ctx context.Context, response []byte) (*domain.UserProfile, error) {
	valid, requestID, err := g.pre.PreValidate(ctx, response, g.cache)
	if err != nil {
		g.record("", "mismatch")
		return nil, err
	}

	var possibleIDs []string
	if requestID != "" {
		possibleIDs = []string{requestID}
	}

	profile, err := g.validator.Validate(ctx, response, possibleIDs)
	if err != nil {
		g.record("", "rejected")
		return nil, err
	}

	// The hook said the response does not finalize an outstanding request:
	// forward the validator's result untouched and leave the cache alone.
	if !valid || requestID == "" {
		g.record(profile.Issuer, "success")
		return profile, nil
	}

	entry, err := g.consume(ctx, requestID)
	if err != nil {
		g.record(profile.Issuer, "error")
		return nil, err
	}
	g.metrics.RecordCorrelationConsumed()

	// Only the caller-supplied extras cross into the profile; request XML,
	// creation time and IdP issuer stay internal bookkeeping.
	profile.ExtraLoginRequestParams = entry.ExtraLoginRequestParams

	if g.logger != nil {
		g.logger.Info("response validated",
			zap.String("request_id", requestID),
			zap.String("subject", profile.Subject))
	}
	g.record(profile.Issuer, "success")
	return profile, nil
}

// consume retires the correlation entry, atomically when the cache supports
// it. A miss at this stage means a concurrent consumer won the race.
func (g *ResponseGuard) consume(ctx context.Context, requestID string) (*domain.CorrelationEntry, error) {
	if consumer, ok := g.cache.(ports.AtomicConsumer); ok {
		entry, err := consumer.Consume(ctx, requestID)
		if domain.IsNotFound(err) {
			return nil, domain.MismatchErrorf("correlation entry %q already consumed", requestID)
		}
		return entry, err
	}

	entry, err := g.cache.Get(ctx, requestID)
	if domain.IsNotFound(err) {
		return nil, domain.MismatchErrorf("correlation entry %q already consumed", requestID)
	}
	if err != nil {
		return nil, err
	}
	if err := g.cache.Remove(ctx, requestID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (g *ResponseGuard) record(idpIssuer, outcome string) {
	g.metrics.RecordResponseValidation(idpIssuer, outcome)
}

// SPIDPreValidator is the default pre-validation hook: it resolves the
// response's InResponseTo against the cache and checks the entry is live,
// within the request expiration window and consistent with the response
// issuer.
type SPIDPreValidator struct {
	cfg    *Config
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewSPIDPreValidator creates the default hook. clock may be nil (real
// clock); logger may be nil.
func NewSPIDPreValidator(cfg *Config, clock clockwork.Clock, logger *zap.Logger) *SPIDPreValidator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SPIDPreValidator{cfg: cfg, clock: clock, logger: logger}
}

// PreValidate resolves and checks the correlation entry for the response.
func (p *SPIDPreValidator) PreValidate(ctx context.Context, response []byte, cache ports.CorrelationCache) (bool, string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(response); err != nil {
		return false, "", domain.ValidationError("failed to parse SAML response", err)
	}
	root := doc.Root()
	if root == nil {
		return false, "", domain.ValidationError("SAML response has no root element", nil)
	}

	requestID := root.SelectAttrValue("InResponseTo", "")
	if requestID == "" {
		return false, "", domain.MismatchError("response carries no InResponseTo")
	}

	entry, err := cache.Get(ctx, requestID)
	if domain.IsNotFound(err) {
		return false, "", domain.MismatchErrorf("no correlation entry for request %q", requestID)
	}
	if err != nil {
		return false, "", err
	}

	if entry.Expired(p.clock.Now(), p.cfg.AuthnRequestExpiration.Std()) {
		return false, "", domain.MismatchErrorf("correlation entry for request %q has expired", requestID)
	}

	if issuer := elementText(root, "Issuer"); issuer != "" && entry.IDPIssuer != "" && issuer != entry.IDPIssuer {
		return false, "", domain.MismatchErrorf("response issuer %q does not match request issuer %q", issuer, entry.IDPIssuer)
	}

	if p.logger != nil {
		p.logger.Debug("response correlated",
			zap.String("request_id", requestID))
	}
	return true, requestID, nil
}

var _ ports.PreValidator = (*SPIDPreValidator)(nil)
