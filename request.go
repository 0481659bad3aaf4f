package spid

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/mamacrowd/io-spid-commons/internal/adapters/driven/metrics"
	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// Headers carrying optional key-binding material on the originating request.
const (
	PubKeyHeader         = "X-Spid-Pub-Key"
	PubKeyHashAlgoHeader = "X-Spid-Pub-Key-Hash-Algo"
)

// nameIDFormatEntity is the fixed Issuer format required by the profile.
const nameIDFormatEntity = "urn:oasis:names:tc:SAML:2.0:nameid-format:entity"

// keyBindingNamespace is the namespace of the key-binding extension attached
// to shaped requests.
const keyBindingNamespace = "https://spid.gov.it/saml-extensions"

// AuthnRequestShaper rewrites freshly generated AuthnRequest XML to satisfy
// the profile's structural rules and records a correlation entry for it. A
// request must never be sent without its entry: an un-cached response can
// never be validated, so a cache write failure aborts the outbound flow.
type AuthnRequestShaper struct {
	cfg     *Config
	cache   ports.CorrelationCache
	mapper  ports.ExtraParamsMapper
	logger  *zap.Logger
	metrics ports.MetricsRecorder
}

// NewAuthnRequestShaper creates a shaper. mapper may be nil (no extra
// parameters); logger may be nil (silent); recorder may be nil (no metrics).
func NewAuthnRequestShaper(cfg *Config, cache ports.CorrelationCache, mapper ports.ExtraParamsMapper, logger *zap.Logger, recorder ports.MetricsRecorder) *AuthnRequestShaper {
	if recorder == nil {
		recorder = metrics.NewNoopMetricsRecorder()
	}
	return &AuthnRequestShaper{
		cfg:     cfg,
		cache:   cache,
		mapper:  mapper,
		logger:  logger,
		metrics: recorder,
	}
}

// Shape applies the profile's structural edits to the request XML, stores a
// correlation entry for it and returns the shaped XML ready for
// transmission along with the stored entry.
func (s *AuthnRequestShaper) Shape(ctx context.Context, requestXML string, r *http.Request) (string, *domain.CorrelationEntry, error) {
	shaped, err := s.shapeXML(requestXML, r)
	if err != nil {
		s.metrics.RecordRequestShaped(false)
		return "", nil, err
	}
	s.metrics.RecordRequestShaped(true)

	entry, err := s.cache.Save(ctx, shaped, s.cfg.IDPIssuer, s.extraParams(r))
	if err != nil {
		s.metrics.RecordCorrelationSaved(false)
		return "", nil, err
	}
	s.metrics.RecordCorrelationSaved(true)

	if s.logger != nil {
		s.logger.Debug("authn request shaped",
			zap.String("request_id", entry.RequestID),
			zap.String("idp_issuer", entry.IDPIssuer))
	}
	return shaped, entry, nil
}

// shapeXML performs the structural edits alone; it is a pure transform over
// the document and applying it twice yields the same XML.
func (s *AuthnRequestShaper) shapeXML(requestXML string, r *http.Request) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(requestXML); err != nil {
		return "", domain.ShapingError("failed to parse request XML", err)
	}
	root := doc.Root()
	if root == nil {
		return "", domain.ShapingError("request XML has no root element", nil)
	}

	// Rule 1: the profile forbids AllowCreate on NameIDPolicy.
	if policy := findFirst(root, "NameIDPolicy"); policy != nil {
		policy.RemoveAttr("AllowCreate")
	}

	// Rule 2: issuer qualifier and fixed entity format.
	issuer := findFirst(root, "Issuer")
	if issuer == nil {
		return "", domain.ShapingError("request XML has no Issuer element", nil)
	}
	issuer.CreateAttr("NameQualifier", s.cfg.Issuer)
	issuer.CreateAttr("Format", nameIDFormatEntity)

	// Rule 3: optional key binding from request headers.
	if r != nil {
		s.attachKeyBinding(root, issuer, r)
	}

	shaped, err := doc.WriteToString()
	if err != nil {
		return "", domain.ShapingError("failed to serialize shaped request", err)
	}
	return shaped, nil
}

// attachKeyBinding adds the key-binding extension when the caller presented
// a decodable public-key token. An unsupported hash algorithm falls back to
// the default rather than failing the request.
func (s *AuthnRequestShaper) attachKeyBinding(root, issuer *etree.Element, r *http.Request) {
	token := r.Header.Get(PubKeyHeader)
	if token == "" {
		return
	}
	if !decodesAsBase64(token) {
		if s.logger != nil {
			s.logger.Warn("ignoring undecodable public key token")
		}
		return
	}

	algoHeader := r.Header.Get(PubKeyHashAlgoHeader)
	algo, known := domain.ParseHashAlgorithm(algoHeader)
	if algoHeader != "" && !known && s.logger != nil {
		s.logger.Warn("unsupported key hash algorithm, using default",
			zap.String("requested", algoHeader),
			zap.String("default", string(domain.DefaultHashAlgorithm)))
	}

	// Reuse an existing Extensions element if the SAML library emitted one.
	ext := findFirst(root, "Extensions")
	if ext == nil {
		ext = etree.NewElement("Extensions")
		ext.Space = root.Space
		// Schema order: Extensions directly follows Issuer (and Signature).
		root.InsertChildAt(issuer.Index()+1, ext)
	}

	binding := ext.CreateElement("spid:KeyInfo")
	binding.CreateAttr("xmlns:spid", keyBindingNamespace)
	pubKey := binding.CreateElement("spid:PubKey")
	pubKey.CreateAttr("HashAlgorithm", string(algo))
	pubKey.SetText(token)
}

// extraParams runs the optional mapper. Mapper failures are swallowed: the
// outbound flow proceeds with no extra parameters.
func (s *AuthnRequestShaper) extraParams(r *http.Request) map[string]string {
	if s.mapper == nil || r == nil {
		return nil
	}
	params, err := s.mapper.Map(r)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("extra params mapper failed, continuing without",
				zap.Error(err))
		}
		return nil
	}
	return params
}

// decodesAsBase64 accepts both standard and unpadded URL-safe encodings.
func decodesAsBase64(token string) bool {
	if _, err := base64.StdEncoding.DecodeString(token); err == nil {
		return true
	}
	_, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil
}
