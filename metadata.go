package spid

import (
	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamacrowd/io-spid-commons/internal/adapters/driven/metrics"
	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// MetadataShaper rewrites generated service-provider metadata to satisfy the
// profile (signing flags, attribute consuming service, organization block)
// and produces a signed document through the injected signer.
type MetadataShaper struct {
	cfg     *Config
	signer  ports.MetadataSigner
	logger  *zap.Logger
	metrics ports.MetricsRecorder
}

// NewMetadataShaper creates a shaper. logger and recorder may be nil.
func NewMetadataShaper(cfg *Config, signer ports.MetadataSigner, logger *zap.Logger, recorder ports.MetricsRecorder) *MetadataShaper {
	if recorder == nil {
		recorder = metrics.NewNoopMetricsRecorder()
	}
	return &MetadataShaper{
		cfg:     cfg,
		signer:  signer,
		logger:  logger,
		metrics: recorder,
	}
}

// Shape applies the profile's metadata edits and returns the signed
// document. Fails with a configuration error when no signing key is
// configured.
func (m *MetadataShaper) Shape(metadataXML []byte) ([]byte, error) {
	signed, err := m.shape(metadataXML)
	m.metrics.RecordMetadataSigned(err == nil)
	if err == nil && m.logger != nil {
		m.logger.Info("metadata shaped and signed",
			zap.String("entity_id", m.cfg.EntityID))
	}
	return signed, err
}

func (m *MetadataShaper) shape(metadataXML []byte) ([]byte, error) {
	if m.cfg.PrivateKey == nil {
		return nil, domain.ConfigError("metadata signing requires a private key")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(metadataXML); err != nil {
		return nil, domain.ShapingError("failed to parse metadata XML", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, domain.ShapingError("metadata XML has no root element", nil)
	}

	descriptor := findFirst(root, "SPSSODescriptor")
	if descriptor == nil {
		return nil, domain.ShapingError("metadata has no SPSSODescriptor element", nil)
	}

	// The profile requires signed requests and assertions, full stop.
	descriptor.CreateAttr("AuthnRequestsSigned", "true")
	descriptor.CreateAttr("WantAssertionsSigned", "true")

	services := findAll(descriptor, "AssertionConsumerService")
	if len(services) == 0 {
		return nil, domain.ShapingError("metadata has no AssertionConsumerService element", nil)
	}
	primary := services[0]
	primary.CreateAttr("index", "0")
	primary.CreateAttr("isDefault", "true")

	m.rebuildAttributeConsumingService(descriptor, primary)
	m.rebuildOrganization(root)

	root.CreateAttr("entityID", m.cfg.EntityID)
	root.CreateAttr("ID", "_"+uuid.NewString())

	shaped, err := doc.WriteToBytes()
	if err != nil {
		return nil, domain.ShapingError("failed to serialize shaped metadata", err)
	}

	return m.signer.Sign(shaped)
}

// rebuildAttributeConsumingService replaces any existing block with one
// built from the configured service name and required attributes.
func (m *MetadataShaper) rebuildAttributeConsumingService(descriptor, primary *etree.Element) {
	for _, existing := range findAll(descriptor, "AttributeConsumingService") {
		if parent := existing.Parent(); parent != nil {
			parent.RemoveChild(existing)
		}
	}
	if len(m.cfg.RequiredAttributes) == 0 {
		return
	}

	acs := etree.NewElement("AttributeConsumingService")
	acs.Space = descriptor.Space
	acs.CreateAttr("index", "0")

	name := createChild(acs, "ServiceName")
	name.CreateAttr("xml:lang", m.cfg.Organization.Lang)
	name.SetText(m.serviceName())

	for _, attr := range m.cfg.RequiredAttributes {
		requested := createChild(acs, "RequestedAttribute")
		requested.CreateAttr("Name", attr)
	}

	// Schema order: AttributeConsumingService follows the ACS endpoints.
	descriptor.InsertChildAt(primary.Index()+1, acs)
}

func (m *MetadataShaper) serviceName() string {
	if m.cfg.AttributeServiceName != "" {
		return m.cfg.AttributeServiceName
	}
	return m.cfg.Organization.DisplayName
}

// rebuildOrganization replaces any Organization block with one built from
// config.
func (m *MetadataShaper) rebuildOrganization(root *etree.Element) {
	for _, existing := range findAll(root, "Organization") {
		if parent := existing.Parent(); parent != nil {
			parent.RemoveChild(existing)
		}
	}
	org := m.cfg.Organization
	if org.Name == "" && org.DisplayName == "" && org.URL == "" {
		return
	}

	el := createChild(root, "Organization")
	lang := org.Lang

	name := createChild(el, "OrganizationName")
	name.CreateAttr("xml:lang", lang)
	name.SetText(org.Name)

	display := createChild(el, "OrganizationDisplayName")
	display.CreateAttr("xml:lang", lang)
	display.SetText(org.DisplayName)

	orgURL := createChild(el, "OrganizationURL")
	orgURL.CreateAttr("xml:lang", lang)
	orgURL.SetText(org.URL)
}
