package ports

// MetadataSigner signs XML documents for SAML metadata.
// This is a port interface - implementations are adapters.
type MetadataSigner interface {
	// Sign adds an enveloped XML signature to the metadata and returns
	// the signed XML bytes.
	Sign(data []byte) ([]byte, error)
}
