package signature

import (
	"crypto"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// XMLDsigSigner signs SAML metadata using goxmldsig with RSA-SHA256
// signature and SHA-256 digest. The SPID profile additionally requires the
// ds:Signature element to be the first child of the signed root, so the
// enveloped signature is relocated after signing.
type XMLDsigSigner struct {
	privateKey  *rsa.PrivateKey
	certificate *x509.Certificate
}

// NewXMLDsigSigner creates a signer with the given key pair.
// Returns a configuration error if either part is missing.
func NewXMLDsigSigner(privateKey *rsa.PrivateKey, certificate *x509.Certificate) (*XMLDsigSigner, error) {
	if privateKey == nil {
		return nil, domain.ConfigError("metadata signing requires a private key")
	}
	if certificate == nil {
		return nil, domain.ConfigError("metadata signing requires a certificate")
	}
	return &XMLDsigSigner{
		privateKey:  privateKey,
		certificate: certificate,
	}, nil
}

// Sign adds an enveloped XML signature to the metadata and returns signed
// bytes with the signature as the document root's first child.
func (s *XMLDsigSigner) Sign(metadata []byte) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, domain.SignError("empty metadata", nil)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(metadata); err != nil {
		return nil, domain.SignError("failed to parse metadata XML", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, domain.SignError("empty XML document", nil)
	}

	tlsCert := tls.Certificate{
		Certificate: [][]byte{s.certificate.Raw},
		PrivateKey:  s.privateKey,
	}
	keyStore := dsig.TLSCertKeyStore(tlsCert)

	signingContext := dsig.NewDefaultSigningContext(keyStore)
	signingContext.Canonicalizer = dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
	if err := signingContext.SetSignatureMethod(dsig.RSASHA256SignatureMethod); err != nil {
		return nil, domain.SignError("failed to set signature method", err)
	}
	signingContext.Hash = crypto.SHA256

	signedRoot, err := signingContext.SignEnveloped(root)
	if err != nil {
		return nil, domain.SignError("failed to sign metadata", err)
	}

	// goxmldsig appends the signature as the last child; the profile wants
	// it first.
	prependSignature(signedRoot)

	doc.SetRoot(signedRoot)
	signedBytes, err := doc.WriteToBytes()
	if err != nil {
		return nil, domain.SignError("failed to serialize signed metadata", err)
	}
	return signedBytes, nil
}

// prependSignature moves the ds:Signature child of root to index 0.
func prependSignature(root *etree.Element) {
	for _, child := range root.ChildElements() {
		if child.Tag == "Signature" {
			root.RemoveChild(child)
			root.InsertChildAt(0, child)
			return
		}
	}
}

var _ ports.MetadataSigner = (*XMLDsigSigner)(nil)
