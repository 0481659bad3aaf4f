package spid

import (
	"github.com/mamacrowd/io-spid-commons/internal/adapters/driven/signature"
	"github.com/mamacrowd/io-spid-commons/internal/adapters/driven/validator"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// Re-export signing port and adapters
type MetadataSigner = ports.MetadataSigner
type XMLDsigSigner = signature.XMLDsigSigner
type NoopSigner = signature.NoopSigner

var (
	NewXMLDsigSigner = signature.NewXMLDsigSigner
	NewNoopSigner    = signature.NewNoopSigner
)

// Re-export key material helpers
var (
	LoadPrivateKey      = signature.LoadPrivateKey
	LoadCertificate     = signature.LoadCertificate
	ParsePrivateKey     = signature.ParsePrivateKey
	ParseCertificate    = signature.ParseCertificate
	CleanCertificate    = signature.CleanCertificate
	CleanCertificatePEM = signature.CleanCertificatePEM
)

// Re-export validation ports and the crewjam-backed adapter
type ResponseValidator = ports.ResponseValidator
type PreValidator = ports.PreValidator
type ExtraParamsMapper = ports.ExtraParamsMapper
type CrewjamValidator = validator.CrewjamValidator

var NewCrewjamValidator = validator.NewCrewjamValidator
