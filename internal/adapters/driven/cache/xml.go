package cache

import (
	"github.com/beevik/etree"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
)

// extractRequestID pulls the ID attribute from the root element of an
// AuthnRequest document. The shaped XML is stored verbatim, so the ID read
// here is exactly the one the identity provider will echo as InResponseTo.
func extractRequestID(requestXML string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(requestXML); err != nil {
		return "", domain.ShapingError("failed to parse request XML", err)
	}
	root := doc.Root()
	if root == nil {
		return "", domain.ShapingError("request XML has no root element", nil)
	}
	id := root.SelectAttrValue("ID", "")
	if id == "" {
		return "", domain.ShapingError("request XML has no ID attribute", nil)
	}
	return id, nil
}
