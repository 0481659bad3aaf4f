package spid

import (
	"strings"

	"github.com/beevik/etree"
)

// findFirst returns the first element in document order whose tag matches,
// ignoring namespace prefixes, or nil. SPID identity providers are not
// consistent about prefixes (samlp:, saml2p:, none), so structural edits
// match on the local name only.
func findFirst(el *etree.Element, tag string) *etree.Element {
	if el.Tag == tag {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element whose tag matches, ignoring prefixes.
func findAll(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	if el.Tag == tag {
		out = append(out, el)
	}
	for _, child := range el.ChildElements() {
		out = append(out, findAll(child, tag)...)
	}
	return out
}

// createChild creates a child element carrying the parent's namespace prefix,
// so shaped documents keep whatever prefixing convention they arrived with.
func createChild(parent *etree.Element, tag string) *etree.Element {
	if parent.Space != "" {
		return parent.CreateElement(parent.Space + ":" + tag)
	}
	return parent.CreateElement(tag)
}

// elementText returns the trimmed text of the first matching element, or "".
func elementText(el *etree.Element, tag string) string {
	found := findFirst(el, tag)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text())
}
