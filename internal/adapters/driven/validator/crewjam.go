// Package validator adapts the generic SAML library's response validation
// to the ResponseValidator port. All signature and assertion structural
// checks happen inside crewjam/saml; this adapter only maps the validated
// assertion into the domain user profile.
package validator

import (
	"context"

	"github.com/crewjam/saml"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// CrewjamValidator validates SAML responses through a configured
// crewjam/saml service provider.
type CrewjamValidator struct {
	sp *saml.ServiceProvider
}

// NewCrewjamValidator creates a validator on the given service provider.
// The service provider must carry the IdP metadata used to verify response
// signatures.
func NewCrewjamValidator(sp *saml.ServiceProvider) *CrewjamValidator {
	return &CrewjamValidator{sp: sp}
}

// Validate checks the decoded response XML and returns the authenticated
// user. Rejections are reported as validation_rejected errors.
func (v *CrewjamValidator) Validate(ctx context.Context, response []byte, possibleRequestIDs []string) (*domain.UserProfile, error) {
	assertion, err := v.sp.ParseXMLResponse(response, possibleRequestIDs)
	if err != nil {
		return nil, domain.ValidationError("SAML response validation failed", err)
	}
	return profileFromAssertion(assertion), nil
}

// profileFromAssertion maps a validated assertion to a user profile.
// Attribute keys prefer FriendlyName over Name, matching how SPID attribute
// sets are usually consumed.
func profileFromAssertion(assertion *saml.Assertion) *domain.UserProfile {
	profile := &domain.UserProfile{
		Attributes: make(map[string]string),
	}

	if assertion.Subject != nil && assertion.Subject.NameID != nil {
		profile.Subject = assertion.Subject.NameID.Value
	}
	profile.Issuer = assertion.Issuer.Value

	for _, stmt := range assertion.AttributeStatements {
		for _, attr := range stmt.Attributes {
			if len(attr.Values) == 0 {
				continue
			}
			key := attr.FriendlyName
			if key == "" {
				key = attr.Name
			}
			profile.Attributes[key] = attr.Values[0].Value
		}
	}

	for _, stmt := range assertion.AuthnStatements {
		if stmt.SessionIndex != "" {
			profile.SessionIndex = stmt.SessionIndex
			break
		}
	}

	return profile
}

var _ ports.ResponseValidator = (*CrewjamValidator)(nil)
