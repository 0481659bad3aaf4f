package domain

// Level is a SPID authentication level, an ordinal strength-of-authentication
// indicator negotiated between request and response.
type Level string

const (
	LevelL1 Level = "SpidL1"
	LevelL2 Level = "SpidL2"
	LevelL3 Level = "SpidL3"
)

// AuthnContextByLevel maps each level to its authentication context URI.
var AuthnContextByLevel = map[Level]string{
	LevelL1: "https://www.spid.gov.it/SpidL1",
	LevelL2: "https://www.spid.gov.it/SpidL2",
	LevelL3: "https://www.spid.gov.it/SpidL3",
}

// LevelByAuthnContext is the inverse mapping, used when decoding the
// AuthnContextClassRef of an inbound response.
var LevelByAuthnContext = map[string]Level{
	"https://www.spid.gov.it/SpidL1": LevelL1,
	"https://www.spid.gov.it/SpidL2": LevelL2,
	"https://www.spid.gov.it/SpidL3": LevelL3,
}

// ForceAuthn reports whether the level requires forced re-authentication.
// Every level above the lowest does.
func (l Level) ForceAuthn() bool {
	return l != LevelL1
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	_, ok := AuthnContextByLevel[l]
	return ok
}

// AuthnLevelDecision is the outcome of level resolution: the authentication
// context to request and whether to force re-authentication. It is ephemeral
// and consumed immediately by request generation.
type AuthnLevelDecision struct {
	AuthnContextURI string
	ForceAuthn      bool
}

// DecisionForLevel builds the decision for a known level. The second return
// is false for unknown levels.
func DecisionForLevel(l Level) (AuthnLevelDecision, bool) {
	uri, ok := AuthnContextByLevel[l]
	if !ok {
		return AuthnLevelDecision{}, false
	}
	return AuthnLevelDecision{AuthnContextURI: uri, ForceAuthn: l.ForceAuthn()}, true
}
