package domain

// HashAlgorithm identifies the hash algorithm declared alongside a
// key-binding public key. Only the enumerated values are accepted; anything
// else falls back to the default.
type HashAlgorithm string

const (
	HashSHA256 HashAlgorithm = "sha256"
	HashSHA384 HashAlgorithm = "sha384"
	HashSHA512 HashAlgorithm = "sha512"
)

// DefaultHashAlgorithm is used when the caller declares no algorithm or an
// unsupported one.
const DefaultHashAlgorithm = HashSHA256

// ParseHashAlgorithm maps a header value to a supported algorithm. Unknown or
// empty values yield the default; the second return reports whether the input
// was recognized.
func ParseHashAlgorithm(s string) (HashAlgorithm, bool) {
	switch HashAlgorithm(s) {
	case HashSHA256, HashSHA384, HashSHA512:
		return HashAlgorithm(s), true
	}
	return DefaultHashAlgorithm, false
}
