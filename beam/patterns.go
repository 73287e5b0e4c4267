package beam

import (
	"regexp"
	"strings"
)

// ============================================================================
// KEY PATTERNS — the naming scheme of beam-qualified conf keys
// ============================================================================
// Beam-qualified keys look like ROOT_BEAM[_SUFFIX]:
//
//	DISPL_A_0   root DISPL, beam A, range member 0
//	XOFF_+1     root XOFF, beam +1
//
// After the beam token is stripped, range members look like ROOT_DIGIT.
// ============================================================================

const (
	// BeamKeyPattern matches keys whose second underscore-delimited field is a
	// beam token: letters, an underscore, an optionally signed alphanumeric
	// character, optional trailing underscores. It is a prefix match.
	BeamKeyPattern = `^[a-zA-Z]*_(?:[+\-])?[a-zA-Z0-9]?_*`

	// RangeKeyPattern matches a stripped key ending in a single-digit range
	// suffix. Only 0 and 1 are valid members.
	RangeKeyPattern = `^([a-zA-Z]*)_([0-9])$`
)

var (
	beamKeyRe  = regexp.MustCompile(BeamKeyPattern)
	rangeKeyRe = regexp.MustCompile(RangeKeyPattern)
)

// MatchBeamKey reports whether key is beam-qualified and returns its
// uppercased beam token.
func MatchBeamKey(key string) (token string, ok bool) {
	if !beamKeyRe.MatchString(key) {
		return "", false
	}
	parts := strings.Split(key, "_")
	return strings.ToUpper(parts[1]), true
}

// StripBeam removes the first occurrence of "_"+token from key.
func StripBeam(key, token string) string {
	return strings.Replace(key, "_"+token, "", 1)
}

// MatchRangeKey splits a range key into its root and suffix digit.
func MatchRangeKey(key string) (root string, digit byte, ok bool) {
	m := rangeKeyRe.FindStringSubmatch(key)
	if m == nil {
		return "", 0, false
	}
	return m[1], m[2][0], true
}
