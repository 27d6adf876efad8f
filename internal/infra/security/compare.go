package security

import "crypto/subtle"

// ConstantTimeEquals compares two secrets in time independent of where a
// mismatch occurs. When lengths differ it still runs a dummy comparison of
// the expected value against itself, so a caller measuring response time
// cannot tell "wrong length" from "wrong content".
func ConstantTimeEquals(provided, expected string) bool {
	p := []byte(provided)
	e := []byte(expected)

	if len(p) != len(e) {
		subtle.ConstantTimeCompare(e, e)
		return false
	}

	return subtle.ConstantTimeCompare(p, e) == 1
}
