package places

import "crypto/rand"

const guidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GUIDLength is the fixed length of a places guid.
const GUIDLength = 12

// NewGUID returns a random 12-character alphanumeric guid in the format
// places uses for bookmark rows. Callers are responsible for checking
// uniqueness against the tree before storing it.
func NewGUID() string {
	buf := make([]byte, GUIDLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i := range buf {
		buf[i] = guidAlphabet[int(buf[i])%len(guidAlphabet)]
	}
	return string(buf)
}

// ValidGUID reports whether s has the places guid shape: exactly twelve
// alphanumeric characters.
func ValidGUID(s string) bool {
	if len(s) != GUIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
