package ledger

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// referenceAlphabet excludes nothing: uppercase letters and digits, matching
// the codes printed on customer vouchers.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const referenceSuffixLength = 6

// ReferencePattern matches a well-formed booking reference such as RTX7K2P9.
var ReferencePattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{6}$`)

// NewReference generates a booking reference: the prefix followed by six
// random uppercase alphanumerics. Uniqueness is enforced by the database;
// callers retry on a duplicate key.
func NewReference(prefix string) (string, error) {
	buf := make([]byte, referenceSuffixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return prefix + string(buf), nil
}
