package trader

import (
	"regexp"
	"strings"
)

// panPattern is the Indian PAN layout: five letters, four digits, one letter.
var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// NormalizePan uppercases a candidate PAN. Only case is normalized;
// whitespace is not stripped, so " ABCDE1234F " stays invalid. Validation
// always runs on the normalized form, which is also what gets stored.
func NormalizePan(pan string) string {
	return strings.ToUpper(pan)
}

// ValidPan reports whether the candidate matches the PAN format after
// normalization. Rejection here is local; no lookup is made.
func ValidPan(pan string) bool {
	return panPattern.MatchString(NormalizePan(pan))
}
