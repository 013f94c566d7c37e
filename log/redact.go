package log

import "strings"

// RedactString keeps a short prefix of a secret so log lines can still be
// correlated without leaking the value.
func RedactString(s string) string {
	const keep = 4
	if len(s) <= keep {
		return strings.Repeat("*", len(s))
	}
	return s[:keep] + strings.Repeat("*", len(s)-keep)
}
