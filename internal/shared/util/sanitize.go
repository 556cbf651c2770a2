package util

import "strings"

// SanitizeID keeps only ASCII letters, digits and hyphens so the result is
// safe to use as a single path segment.
func SanitizeID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
