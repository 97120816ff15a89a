package utils

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a string from CamelCase to snake_case.
func ToSnakeCase(s string) string {
	var res strings.Builder
	res.Grow(len(s) + 5)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := rune(s[i-1])
				var next rune
				if i < len(s)-1 {
					next = rune(s[i+1])
				}

				if (!unicode.IsUpper(prev) && prev != '_') ||
					(unicode.IsUpper(prev) && next != 0 && !unicode.IsUpper(next) && next != '_') {
					res.WriteRune('_')
				}
			}
			res.WriteRune(unicode.ToLower(r))
		} else {
			res.WriteRune(r)
		}
	}
	return res.String()
}

// NormalizeIdentifier converts a name given to an expression (e.g. a kernel parameter) to one that
// can be safely printed in the IR dump and used by emitters as a symbol: only letters, digits, and
// underscores are kept.
//
// Other characters are replaced with underscores, and a leading digit is prefixed with an underscore.
func NormalizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(name) + 1)
	if name[0] >= '0' && name[0] <= '9' {
		sb.WriteByte('_')
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
