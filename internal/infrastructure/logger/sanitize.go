package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SanitizeForLog escapes control characters in user-supplied text (file
// names, usernames) so a value cannot forge extra log lines or emit
// terminal escapes. Printable Unicode is kept as is.
func SanitizeForLog(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// UserString is a zap field whose value has been passed through SanitizeForLog.
func UserString(key, value string) zap.Field {
	return zap.String(key, SanitizeForLog(value))
}
