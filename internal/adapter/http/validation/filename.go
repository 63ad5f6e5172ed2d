package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFilenameLength = 255

// SanitizeFilename makes name safe for a Content-Disposition header. It
// replaces control characters, quotes and path separators with '_', keeps
// other Unicode, truncates to 255 bytes keeping the extension and falls
// back to "file" when nothing usable remains.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f, r == utf8.RuneError:
			return '_'
		case r == '"', r == '\\', r == '/', r == ':':
			return '_'
		}
		return r
	}, name)

	cleaned = strings.TrimSpace(cleaned)
	if strings.Trim(cleaned, "_") == "" {
		return "file"
	}
	if len(cleaned) > maxFilenameLength {
		cleaned = truncateKeepingExt(cleaned)
	}
	return cleaned
}

func truncateKeepingExt(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) >= maxFilenameLength {
		return truncateUTF8(name, maxFilenameLength)
	}
	base := strings.TrimSuffix(name, ext)
	return truncateUTF8(base, maxFilenameLength-len(ext)) + ext
}

// truncateUTF8 cuts s to at most n bytes on a rune boundary.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ContentDisposition builds an attachment (or inline) header value for
// filename. Non-ASCII names get an ASCII fallback plus an RFC 5987
// filename* parameter.
func ContentDisposition(filename string, inline bool) string {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}

	name := SanitizeFilename(filename)
	if isASCII(name) {
		return fmt.Sprintf(`%s; filename="%s"`, disposition, name)
	}
	return fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`, disposition, asciiFallback(name), encodeRFC5987(name))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func asciiFallback(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf || !unicode.IsPrint(r) {
			return '_'
		}
		return r
	}, s)
}

func encodeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
