package domain

import (
	"crypto/rand"
	"math/big"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	randomSuffixLen = 13
	base36Alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"

	// Generated names must fit the 255-byte name limit of common
	// filesystems with room for the suffixes appended to the stem.
	maxStemBytes = 100
	maxExtBytes  = 16
)

// OutputFilename names the converted file for a source file name:
// <stem>_transcoded_<unix-ms>_<random>.<format>.
func OutputFilename(sourceFilename string, format Format, now time.Time) string {
	return stem(sourceFilename) + "_transcoded_" + uniqueToken(now) + "." + string(format)
}

// StoredUploadName names an uploaded file on disk, keeping its extension.
func StoredUploadName(originalName string, now time.Time) string {
	return stem(originalName) + "_" + uniqueToken(now) + extension(originalName)
}

// TranscodedDownloadName is the name offered to clients downloading a
// converted file.
func TranscodedDownloadName(format Format, filename string) string {
	return "transcoded_" + string(format) + "_" + filename
}

func stem(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 || base == "." || base == string(filepath.Separator) {
		return "video"
	}
	out := sb.String()
	if len(out) > maxStemBytes {
		out = out[:maxStemBytes]
	}
	return out
}

// extension returns the lower-cased extension of name, or "" when it is too
// long or not plain ASCII alphanumerics.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > maxExtBytes {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func uniqueToken(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + randomBase36(randomSuffixLen)
}

func randomBase36(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = base36Alphabet[v.Int64()]
	}
	return string(b)
}
