// Package validation checks uploaded files and names before they touch disk
// or response headers.
package validation

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

// ErrDisallowedFileType is returned when an upload is not a recognised video.
var ErrDisallowedFileType = errors.New("file type not allowed")

var allowedMIMETypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
	"video/x-msvideo":  true,
	"video/x-flv":      true,
	"video/x-ms-wmv":   true,
}

const sniffLen = 512

var asfHeader = []byte{0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11}

// ValidateMagicBytes sniffs the first bytes of r and reports the detected
// MIME type and whether it is an accepted video container. r is rewound
// before returning.
func ValidateMagicBytes(r io.ReadSeeker) (mime string, allowed bool, err error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}
	if n == 0 {
		return "application/octet-stream", false, nil
	}

	buf = buf[:n]
	mime = sniffVideo(buf)
	if mime == "" {
		mime = http.DetectContentType(buf)
	}
	return mime, allowedMIMETypes[mime], nil
}

func sniffVideo(buf []byte) string {
	switch {
	case len(buf) >= 12 && bytes.Equal(buf[4:8], []byte("ftyp")):
		if string(buf[8:12]) == "qt  " {
			return "video/quicktime"
		}
		return "video/mp4"
	case bytes.HasPrefix(buf, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		// EBML: the DocType element tells Matroska from WebM.
		if bytes.Contains(buf, []byte("matroska")) {
			return "video/x-matroska"
		}
		return "video/webm"
	case len(buf) >= 12 && bytes.HasPrefix(buf, []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("AVI ")):
		return "video/x-msvideo"
	case bytes.HasPrefix(buf, []byte("FLV\x01")):
		return "video/x-flv"
	case bytes.HasPrefix(buf, asfHeader):
		return "video/x-ms-wmv"
	}
	return ""
}
