package validation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "clip.mp4", want: "clip.mp4"},
		{in: "My Holiday (2024).mov", want: "My Holiday (2024).mov"},
		{in: "vidéo 日本.webm", want: "vidéo 日本.webm"},
		{in: `bad"name.mp4`, want: "bad_name.mp4"},
		{in: `..\..\windows\evil.avi`, want: ".._.._windows_evil.avi"},
		{in: "../../etc/passwd", want: ".._.._etc_passwd"},
		{in: "C:video.mp4", want: "C_video.mp4"},
		{in: "line\r\nX-Injected: yes.mp4", want: "line__X-Injected_ yes.mp4"},
		{in: "tab\there.mp4", want: "tab_here.mp4"},
		{in: "  padded.mp4  ", want: "padded.mp4"},
		{in: "", want: "file"},
		{in: "   ", want: "file"},
		{in: `"/\:`, want: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := strings.Repeat("a", 300) + ".mp4"
	got := SanitizeFilename(long)
	assert.Len(t, got, maxFilenameLength)
	assert.True(t, strings.HasSuffix(got, ".mp4"))

	multibyte := strings.Repeat("é", 200) + ".webm"
	got = SanitizeFilename(multibyte)
	assert.LessOrEqual(t, len(got), maxFilenameLength)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, ".webm"))

	noExt := strings.Repeat("日", 100)
	got = SanitizeFilename(noExt)
	assert.LessOrEqual(t, len(got), maxFilenameLength)
	assert.True(t, utf8.ValidString(got))
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		inline   bool
		want     string
	}{
		{name: "attachment", filename: "transcoded_mp4_clip.mp4", want: `attachment; filename="transcoded_mp4_clip.mp4"`},
		{name: "inline", filename: "clip.webm", inline: true, want: `inline; filename="clip.webm"`},
		{name: "quotes replaced", filename: `a"b.mp4`, want: `attachment; filename="a_b.mp4"`},
		{name: "empty", filename: "", want: `attachment; filename="file"`},
		{
			name:     "non-ascii gets filename*",
			filename: "vidéo.mp4",
			want:     `attachment; filename="vid_o.mp4"; filename*=UTF-8''vid%C3%A9o.mp4`,
		},
		{
			name:     "spaces are percent encoded",
			filename: "日 1.mov",
			want:     `attachment; filename="_ 1.mov"; filename*=UTF-8''%E6%97%A5%201.mov`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentDisposition(tt.filename, tt.inline))
		})
	}
}

func TestContentDisposition_NoHeaderInjection(t *testing.T) {
	for _, name := range []string{
		`x"; filename="evil.exe`,
		"a\r\nSet-Cookie: s=1",
		"é\"\r\n.mp4",
	} {
		got := ContentDisposition(name, false)
		assert.NotContains(t, got, "\r")
		assert.NotContains(t, got, "\n")
		assert.Equal(t, 2, strings.Count(strings.SplitN(got, "; filename*=", 2)[0], `"`), got)
	}
}
