package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bairigao/video-transcoding/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, filepath.Join(dir, "uploads"), cfg.UploadsDir)
	assert.Equal(t, filepath.Join(dir, "transcoded"), cfg.TranscodedDir)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "transcoder.db"), cfg.Database.URL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "ffmpeg", cfg.FFmpeg.Path)
	assert.Equal(t, domain.DefaultFormats, cfg.Formats())
	assert.NoError(t, cfg.RequireSecret())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("UPLOADS_DIR", "/srv/in")
	t.Setenv("TRANSCODED_DIR", "/srv/out")
	t.Setenv("ALLOWED_FORMATS", "MP4, webm")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/videos")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "/srv/in", cfg.UploadsDir)
	assert.Equal(t, "/srv/out", cfg.TranscodedDir)
	assert.Equal(t, []domain.Format{domain.FormatMP4, domain.FormatWebM}, cfg.Formats())
	assert.Equal(t, "postgres://u:p@localhost:5432/videos", cfg.Database.URL)
	assert.Error(t, cfg.RequireSecret())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad port", env: map[string]string{"PORT": "0"}},
		{name: "non numeric port", env: map[string]string{"PORT": "abc"}},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "postgres without url", env: map[string]string{"DB_DRIVER": "postgres"}},
		{name: "no formats", env: map[string]string{"ALLOWED_FORMATS": " , "}},
		{name: "bad upload size", env: map[string]string{"MAX_UPLOAD_SIZE_MB": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
