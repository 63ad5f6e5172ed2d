package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/bairigao/video-transcoding/internal/domain"
)

type Config struct {
	Port            int           `envconfig:"PORT" default:"3000"`
	DataDir         string        `envconfig:"DATA_DIR" default:"./data"`
	UploadsDir      string        `envconfig:"UPLOADS_DIR"`
	TranscodedDir   string        `envconfig:"TRANSCODED_DIR"`
	MaxUploadSizeMB int           `envconfig:"MAX_UPLOAD_SIZE_MB" default:"500"`
	AllowedFormats  []string      `envconfig:"ALLOWED_FORMATS" default:"mp4,avi,mov,webm"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// BehindProxy trusts X-Forwarded-For / X-Real-IP for client addresses.
	BehindProxy bool `envconfig:"BEHIND_PROXY" default:"false"`

	Database Database
	Auth     Auth
	FFmpeg   FFmpeg
	Log      Log
	CORS     CORS
}

type Database struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"sqlite"`
	URL             string        `envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
}

type Auth struct {
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
}

type FFmpeg struct {
	Path      string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	ProbePath string `envconfig:"FFPROBE_PATH" default:"ffprobe"`
}

type Log struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"console"`
}

type CORS struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = filepath.Join(cfg.DataDir, "uploads")
	}
	if cfg.TranscodedDir == "" {
		cfg.TranscodedDir = filepath.Join(cfg.DataDir, "transcoded")
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.URL == "" {
		cfg.Database.URL = filepath.Join(cfg.DataDir, "transcoder.db")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireSecret reports whether the JWT secret is present. Only the
// server and token-issuing commands need it.
func (c *Config) RequireSecret() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// Formats returns the allowed target formats, lower-cased.
func (c *Config) Formats() []domain.Format {
	out := make([]domain.Format, 0, len(c.AllowedFormats))
	for _, f := range c.AllowedFormats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, domain.Format(f))
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE_MB: %d", c.MaxUploadSizeMB)
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if len(c.Formats()) == 0 {
		return errors.New("ALLOWED_FORMATS must name at least one format")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid TOKEN_TTL: %s", c.Auth.TokenTTL)
	}
	return nil
}
