package service

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
	"github.com/bairigao/video-transcoding/internal/port"
)

// capabilitiesTTL bounds how often Health spawns the converter to list
// its formats and codecs.
const capabilitiesTTL = 30 * time.Second

// Messages reported by Health. Details are logged, never returned, since
// the health endpoint is public.
const (
	HealthConverterUnavailable = "converter unavailable"
	HealthStoreUnreachable     = "store unreachable"
)

type HealthReport struct {
	Healthy             bool
	FFmpegAvailable     bool
	FFmpegVersion       string
	FormatCount         int
	CodecCount          int
	AllowedFormats      []domain.Format
	UploadsDirExists    bool
	TranscodedDirExists bool
	StoreReachable      bool
	Error               string
}

type capabilitiesCache struct {
	mu      sync.Mutex
	caps    *port.Capabilities
	err     error
	fetched time.Time
}

// Health probes the converter, the working directories and the store.
func (s *TranscodeService) Health(ctx context.Context) *HealthReport {
	r := &HealthReport{
		AllowedFormats:      s.cfg.AllowedFormats,
		UploadsDirExists:    dirExists(s.cfg.UploadsDir),
		TranscodedDirExists: dirExists(s.cfg.TranscodedDir),
		StoreReachable:      true,
	}

	caps, err := s.capabilities(ctx)
	if err != nil {
		r.Error = HealthConverterUnavailable
	} else {
		r.FFmpegAvailable = true
		r.FFmpegVersion = caps.Version
		r.FormatCount = len(caps.Formats)
		r.CodecCount = len(caps.Codecs)
	}

	if p, ok := s.jobs.(port.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			logger.Warn.Printf("health: store ping: %v", err)
			r.StoreReachable = false
			if r.Error == "" {
				r.Error = HealthStoreUnreachable
			}
		}
	}

	r.Healthy = r.FFmpegAvailable && r.StoreReachable && r.UploadsDirExists && r.TranscodedDirExists
	return r
}

// capabilities returns the driver's capabilities, asking the driver again
// only once the cached answer is older than capabilitiesTTL.
func (s *TranscodeService) capabilities(ctx context.Context) (*port.Capabilities, error) {
	c := &s.caps
	c.mu.Lock()
	defer c.mu.Unlock()

	now := s.now()
	if !c.fetched.IsZero() && now.Sub(c.fetched) < capabilitiesTTL {
		return c.caps, c.err
	}

	c.caps, c.err = s.driver.DescribeCapabilities(ctx)
	if c.err != nil {
		logger.Warn.Printf("health: describe converter: %v", c.err)
		// Cancellation says nothing about the converter; don't pin it.
		if ctx.Err() != nil {
			return nil, c.err
		}
	}
	c.fetched = now
	return c.caps, c.err
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
