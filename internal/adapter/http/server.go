package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bairigao/video-transcoding/internal/adapter/http/middleware"
	"github.com/bairigao/video-transcoding/internal/adapter/http/ratelimit"
)

type Config struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	BehindProxy    bool
	// LoginBackoff delays failed login responses. Nil uses the default.
	LoginBackoff *ratelimit.Backoff
}

type Server struct {
	router   chi.Router
	handlers *Handlers
	auth     AuthService
	limiter  *ratelimit.LoginRateLimiter
	failures *ratelimit.FailureTracker
	backoff  *ratelimit.Backoff
	cfg      Config
}

func NewServer(auth AuthService, transcodes TranscodeService, videos VideoService, cfg Config) *Server {
	if cfg.LoginBackoff == nil {
		cfg.LoginBackoff = ratelimit.NewBackoff(500*time.Millisecond, 10*time.Second, 2.0)
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		router:   chi.NewRouter(),
		handlers: NewHandlers(transcodes, videos, cfg.MaxUploadBytes),
		auth:     auth,
		limiter:  ratelimit.NewLoginRateLimiter(5, 15*time.Minute, 30*time.Minute),
		failures: ratelimit.NewFailureTracker(),
		backoff:  cfg.LoginBackoff,
		cfg:      cfg,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router

	r.Use(chimw.RequestID)
	if s.cfg.BehindProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "Retry-After"},
		MaxAge:         300,
	}))

	r.Post("/auth/login", LoginHandler(s.auth, s.limiter, s.failures, s.backoff))
	r.Get("/api/transcode/health", s.handlers.Health())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(s.auth))

		r.Post("/api/videos", s.handlers.UploadVideo())
		r.Get("/api/videos", s.handlers.ListVideos())
		r.Delete("/api/videos/{videoId}", s.handlers.DeleteVideo())

		r.Post("/api/transcode", s.handlers.Transcode())
		r.Get("/api/jobs", s.handlers.ListJobs())
		r.Get("/api/jobs/{jobId}/status", s.handlers.JobStatus())
		r.Delete("/api/jobs/{jobId}", s.handlers.DeleteJob())

		r.Get("/api/download/original/{filename}", s.handlers.DownloadOriginal())
		r.Get("/api/download/transcoded/{filename}", s.handlers.DownloadTranscoded())
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// RunMaintenance prunes login rate limit state until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context) {
	s.limiter.Run(ctx, time.Minute)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
