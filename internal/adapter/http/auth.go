package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bairigao/video-transcoding/internal/adapter/http/ratelimit"
	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
	"github.com/bairigao/video-transcoding/internal/service"
)

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GenerateToken(user *domain.User) (string, time.Time, error)
	ValidateToken(token string) (*service.Claims, error)
}

type requesterKey struct{}

// Requester is the authenticated user of a request.
type Requester struct {
	ID       int64
	Username string
}

func withRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// RequesterFrom returns the user set by RequireAuth.
func RequesterFrom(ctx context.Context) (Requester, bool) {
	r, ok := ctx.Value(requesterKey{}).(Requester)
	return r, ok
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's user in the request context.
func RequireAuth(auth AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, service.ErrExpiredToken) {
					msg = "Token expired"
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := withRequester(r.Context(), Requester{ID: claims.UserID, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=256"`
}

type loginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginHandler exchanges a username and password for a bearer token.
// Clients are rate limited, and each consecutive failure is answered more
// slowly.
func LoginHandler(auth AuthService, limiter *ratelimit.LoginRateLimiter, failures *ratelimit.FailureTracker, backoff *ratelimit.Backoff) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientID(r)

		if allowed, wait := limiter.Check(client); !allowed {
			logger.Warn.Printf("login rate limited for %s", logger.SanitizeForLog(client))
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
			writeError(w, http.StatusTooManyRequests, "Too many login attempts. Try again later.")
			return
		}

		var req loginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Username and password are required")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		user, err := auth.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidCreds) {
				logger.Error.Printf("login: %v", err)
				writeError(w, http.StatusInternalServerError, "Login failed")
				return
			}
			n := failures.RecordFailure(client)
			logger.Warn.Printf("failed login for %s from %s (%d consecutive)",
				logger.SanitizeForLog(req.Username), logger.SanitizeForLog(client), n)
			if !sleepCtx(r.Context(), backoff.Duration(n)) {
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, expires, err := auth.GenerateToken(user)
		if err != nil {
			logger.Error.Printf("login: %v", err)
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		failures.RecordSuccess(client)
		limiter.Reset(client)

		writeJSON(w, http.StatusOK, loginResponse{
			Message:   "Login successful",
			Token:     token,
			ExpiresAt: formatTime(expires),
			User:      userResponse{ID: user.ID, Username: user.Username},
		})
	}
}

// clientID is the remote host. With BEHIND_PROXY, chi's RealIP middleware
// has already rewritten RemoteAddr from the forwarding headers.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
