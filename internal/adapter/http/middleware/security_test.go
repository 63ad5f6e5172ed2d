package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveWithHeaders(r *http.Request) *httptest.ResponseRecorder {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	rec := serveWithHeaders(httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	for header, want := range map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "no-referrer",
		"Permissions-Policy":           "camera=(), microphone=(), geolocation=()",
		"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'; sandbox",
		"Cross-Origin-Resource-Policy": "same-site",
	} {
		assert.Equal(t, want, rec.Header().Get(header), header)
	}
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	direct := httptest.NewRequest(http.MethodGet, "/", nil)
	direct.TLS = &tls.ConnectionState{}

	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")

	plainProxy := httptest.NewRequest(http.MethodGet, "/", nil)
	plainProxy.Header.Set("X-Forwarded-Proto", "http")

	assert.Equal(t, "max-age=31536000; includeSubDomains", serveWithHeaders(direct).Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", serveWithHeaders(proxied).Header().Get("Strict-Transport-Security"))
	assert.Empty(t, serveWithHeaders(plainProxy).Header().Get("Strict-Transport-Security"))
}
