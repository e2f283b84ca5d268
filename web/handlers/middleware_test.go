package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/lifegraph/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_DevelopmentModeBypasses(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.Mode = "development"

	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/people", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_ProductionRejectsMissingToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.Mode = "production"
	cfg.Security.APIToken = "secret-token"

	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/people", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ProductionAcceptsBearerToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.Mode = "production"
	cfg.Security.APIToken = "secret-token"

	req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_ProductionWithoutConfiguredTokenLocksDown(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.Mode = "production"

	req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit_EnforcesBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := RateLimitMiddleware(okHandler(), rl)

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/people", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
