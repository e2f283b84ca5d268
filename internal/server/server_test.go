package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lifegraph/internal/config"
	"github.com/scrypster/lifegraph/internal/storage/sqlite"
)

func startTestServer(t *testing.T) string {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Security.Mode = "development"
	cfg.Security.EnableLimiter = false

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		time.Sleep(50 * time.Millisecond)
	})

	addr, _, err := Start(ctx, cfg, store, Options{})
	require.NoError(t, err)
	return "http://" + addr
}

func TestServer_HealthEndpoint(t *testing.T) {
	base := startTestServer(t)

	resp, err := http.Get(base + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestServer_PersonLifecycleOverHTTP(t *testing.T) {
	base := startTestServer(t)

	body, _ := json.Marshal(map[string]string{"name": "Alice"})
	resp, err := http.Post(base+"/api/people", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var person struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&person))
	require.NotEmpty(t, person.ID)

	getResp, err := http.Get(fmt.Sprintf("%s/api/people/%s", base, person.ID))
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	base := startTestServer(t)

	req, err := http.NewRequest(http.MethodPut, base+"/api/people", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_StatsEndpoint(t *testing.T) {
	base := startTestServer(t)

	resp, err := http.Get(base + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		People int `json:"people"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 0, stats.People)
}

func TestServer_ProductionModeRequiresToken(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Security.Mode = "production"
	cfg.Security.APIToken = "test-token"
	cfg.Security.EnableLimiter = false

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	addr, _, err := Start(ctx, cfg, store, Options{})
	require.NoError(t, err)
	base := "http://" + addr

	// No token: rejected.
	resp, err := http.Get(base + "/api/people")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Health stays open.
	resp, err = http.Get(base + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Valid bearer token: accepted.
	req, err := http.NewRequest(http.MethodGet, base+"/api/people", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer test-token")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
