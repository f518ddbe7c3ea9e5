package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Domenick1991/seatflow/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServers_routes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seatflow.swagger.json"), []byte(`{"swagger":"2.0"}`), 0o644))

	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Address: ":0", SwaggerDir: dir},
		GRPC: config.GRPCConfig{Address: ":0"},
	}

	s, err := newServers(cfg, api)
	require.NoError(t, err)
	defer s.gatewayConn.Close()

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/seatflow.swagger.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"swagger":"2.0"}`, w.Body.String())

	w = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/flights", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestNewServers_withoutSwagger(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	cfg := &config.Config{GRPC: config.GRPCConfig{Address: ":0"}}

	s, err := newServers(cfg, api)
	require.NoError(t, err)
	defer s.gatewayConn.Close()

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDialTarget(t *testing.T) {
	assert.Equal(t, "localhost:9090", dialTarget(":9090"))
	assert.Equal(t, "grpc.internal:9090", dialTarget("grpc.internal:9090"))
}
