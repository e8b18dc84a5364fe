// Test utilities for the lsx commands.
//
// setupTestEnvWithHandler starts an httptest server, points LSX_ENDPOINT at
// it and exports LIGHTSPEED_TOKEN / LIGHTSPEED_DOMAIN_PREFIX, so a command
// such as
//
//	Execute(ctx, []string{"get", "/products"})
//
// sends GET {server}/api/2.0/products with "Authorization: Bearer test-token".
// Routes are registered on a routeHandler by exact "METHOD PATH":
//
//	handler := newRouteHandler().
//	    On("GET", "/api/2.0/products", jsonResponse(200, `{"data": []}`))
package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/99designs/keyring"

	"github.com/lsx-cli/lsx/internal/config"
)

const testToken = "test-token"

// captureStdout executes a function and captures its stdout output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr executes a function and captures its stderr output.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	_ = w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureOutput captures stdout and stderr of one call.
func captureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()
	stderr = captureStderr(t, func() {
		stdout = captureStdout(t, fn)
	})
	return stdout, stderr
}

// isolateEnv clears every variable the CLI reads and gives the test its own
// config directory and an in-memory keyring.
func isolateEnv(t *testing.T) *keyring.ArrayKeyring {
	t.Helper()
	for _, key := range []string{
		config.EnvToken, config.EnvDomainPrefix, config.EnvProfile,
		"LSX_OUTPUT", "LSX_TIMEOUT", "LSX_API_VERSION", "LSX_ENDPOINT",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	t.Setenv("LSX_CONFIG_DIR", t.TempDir())

	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
	return ring
}

// setupTestEnvWithHandler creates a mock store API and the environment that
// points the CLI at it.
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	isolateEnv(t)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("LSX_ENDPOINT", server.URL)
	t.Setenv(config.EnvToken, testToken)
	t.Setenv(config.EnvDomainPrefix, "teststore")
	return server
}

// jsonResponse creates an http.HandlerFunc that returns a JSON response with the given status and body.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes by exact "METHOD PATH" and answers 404 otherwise.
type routeHandler struct {
	routes map[string]http.HandlerFunc
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the given HTTP method and path.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := rh.routes[r.Method+" "+r.URL.Path]; ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

func TestTestInfrastructure(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/2.0/test", jsonResponse(200, `{"method": "get"}`))
	server := setupTestEnvWithHandler(t, handler)

	if os.Getenv("LSX_ENDPOINT") != server.URL {
		t.Error("LSX_ENDPOINT not set correctly")
	}

	resp, err := http.Get(server.URL + "/api/2.0/test")
	if err != nil {
		t.Fatalf("GET request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/2.0/unknown")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("expected 404 for unknown route, got %d", resp.StatusCode)
	}
}
