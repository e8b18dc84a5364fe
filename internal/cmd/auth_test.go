package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsx-cli/lsx/internal/config"
)

func TestAuthLogin_SavesProfile(t *testing.T) {
	isolateEnv(t)

	out := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--token", "abcd1234efgh", "--domain-prefix", "https://MyStore.vendhq.com"})
		require.NoError(t, err)
	})
	assert.Contains(t, out, "https://mystore.vendhq.com")

	account, err := config.LoadProfile("default")
	require.NoError(t, err)
	assert.Equal(t, config.Account{Token: "abcd1234efgh", DomainPrefix: "mystore"}, account)
}

func TestAuthLogin_NamedProfileBecomesCurrent(t *testing.T) {
	isolateEnv(t)

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "login", "--token", "t1", "--domain-prefix", "one"}))
		require.NoError(t, Execute(context.Background(), []string{"auth", "login", "--token", "t2", "--domain-prefix", "two", "--profile", "outlet"}))
	})

	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "outlet", current)
}

func TestAuthLogin_EnvFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LIGHTSPEED_TOKEN=filetoken1\nLIGHTSPEED_DOMAIN_PREFIX=filestore\n"), 0o600))

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "login", "--env-file", path}))
	})

	account, err := config.LoadProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "filetoken1", account.Token)
	assert.Equal(t, "filestore", account.DomainPrefix)
}

func TestAuthLogin_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing token", []string{"auth", "login", "--domain-prefix", "x"}, "--token is required"},
		{"missing prefix", []string{"auth", "login", "--token", "x"}, "--domain-prefix is required"},
		{"bad prefix", []string{"auth", "login", "--token", "x", "--domain-prefix", "bad_store"}, "invalid domain prefix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			var err error
			_ = captureStderr(t, func() {
				err = Execute(context.Background(), tt.args)
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, exitUsage, ExitCode(err))
		})
	}
}

func TestAuthStatus_MasksToken(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, config.SaveProfile("default", config.Account{Token: "abcd1234efgh", DomainPrefix: "mystore"}))

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "status", "--json"}))
	})

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, true, payload["authenticated"])
	assert.Equal(t, "abcd****efgh", payload["token"])
	assert.Equal(t, "mystore", payload["domain_prefix"])
	assert.Equal(t, "profile", payload["source"])
	assert.Equal(t, "default", payload["profile"])
}

func TestAuthStatus_EnvSource(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvToken, "envtoken123")
	t.Setenv(config.EnvDomainPrefix, "envstore")

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "status"}))
	})
	assert.Contains(t, out, "Source: env")
	assert.Contains(t, out, "envstore")
	assert.NotContains(t, out, "envtoken123")
}

func TestAuthStatus_NotAuthenticated(t *testing.T) {
	isolateEnv(t)

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "status"}))
	})
	assert.Contains(t, out, "Not authenticated.")
}

func TestAuthLogout(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, config.SaveProfile("a", config.Account{Token: "a", DomainPrefix: "a"}))
	require.NoError(t, config.SaveProfile("b", config.Account{Token: "b", DomainPrefix: "b"}))

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "logout"}))
	})
	assert.Contains(t, out, "Profile b removed")

	exists, err := config.HasProfile("b")
	require.NoError(t, err)
	assert.False(t, exists)

	current, _ := config.CurrentProfile()
	assert.Equal(t, "a", current)
}

func TestAuthLogout_NothingSaved(t *testing.T) {
	isolateEnv(t)
	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "logout", "--profile", "ghost"}))
	})
	assert.Contains(t, out, "No credentials found")
}

func TestAuthSwitch(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, config.SaveProfile("warehouse", config.Account{Token: "w", DomainPrefix: "w"}))
	require.NoError(t, config.SaveProfile("outlet", config.Account{Token: "o", DomainPrefix: "o"}))

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "switch", "warehouse"}))
	})
	current, _ := config.CurrentProfile()
	assert.Equal(t, "warehouse", current)
}

func TestAuthSwitch_UnknownSuggests(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, config.SaveProfile("warehouse", config.Account{Token: "w", DomainPrefix: "w"}))

	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"auth", "switch", "wrhouse"})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "warehouse"`)
}

func TestAuthList(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, config.SaveProfile("a", config.Account{Token: "a", DomainPrefix: "a"}))
	require.NoError(t, config.SaveProfile("b", config.Account{Token: "b", DomainPrefix: "b"}))

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "list"}))
	})
	assert.Equal(t, "  a\n* b\n", out)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "abcd****efgh", maskToken("abcd1234efgh"))
}

func TestGlobalProfileFlagSelectsCredentials(t *testing.T) {
	var gotAuth string
	handler := newRouteHandler().
		On("GET", "/api/2.0/outlets", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(200, `{}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvDomainPrefix, "")
	require.NoError(t, config.SaveProfile("outlet", config.Account{Token: "outlet-token", DomainPrefix: "outlet"}))
	require.NoError(t, config.SaveProfile("default", config.Account{Token: "default-token", DomainPrefix: "home"}))

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"get", "/outlets", "--profile", "outlet"}))
	})
	assert.Equal(t, "Bearer outlet-token", gotAuth)
}
