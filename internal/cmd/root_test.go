package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_UnknownCommandSuggests(t *testing.T) {
	isolateEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"gt", "/products"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, `unknown command "gt"`)
	assert.Contains(t, stderr, `Did you mean "get"?`)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestExecute_UnknownFlagSuggests(t *testing.T) {
	isolateEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"get", "/products", "--parm", "a=b"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, `Did you mean "--param"?`)
	assert.Contains(t, stderr, `Run "lsx get --help"`)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestExecute_OutputFlagConflicts(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"json vs text", []string{"version", "--no-check", "--json", "-o", "text"}, "--json conflicts with --output text"},
		{"jq needs json", []string{"version", "--no-check", "-o", "text", "--jq", ".version"}, "require --output json"},
		{"bad output", []string{"version", "--no-check", "-o", "yaml"}, "yaml"},
		{"negative timeout", []string{"version", "--no-check", "--timeout=-1s"}, "--timeout must be >= 0"},
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
		})
	}
}

func TestExecute_QueryImpliesJSON(t *testing.T) {
	isolateEnv(t)

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"version", "--no-check", "--jq", ".version"}))
	})
	assert.Equal(t, "\"dev\"\n", out)
}

func TestExecute_OutputFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("LSX_OUTPUT", "json")

	out := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"version", "--no-check"}))
	})
	assert.JSONEq(t, `{"version":"dev"}`, out)
}

func TestExtractQuoted(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`unknown command "gt" for "lsx"`, "gt"},
		{`no quotes here`, ""},
		{`unterminated "quote`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractQuoted(tt.in), tt.in)
	}
}

func TestExtractFlag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"unknown flag: --parm", "--parm"},
		{"unknown flag: --parm.", "--parm"},
		{"unknown shorthand flag: 'z' in -z", "-z"},
		{"something else", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractFlag(tt.in), tt.in)
	}
}
