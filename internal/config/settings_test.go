package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LSX_OUTPUT", "LSX_TIMEOUT", "LSX_API_VERSION", "LSX_ENDPOINT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadSettingsFrom_Defaults(t *testing.T) {
	clearSettingsEnv(t)

	s, err := LoadSettingsFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadSettingsFrom failed: %v", err)
	}
	want := DefaultSettings()
	if s.Output != want.Output || s.Timeout != want.Timeout || s.APIVersion != want.APIVersion || s.Endpoint != "" {
		t.Errorf("settings = %+v, want %+v", s, want)
	}
	if s.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want empty", s.ConfigFile)
	}
}

func TestLoadSettingsFrom_File(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	data := "output: JSON\ntimeout: 5s\napi_version: \"0.9\"\nendpoint: http://localhost:9999\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettingsFrom(dir)
	if err != nil {
		t.Fatalf("LoadSettingsFrom failed: %v", err)
	}
	if s.Output != "json" {
		t.Errorf("Output = %q, want json", s.Output)
	}
	if s.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", s.Timeout)
	}
	if s.APIVersion != "0.9" {
		t.Errorf("APIVersion = %q, want 0.9", s.APIVersion)
	}
	if s.Endpoint != "http://localhost:9999" {
		t.Errorf("Endpoint = %q", s.Endpoint)
	}
	if s.ConfigFile == "" {
		t.Error("ConfigFile should be set")
	}
}

func TestLoadSettingsFrom_EnvOverridesFile(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("timeout: 5s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LSX_TIMEOUT", "12s")

	s, err := LoadSettingsFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Timeout != 12*time.Second {
		t.Errorf("Timeout = %v, want 12s", s.Timeout)
	}
}

func TestLoadSettingsFrom_InvalidYAML(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("output: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettingsFrom(dir); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestSettingsDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envConfigDir, dir)
	if got := SettingsDir(); got != dir {
		t.Errorf("SettingsDir() = %q, want %q", got, dir)
	}

	t.Setenv(envConfigDir, "")
	fake := t.TempDir()
	original := userConfigDir
	userConfigDir = func() (string, error) { return fake, nil }
	t.Cleanup(func() { userConfigDir = original })
	if got, want := SettingsDir(), filepath.Join(fake, serviceName); got != want {
		t.Errorf("SettingsDir() = %q, want %q", got, want)
	}
}
