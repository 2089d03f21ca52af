package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setBackendEnv(t *testing.T, backend string) {
	t.Helper()
	t.Setenv("BACKEND", backend)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("POSTGRES_DSN", "")
}

func TestLoadDefaults(t *testing.T) {
	setBackendEnv(t, BackendMemory)

	cfg, err := Load("", "")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, BackendMemory, cfg.Backend)
	require.Equal(t, []string{"*"}, cfg.Server.Origins())
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRequiresBackendCredentials(t *testing.T) {
	setBackendEnv(t, BackendSupabase)
	_, err := Load("", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "SUPABASE_URL")

	setBackendEnv(t, BackendPostgres)
	_, err = Load("", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "POSTGRES_DSN")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setBackendEnv(t, "dynamo")
	_, err := Load("", "")
	require.Error(t, err)
}

func TestYAMLOverlay(t *testing.T) {
	setBackendEnv(t, BackendMemory)

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	payload := []byte("server:\n  addr: \":9090\"\n  allowed_origins: \"https://amooora.com.br, https://app.amooora.com.br\"\n")
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	cfg, err := Load("", path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, []string{"https://amooora.com.br", "https://app.amooora.com.br"}, cfg.Server.Origins())
}

func TestEnvFileLoad(t *testing.T) {
	setBackendEnv(t, BackendMemory)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
}
