package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devrev/pairdb/admin-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 4, cfg.Pool.MaxConnectionsPerNode)
	require.True(t, cfg.Pool.SocketKeepAlive)
}

func TestLoadConfigFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admin-client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pool:
  max_connections_per_node: 8
bootstrap:
  urls:
    - tcp://node1:6660
`), 0644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Pool.MaxConnectionsPerNode)
	require.Equal(t, []string{"tcp://node1:6660"}, cfg.Bootstrap.URLs)
	require.NotZero(t, cfg.Pool.SocketTimeout)
	require.True(t, cfg.Pool.SocketKeepAlive)
}

func TestLoadConfigHonorsExplicitSocketKeepAliveFalse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admin-client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pool:
  socket_keep_alive: false
`), 0644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.False(t, cfg.Pool.SocketKeepAlive)
}

func TestValidateRejectsBadPoolBound(t *testing.T) {
	cfg := config.Default()
	cfg.Pool.MaxConnectionsPerNode = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMaxDelayBelowInitial(t *testing.T) {
	cfg := config.Default()
	cfg.Async.MaxDelay = cfg.Async.InitialDelay / 2
	require.Error(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
