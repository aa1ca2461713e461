package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
)

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(configDirPathEnv, t.TempDir())
	unsetenv(t, databaseURLEnv)

	config, err := LoadConfig(log.NewNoopLogger())
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:1337", config.WebsocketURL)
	assert.Equal(t, "http://localhost:1337", config.HTTPURL)
	assert.Equal(t, 30*time.Second, config.CallTimeout)
	assert.Equal(t, 5*time.Minute, config.PendingTTL)
	assert.Equal(t, 1024, config.MaxPending)
	assert.Equal(t, "sqlite", config.DB.Driver)
	assert.Equal(t, "zap", config.Log.Backend)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirPathEnv, dir)
	unsetenv(t, "OGMIOS_HANDSHAKE_TIMEOUT")
	unsetenv(t, databaseURLEnv)
	t.Setenv("OGMIOS_WS_URL", "ws://ogmios.internal:1337")

	dotEnv := "OGMIOS_WS_URL=ws://ignored:1\nOGMIOS_HANDSHAKE_TIMEOUT=2s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotEnv), 0600))

	config, err := LoadConfig(log.NewNoopLogger())
	require.NoError(t, err)

	// the environment wins over the .env file
	assert.Equal(t, "ws://ogmios.internal:1337", config.WebsocketURL)
	assert.Equal(t, 2*time.Second, config.HandshakeTimeout)
	assert.Equal(t, 2*time.Second, config.websocketConfig().HandshakeTimeout)
}

func TestLoadConfig_DatabaseURL(t *testing.T) {
	t.Setenv(configDirPathEnv, t.TempDir())
	t.Setenv(databaseURLEnv, "postgres://ogmios:secret@db:5433/mempool?search_path=watch")

	config, err := LoadConfig(log.NewNoopLogger())
	require.NoError(t, err)

	assert.Equal(t, DatabaseConfig{
		Name:     "mempool",
		Schema:   "watch",
		Driver:   "postgres",
		Username: "ogmios",
		Password: "secret",
		Host:     "db",
		Port:     "5433",
	}, config.DB)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tcs := []struct {
		name  string
		key   string
		value string
	}{
		{name: "websocket url", key: "OGMIOS_WS_URL", value: "not a url"},
		{name: "call timeout", key: "OGMIOS_CALL_TIMEOUT", value: "0s"},
		{name: "burst", key: "OGMIOS_HTTP_BURST", value: "0"},
		{name: "log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "log backend", key: "LOG_BACKEND", value: "syslog"},
		{name: "database driver", key: "OGMIOS_DATABASE_DRIVER", value: "mysql"},
		{name: "database url", key: databaseURLEnv, value: "mysql://db/mempool"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(configDirPathEnv, t.TempDir())
			if tc.key != databaseURLEnv {
				unsetenv(t, databaseURLEnv)
			}
			t.Setenv(tc.key, tc.value)

			_, err := LoadConfig(log.NewNoopLogger())
			require.Error(t, err)
		})
	}
}

func TestConfig_ClientConfigs(t *testing.T) {
	t.Parallel()

	config := &Config{
		CallTimeout:        10 * time.Second,
		PendingTTL:         -1,
		MaxPending:         64,
		RequestsPerSecond:  5,
		Burst:              2,
		BreakerMaxFailures: 3,
		BreakerTimeout:     time.Minute,
	}
	metrics := NewMetricsWithRegistry(prometheus.NewRegistry())

	connCfg := config.connConfig(metrics)
	assert.Equal(t, time.Duration(-1), connCfg.PendingTTL)
	assert.Equal(t, 64, connCfg.MaxPending)
	assert.Same(t, metrics, connCfg.Observer)

	httpCfg := config.httpConfig()
	assert.Equal(t, 10*time.Second, httpCfg.Timeout)
	assert.Equal(t, 5.0, httpCfg.RequestsPerSecond)
	assert.Equal(t, 2, httpCfg.Burst)
	assert.Equal(t, uint32(3), httpCfg.BreakerMaxFailures)
}
