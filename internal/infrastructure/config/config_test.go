package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory_Defaults(t *testing.T) {
	cfg, err := LoadDirectory([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Chain.Length)
	assert.Equal(t, 15*time.Second, cfg.Chain.NodeTimeout)
	assert.Equal(t, "NOTICE", cfg.Logging.Level)
}

func TestLoadDirectory(t *testing.T) {
	const body = `
[Server]
  Address = "127.0.0.1:7000"

[Chain]
  Length = 2
  NodeTimeout = "30s"

[Logging]
  Level = "debug"
`
	cfg, err := LoadDirectory([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Address)
	assert.Equal(t, 2, cfg.Chain.Length)
	assert.Equal(t, 30*time.Second, cfg.Chain.NodeTimeout)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadDirectory_Errors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"nil", nil},
		{"undecoded key", []byte("[Chain]\nLenght = 2\n")},
		{"bad level", []byte("[Logging]\nLevel = \"LOUD\"\n")},
		{"negative length", []byte("[Chain]\nLength = -1\n")},
		{"syntax", []byte("[Chain\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDirectory(tt.body)
			assert.Error(t, err)
		})
	}
}

func TestDirectory_ApplyEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantLength  int
		wantTimeout time.Duration
		wantNotes   int
	}{
		{"unset keeps file values", map[string]string{}, 5, time.Minute, 0},
		{"valid", map[string]string{"CHAIN_LENGTH": "2", "CHAIN_NODE_TIMEOUT": "20"}, 2, 20 * time.Second, 0},
		{"invalid falls back to default", map[string]string{"CHAIN_LENGTH": "abc", "CHAIN_NODE_TIMEOUT": "-3"}, 3, 15 * time.Second, 2},
		{"timeout overflowing duration", map[string]string{"CHAIN_NODE_TIMEOUT": "10000000000"}, 5, 15 * time.Second, 1},
		{"timeout beyond int64", map[string]string{"CHAIN_NODE_TIMEOUT": "99999999999999999999"}, 5, 15 * time.Second, 1},
		{"largest representable timeout", map[string]string{"CHAIN_NODE_TIMEOUT": "9223372036"}, 5, 9223372036 * time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDirectory()
			cfg.Chain.Length = 5
			cfg.Chain.NodeTimeout = time.Minute
			notes := cfg.ApplyEnvironment(func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			})
			assert.Len(t, notes, tt.wantNotes)
			assert.Equal(t, tt.wantLength, cfg.Chain.Length)
			assert.Equal(t, tt.wantTimeout, cfg.Chain.NodeTimeout)
		})
	}
}

func TestLoadNode_Defaults(t *testing.T) {
	cfg := DefaultNode()
	assert.Equal(t, "127.0.0.1", cfg.Server.Address)
	assert.Equal(t, uint16(9001), cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:9001", cfg.ListenAddress())
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Directory.URL)
	assert.Equal(t, 10*time.Second, cfg.Directory.RegistrationTimeout)
	assert.Equal(t, 5*time.Second, cfg.Directory.HeartbeatPeriod)
	assert.Equal(t, 10*time.Second, cfg.Directory.HeartbeatTimeout)
	assert.Equal(t, time.Second, cfg.Relay.HopTimeout)
	assert.Equal(t, 10*time.Second, cfg.Relay.TargetTimeout)
	assert.Zero(t, cfg.Relay.RateLimit)
}

func TestLoadNodeFile(t *testing.T) {
	const body = `
[Server]
  Address = "10.0.0.5"
  Port = 9100
  ListenAddress = "0.0.0.0:9100"
  PrivateKeyFile = "node.pem"

[Directory]
  URL = "http://10.0.0.1:9000"
  HeartbeatPeriod = "2s"

[Relay]
  HopTimeout = "500ms"
  RateLimit = 10.0

[Logging]
  File = "node.log"
`
	path := filepath.Join(t.TempDir(), "node.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadNodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9100", cfg.ListenAddress())
	assert.Equal(t, uint16(9100), cfg.Server.Port)
	assert.Equal(t, "node.pem", cfg.Server.PrivateKeyFile)
	assert.Equal(t, 2*time.Second, cfg.Directory.HeartbeatPeriod)
	assert.Equal(t, 10*time.Second, cfg.Directory.HeartbeatTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Relay.HopTimeout)
	assert.Equal(t, 11, cfg.Relay.RateBurst)
	assert.Equal(t, "node.log", cfg.Logging.File)
	assert.Equal(t, "NOTICE", cfg.Logging.Level)
}

func TestLoadNode_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad url", "[Directory]\nURL = \"not a url\"\n"},
		{"negative rate", "[Relay]\nRateLimit = -1.0\n"},
		{"unknown section", "[Hidden]\nAddr = \"x\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadNode([]byte(tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadNodeFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
