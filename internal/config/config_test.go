package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg := LoadServerConfig()

	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 60*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 100, cfg.HistoryCapacity)
	assert.Equal(t, 20, cfg.PageLimit)
}

func TestLoadServerConfigOverrides(t *testing.T) {
	t.Setenv("HUBBUB_LISTEN_ADDR", ":9999")
	t.Setenv("HUBBUB_READ_TIMEOUT", "5s")
	t.Setenv("HUBBUB_HISTORY_CAPACITY", "10")

	cfg := LoadServerConfig()
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10, cfg.HistoryCapacity)
}

func TestLoadServerConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("HUBBUB_READ_TIMEOUT", "not-a-duration")
	t.Setenv("HUBBUB_PAGE_LIMIT", "many")

	cfg := LoadServerConfig()
	assert.Equal(t, 60*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 20, cfg.PageLimit)
}

func TestLoadClientConfigDefaults(t *testing.T) {
	cfg := LoadClientConfig()
	assert.Equal(t, "ws://localhost:5000/ws", cfg.ServerURL)
}
