package config

import (
	"os"
	"strconv"
	"time"
)

// ServerConfig holds settings for the hub server runtime.
type ServerConfig struct {
	ListenAddr      string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	HistoryCapacity int
	PageLimit       int
	SendBuffer      int
	MaxMessageBytes int64
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	ServerURL string
	Username  string
}

// LoadServerConfig builds the server configuration from environment variables with sensible defaults.
func LoadServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:      envOrDefault("HUBBUB_LISTEN_ADDR", ":5000"),
		Env:             envOrDefault("HUBBUB_ENV", "dev"),
		ReadTimeout:     envDuration("HUBBUB_READ_TIMEOUT", 60*time.Second),
		WriteTimeout:    envDuration("HUBBUB_WRITE_TIMEOUT", 10*time.Second),
		HistoryCapacity: envInt("HUBBUB_HISTORY_CAPACITY", 100),
		PageLimit:       envInt("HUBBUB_PAGE_LIMIT", 20),
		SendBuffer:      envInt("HUBBUB_SEND_BUFFER", 64),
		MaxMessageBytes: int64(envInt("HUBBUB_MAX_MESSAGE_BYTES", 1<<20)),
	}
}

// LoadClientConfig builds the client configuration from environment variables.
func LoadClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL: envOrDefault("HUBBUB_SERVER_URL", "ws://localhost:5000/ws"),
		Username:  os.Getenv("HUBBUB_USERNAME"),
	}
}

func envOrDefault(key, value string) string {
	if env, ok := os.LookupEnv(key); ok {
		return env
	}
	return value
}

func envDuration(key string, def time.Duration) time.Duration {
	if env, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(env); err == nil {
			return parsed
		}
	}
	return def
}

func envInt(key string, def int) int {
	if env, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(env); err == nil {
			return parsed
		}
	}
	return def
}
