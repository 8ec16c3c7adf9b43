package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int    // HTTP server port (default: 8080)
	DatabaseFile  string // Optional: path to SQLite database file (default: data/gateway.db)
	AuthDir       string // Optional: directory for sealed credential blobs (default: data/auth)
	MasterKeyFile string // Optional: path to master encryption key file (ephemeral dev key when unset)
	APIKey        string // Optional: static API key; auth disabled when unset
	APIKeyHash    string // Optional: argon2id PHC hash alternative to the plain key

	ChatDomain     string        // Suffix appended to bare destination numbers (default: s.whatsapp.net)
	QRTTL          time.Duration // Pairing code freshness window (default: 60s)
	ReconnectDelay time.Duration // Delay before redialing a recoverable closure (default: 5s)
	DialTimeout    time.Duration // Protocol dial deadline (default: 30s)
	FetchTimeout   time.Duration // Remote file fetch deadline (default: 30s)
	MaxFileBytes   int64         // Remote/upload size cap in bytes (default: 50 MiB)
	SimPairDelay   time.Duration // Simulated driver auto-pair delay (default: 10s)

	HousekeepingInterval time.Duration // Stale pairing purge cadence (default: 5m)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 25s)
	Env                  string        // Environment (development, staging, production) (default: development)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		Port:          getEnvIntOrDefault("GATEWAY_PORT", 8080),
		DatabaseFile:  getEnvOrDefault("GATEWAY_DATABASE_FILE", "data/gateway.db"),
		AuthDir:       getEnvOrDefault("GATEWAY_AUTH_DIR", "data/auth"),
		MasterKeyFile: os.Getenv("GATEWAY_MASTER_KEY_FILE"), // Optional
		APIKey:        os.Getenv("GATEWAY_API_KEY"),         // Optional
		APIKeyHash:    os.Getenv("GATEWAY_API_KEY_HASH"),    // Optional

		ChatDomain:     getEnvOrDefault("GATEWAY_CHAT_DOMAIN", "s.whatsapp.net"),
		QRTTL:          getEnvDurationOrDefault("GATEWAY_QR_TTL", 60*time.Second),
		ReconnectDelay: getEnvDurationOrDefault("GATEWAY_RECONNECT_DELAY", 5*time.Second),
		DialTimeout:    getEnvDurationOrDefault("GATEWAY_DIAL_TIMEOUT", 30*time.Second),
		FetchTimeout:   getEnvDurationOrDefault("GATEWAY_FETCH_TIMEOUT", 30*time.Second),
		MaxFileBytes:   getEnvInt64OrDefault("GATEWAY_MAX_FILE_BYTES", 50*1024*1024),
		SimPairDelay:   getEnvDurationOrDefault("GATEWAY_SIM_PAIR_DELAY", 10*time.Second),

		HousekeepingInterval: getEnvDurationOrDefault("GATEWAY_HOUSEKEEPING_INTERVAL", 5*time.Minute),
		ShutdownGracePeriod:  getEnvDurationOrDefault("GATEWAY_SHUTDOWN_GRACE_PERIOD", 25*time.Second),
		Env:                  getEnvOrDefault("GATEWAY_ENV", "development"),
		LogLevel:             getEnvOrDefault("GATEWAY_LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("GATEWAY_LOG_FORMAT", "text"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
