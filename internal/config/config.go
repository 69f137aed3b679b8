package config

import (
	"os"
	"strconv"
	"time"
)

// BrokerConfig holds the broker's environment-driven runtime settings.
// Every field has a default, per spec.md §6 ("environment-driven, all
// optional"); there is no config file format.
type BrokerConfig struct {
	BindAddr          string
	Port              int
	ChannelCapacity   int
	MaxFrameBytes     int
	IngestReadTimeout time.Duration
	LogLevel          string
}

const (
	defaultBindAddr          = ""
	defaultPort              = 8080
	defaultChannelCapacity   = 128
	defaultMaxFrameBytes     = 8 * 1024 * 1024 // 8 MiB
	defaultIngestReadTimeout = 5 * time.Second
	defaultLogLevel          = "info"
)

// LoadBrokerConfig reads broker settings from the environment, applying
// the defaults above for anything unset or unparsable.
func LoadBrokerConfig() BrokerConfig {
	return BrokerConfig{
		BindAddr:          getEnv("BROKER_BIND_ADDR", defaultBindAddr),
		Port:              getEnvInt("BROKER_PORT", defaultPort),
		ChannelCapacity:   getEnvInt("BROKER_CHANNEL_CAPACITY", defaultChannelCapacity),
		MaxFrameBytes:     getEnvInt("BROKER_MAX_FRAME_BYTES", defaultMaxFrameBytes),
		IngestReadTimeout: getEnvDuration("BROKER_INGEST_READ_TIMEOUT", defaultIngestReadTimeout),
		LogLevel:          getEnv("BROKER_LOG_LEVEL", defaultLogLevel),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
