package config

import "testing"

func TestLoadBrokerConfigDefaults(t *testing.T) {
	t.Setenv("BROKER_BIND_ADDR", "")
	t.Setenv("BROKER_PORT", "")
	t.Setenv("BROKER_CHANNEL_CAPACITY", "")
	t.Setenv("BROKER_MAX_FRAME_BYTES", "")
	t.Setenv("BROKER_INGEST_READ_TIMEOUT", "")
	t.Setenv("BROKER_LOG_LEVEL", "")

	cfg := LoadBrokerConfig()
	if cfg.Port != defaultPort {
		t.Errorf("expected default port %d, got %d", defaultPort, cfg.Port)
	}
	if cfg.ChannelCapacity != defaultChannelCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultChannelCapacity, cfg.ChannelCapacity)
	}
	if cfg.MaxFrameBytes != defaultMaxFrameBytes {
		t.Errorf("expected default max frame bytes %d, got %d", defaultMaxFrameBytes, cfg.MaxFrameBytes)
	}
	if cfg.IngestReadTimeout != defaultIngestReadTimeout {
		t.Errorf("expected default read timeout %v, got %v", defaultIngestReadTimeout, cfg.IngestReadTimeout)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}
}

func TestLoadBrokerConfigOverrides(t *testing.T) {
	t.Setenv("BROKER_PORT", "9090")
	t.Setenv("BROKER_CHANNEL_CAPACITY", "64")
	t.Setenv("BROKER_MAX_FRAME_BYTES", "1048576")
	t.Setenv("BROKER_INGEST_READ_TIMEOUT", "2s")
	t.Setenv("BROKER_LOG_LEVEL", "debug")

	cfg := LoadBrokerConfig()
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.ChannelCapacity != 64 {
		t.Errorf("expected capacity 64, got %d", cfg.ChannelCapacity)
	}
	if cfg.MaxFrameBytes != 1048576 {
		t.Errorf("expected max frame bytes 1048576, got %d", cfg.MaxFrameBytes)
	}
	if cfg.IngestReadTimeout.Seconds() != 2 {
		t.Errorf("expected read timeout 2s, got %v", cfg.IngestReadTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}
}

func TestLoadBrokerConfigIgnoresGarbageValues(t *testing.T) {
	t.Setenv("BROKER_PORT", "not-a-number")
	t.Setenv("BROKER_CHANNEL_CAPACITY", "-5")

	cfg := LoadBrokerConfig()
	if cfg.Port != defaultPort {
		t.Errorf("expected fallback to default port on garbage input, got %d", cfg.Port)
	}
	if cfg.ChannelCapacity != defaultChannelCapacity {
		t.Errorf("expected fallback to default capacity on negative input, got %d", cfg.ChannelCapacity)
	}
}
