// Package control implements the broker's operator-facing admin surface:
// an optional stream-label bootstrap file and an MQTT-driven forced
// eviction path, both layered on top of the broadcast core without
// touching ingest or subscribe semantics.
package control

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// LabelsConfig is the optional control.yaml shape: a human label per known
// stream id, surfaced on /health for operator convenience. Its absence
// changes nothing about broker correctness.
type LabelsConfig struct {
	Version int                  `yaml:"version"`
	Streams map[string]StreamDef `yaml:"streams"`
}

// StreamDef names one known stream in control.yaml.
type StreamDef struct {
	Label string `yaml:"label"`
}

var (
	labelsMu sync.RWMutex
	labels   map[string]string
)

// LoadLabels reads control.yaml from path and sets the process-wide label
// table used by Label. Safe to call again (e.g. to reload).
func LoadLabels(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cfg LabelsConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return err
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported control.yaml version: %d", cfg.Version)
	}

	table := make(map[string]string, len(cfg.Streams))
	for id, def := range cfg.Streams {
		table[id] = def.Label
	}

	labelsMu.Lock()
	labels = table
	labelsMu.Unlock()
	return nil
}

// Label returns the configured human label for streamID, or "" if none is
// configured.
func Label(streamID string) string {
	labelsMu.RLock()
	defer labelsMu.RUnlock()
	return labels[streamID]
}
