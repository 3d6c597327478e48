// Package config holds the node and collector configuration, including
// every timing constant of the coordination protocol. Defaults match the
// deployed fleet; a YAML file and command-line flags may override them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration for a swarm process.
type Config struct {
	// Multicast group the whole swarm shares.
	Group string `yaml:"group"`
	Port  int    `yaml:"port"`

	// Identity overrides the detected local address. Empty means detect.
	Identity string `yaml:"identity"`

	// MetricsAddr is the HTTP listen address for /metrics. Empty disables.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogDir is where the collector writes its CSV files.
	LogDir string `yaml:"log_dir"`

	// SensorSeed seeds the simulated light sensor. Zero means random.
	SensorSeed int64 `yaml:"sensor_seed"`

	// Protocol constants, all in milliseconds unless noted.
	Capacity         int   `yaml:"capacity"`           // max tracked devices
	DiscoveryWindow  int64 `yaml:"discovery_window"`   // listen-only bootstrap
	ActivityWindow   int64 `yaml:"activity_window"`    // recency for scheduling/election
	EvictionTimeout  int64 `yaml:"eviction_timeout"`   // recency before removal
	SlotDuration     int64 `yaml:"slot_duration"`      // TDMA slot length
	TransmitWindow   int64 `yaml:"transmit_window"`    // transmit burst inside a slot
	ElectionInterval int64 `yaml:"election_interval"`  // election pass cadence
	SweepInterval    int64 `yaml:"sweep_interval"`     // eviction sweep cadence
	RestartStagger   int64 `yaml:"restart_stagger"`    // per-ordinal restart delay
	DumpInterval     int64 `yaml:"dump_interval"`      // membership log cadence
	CollectThrottle  int64 `yaml:"collect_throttle"`   // min gap between CSV rows
	LevelBarInterval int64 `yaml:"level_bar_interval"` // collector averaging window
}

// Default returns the fleet's standard configuration.
func Default() Config {
	return Config{
		Group:            "239.1.1.1",
		Port:             5000,
		Capacity:         10,
		DiscoveryWindow:  3000,
		ActivityWindow:   3000,
		EvictionTimeout:  5000,
		SlotDuration:     100,
		TransmitWindow:   5,
		ElectionInterval: 1000,
		SweepInterval:    1000,
		RestartStagger:   5000,
		DumpInterval:     5000,
		CollectThrottle:  100,
		LevelBarInterval: 4000,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is internally coherent.
func (c Config) Validate() error {
	if c.Group == "" {
		return fmt.Errorf("multicast group cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	for _, d := range []struct {
		name string
		ms   int64
	}{
		{"discovery_window", c.DiscoveryWindow},
		{"activity_window", c.ActivityWindow},
		{"eviction_timeout", c.EvictionTimeout},
		{"slot_duration", c.SlotDuration},
		{"transmit_window", c.TransmitWindow},
		{"election_interval", c.ElectionInterval},
		{"sweep_interval", c.SweepInterval},
		{"restart_stagger", c.RestartStagger},
	} {
		if d.ms <= 0 {
			return fmt.Errorf("%s must be positive, got %dms", d.name, d.ms)
		}
	}
	if c.TransmitWindow > c.SlotDuration {
		return fmt.Errorf("transmit_window %dms exceeds slot_duration %dms", c.TransmitWindow, c.SlotDuration)
	}
	if c.ActivityWindow > c.EvictionTimeout {
		return fmt.Errorf("activity_window %dms exceeds eviction_timeout %dms", c.ActivityWindow, c.EvictionTimeout)
	}
	return nil
}

// GroupAddr returns the group:port dial string.
func (c Config) GroupAddr() string {
	return fmt.Sprintf("%s:%d", c.Group, c.Port)
}
