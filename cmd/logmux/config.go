package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML topology of the logging core: which connectors the
// fan-out broadcasts to, which levels are enabled, and where the API listens.
//
// Example:
//
//	listen: ":8080"
//	levels: [info, warn, error]
//	connectors:
//	  - type: console
//	  - type: memory
//	  - type: file
//	    options:
//	      path: /var/log/logmux/entries.cbor
//	      max_bytes: 33554432
//	      compress: true
type Config struct {
	Listen     string            `yaml:"listen"`
	Levels     []string          `yaml:"levels"`
	Connectors []ConnectorConfig `yaml:"connectors"`
}

// ConnectorConfig names one sub-connector and carries its options.
type ConnectorConfig struct {
	Type    string         `yaml:"type"`
	Options map[string]any `yaml:"options"`
}

func loadConfig(path string) (Config, error) {
	cfg := Config{
		Listen:     ":8080",
		Connectors: []ConnectorConfig{{Type: "console"}, {Type: "memory"}},
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Connectors) == 0 {
		return Config{}, fmt.Errorf("config %s declares no connectors", path)
	}
	return cfg, nil
}

// multiConfig converts the topology into the multi connector's configuration map.
func (c Config) multiConfig() map[string]any {
	specs := make([]any, 0, len(c.Connectors))
	for _, cc := range c.Connectors {
		specs = append(specs, map[string]any{"type": cc.Type, "options": cc.Options})
	}
	config := map[string]any{"connectors": specs}
	if len(c.Levels) > 0 {
		config["levels"] = c.Levels
	}
	return config
}
