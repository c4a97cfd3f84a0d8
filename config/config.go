// Package config loads and validates the planner's configuration document.
package config

import (
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	coremetrics "github.com/hweijer/tapplan/core/metrics"
	"github.com/hweijer/tapplan/infra/luxtronik"
	"github.com/hweijer/tapplan/infra/mqtt"
)

// Config is the root configuration document.
type Config struct {
	Planner  PlannerConfig            `json:"planner"`
	State    StateConfig              `json:"state"`
	Metrics  coremetrics.Config       `json:"metrics"`
	Heatpump luxtronik.ExecutorConfig `json:"heatpump"`
	MQTT     mqtt.Config              `json:"mqtt"`
	// DryRun skips device execution; the plan is computed, logged and
	// persisted as unexecuted.
	DryRun bool `json:"dryRun"`
}

// Load reads the configuration from a YAML or JSON file, applies TP_
// environment overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, errf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, &Error{Err: err}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("TP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "tp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, &Error{Err: err}
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, &Error{Err: err}
	}
	cfg.Planner.SetDefaults()
	cfg.State.SetDefaults()
	cfg.Heatpump.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.Planner.Validate(); err != nil {
		return nil, wrapConfigErr(err)
	}
	if err := cfg.State.Validate(); err != nil {
		return nil, wrapConfigErr(err)
	}
	if !cfg.DryRun {
		if err := cfg.Heatpump.Validate(); err != nil {
			return nil, wrapConfigErr(err)
		}
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, wrapConfigErr(err)
	}
	return &cfg, nil
}

func wrapConfigErr(err error) error {
	if cfgErr, ok := err.(*Error); ok {
		return cfgErr
	}
	return &Error{Err: err}
}
