package config

import "fmt"

// Validate rejects settings that would make the CLI misbehave at runtime.
func Validate(cfg *Config) error {
	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("output %q is not one of table, json, yaml", cfg.Output)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q is not one of text, json", cfg.LogFormat)
	}

	if cfg.ProbeWorkers < 1 {
		return fmt.Errorf("probe_workers must be at least 1, got %d", cfg.ProbeWorkers)
	}

	for _, p := range cfg.CandidatePorts {
		if p < 1 || p > 65535 {
			return fmt.Errorf("candidate port %d is outside 1-65535", p)
		}
	}

	return nil
}
