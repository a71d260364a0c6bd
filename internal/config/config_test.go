package config

import "testing"

func TestGetDefaults(t *testing.T) {
	cfg := GetDefaults()

	if err := validateConfig(cfg); err != nil {
		t.Fatalf("Defaults must validate: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Unexpected default port: %d", cfg.Server.Port)
	}
	if cfg.Analysis.BatchWorkers <= 0 {
		t.Errorf("Unexpected default batch workers: %d", cfg.Analysis.BatchWorkers)
	}
	if cfg.Enhance.Enabled {
		t.Error("Enhanced classification must be opt-in")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"InvalidPort", func(c *Config) { c.Server.Port = 0 }},
		{"InvalidWorkers", func(c *Config) { c.Analysis.BatchWorkers = 0 }},
		{"InvalidMaxSize", func(c *Config) { c.Analysis.MaxDocumentSize = -1 }},
		{"EnhanceWithoutCredentials", func(c *Config) { c.Enhance.Enabled = true }},
		{"InvalidLogLevel", func(c *Config) { c.Logging.Level = "verbose" }},
		{"InvalidLogFormat", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
