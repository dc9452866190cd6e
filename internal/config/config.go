package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Analysis struct {
		TestTypes []string `yaml:"test_types"`
	} `yaml:"analysis"`
}

// DefaultTestTypes are the onboarding test categories analyzed when the
// config does not list its own.
var DefaultTestTypes = []string{"GMAT Onboarding Test", "GRE Onboarding Test"}

// Load reads YAML config from path. DATABASE_URL, when set, overrides the
// configured Postgres URL so deployments can keep credentials out of the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Postgres.URL = url
	}
	if len(cfg.Analysis.TestTypes) == 0 {
		cfg.Analysis.TestTypes = DefaultTestTypes
	}
	return cfg, nil
}
