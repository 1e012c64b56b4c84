package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Customer string `yaml:"customer"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Analysis struct {
		Workers int `yaml:"workers"`
	} `yaml:"analysis"`
	Output struct {
		Report string `yaml:"report"`
		JSONL  string `yaml:"jsonl"`
		SARIF  string `yaml:"sarif"`
	} `yaml:"output"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

// Default returns the configuration used when no config file is given.
// BPA_* environment overrides still apply.
func Default() *Config {
	var cfg Config
	cfg.Database.Path = "bp-analyzer.db"
	cfg.Output.Report = "bp-report.html"
	cfg.Output.JSONL = "code-units.jsonl"
	cfg.Output.SARIF = "findings.sarif"
	cfg.Log.Level = "info"
	applyEnv(&cfg)
	return &cfg
}

// Load reads a YAML config file, with any BPA_* environment variables
// taking precedence over file values.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if customer := os.Getenv("BPA_CUSTOMER"); customer != "" {
		cfg.Customer = customer
	}
	if db := os.Getenv("BPA_DB"); db != "" {
		cfg.Database.Path = db
	}
	if level := os.Getenv("BPA_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if workers := os.Getenv("BPA_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			cfg.Analysis.Workers = n
		}
	}
}
