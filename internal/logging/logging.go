package logging

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/chrisjgaze/bp-analyzer/internal/config"
)

// New creates an hclog.Logger from the configuration. BPA_LOG_LEVEL
// takes precedence over the configured level.
func New(cfg *config.Config, name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		JSONFormat: cfg.Log.JSON,
		Output:     os.Stderr,
		Level:      determineLevel(cfg),
	})
}

func determineLevel(cfg *config.Config) hclog.Level {
	if env := os.Getenv("BPA_LOG_LEVEL"); env != "" {
		return parseLevel(env)
	}
	return parseLevel(cfg.Log.Level)
}

func parseLevel(level string) hclog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO", "":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
