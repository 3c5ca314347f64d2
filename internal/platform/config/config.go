package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openshelf/openshelf-backend/internal/platform/envutil"
)

const defaultOverdueMessage = "You have an overdue book loan. Please return the book as soon as possible."

// Config carries the process-level settings the core consumes. Values come
// from an optional YAML file with environment variables taking precedence.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`

	Overdue struct {
		// ThresholdDays is the age in days at which an unreturned loan
		// counts as overdue. The boundary is inclusive.
		ThresholdDays int    `yaml:"threshold_days"`
		Message       string `yaml:"message"`
		// Cron is a six-field cron spec; the default fires once a day
		// at midnight.
		Cron string `yaml:"cron"`
	} `yaml:"overdue"`
}

func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Log.Mode = "development"
	cfg.Overdue.ThresholdDays = 4
	cfg.Overdue.Message = defaultOverdueMessage
	cfg.Overdue.Cron = "0 0 0 * * *"
	return cfg
}

// Load reads path when it exists, then applies env overrides. A missing file
// is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.Server.Port = envutil.String("PORT", cfg.Server.Port)
	cfg.Log.Mode = envutil.String("LOG_MODE", cfg.Log.Mode)
	cfg.Overdue.ThresholdDays = envutil.Int("OVERDUE_THRESHOLD_DAYS", cfg.Overdue.ThresholdDays)
	cfg.Overdue.Message = envutil.String("OVERDUE_MESSAGE", cfg.Overdue.Message)
	cfg.Overdue.Cron = envutil.String("OVERDUE_CRON", cfg.Overdue.Cron)

	if cfg.Overdue.ThresholdDays < 0 {
		cfg.Overdue.ThresholdDays = 0
	}
	return cfg, nil
}
