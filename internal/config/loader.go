// Package config loads service configuration from an optional YAML file
// overlaid by environment variables. Environment always wins, so a deployed
// file can be overridden per-process.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime configuration for the tutoring scheduler.
type Config struct {
	HTTPPort   int    `yaml:"http_port"`
	SQLitePath string `yaml:"sqlite_path"`

	// ConversionStrategy selects the timezone conversion implementation:
	// "iana" resolves offsets per civil date, "legacy" samples fixed
	// offsets once. The legacy strategy exists for output comparison
	// during rollout and is not DST-correct.
	ConversionStrategy string `yaml:"conversion_strategy"`

	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`

	// WorkingHoursStart and WorkingHoursEnd bound the plausible-working-
	// hours heuristic used to classify untagged legacy rows, as "HH:MM".
	WorkingHoursStart string `yaml:"working_hours_start"`
	WorkingHoursEnd   string `yaml:"working_hours_end"`

	MinSessionMinutes int `yaml:"min_session_minutes"`
	MaxSessionMinutes int `yaml:"max_session_minutes"`
	BusinessHoursFrom int `yaml:"business_hours_from"`
	BusinessHoursTo   int `yaml:"business_hours_to"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		HTTPPort:           8080,
		SQLitePath:         "tutoring.db",
		ConversionStrategy: "iana",
		CacheTTL:           30 * time.Second,
		CacheMaxEntries:    256,
		WorkingHoursStart:  "08:00",
		WorkingHoursEnd:    "22:00",
		MinSessionMinutes:  15,
		MaxSessionMinutes:  480,
		BusinessHoursFrom:  6 * 60,
		BusinessHoursTo:    23 * 60,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// TUTORING_CONFIG_FILE (if any), then environment variables. Invalid values
// are collected and reported together.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("TUTORING_CONFIG_FILE")); path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TUTORING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TUTORING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if path := strings.TrimSpace(os.Getenv("TUTORING_SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}

	if strategy := strings.TrimSpace(os.Getenv("TUTORING_CONVERSION_STRATEGY")); strategy != "" {
		cfg.ConversionStrategy = strategy
	}

	if ttlValue := strings.TrimSpace(os.Getenv("TUTORING_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TUTORING_CACHE_TTL")
		} else {
			cfg.CacheTTL = ttl
		}
	}

	if entriesValue := strings.TrimSpace(os.Getenv("TUTORING_CACHE_MAX_ENTRIES")); entriesValue != "" {
		entries, err := strconv.Atoi(entriesValue)
		if err != nil || entries <= 0 {
			invalid = append(invalid, "TUTORING_CACHE_MAX_ENTRIES")
		} else {
			cfg.CacheMaxEntries = entries
		}
	}

	if start := strings.TrimSpace(os.Getenv("TUTORING_WORKING_HOURS_START")); start != "" {
		cfg.WorkingHoursStart = start
	}
	if end := strings.TrimSpace(os.Getenv("TUTORING_WORKING_HOURS_END")); end != "" {
		cfg.WorkingHoursEnd = end
	}

	if minValue := strings.TrimSpace(os.Getenv("TUTORING_MIN_SESSION_MINUTES")); minValue != "" {
		minutes, err := strconv.Atoi(minValue)
		if err != nil || minutes <= 0 {
			invalid = append(invalid, "TUTORING_MIN_SESSION_MINUTES")
		} else {
			cfg.MinSessionMinutes = minutes
		}
	}

	if maxValue := strings.TrimSpace(os.Getenv("TUTORING_MAX_SESSION_MINUTES")); maxValue != "" {
		minutes, err := strconv.Atoi(maxValue)
		if err != nil || minutes <= 0 {
			invalid = append(invalid, "TUTORING_MAX_SESSION_MINUTES")
		} else {
			cfg.MaxSessionMinutes = minutes
		}
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func validate(cfg Config) error {
	switch cfg.ConversionStrategy {
	case "iana", "legacy":
	default:
		return fmt.Errorf("conversion strategy must be \"iana\" or \"legacy\", got %q", cfg.ConversionStrategy)
	}
	if cfg.MinSessionMinutes > cfg.MaxSessionMinutes {
		return fmt.Errorf("min session minutes (%d) exceeds max (%d)", cfg.MinSessionMinutes, cfg.MaxSessionMinutes)
	}
	return nil
}
