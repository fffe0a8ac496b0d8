package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// envMappings maps environment variables (lower-cased) to koanf paths
var envMappings = map[string]string{
	"port":                  "server.port",
	"gin_mode":              "server.mode",
	"shutdown_timeout":      "server.shutdown_timeout",
	"db_path":               "database.path",
	"db_max_open_conns":     "database.max_open_conns",
	"db_max_idle_conns":     "database.max_idle_conns",
	"jwt_secret":            "auth.jwt_secret",
	"rate_limit_rps":        "rate_limit.requests_per_second",
	"rate_limit_burst":      "rate_limit.burst",
	"rate_limit_disabled":   "rate_limit.disabled",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"location_max_distance": "location.max_distance_m",
	"location_min_accuracy": "location.min_accuracy_m",
	"location_time_window":  "location.time_window_min",
	"location_future_skew":  "location.max_future_skew_min",
	"location_fallback":     "location.allow_fallback",
	"location_strict_mode":  "location.strict_mode",
	"spoofing_score":        "spoofing.suspicious_score",
	"tracking_history_size": "tracking.history_size",
	"tracking_history":      "tracking.history_window",
	"tracking_cell_level":   "tracking.cell_level",
	"trail_max_gap":         "trail.max_gap",
	"attendance_timezone":   "attendance.timezone",
	"attendance_late_from":  "attendance.late_from_hour",
	"attendance_late_until": "attendance.late_until_hour",
	"attendance_early_from": "attendance.early_after_hour",
	"attendance_early_to":   "attendance.early_before_hour",
}

// Load 加载配置: defaults, then an optional YAML file, then environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps known variables and drops everything else
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
