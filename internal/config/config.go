package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // timezone lookups in minimal containers

	"github.com/jengzang/presence-backend-go/internal/analysis/attendance"
	"github.com/jengzang/presence-backend-go/internal/analysis/location"
	"github.com/jengzang/presence-backend-go/internal/analysis/trail"
)

// Config 应用配置
type Config struct {
	Server     ServerConfig                `koanf:"server"`
	Database   DatabaseConfig              `koanf:"database"`
	Auth       AuthConfig                  `koanf:"auth"`
	RateLimit  RateLimitConfig             `koanf:"rate_limit"`
	Logging    LoggingConfig               `koanf:"logging"`
	Location   location.Rules              `koanf:"location"`
	Spoofing   location.SpoofingThresholds `koanf:"spoofing"`
	Confidence location.ConfidenceParams   `koanf:"confidence"`
	Tracking   TrackingConfig              `koanf:"tracking"`
	Trail      TrailConfig                 `koanf:"trail"`
	Attendance AttendanceConfig            `koanf:"attendance"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `koanf:"port"`
	Mode            string        `koanf:"mode"` // gin mode: debug, release, test
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
}

// AuthConfig holds bearer-token settings
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
	Disabled          bool    `koanf:"disabled"`
}

// LoggingConfig holds log level and output format
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TrackingConfig controls how much history feeds spoofing and confidence checks
type TrackingConfig struct {
	HistorySize   int           `koanf:"history_size"`
	HistoryWindow time.Duration `koanf:"history_window"`
	CellLevel     int           `koanf:"cell_level"` // s2 level of stored cell tokens
}

// TrailConfig holds trail reconstruction settings
type TrailConfig struct {
	MaxGap time.Duration `koanf:"max_gap"`
}

// AttendanceConfig holds the working-hours policy
type AttendanceConfig struct {
	Timezone        string `koanf:"timezone"`
	LateFromHour    int    `koanf:"late_from_hour"`
	LateUntilHour   int    `koanf:"late_until_hour"`
	EarlyAfterHour  int    `koanf:"early_after_hour"`
	EarlyBeforeHour int    `koanf:"early_before_hour"`
}

// defaultConfig returns a Config with every default applied
func defaultConfig() *Config {
	policy := attendance.DefaultPolicy()

	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "./data/presence/presence.db",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Auth: AuthConfig{
			JWTSecret: "your-secret-key-change-in-production",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Location:   location.DefaultRules(),
		Spoofing:   location.DefaultSpoofingThresholds(),
		Confidence: location.DefaultConfidenceParams(),
		Tracking: TrackingConfig{
			HistorySize:   20,
			HistoryWindow: time.Hour,
			CellLevel:     16,
		},
		Trail: TrailConfig{
			MaxGap: trail.DefaultMaxGap,
		},
		Attendance: AttendanceConfig{
			Timezone:        "UTC",
			LateFromHour:    policy.LateFromHour,
			LateUntilHour:   policy.LateUntilHour,
			EarlyAfterHour:  policy.EarlyAfterHour,
			EarlyBeforeHour: policy.EarlyBeforeHour,
		},
	}
}

// AttendancePolicy builds the attendance policy, resolving the timezone
func (c *Config) AttendancePolicy() (attendance.Policy, error) {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return attendance.Policy{}, fmt.Errorf("failed to load timezone %q: %w", c.Attendance.Timezone, err)
	}

	return attendance.Policy{
		Location:        loc,
		LateFromHour:    c.Attendance.LateFromHour,
		LateUntilHour:   c.Attendance.LateUntilHour,
		EarlyAfterHour:  c.Attendance.EarlyAfterHour,
		EarlyBeforeHour: c.Attendance.EarlyBeforeHour,
	}, nil
}

// Validate checks the configuration for values the engine cannot work with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if !c.RateLimit.Disabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		errs = append(errs, errors.New("rate_limit requires requests_per_second > 0 and burst >= 1"))
	}

	r := c.Location
	if r.MaxDistanceMeters <= 0 {
		errs = append(errs, errors.New("location.max_distance_m must be positive"))
	}
	if r.HighAccuracyMeters > r.MediumAccuracyMeters || r.MediumAccuracyMeters > r.MinAccuracyMeters {
		errs = append(errs, errors.New("location accuracy tiers must satisfy high <= medium <= min"))
	}
	if r.TimeWindowMinutes <= 0 {
		errs = append(errs, errors.New("location.time_window_min must be positive"))
	}
	if r.FallbackMultiplier < 1 {
		errs = append(errs, errors.New("location.fallback_multiplier must be at least 1"))
	}

	if c.Confidence.AccuracyCeilingMeters <= 0 || c.Confidence.FreshnessCeilingMinutes <= 0 {
		errs = append(errs, errors.New("confidence ceilings must be positive"))
	}
	if c.Tracking.HistorySize < 1 {
		errs = append(errs, errors.New("tracking.history_size must be at least 1"))
	}
	if c.Tracking.CellLevel < 0 || c.Tracking.CellLevel > 30 {
		errs = append(errs, errors.New("tracking.cell_level must be within 0..30"))
	}
	if c.Trail.MaxGap <= 0 {
		errs = append(errs, errors.New("trail.max_gap must be positive"))
	}

	a := c.Attendance
	for _, h := range []int{a.LateFromHour, a.LateUntilHour, a.EarlyAfterHour, a.EarlyBeforeHour} {
		if h < 0 || h > 24 {
			errs = append(errs, fmt.Errorf("attendance hours must be within 0..24, got %d", h))
			break
		}
	}
	if _, err := c.AttendancePolicy(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
