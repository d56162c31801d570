// Package config provides configuration management for the projection engine.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/nba-comps/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Data       DataConfig       `mapstructure:"data" validate:"required"`
	Projection ProjectionConfig `mapstructure:"projection" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
	Service    ServiceConfig    `mapstructure:"service"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	AWS        AWSConfig        `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DataConfig selects and configures the player-season source
type DataConfig struct {
	Source         string `mapstructure:"source" validate:"required,sourcetype"`
	StatsPath      string `mapstructure:"stats_path"`
	PlayersPath    string `mapstructure:"players_path"`
	StatsURL       string `mapstructure:"stats_url" validate:"omitempty,url"`
	PlayersURL     string `mapstructure:"players_url" validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	MinGamesPlayed int    `mapstructure:"min_games_played" validate:"gte=0"`
	SkipMalformed  bool   `mapstructure:"skip_malformed"`
}

// ProjectionConfig tunes neighbor search and weighting
type ProjectionConfig struct {
	Neighbors       int                `mapstructure:"neighbors" validate:"required,gt=0"`
	Epsilon         float64            `mapstructure:"epsilon" validate:"required,gt=0"`
	Metric          string             `mapstructure:"metric" validate:"required,metric"`
	StatWeights     map[string]float64 `mapstructure:"stat_weights" validate:"omitempty,dive,keys,stat,endkeys,gte=0"`
	Workers         int                `mapstructure:"workers" validate:"gte=0"`
	ExtendHorizon   bool               `mapstructure:"extend_horizon"`
	CacheTTLSeconds int                `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize    int                `mapstructure:"cache_max_size" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// HTTPClientConfig configures the client used by the remote source
type HTTPClientConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// ServiceConfig configures the long-running projection service
type ServiceConfig struct {
	Port                   int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	RefreshSchedule        string `mapstructure:"refresh_schedule"`
	RefreshSeason          string `mapstructure:"refresh_season" validate:"omitempty,season"`
	Persist                bool   `mapstructure:"persist"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// AWSConfig locates the optional secrets overlay
type AWSConfig struct {
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesDatabase reports whether any component needs a Postgres connection
func (c *Config) UsesDatabase() bool {
	return c.Data.Source == "postgres" || c.Service.Persist
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CacheTTL returns the projection cache TTL, zero when caching is disabled
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Projection.CacheTTLSeconds) * time.Second
}

// Weights converts the configured stat weights to typed stats.
func (p ProjectionConfig) Weights() (map[models.Stat]float64, error) {
	if len(p.StatWeights) == 0 {
		return nil, nil
	}
	weights := make(map[models.Stat]float64, len(p.StatWeights))
	for name, w := range p.StatWeights {
		s, err := models.ParseStat(name)
		if err != nil {
			return nil, err
		}
		weights[s] = w
	}
	return weights, nil
}
