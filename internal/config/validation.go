// Package config provides configuration management for the projection engine.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/season"
	"github.com/yourusername/nba-comps/internal/similarity"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	mustRegister(v, "environment", validateEnvironment)
	mustRegister(v, "loglevel", validateLogLevel)
	mustRegister(v, "sourcetype", validateSourceType)
	mustRegister(v, "metric", validateMetric)
	mustRegister(v, "season", validateSeason)
	mustRegister(v, "stat", validateStat)

	return &CustomValidator{validator: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateSourceType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "csv", "http", "postgres":
		return true
	default:
		return false
	}
}

func validateMetric(fl validator.FieldLevel) bool {
	_, err := similarity.ParseMetric(fl.Field().String())
	return err == nil
}

func validateSeason(fl validator.FieldLevel) bool {
	_, err := season.StartYear(fl.Field().String())
	return err == nil
}

func validateStat(fl validator.FieldLevel) bool {
	_, err := models.ParseStat(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	switch cfg.Data.Source {
	case "csv":
		if cfg.Data.StatsPath == "" {
			return fmt.Errorf("data.stats_path is required for the csv source")
		}
	case "http":
		if cfg.Data.StatsURL == "" {
			return fmt.Errorf("data.stats_url is required for the http source")
		}
	}

	if cfg.UsesDatabase() {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when reading from or persisting to postgres")
		}
		if cfg.Database.Port == 0 {
			return fmt.Errorf("database.port is required when reading from or persisting to postgres")
		}
		// Production must have SSL enabled
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	if cfg.Service.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Service.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid service.refresh_schedule %q: %w", cfg.Service.RefreshSchedule, err)
		}
	}

	weights, err := cfg.Projection.Weights()
	if err != nil {
		return fmt.Errorf("invalid projection.stat_weights: %w", err)
	}
	if len(weights) == models.NumStats {
		allZero := true
		for _, w := range weights {
			if w != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return fmt.Errorf("projection.stat_weights cannot disable every stat")
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "sourcetype":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: csv, http, postgres\n", field)
		case "metric":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: euclidean, mean_abs\n", field)
		case "season":
			errMsg += fmt.Sprintf("- Field '%s' must look like 2016-17, got '%v'\n", field, value)
		case "stat":
			errMsg += fmt.Sprintf("- Field '%s' has unknown stat '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
