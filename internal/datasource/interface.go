// Package datasource reads per-player per-season box-score tables from local
// files, remote URLs or Postgres.
package datasource

import (
	"errors"

	"github.com/yourusername/nba-comps/internal/store"
)

// Source names reported in logs, metrics and errors.
const (
	CSVSourceName      = "csv"
	HTTPSourceName     = "http"
	PostgresSourceName = "postgres"
)

// Compile-time checks that every source satisfies store.Source.
var (
	_ store.Source = (*CSVSource)(nil)
	_ store.Source = (*HTTPSource)(nil)
	_ store.Source = (*PostgresSource)(nil)
)

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

var errCircuitOpen = errors.New("circuit breaker open")

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
