package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-comps/internal/config"
	"github.com/yourusername/nba-comps/internal/store"
)

// SourceType represents the type of data source
type SourceType string

const (
	// CSVSourceType reads local files
	CSVSourceType SourceType = CSVSourceName
	// HTTPSourceType downloads CSV over HTTP
	HTTPSourceType SourceType = HTTPSourceName
	// PostgresSourceType reads the player_seasons table
	PostgresSourceType SourceType = PostgresSourceName
)

// Factory creates sources based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
	lister PlayerSeasonLister
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// WithLister supplies the repository used by the postgres source.
func (f *Factory) WithLister(lister PlayerSeasonLister) *Factory {
	f.lister = lister
	return f
}

// Create creates the source selected by data.source
func (f *Factory) Create() (store.Source, error) {
	data := f.config.Data
	opts := Options{SkipMalformed: data.SkipMalformed, Logger: f.logger}

	switch SourceType(data.Source) {
	case CSVSourceType:
		if data.StatsPath == "" {
			return nil, fmt.Errorf("csv source requires data.stats_path")
		}
		return NewCSVSource(data.StatsPath, data.PlayersPath, opts), nil

	case HTTPSourceType:
		if data.StatsURL == "" {
			return nil, fmt.Errorf("http source requires data.stats_url")
		}
		client := NewRateLimitedHTTPClient(f.httpClientConfig(), f.logger)
		return NewHTTPSource(client, data.StatsURL, data.PlayersURL, data.APIKey, opts), nil

	case PostgresSourceType:
		if f.lister == nil {
			return nil, fmt.Errorf("postgres source requires a player season repository")
		}
		return NewPostgresSource(f.lister), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s", data.Source)
	}
}

func (f *Factory) httpClientConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	hc := f.config.HTTPClient
	if hc.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(hc.TimeoutSeconds) * time.Second
	}
	if hc.MaxRetries > 0 {
		cfg.MaxRetries = hc.MaxRetries
	}
	if hc.RateLimit > 0 {
		cfg.RateLimit = hc.RateLimit
	}
	return cfg
}
