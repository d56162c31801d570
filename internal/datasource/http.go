package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/yourusername/nba-comps/internal/models"
)

// HTTPSource downloads the stats table (and optionally the players table) as
// CSV from remote URLs.
type HTTPSource struct {
	httpClient *RateLimitedHTTPClient
	statsURL   string
	playersURL string
	apiKey     string
	opts       Options
}

// NewHTTPSource creates a remote CSV source. apiKey, when set, is sent as a
// bearer token.
func NewHTTPSource(httpClient *RateLimitedHTTPClient, statsURL, playersURL, apiKey string, opts Options) *HTTPSource {
	return &HTTPSource{
		httpClient: httpClient,
		statsURL:   statsURL,
		playersURL: playersURL,
		apiKey:     apiKey,
		opts:       opts,
	}
}

// Name returns the name of the data source
func (s *HTTPSource) Name() string {
	return HTTPSourceName
}

// Load downloads and parses the remote tables.
func (s *HTTPSource) Load(ctx context.Context) ([]models.PlayerSeasonRecord, error) {
	body, err := s.fetch(ctx, s.statsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	records, err := ParseStats(HTTPSourceName, body, s.opts)
	if err != nil {
		return nil, err
	}

	if s.playersURL == "" {
		return records, nil
	}

	players, err := s.fetch(ctx, s.playersURL)
	if err != nil {
		return nil, err
	}
	defer players.Close()

	dir, err := ReadPlayerDirectory(HTTPSourceName, players)
	if err != nil {
		return nil, err
	}
	dir.Apply(records)

	return records, nil
}

func (s *HTTPSource) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	header := http.Header{}
	header.Set("Accept", "text/csv")
	if s.apiKey != "" {
		header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	}

	resp, err := s.httpClient.Get(ctx, url, header)
	if err != nil {
		return nil, NewDataSourceError(HTTPSourceName, ErrCodeNetworkError, "failed to fetch "+url, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		resp.Body.Close()
		return nil, NewDataSourceError(HTTPSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, NewDataSourceError(HTTPSourceName, ErrCodeNotFound, url+" not found", nil)
	case http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, NewDataSourceError(HTTPSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, NewDataSourceError(HTTPSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
}
