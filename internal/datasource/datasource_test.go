package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-comps/internal/config"
	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/models"
)

const statsHeader = "player_id,season_id,gp,pts,min,fgm,fga,fg3m,fg3a,ftm,fta,oreb,dreb,ast,stl,tov,blk"

const statsCSV = statsHeader + `
201939,2015-16,79,30.1,34.2,10.2,20.2,5.1,11.2,4.6,5.1,0.9,4.6,6.7,2.1,3.3,0.2
2544,2015-16,76,25.3,35.6,9.7,18.6,1.1,3.7,4.7,6.5,1.5,5.8,6.8,1.4,3.3,0.6
2544,2016-17,74,26.4,37.8,9.9,18.2,1.7,4.6,4.8,7.2,1.3,7.3,8.7,1.2,4.1,0.6
`

const playersCSV = `player_id,season_id,player_name
201939,2015-16,Stephen Curry
2544,,LeBron James
`

func quietOptions() Options {
	return Options{Logger: logger.Discard()}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseStats(t *testing.T) {
	records, err := ParseStats("test", strings.NewReader(statsCSV), quietOptions())
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, int64(201939), first.PlayerID)
	assert.Equal(t, "2015-16", first.SeasonID)
	assert.Equal(t, 79, first.GamesPlayed)
	assert.Equal(t, 30.1, first.Points)
	assert.Equal(t, 0.2, first.Blocks)
	assert.Equal(t, 6.7, first.Value(models.StatAssists))
}

func TestParseStatsColumnOrderAndExtras(t *testing.T) {
	input := "team,blk,tov,stl,ast,dreb,oreb,fta,ftm,fg3a,fg3m,fga,fgm,min,pts,gp,season_id,player_id,player_name\n" +
		"GSW,1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,2016-17,7,Someone\n"

	records, err := ParseStats("test", strings.NewReader(input), quietOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, int64(7), records[0].PlayerID)
	assert.Equal(t, 15, records[0].GamesPlayed)
	assert.Equal(t, 14.0, records[0].Points)
	assert.Equal(t, 1.0, records[0].Blocks)
	assert.Equal(t, "Someone", records[0].PlayerName)
}

func TestParseStatsDropsEmptyRows(t *testing.T) {
	input := statsHeader + "\n" +
		"1,2015-16,,,,,,,,,,,,,,,\n" +
		"2,2015-16,70,1,1,1,1,1,1,1,1,1,1,1,1,1,1\n"

	records, err := ParseStats("test", strings.NewReader(input), quietOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].PlayerID)
}

func TestParseStatsKeepsZeroes(t *testing.T) {
	input := statsHeader + "\n" + "3,2015-16,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0\n"

	records, err := ParseStats("test", strings.NewReader(input), quietOptions())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseStatsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"missing stat", "1,2015-16,70,,1,1,1,1,1,1,1,1,1,1,1,1,1", "pts"},
		{"bad number", "1,2015-16,70,abc,1,1,1,1,1,1,1,1,1,1,1,1,1", "pts"},
		{"nan", "1,2015-16,70,1,1,1,1,1,1,1,1,1,1,1,1,1,NaN", "blk"},
		{"bad player id", "x,2015-16,70,1,1,1,1,1,1,1,1,1,1,1,1,1,1", "player_id"},
		{"bad season", "1,2015,70,1,1,1,1,1,1,1,1,1,1,1,1,1,1", "season_id"},
		{"fractional games", "1,2015-16,70.5,1,1,1,1,1,1,1,1,1,1,1,1,1,1", "gp"},
		{"short row", "1,2015-16,70,1,1", "fgm"},
		{"negative points", "1,2015-16,70,-12.5,1,1,1,1,1,1,1,1,1,1,1,1,-1", "pts"},
		{"negative blocks", "1,2015-16,70,1,1,1,1,1,1,1,1,1,1,1,1,1,-1", "blk"},
		{"negative games", "1,2015-16,-3,1,1,1,1,1,1,1,1,1,1,1,1,1,1", "gp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := statsHeader + "\n" + tt.row + "\n"

			_, err := ParseStats("test", strings.NewReader(input), quietOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrMalformedRow)

			var rowErr *models.RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, 2, rowErr.Row)
			assert.Equal(t, tt.column, rowErr.Column)
			assert.Equal(t, "test", rowErr.Source)
		})
	}
}

func TestParseStatsSkipMalformed(t *testing.T) {
	input := statsHeader + "\n" +
		"1,2015-16,70,,1,1,1,1,1,1,1,1,1,1,1,1,1\n" +
		"2,2015-16,70,1,1,1,1,1,1,1,1,1,1,1,1,1,1\n"

	opts := quietOptions()
	opts.SkipMalformed = true
	records, err := ParseStats("test", strings.NewReader(input), opts)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].PlayerID)
}

func TestParseStatsMissingColumn(t *testing.T) {
	input := strings.Replace(statsHeader, ",blk", "", 1) + "\n"

	_, err := ParseStats("test", strings.NewReader(input), quietOptions())
	var rowErr *models.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, "blk", rowErr.Column)
	assert.Equal(t, 1, rowErr.Row)
}

func TestParseStatsEmptyInput(t *testing.T) {
	_, err := ParseStats("test", strings.NewReader(""), quietOptions())
	assert.ErrorIs(t, err, models.ErrMalformedRow)
}

func TestParseWhole(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"70", 70, false},
		{"70.0", 70, false},
		{"-3", -3, false},
		{"70.5", 0, true},
		{"", 0, true},
		{"seventy", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWhole(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestPlayerDirectory(t *testing.T) {
	dir, err := ReadPlayerDirectory("test", strings.NewReader(playersCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, dir.Len())

	name, ok := dir.Lookup(201939, "2015-16")
	assert.True(t, ok)
	assert.Equal(t, "Stephen Curry", name)

	// falls back to the player-only row
	name, ok = dir.Lookup(2544, "2016-17")
	assert.True(t, ok)
	assert.Equal(t, "LeBron James", name)

	_, ok = dir.Lookup(1, "2016-17")
	assert.False(t, ok)

	records := []models.PlayerSeasonRecord{
		{PlayerID: 201939, SeasonID: "2015-16"},
		{PlayerID: 2544, SeasonID: "2015-16", PlayerName: "Already Named"},
		{PlayerID: 1, SeasonID: "2015-16"},
	}
	assert.Equal(t, 1, dir.Apply(records))
	assert.Equal(t, "Stephen Curry", records[0].PlayerName)
	assert.Equal(t, "Already Named", records[1].PlayerName)
	assert.Empty(t, records[2].PlayerName)
}

func TestPlayerDirectoryRequiresNameColumn(t *testing.T) {
	_, err := ReadPlayerDirectory("test", strings.NewReader("player_id,season_id\n1,2015-16\n"))
	assert.ErrorIs(t, err, models.ErrMalformedRow)
}

func TestCSVSourceLoad(t *testing.T) {
	stats := writeFile(t, "stats.csv", statsCSV)
	players := writeFile(t, "players.csv", playersCSV)

	src := NewCSVSource(stats, players, quietOptions())
	assert.Equal(t, "csv", src.Name())

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Stephen Curry", records[0].PlayerName)
	assert.Equal(t, "LeBron James", records[2].PlayerName)
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"), "", quietOptions())
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func newTestHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 1
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	cfg.RateLimit = 0
	return NewRateLimitedHTTPClient(cfg, logger.Discard())
}

func TestHTTPSourceLoad(t *testing.T) {
	var authHeader atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/stats.csv":
			_, _ = w.Write([]byte(statsCSV))
		case "/players.csv":
			_, _ = w.Write([]byte(playersCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewHTTPSource(newTestHTTPClient(), server.URL+"/stats.csv", server.URL+"/players.csv", "secret", quietOptions())
	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Stephen Curry", records[0].PlayerName)
	assert.Equal(t, "Bearer secret", authHeader.Load())
}

func TestHTTPSourceStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, ErrCodeAuthenticationFailed},
		{"not found", http.StatusNotFound, ErrCodeNotFound},
		{"bad request", http.StatusBadRequest, ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			src := NewHTTPSource(newTestHTTPClient(), server.URL, "", "", quietOptions())
			_, err := src.Load(context.Background())

			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tt.code, dsErr.Code)
		})
	}
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(statsCSV))
	}))
	defer server.Close()

	src := NewHTTPSource(newTestHTTPClient(), server.URL, "", "", quietOptions())
	records, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClientCircuitBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 0
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, logger.Discard())

	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), server.URL, nil)
		require.Error(t, err)
	}
	_, err := client.Get(context.Background(), server.URL, nil)
	assert.ErrorIs(t, err, errCircuitOpen)
}

type fakeLister struct {
	records []models.PlayerSeasonRecord
	err     error
}

func (f fakeLister) ListPlayerSeasons(ctx context.Context) ([]models.PlayerSeasonRecord, error) {
	return f.records, f.err
}

func TestPostgresSource(t *testing.T) {
	src := NewPostgresSource(fakeLister{records: []models.PlayerSeasonRecord{{PlayerID: 1, SeasonID: "2015-16"}}})
	records, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	boom := errors.New("boom")
	_, err = NewPostgresSource(fakeLister{err: boom}).Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFactoryCreate(t *testing.T) {
	cfg := &config.Config{}

	cfg.Data = config.DataConfig{Source: "csv", StatsPath: "stats.csv"}
	src, err := NewFactory(cfg, nil).Create()
	require.NoError(t, err)
	assert.IsType(t, &CSVSource{}, src)

	cfg.Data = config.DataConfig{Source: "http", StatsURL: "http://example.invalid/stats.csv"}
	src, err = NewFactory(cfg, nil).Create()
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	cfg.Data = config.DataConfig{Source: "postgres"}
	_, err = NewFactory(cfg, nil).Create()
	assert.Error(t, err)
	src, err = NewFactory(cfg, nil).WithLister(fakeLister{}).Create()
	require.NoError(t, err)
	assert.IsType(t, &PostgresSource{}, src)

	cfg.Data = config.DataConfig{Source: "parquet"}
	_, err = NewFactory(cfg, nil).Create()
	assert.Error(t, err)
}
