package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"agrobot-intelligence/internal/config"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

var testNow = time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

func createTestConfig() *config.AnalyticsServiceConfig {
	cfg := config.New()
	cfg.ThingSpeakCfg.ChannelID = "2957131"
	cfg.ThingSpeakCfg.ReadAPIKey = "read-key"
	cfg.ThingSpeakCfg.HistoryDays = 7
	cfg.ThingSpeakCfg.HistoryResults = 100
	cfg.ThingSpeakCfg.CacheTTL = time.Minute
	cfg.ThingSpeakCfg.Latitude = 6.6018
	cfg.ThingSpeakCfg.Longitude = 3.3515
	cfg.WeatherCfg.APIKey = "weather-key"
	cfg.WeatherCfg.ForecastDays = 5
	cfg.RedisCfg.AlertDedupeTTL = time.Hour
	return cfg
}

func createJSONServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}
