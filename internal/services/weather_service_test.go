package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentWeatherPayload = `{
  "main": {"temp": 29.4, "humidity": 71, "pressure": 1009},
  "weather": [{"description": "light rain"}],
  "wind": {"speed": 4.2, "deg": 210},
  "clouds": {"all": 75},
  "visibility": 8000,
  "rain": {"1h": 1.6},
  "dt": 1744718400
}`

func forecastPayload(n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rain := ""
		if i == 0 {
			rain = `, "rain": {"3h": 2.5}`
		}
		items = append(items, fmt.Sprintf(`{"dt": %d, "main": {"temp": %d, "humidity": 60, "pressure": 1010},
			"weather": [{"description": "clouds"}], "wind": {"speed": 3}, "clouds": {"all": 40}%s}`,
			1744718400+i*10800, 20+i%5, rain))
	}
	return `{"list": [` + strings.Join(items, ",") + `]}`
}

func createTestWeatherService(baseURL, apiKey string) IWeatherService {
	cfg := createTestConfig().WeatherCfg
	cfg.BaseURL = baseURL
	cfg.APIKey = apiKey
	return NewWeatherService(cfg)
}

// ============================================================================
// TEST SUITE 1: CURRENT WEATHER
// ============================================================================

func TestFetchCurrentWeather(t *testing.T) {
	server := createJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "6.6018", r.URL.Query().Get("lat"))
		assert.Equal(t, "weather-key", r.URL.Query().Get("appid"))
		fmt.Fprint(w, currentWeatherPayload)
	})
	svc := createTestWeatherService(server.URL, "weather-key")

	weather, err := svc.FetchCurrentWeather(context.Background(), 6.6018, 3.3515)

	require.NoError(t, err)
	assert.Equal(t, 29.4, weather.Temperature)
	assert.Equal(t, 71.0, weather.Humidity)
	assert.Equal(t, "light rain", weather.Description)
	assert.Equal(t, 4.2, weather.WindSpeed)
	assert.Equal(t, 210.0, weather.WindDirection)
	assert.Equal(t, 8.0, weather.Visibility)
	assert.Equal(t, 1.6, weather.Rainfall1h)
	assert.Equal(t, time.Unix(1744718400, 0).UTC(), weather.ObservedAt)
}

func TestFetchCurrentWeather_NoRainDefaultsToZero(t *testing.T) {
	server := createJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"main": {"temp": 30}, "weather": [], "wind": {"speed": 1}, "clouds": {"all": 0}, "dt": 1744718400}`)
	})
	svc := createTestWeatherService(server.URL, "weather-key")

	weather, err := svc.FetchCurrentWeather(context.Background(), 6.6018, 3.3515)

	require.NoError(t, err)
	assert.Equal(t, 0.0, weather.Rainfall1h)
	assert.Equal(t, "", weather.Description)
	assert.Equal(t, 0.0, weather.WindDirection)
}

func TestFetchCurrentWeather_Errors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		svc := createTestWeatherService("http://127.0.0.1:1", "")

		_, err := svc.FetchCurrentWeather(context.Background(), 0, 0)

		assert.ErrorIs(t, err, ErrAPIKeyMissing)
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := createJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"cod": 401, "message": "Invalid API key"}`)
		})
		svc := createTestWeatherService(server.URL, "bad-key")

		_, err := svc.FetchCurrentWeather(context.Background(), 0, 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}

// ============================================================================
// TEST SUITE 2: FORECAST
// ============================================================================

func TestFetchForecast(t *testing.T) {
	server := createJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		fmt.Fprint(w, forecastPayload(40))
	})
	svc := createTestWeatherService(server.URL, "weather-key")

	tests := []struct {
		name     string
		days     int
		expected int
	}{
		{"one day", 1, 8},
		{"two days", 2, 16},
		{"default five days", 0, 40},
		{"more than available", 7, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forecast, err := svc.FetchForecast(context.Background(), 6.6018, 3.3515, tt.days)

			require.NoError(t, err)
			assert.Len(t, forecast, tt.expected)
			assert.Equal(t, 2.5, forecast[0].Rainfall)
			assert.Equal(t, 0.0, forecast[1].Rainfall)
			assert.Equal(t, 3*time.Hour, forecast[1].Time.Sub(forecast[0].Time))
		})
	}
}
