package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"agrobot-intelligence/internal/config"
	"agrobot-intelligence/internal/models"

	"github.com/go-resty/resty/v2"
)

const (
	weatherTimeout      = 10 * time.Second
	forecastSlotsPerDay = 8
	defaultForecastDays = 5
)

type WeatherService struct {
	cfg    config.WeatherConfig
	client *resty.Client
}

type IWeatherService interface {
	FetchCurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error)
	FetchForecast(ctx context.Context, lat, lon float64, days int) (models.ForecastSeries, error)
}

func NewWeatherService(cfg config.WeatherConfig) IWeatherService {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Accept", "application/json")
	client.SetDisableWarn(true)
	return &WeatherService{cfg: cfg, client: client}
}

type owmWeather struct {
	Description string `json:"description"`
}

type owmMain struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
	Pressure float64 `json:"pressure"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type owmClouds struct {
	All float64 `json:"all"`
}

type owmCurrentResponse struct {
	Main       owmMain            `json:"main"`
	Weather    []owmWeather       `json:"weather"`
	Wind       owmWind            `json:"wind"`
	Clouds     owmClouds          `json:"clouds"`
	Visibility float64            `json:"visibility"`
	Rain       map[string]float64 `json:"rain"`
	Dt         int64              `json:"dt"`
}

type owmForecastItem struct {
	Dt      int64              `json:"dt"`
	Main    owmMain            `json:"main"`
	Weather []owmWeather       `json:"weather"`
	Wind    owmWind            `json:"wind"`
	Clouds  owmClouds          `json:"clouds"`
	Rain    map[string]float64 `json:"rain"`
}

type owmForecastResponse struct {
	List []owmForecastItem `json:"list"`
}

func (w *WeatherService) FetchCurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	var out owmCurrentResponse
	if err := w.get(ctx, "/weather", lat, lon, &out); err != nil {
		return nil, err
	}

	return &models.WeatherSnapshot{
		Temperature:   out.Main.Temp,
		Humidity:      out.Main.Humidity,
		Pressure:      out.Main.Pressure,
		Description:   description(out.Weather),
		WindSpeed:     out.Wind.Speed,
		WindDirection: out.Wind.Deg,
		Cloudiness:    out.Clouds.All,
		Visibility:    out.Visibility / 1000, // km
		Rainfall1h:    out.Rain["1h"],
		ObservedAt:    time.Unix(out.Dt, 0).UTC(),
	}, nil
}

// FetchForecast returns the first days*8 three-hour slots.
func (w *WeatherService) FetchForecast(ctx context.Context, lat, lon float64, days int) (models.ForecastSeries, error) {
	if days <= 0 {
		days = defaultForecastDays
	}

	var out owmForecastResponse
	if err := w.get(ctx, "/forecast", lat, lon, &out); err != nil {
		return nil, err
	}

	forecast := make(models.ForecastSeries, 0, len(out.List))
	for _, item := range out.List {
		forecast = append(forecast, models.ForecastPoint{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
			Pressure:    item.Main.Pressure,
			Description: description(item.Weather),
			WindSpeed:   item.Wind.Speed,
			Cloudiness:  item.Clouds.All,
			Rainfall:    item.Rain["3h"],
		})
	}
	return forecast.Window(days * forecastSlotsPerDay), nil
}

func (w *WeatherService) get(ctx context.Context, path string, lat, lon float64, result any) error {
	if w.cfg.APIKey == "" {
		return ErrAPIKeyMissing
	}

	ctx, cancel := context.WithTimeout(ctx, weatherTimeout)
	defer cancel()

	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":   strconv.FormatFloat(lon, 'f', -1, 64),
			"appid": w.cfg.APIKey,
			"units": "metric",
		}).
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("failed to call weather API: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("weather API returned status %d", resp.StatusCode())
	}
	return nil
}

func description(weather []owmWeather) string {
	if len(weather) == 0 {
		return ""
	}
	return weather[0].Description
}
