package models

import (
	"encoding/json"
	"time"
)

// WeatherSnapshot is the current observation at the farm location. Wind
// speed is in m/s, rainfall in mm over the last hour.
type WeatherSnapshot struct {
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Pressure      float64   `json:"pressure"`
	Description   string    `json:"description"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"`
	Cloudiness    float64   `json:"cloudiness"`
	Visibility    float64   `json:"visibility"`
	Rainfall1h    float64   `json:"rainfall_1h"`
	ObservedAt    time.Time `json:"observed_at"`
}

const (
	DefaultAirTemperature = 25.0
	DefaultAirHumidity    = 50.0
)

// UnmarshalJSON fills temperature and humidity with neutral defaults when
// the payload omits them. Wind and rainfall default to 0.
func (w *WeatherSnapshot) UnmarshalJSON(data []byte) error {
	type plain WeatherSnapshot
	decoded := plain{
		Temperature: DefaultAirTemperature,
		Humidity:    DefaultAirHumidity,
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*w = WeatherSnapshot(decoded)
	return nil
}

// ForecastPoint is one 3-hour forecast slot.
type ForecastPoint struct {
	Time        time.Time `json:"datetime"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Description string    `json:"description"`
	WindSpeed   float64   `json:"wind_speed"`
	Cloudiness  float64   `json:"cloudiness"`
	Rainfall    float64   `json:"rainfall"`
}

type ForecastSeries []ForecastPoint

// Window returns at most the first n points.
func (f ForecastSeries) Window(n int) ForecastSeries {
	if n < 0 {
		return ForecastSeries{}
	}
	if len(f) <= n {
		return f
	}
	return f[:n]
}

// FarmLocation is the single monitored site.
type FarmLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
