package config

import (
	"fmt"
	"strings"
	"time"

	"agrobot-intelligence/internal/analytics"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type AnalyticsServiceConfig struct {
	Port          string               `mapstructure:"port"`
	LogDir        string               `mapstructure:"log_dir"`
	ThingSpeakCfg ThingSpeakConfig     `mapstructure:"thingspeak"`
	WeatherCfg    WeatherConfig        `mapstructure:"weather"`
	RedisCfg      RedisConfig          `mapstructure:"redis"`
	RabbitMQCfg   RabbitMQConfig       `mapstructure:"rabbitmq"`
	SchedulerCfg  SchedulerConfig      `mapstructure:"scheduler"`
	AWSCfg        AWSConfig            `mapstructure:"aws"`
	AlertCfg      AlertThresholdConfig `mapstructure:"alerts"`
}

type ThingSpeakConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ChannelID      string        `mapstructure:"channel_id"`
	ReadAPIKey     string        `mapstructure:"read_api_key"`
	HistoryDays    int           `mapstructure:"history_days"`
	HistoryResults int           `mapstructure:"history_results"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	Latitude       float64       `mapstructure:"latitude"`
	Longitude      float64       `mapstructure:"longitude"`
}

type WeatherConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	ForecastDays int    `mapstructure:"forecast_days"`
}

type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	AlertDedupeTTL time.Duration `mapstructure:"alert_dedupe_ttl"`
}

type RabbitMQConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Username   string `mapstructure:"user"`
	Password   string `mapstructure:"pwd"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	AlertQueue string `mapstructure:"alert_queue"`
}

type SchedulerConfig struct {
	RefreshSpec string `mapstructure:"refresh_spec"`
	RunOnStart  bool   `mapstructure:"run_on_start"`
}

type AWSConfig struct {
	Region      string `mapstructure:"region"`
	SNSTopicARN string `mapstructure:"sns_topic_arn"`
}

// AlertThresholdConfig exposes the alert cut points that operators tune per
// crop. Everything else keeps the built-in defaults.
type AlertThresholdConfig struct {
	TemperatureCriticalLow  float64 `mapstructure:"temperature_critical_low"`
	TemperatureLow          float64 `mapstructure:"temperature_low"`
	TemperatureHigh         float64 `mapstructure:"temperature_high"`
	TemperatureCriticalHigh float64 `mapstructure:"temperature_critical_high"`
	HumidityCriticalLow     float64 `mapstructure:"humidity_critical_low"`
	HumidityLow             float64 `mapstructure:"humidity_low"`
	HumidityHigh            float64 `mapstructure:"humidity_high"`
	HumidityCriticalHigh    float64 `mapstructure:"humidity_critical_high"`
	PHCriticalLow           float64 `mapstructure:"ph_critical_low"`
	PHLow                   float64 `mapstructure:"ph_low"`
	PHHigh                  float64 `mapstructure:"ph_high"`
	PHCriticalHigh          float64 `mapstructure:"ph_critical_high"`
	NitrogenCritical        float64 `mapstructure:"nitrogen_critical"`
	NitrogenLow             float64 `mapstructure:"nitrogen_low"`
	PhosphorusCritical      float64 `mapstructure:"phosphorus_critical"`
	PotassiumCritical       float64 `mapstructure:"potassium_critical"`
	WindCritical            float64 `mapstructure:"wind_critical"`
	WindWarning             float64 `mapstructure:"wind_warning"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8090")
	v.SetDefault("log_dir", "/agrobot/log/analytics_service")

	v.SetDefault("thingspeak.base_url", "https://api.thingspeak.com")
	v.SetDefault("thingspeak.channel_id", "2957131")
	v.SetDefault("thingspeak.read_api_key", "")
	v.SetDefault("thingspeak.history_days", 7)
	v.SetDefault("thingspeak.history_results", 100)
	v.SetDefault("thingspeak.cache_ttl", "2m")
	v.SetDefault("thingspeak.latitude", 6.6018)
	v.SetDefault("thingspeak.longitude", 3.3515)

	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.forecast_days", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.alert_dedupe_ttl", "1h")

	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.user", "admin")
	v.SetDefault("rabbitmq.pwd", "admin")
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", "5672")
	v.SetDefault("rabbitmq.alert_queue", "farm_alert_events")

	v.SetDefault("scheduler.refresh_spec", "@every 5m")
	v.SetDefault("scheduler.run_on_start", true)

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.sns_topic_arn", "")

	a := analytics.DefaultAlertThresholds()
	v.SetDefault("alerts.temperature_critical_low", a.Temperature.CriticalLow)
	v.SetDefault("alerts.temperature_low", a.Temperature.Low)
	v.SetDefault("alerts.temperature_high", a.Temperature.High)
	v.SetDefault("alerts.temperature_critical_high", a.Temperature.CriticalHigh)
	v.SetDefault("alerts.humidity_critical_low", a.Humidity.CriticalLow)
	v.SetDefault("alerts.humidity_low", a.Humidity.Low)
	v.SetDefault("alerts.humidity_high", a.Humidity.High)
	v.SetDefault("alerts.humidity_critical_high", a.Humidity.CriticalHigh)
	v.SetDefault("alerts.ph_critical_low", a.PH.CriticalLow)
	v.SetDefault("alerts.ph_low", a.PH.Low)
	v.SetDefault("alerts.ph_high", a.PH.High)
	v.SetDefault("alerts.ph_critical_high", a.PH.CriticalHigh)
	v.SetDefault("alerts.nitrogen_critical", a.NitrogenCritical)
	v.SetDefault("alerts.nitrogen_low", a.NitrogenLow)
	v.SetDefault("alerts.phosphorus_critical", a.PhosphorusCritical)
	v.SetDefault("alerts.potassium_critical", a.PotassiumCritical)
	v.SetDefault("alerts.wind_critical", a.WindCritical)
	v.SetDefault("alerts.wind_warning", a.WindWarning)
}

// RegisterFlags adds the command line switches understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config-file", "", "Path to a YAML configuration file")
	fs.String("port", "", "HTTP port, overrides PORT")
}

// Load reads defaults, then the optional YAML file, then the environment,
// then flags. flags may be nil.
func Load(flags *pflag.FlagSet) (*AnalyticsServiceConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if configFile, _ := flags.GetString("config-file"); configFile != "" {
			v.SetConfigFile(configFile)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
		if f := flags.Lookup("port"); f != nil && f.Changed {
			if err := v.BindPFlag("port", f); err != nil {
				return nil, fmt.Errorf("failed to bind port flag: %w", err)
			}
		}
	}

	var cfg AnalyticsServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// New loads configuration from defaults and the environment only.
func New() *AnalyticsServiceConfig {
	cfg, err := Load(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Thresholds freezes the tunable alert cut points into the analytics rule
// configuration.
func (c *AnalyticsServiceConfig) Thresholds() analytics.Thresholds {
	th := analytics.DefaultThresholds()
	a := c.AlertCfg
	th.Alerts.Temperature = analytics.Band{
		CriticalLow:  a.TemperatureCriticalLow,
		Low:          a.TemperatureLow,
		High:         a.TemperatureHigh,
		CriticalHigh: a.TemperatureCriticalHigh,
	}
	th.Alerts.Humidity = analytics.Band{
		CriticalLow:  a.HumidityCriticalLow,
		Low:          a.HumidityLow,
		High:         a.HumidityHigh,
		CriticalHigh: a.HumidityCriticalHigh,
	}
	th.Alerts.PH = analytics.Band{
		CriticalLow:  a.PHCriticalLow,
		Low:          a.PHLow,
		High:         a.PHHigh,
		CriticalHigh: a.PHCriticalHigh,
	}
	th.Alerts.NitrogenCritical = a.NitrogenCritical
	th.Alerts.NitrogenLow = a.NitrogenLow
	th.Alerts.PhosphorusCritical = a.PhosphorusCritical
	th.Alerts.PotassiumCritical = a.PotassiumCritical
	th.Alerts.WindCritical = a.WindCritical
	th.Alerts.WindWarning = a.WindWarning
	return th
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
