package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"agrobot-intelligence/internal/analytics"
	"agrobot-intelligence/internal/config"
	"agrobot-intelligence/internal/event"
	"agrobot-intelligence/internal/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// AlertDeduper reports whether an alert fingerprint is new within ttl.
type AlertDeduper interface {
	FirstSeen(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)
}

// AnalyzeRequest carries caller supplied data for a one-off pass.
type AnalyzeRequest struct {
	Current  *models.SensorReading   `json:"current"`
	History  models.HistoricalSeries `json:"history"`
	Weather  *models.WeatherSnapshot `json:"weather"`
	Forecast models.ForecastSeries   `json:"forecast"`
}

type PipelineService struct {
	cfg        *config.AnalyticsServiceConfig
	thingSpeak IThingSpeakService
	weather    IWeatherService

	processor   *analytics.Processor
	recommender *analytics.RecommendationEngine
	alerter     *analytics.AlertEngine

	publisher event.AlertPublisher
	deduper   AlertDeduper
	now       func() time.Time

	mu     sync.RWMutex
	latest *models.DashboardSnapshot
}

type IPipelineService interface {
	RunCycle(ctx context.Context) (*models.DashboardSnapshot, error)
	Latest() (*models.DashboardSnapshot, bool)
	Analyze(req AnalyzeRequest) *models.DashboardSnapshot
	Location() models.FarmLocation
}

type PipelineOption func(*PipelineService)

func WithAlertPublisher(publisher event.AlertPublisher) PipelineOption {
	return func(s *PipelineService) {
		s.publisher = publisher
	}
}

func WithAlertDeduper(deduper AlertDeduper) PipelineOption {
	return func(s *PipelineService) {
		s.deduper = deduper
	}
}

func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(s *PipelineService) {
		s.now = now
	}
}

func NewPipelineService(cfg *config.AnalyticsServiceConfig, thingSpeak IThingSpeakService, weather IWeatherService, opts ...PipelineOption) IPipelineService {
	s := &PipelineService{
		cfg:        cfg,
		thingSpeak: thingSpeak,
		weather:    weather,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	th := cfg.Thresholds()
	s.processor = analytics.NewProcessor(th, analytics.WithClock(s.now))
	s.recommender = analytics.NewRecommendationEngine(th.Recommendation)
	s.alerter = analytics.NewAlertEngine(th.Alerts, analytics.WithClock(s.now))
	return s
}

func (s *PipelineService) Location() models.FarmLocation {
	return models.FarmLocation{
		Latitude:  s.cfg.ThingSpeakCfg.Latitude,
		Longitude: s.cfg.ThingSpeakCfg.Longitude,
	}
}

// RunCycle fetches fresh data, runs the analytics chain and stores the
// result as the latest snapshot. Collaborator failures degrade to missing
// inputs; only cancellation aborts the cycle.
func (s *PipelineService) RunCycle(ctx context.Context) (*models.DashboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	location := s.Location()
	tsCfg := s.cfg.ThingSpeakCfg

	current, err := s.thingSpeak.FetchLatestReading(ctx)
	if err != nil {
		log.WithError(err).Warn("Latest sensor reading unavailable")
	}

	history, err := s.thingSpeak.FetchHistory(ctx, tsCfg.HistoryDays, tsCfg.HistoryResults)
	if err != nil {
		log.WithError(err).Warn("Sensor history unavailable")
		history = models.HistoricalSeries{}
	}

	weather, err := s.weather.FetchCurrentWeather(ctx, location.Latitude, location.Longitude)
	if err != nil {
		logWeatherError(err, "Current weather unavailable")
	}

	forecast, err := s.weather.FetchForecast(ctx, location.Latitude, location.Longitude, s.cfg.WeatherCfg.ForecastDays)
	if err != nil {
		logWeatherError(err, "Weather forecast unavailable")
		forecast = models.ForecastSeries{}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refresh cycle canceled: %w", err)
	}

	snapshot := s.build(current, history, weather, forecast)

	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()

	published := s.publishAlerts(ctx, snapshot)

	log.WithFields(log.Fields{
		"cycle_id":        snapshot.CycleID,
		"has_reading":     snapshot.Processed.HasCurrent(),
		"history":         len(history),
		"anomalies":       len(snapshot.Processed.Anomalies),
		"recommendations": snapshot.Recommendations.Total(),
		"alerts":          snapshot.Alerts.Total(),
		"published":       published,
	}).Info("Refresh cycle completed")

	return snapshot, nil
}

func (s *PipelineService) Latest() (*models.DashboardSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Analyze runs the analytics chain on the request without any I/O. The
// result is not stored and no alerts are published.
func (s *PipelineService) Analyze(req AnalyzeRequest) *models.DashboardSnapshot {
	return s.build(req.Current, req.History, req.Weather, req.Forecast)
}

func (s *PipelineService) build(current *models.SensorReading, history models.HistoricalSeries, weather *models.WeatherSnapshot, forecast models.ForecastSeries) *models.DashboardSnapshot {
	if forecast == nil {
		forecast = models.ForecastSeries{}
	}

	processed := s.processor.Process(current, history)
	return &models.DashboardSnapshot{
		CycleID:         uuid.NewString(),
		GeneratedAt:     s.now().UTC(),
		Location:        s.Location(),
		Processed:       processed,
		Weather:         weather,
		Forecast:        forecast,
		Recommendations: s.recommender.Recommend(processed, weather, forecast),
		Alerts:          s.alerter.Alert(processed, weather),
		OptimalRanges:   analytics.OptimalRanges(),
	}
}

// publishAlerts fans out critical and warning alerts. A condition already
// published within the dedupe window is skipped.
func (s *PipelineService) publishAlerts(ctx context.Context, snapshot *models.DashboardSnapshot) int {
	if s.publisher == nil {
		return 0
	}

	var readingTimestamp string
	if snapshot.Processed.HasCurrent() {
		readingTimestamp = snapshot.Processed.Current.Timestamp
	}

	actionable := lo.Filter(snapshot.Alerts.Ordered(), func(a models.Alert, _ int) bool {
		return a.Priority != models.AlertInfo
	})

	published := 0
	for _, a := range actionable {
		evt := event.NewAlertEvent(snapshot.CycleID, a, snapshot.Location, readingTimestamp)

		if s.deduper != nil {
			first, err := s.deduper.FirstSeen(ctx, evt.Fingerprint(), s.cfg.RedisCfg.AlertDedupeTTL)
			if err != nil {
				log.WithError(err).Warn("Alert dedupe check failed, publishing anyway")
			} else if !first {
				log.WithField("fingerprint", evt.Fingerprint()).Debug("Alert already published recently")
				continue
			}
		}

		if err := s.publisher.PublishAlert(ctx, evt); err != nil {
			log.WithError(err).WithField("title", evt.Title).Error("Failed to publish alert")
			continue
		}
		published++
	}
	return published
}

func logWeatherError(err error, msg string) {
	if errors.Is(err, ErrAPIKeyMissing) {
		log.Debug(msg + ": API key not configured")
		return
	}
	log.WithError(err).Warn(msg)
}
