package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"agrobot-intelligence/internal/config"
	"agrobot-intelligence/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	latestTimeout  = 10 * time.Second
	historyTimeout = 15 * time.Second
)

// fieldMapping follows the channel's field layout.
var fieldMapping = map[string]models.SensorField{
	"field1": models.FieldTemperature,
	"field2": models.FieldHumidity,
	"field3": models.FieldPH,
	"field4": models.FieldNitrogen,
	"field5": models.FieldPhosphorus,
	"field6": models.FieldPotassium,
	"field7": models.FieldConductivity,
	"field8": models.FieldTDS,
}

// FeedCache stores raw feed payloads between refresh cycles.
type FeedCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type ChannelInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	LastEntryID int64  `json:"last_entry_id"`
}

type channelFeeds struct {
	Channel ChannelInfo      `json:"channel"`
	Feeds   []map[string]any `json:"feeds"`
}

type ThingSpeakService struct {
	cfg    config.ThingSpeakConfig
	client *resty.Client
	cache  FeedCache
	now    func() time.Time
}

type IThingSpeakService interface {
	FetchLatestReading(ctx context.Context) (*models.SensorReading, error)
	FetchHistory(ctx context.Context, days, results int) (models.HistoricalSeries, error)
	FetchChannelInfo(ctx context.Context) (*ChannelInfo, error)
}

// NewThingSpeakService creates the feed client. cache may be nil.
func NewThingSpeakService(cfg config.ThingSpeakConfig, cache FeedCache) IThingSpeakService {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Accept", "application/json")
	client.SetDisableWarn(true)
	return &ThingSpeakService{
		cfg:    cfg,
		client: client,
		cache:  cache,
		now:    time.Now,
	}
}

func (s *ThingSpeakService) FetchLatestReading(ctx context.Context) (*models.SensorReading, error) {
	payload, err := s.fetchFeeds(ctx, 1, latestTimeout)
	if err != nil {
		return nil, err
	}
	if len(payload.Feeds) == 0 {
		return nil, ErrNoSensorData
	}
	return toSensorReading(payload.Feeds[len(payload.Feeds)-1]), nil
}

// FetchHistory returns up to results entries from the last days, oldest
// first. Entries without a readable timestamp are dropped when days > 0.
func (s *ThingSpeakService) FetchHistory(ctx context.Context, days, results int) (models.HistoricalSeries, error) {
	payload, err := s.fetchFeeds(ctx, results, historyTimeout)
	if err != nil {
		return nil, err
	}

	series := models.HistoricalSeries(lo.Map(payload.Feeds, func(feed map[string]any, _ int) models.SensorReading {
		return *toSensorReading(feed)
	}))
	if days > 0 {
		series = series.Since(s.now().Add(-time.Duration(days) * 24 * time.Hour))
	}
	series.SortByTimestamp()
	return series, nil
}

func (s *ThingSpeakService) FetchChannelInfo(ctx context.Context) (*ChannelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, latestTimeout)
	defer cancel()

	var info ChannelInfo
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("channel", s.cfg.ChannelID).
		SetQueryParam("api_key", s.cfg.ReadAPIKey).
		SetResult(&info).
		Get("/channels/{channel}.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel info: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("thingspeak returned status %d", resp.StatusCode())
	}
	return &info, nil
}

func (s *ThingSpeakService) fetchFeeds(ctx context.Context, results int, timeout time.Duration) (*channelFeeds, error) {
	key := fmt.Sprintf("thingspeak:%s:feeds:%d", s.cfg.ChannelID, results)
	if body, ok := s.cached(ctx, key); ok {
		var payload channelFeeds
		if err := json.Unmarshal(body, &payload); err == nil {
			return &payload, nil
		}
		log.WithField("key", key).Warn("Discarding unreadable cached feed")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("channel", s.cfg.ChannelID).
		SetQueryParams(map[string]string{
			"results": strconv.Itoa(results),
			"api_key": s.cfg.ReadAPIKey,
		}).
		Get("/channels/{channel}/feeds.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thingspeak feed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("thingspeak returned status %d", resp.StatusCode())
	}

	var payload channelFeeds
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse thingspeak feed: %w", err)
	}

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, resp.Body(), s.cfg.CacheTTL); err != nil {
			log.WithError(err).WithField("key", key).Warn("Failed to cache thingspeak feed")
		}
	}
	return &payload, nil
}

func (s *ThingSpeakService) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	body, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("Feed cache lookup failed")
		return nil, false
	}
	return body, ok
}

// toSensorReading maps field1..field8 onto named fields. Values that are
// present but unreadable are kept as malformed.
func toSensorReading(feed map[string]any) *models.SensorReading {
	raw := make(map[string]*string, len(fieldMapping))
	for key, field := range fieldMapping {
		if value, ok := rawString(feed[key]); ok {
			raw[string(field)] = &value
		}
	}

	var entryID int64
	if id, ok := feed["entry_id"].(float64); ok {
		entryID = int64(id)
	}
	timestamp, _ := feed["created_at"].(string)

	return models.NewSensorReading(entryID, timestamp, raw)
}

func rawString(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case nil:
		return "", false
	default:
		return fmt.Sprint(value), true
	}
}
