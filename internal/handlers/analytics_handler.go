package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"agrobot-intelligence/internal/models"
	"agrobot-intelligence/internal/services"
	"agrobot-intelligence/internal/utils"
	"agrobot-intelligence/internal/worker"

	"github.com/gofiber/fiber/v3"
	log "github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

const exportStampLayout = "20060102_150405"

// RefreshTrigger queues manual refresh cycles and reports the schedule.
type RefreshTrigger interface {
	TriggerNow() (string, error)
	LastJobID() string
	NextRun() time.Time
}

type AnalyticsHandler struct {
	pipeline   services.IPipelineService
	thingSpeak services.IThingSpeakService
	refresh    RefreshTrigger
}

func NewAnalyticsHandler(pipeline services.IPipelineService, thingSpeak services.IThingSpeakService, refresh RefreshTrigger) *AnalyticsHandler {
	return &AnalyticsHandler{
		pipeline:   pipeline,
		thingSpeak: thingSpeak,
		refresh:    refresh,
	}
}

func (h *AnalyticsHandler) Register(app *fiber.App) {
	app.Get("/checkhealth", h.CheckHealth)

	apiGr := app.Group("/agrobot/api/v1")
	apiGr.Get("/dashboard", h.GetDashboard)
	apiGr.Get("/processed", h.GetProcessed)
	apiGr.Get("/recommendations", h.GetRecommendations)
	apiGr.Get("/alerts", h.GetAlerts)
	apiGr.Post("/refresh", h.TriggerRefresh)
	apiGr.Post("/analyze", h.Analyze)
	apiGr.Get("/location", h.GetLocation)
	apiGr.Get("/channel", h.GetChannel)

	exportGr := apiGr.Group("/export")
	exportGr.Get("/sensor.csv", h.ExportSensorCSV)
	exportGr.Get("/report.json", h.ExportReport)
}

func (h *AnalyticsHandler) CheckHealth(c fiber.Ctx) error {
	_, ready := h.pipeline.Latest()
	health := fiber.Map{
		"status":      "healthy",
		"service":     "agrobot-intelligence",
		"snapshot":    ready,
		"last_job_id": h.refresh.LastJobID(),
	}
	if next := h.refresh.NextRun(); !next.IsZero() {
		health["next_refresh"] = next.UTC()
	}
	return c.Status(http.StatusOK).JSON(health)
}

// latest writes the 404 response itself when no cycle has completed yet.
func (h *AnalyticsHandler) latest(c fiber.Ctx) (*models.DashboardSnapshot, bool, error) {
	snapshot, ok := h.pipeline.Latest()
	if !ok {
		return nil, false, c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NO_SNAPSHOT", "No refresh cycle has completed yet"))
	}
	return snapshot, true, nil
}

func (h *AnalyticsHandler) GetDashboard(c fiber.Ctx) error {
	snapshot, ok, err := h.latest(c)
	if !ok {
		return err
	}
	return c.Status(http.StatusOK).JSON(utils.CreateCycleResponse(snapshot, snapshot.CycleID, snapshot.GeneratedAt))
}

func (h *AnalyticsHandler) GetProcessed(c fiber.Ctx) error {
	snapshot, ok, err := h.latest(c)
	if !ok {
		return err
	}
	return c.Status(http.StatusOK).JSON(utils.CreateCycleResponse(snapshot.Processed, snapshot.CycleID, snapshot.GeneratedAt))
}

func (h *AnalyticsHandler) GetRecommendations(c fiber.Ctx) error {
	snapshot, ok, err := h.latest(c)
	if !ok {
		return err
	}

	category := c.Query("category")
	if category == "" {
		return c.Status(http.StatusOK).JSON(utils.CreateCycleResponse(snapshot.Recommendations, snapshot.CycleID, snapshot.GeneratedAt))
	}

	recs, found := snapshot.Recommendations[models.RecommendationCategory(category)]
	if !found {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_CATEGORY", fmt.Sprintf("Unknown recommendation category %q", category)))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateCycleResponse(recs, snapshot.CycleID, snapshot.GeneratedAt))
}

func (h *AnalyticsHandler) GetAlerts(c fiber.Ctx) error {
	snapshot, ok, err := h.latest(c)
	if !ok {
		return err
	}
	return c.Status(http.StatusOK).JSON(utils.CreateCycleResponse(snapshot.Alerts, snapshot.CycleID, snapshot.GeneratedAt))
}

func (h *AnalyticsHandler) TriggerRefresh(c fiber.Ctx) error {
	jobID, err := h.refresh.TriggerNow()
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrPoolBusy):
			return c.Status(http.StatusConflict).JSON(
				utils.CreateErrorResponse("REFRESH_IN_PROGRESS", "A refresh is already queued"))
		case errors.Is(err, worker.ErrPoolStopped):
			return c.Status(http.StatusServiceUnavailable).JSON(
				utils.CreateErrorResponse("SHUTTING_DOWN", "Service is shutting down"))
		default:
			log.WithError(err).Error("failed to trigger refresh")
			return c.Status(http.StatusInternalServerError).JSON(
				utils.CreateErrorResponse("INTERNAL_SERVER_ERROR", "Failed to trigger refresh"))
		}
	}

	log.WithField("job_id", jobID).Info("Manual refresh queued")
	return c.Status(http.StatusAccepted).JSON(utils.CreateSuccessResponse(fiber.Map{
		"job_id": jobID,
		"status": "queued",
	}))
}

func (h *AnalyticsHandler) Analyze(c fiber.Ctx) error {
	var req services.AnalyzeRequest
	if err := c.Bind().Body(&req); err != nil {
		log.WithError(err).Warn("failed to parse analyze request body")
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("BAD_REQUEST", "Invalid request body"))
	}

	snapshot := h.pipeline.Analyze(req)
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"processed":       snapshot.Processed,
		"recommendations": snapshot.Recommendations,
		"alerts":          snapshot.Alerts,
	}))
}

// GetLocation returns the monitored site as a GeoJSON point feature.
func (h *AnalyticsHandler) GetLocation(c fiber.Ctx) error {
	location := h.pipeline.Location()
	point := geom.NewPointFlat(geom.XY, []float64{location.Longitude, location.Latitude})

	feature := &geojson.Feature{
		Geometry: point,
		Properties: map[string]any{
			"name":      "agrobot",
			"latitude":  location.Latitude,
			"longitude": location.Longitude,
		},
	}
	body, err := feature.MarshalJSON()
	if err != nil {
		log.WithError(err).Error("failed to encode location")
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("INTERNAL_SERVER_ERROR", "Failed to encode location"))
	}

	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Status(http.StatusOK).Send(body)
}

func (h *AnalyticsHandler) GetChannel(c fiber.Ctx) error {
	info, err := h.thingSpeak.FetchChannelInfo(c.Context())
	if err != nil {
		log.WithError(err).Error("failed to fetch channel info")
		return c.Status(http.StatusBadGateway).JSON(
			utils.CreateErrorResponse("UPSTREAM_ERROR", "Failed to fetch channel info"))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(info))
}

// ExportSensorCSV writes the current reading as a one-row CSV file.
func (h *AnalyticsHandler) ExportSensorCSV(c fiber.Ctx) error {
	snapshot, ok, err := h.latest(c)
	if !ok {
		return err
	}
	if !snapshot.Processed.HasCurrent() {
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NO_SENSOR_DATA", "No sensor reading in the latest cycle"))
	}

	body, err := sensorCSV(snapshot.Processed.Current)
	if err != nil {
		log.WithError(err).Error("failed to write sensor csv")
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("INTERNAL_SERVER_ERROR", "Failed to export sensor data"))
	}

	c.Attachment(fmt.Sprintf("sensor_data_%s.csv", snapshot.GeneratedAt.Format(exportStampLayout)))
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.Status(http.StatusOK).Send(body)
}

type reportExport struct {
	Timestamp   time.Time                                     `json:"timestamp"`
	CycleID     string                                        `json:"cycle_id"`
	SensorData  *models.SensorReading                         `json:"sensor_data"`
	WeatherData *models.WeatherSnapshot                       `json:"weather_data"`
	DataQuality models.DataQuality                            `json:"data_quality"`
	Statistics  map[models.SensorField]models.FieldStatistics `json:"statistics"`
	Anomalies   []models.Anomaly                              `json:"anomalies"`
}

func (h *AnalyticsHandler) ExportReport(c fiber.Ctx) error {
	snapshot, ok, err := h.latest(c)
	if !ok {
		return err
	}

	report := reportExport{
		Timestamp:   snapshot.GeneratedAt,
		CycleID:     snapshot.CycleID,
		SensorData:  snapshot.Processed.Current,
		WeatherData: snapshot.Weather,
		DataQuality: snapshot.Processed.DataQuality,
		Statistics:  snapshot.Processed.Statistics,
		Anomalies:   snapshot.Processed.Anomalies,
	}

	c.Attachment(fmt.Sprintf("agricultural_report_%s.json", snapshot.GeneratedAt.Format(exportStampLayout)))
	return c.Status(http.StatusOK).JSON(report)
}

func sensorCSV(reading *models.SensorReading) ([]byte, error) {
	header := []string{"entry_id", "timestamp"}
	row := []string{strconv.FormatInt(reading.EntryID, 10), reading.Timestamp}
	for _, field := range models.AllSensorFields {
		header = append(header, string(field))
		if v, ok := reading.Value(field); ok {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		} else {
			row = append(row, "")
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll([][]string{header, row}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
