package main

import (
	"context"
	"os"
	"time"

	"agrobot-intelligence/internal/config"
	"agrobot-intelligence/internal/event"
	"agrobot-intelligence/internal/models"
	"agrobot-intelligence/internal/services"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"
)

type refreshSummary struct {
	CycleID     string `json:"cycle_id"`
	HasReading  bool   `json:"has_reading"`
	Critical    int    `json:"critical"`
	Warning     int    `json:"warning"`
	Info        int    `json:"info"`
	AllClear    bool   `json:"all_clear"`
	Message     string `json:"message,omitempty"`
	GeneratedAt string `json:"generated_at"`
}

func summarize(snapshot *models.DashboardSnapshot) refreshSummary {
	return refreshSummary{
		CycleID:     snapshot.CycleID,
		HasReading:  snapshot.Processed.HasCurrent(),
		Critical:    len(snapshot.Alerts.Critical),
		Warning:     len(snapshot.Alerts.Warning),
		Info:        len(snapshot.Alerts.Info),
		AllClear:    snapshot.Alerts.AllClear,
		Message:     snapshot.Alerts.Message,
		GeneratedAt: snapshot.GeneratedAt.Format(time.RFC3339),
	}
}

func newHandler(pipeline services.IPipelineService) func(ctx context.Context, evt events.CloudWatchEvent) (refreshSummary, error) {
	return func(ctx context.Context, evt events.CloudWatchEvent) (refreshSummary, error) {
		log.WithFields(log.Fields{"event_id": evt.ID, "source": evt.Source}).Info("Scheduled refresh invoked")

		snapshot, err := pipeline.RunCycle(ctx)
		if err != nil {
			return refreshSummary{}, err
		}
		return summarize(snapshot), nil
	}
}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.New()

	var opts []services.PipelineOption
	publisher, err := event.NewSNSAlertPublisher(cfg.AWSCfg.Region, cfg.AWSCfg.SNSTopicARN)
	if err != nil {
		log.WithError(err).Warn("SNS publishing disabled")
	} else {
		opts = append(opts, services.WithAlertPublisher(publisher))
	}

	pipeline := services.NewPipelineService(
		cfg,
		services.NewThingSpeakService(cfg.ThingSpeakCfg, nil),
		services.NewWeatherService(cfg.WeatherCfg),
		opts...,
	)

	lambda.Start(newHandler(pipeline))
}
