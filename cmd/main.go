package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"agrobot-intelligence/internal/config"
	"agrobot-intelligence/internal/database/redis"
	"agrobot-intelligence/internal/event"
	"agrobot-intelligence/internal/handlers"
	"agrobot-intelligence/internal/services"
	"agrobot-intelligence/internal/worker"

	"github.com/gofiber/fiber/v3"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

func setupLogging(logDir string) (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	if absPath, err := filepath.Abs(logFile); err == nil {
		fmt.Printf("Logging to: %s\n", absPath)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return file, nil
}

func main() {
	flags := flag.NewFlagSet("agrobot-intelligence", flag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	var (
		feedCache    services.FeedCache
		pipelineOpts []services.PipelineOption
		publisher    *event.RabbitAlertPublisher
	)

	if cfg.RedisCfg.Enabled {
		rdb, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, running without feed cache and alert dedupe")
		} else {
			defer rdb.Close()
			feedCache = rdb
			pipelineOpts = append(pipelineOpts, services.WithAlertDeduper(rdb))
		}
	}

	if cfg.RabbitMQCfg.Enabled {
		rmq, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
		if err != nil {
			log.WithError(err).Warn("RabbitMQ unavailable, alerts will not be published")
		} else {
			defer rmq.Close()
			publisher = event.NewRabbitAlertPublisher(rmq, cfg.RabbitMQCfg.AlertQueue)
			pipelineOpts = append(pipelineOpts, services.WithAlertPublisher(publisher))
		}
	}

	thingSpeakService := services.NewThingSpeakService(cfg.ThingSpeakCfg, feedCache)
	weatherService := services.NewWeatherService(cfg.WeatherCfg)
	pipelineService := services.NewPipelineService(cfg, thingSpeakService, weatherService, pipelineOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One worker keeps refresh cycles from overlapping.
	pool := worker.NewWorkingPool(1, 1)
	scheduler, err := worker.NewRefreshScheduler("dashboard-refresh", cfg.SchedulerCfg.RefreshSpec, pool, func(ctx context.Context) error {
		_, err := pipelineService.RunCycle(ctx)
		return err
	})
	if err != nil {
		log.Fatalf("Failed to create refresh scheduler: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go pool.Start(ctx, &wg)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := scheduler.Run(ctx); err != nil {
			log.WithError(err).Error("Refresh scheduler stopped")
		}
	}()

	if cfg.SchedulerCfg.RunOnStart {
		if _, err := scheduler.TriggerNow(); err != nil {
			log.WithError(err).Warn("Initial refresh not queued")
		}
	}

	app := fiber.New()
	analyticsHandler := handlers.NewAnalyticsHandler(pipelineService, thingSpeakService, scheduler)
	analyticsHandler.Register(app)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.Port).Info("Starting agrobot-intelligence server")
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	cancel()
	wg.Wait()

	if publisher != nil {
		stats := publisher.Stats()
		log.WithFields(log.Fields{
			"published": stats.MessagesPublished,
			"failed":    stats.MessagesFailed,
		}).Info("Alert publisher totals")
	}
	log.Info("Server stopped")
}
