package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/goal-insights/internal/app"
	"github.com/benvon/goal-insights/internal/config"
	"github.com/benvon/goal-insights/internal/logger"
	"github.com/benvon/goal-insights/internal/queue"
	"github.com/benvon/goal-insights/internal/telemetry"
	"github.com/benvon/goal-insights/internal/workers"
	"go.uber.org/zap"
)

const serviceName = "goal-insights-worker"

var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	noSchedule := flag.Bool("no-schedule", false, "Do not enqueue the daily refresh of all goals")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.RequireQueue(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{
		Service:     serviceName,
		Development: cfg.LogDevelopment,
		Debug:       debugMode,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_worker",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("default_timeframe", cfg.DefaultTimeframe),
		zap.Int("concurrency", cfg.Concurrency),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, telemetry.Config{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Endpoint:       cfg.OTELEndpoint,
			Insecure:       cfg.OTELInsecure,
			SampleRatio:    cfg.OTELSampleRatio,
		})
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = telemetry.Shutdown(shutdownCtx, tp)
			}()
		}
	}

	deps, err := app.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_dependencies", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			zapLogger.Warn("failed_to_close_connections", zap.Error(err))
		}
	}()

	if err := deps.ConnectQueue(ctx); err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	deps.StartDLQCollector(ctx)

	worker := workers.NewInsightWorker(deps.Engine, deps.Records, deps.Queue, cfg.DefaultTimeframe, zapLogger)

	if !*noSchedule {
		scheduler := workers.NewScheduler(deps.Queue, cfg.DefaultTimeframe, zapLogger)
		go scheduler.Start(ctx, cfg.ScheduleRetryWait)
	}

	msgChan, errChan, err := deps.Queue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming_messages", zap.Error(err))
	}
	zapLogger.Info("worker_started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	consume(ctx, worker, msgChan, zapLogger)
	zapLogger.Info("worker_stopped")
}

// consume processes messages one at a time until ctx ends or the channel closes
func consume(ctx context.Context, worker *workers.InsightWorker, msgChan <-chan *queue.Message, zapLogger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgChan:
			if !ok {
				zapLogger.Warn("message_channel_closed")
				return
			}
			if err := worker.ProcessJob(ctx, msg); err != nil {
				fields := []zap.Field{zap.Error(err)}
				if job := msg.GetJob(); job != nil {
					fields = append(fields,
						zap.String("job_id", job.ID.String()),
						zap.String("job_type", string(job.Type)),
					)
				}
				zapLogger.Error("failed_to_process_job", fields...)
			}
		}
	}
}
