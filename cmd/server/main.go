package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/goal-insights/internal/app"
	"github.com/benvon/goal-insights/internal/config"
	"github.com/benvon/goal-insights/internal/handlers"
	"github.com/benvon/goal-insights/internal/logger"
	"github.com/benvon/goal-insights/internal/middleware"
	"github.com/benvon/goal-insights/internal/telemetry"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const serviceName = "goal-insights-api"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{
		Service:     serviceName,
		Development: cfg.LogDevelopment,
		Debug:       debugMode,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("default_timeframe", cfg.DefaultTimeframe),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
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
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
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

	// The queue only backs POST /refresh, so the API runs without it
	if cfg.RabbitMQURL != "" {
		if err := deps.ConnectQueue(ctx); err != nil {
			zapLogger.Error("rabbitmq_unavailable_refresh_disabled", zap.Error(err))
		} else {
			deps.StartDLQCollector(ctx)
		}
	}

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit, deps.Redis)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	checks := map[string]handlers.HealthCheckFunc{
		"database": deps.DB.HealthCheck,
		"cache":    deps.Store.Ping,
	}
	if deps.Queue != nil {
		checks["queue"] = deps.Queue.HealthCheck
	}
	healthChecker := handlers.NewHealthChecker(checks)
	insightHandler := handlers.NewInsightHandler(deps.Engine, deps.Records, deps.JobQueue(), cfg.DefaultTimeframe, zapLogger)

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first is outermost
	if cfg.OTELEnabled {
		r.Use(telemetry.RouterMiddleware(serviceName, nil))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   middleware.ParseOrigins(cfg.FrontendURL),
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	}, zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.RateLimit(limiter, zapLogger))
	goalsRouter := apiRouter.PathPrefix("/goals").Subrouter()
	insightHandler.RegisterRoutes(goalsRouter)

	// Preflight for any path; the CORS middleware has already answered it
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("server_failed_to_start", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		os.Exit(1)
	}

	zapLogger.Info("server_exited")
}
