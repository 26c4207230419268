package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"nomadx/internal/api"
	"nomadx/internal/auth"
	"nomadx/internal/config"
	"nomadx/internal/database"
	"nomadx/internal/domain"
	"nomadx/internal/events"
	"nomadx/internal/logging"
	"nomadx/internal/metrics"
	"nomadx/internal/notify"
	"nomadx/internal/repository"
	"nomadx/internal/service"
	"nomadx/internal/suggest"
	"nomadx/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}
	cache := initCache(cfg, redisClient, logger)

	bus := events.NewEventBus()
	bus.OnError(func(event *events.Event, err error) {
		logger.Error().Err(err).Str("event_type", event.Type).Msg("event handler failed")
	})
	service.NewCacheInvalidator(cache, logging.Component(logger, "cache")).Register(bus)

	alertWorker, err := initTelegram(cfg, bus, redisClient, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram alerts disabled")
	}

	suggester, err := suggest.New(ctx, cfg.Suggest, logging.Component(logger, "suggest"))
	if err != nil {
		logger.Warn().Err(err).Msg("vehicle suggestions disabled")
	}

	svcLogger := logging.Component(logger, "service")
	svc := api.Services{
		Bookings:      service.NewBookingService(db, cache, bus, svcLogger),
		Vehicles:      service.NewVehicleService(db, cache, svcLogger),
		Employees:     service.NewEmployeeService(db, svcLogger),
		Reviews:       service.NewReviewService(db, svcLogger),
		Notifications: service.NewNotificationService(db, bus, svcLogger),
		Users:         service.NewUserService(db, svcLogger),
		Dashboard:     service.NewDashboardService(db, svcLogger),
		Suggestions:   service.NewSuggestionService(db, vehicleSuggester(suggester), svcLogger),
	}

	httpServer := api.NewHTTPServer(cfg.API, svc, auth.NewService(cfg.API.Auth), logging.Component(logger, "http"))

	return startServers(ctx, httpServer, alertWorker, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

// initRedis returns nil when redis is not configured or unreachable.
func initRedis(ctx context.Context, cfg config.RedisConfig, logger *zerolog.Logger) *redis.Client {
	if cfg.Address == "" {
		return nil
	}
	client := repository.NewRedisClient(cfg)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = repository.Close(client)
		return nil
	}
	logger.Info().Str("addr", cfg.Address).Msg("redis connected")
	return client
}

// initCache puts redis in front of an in-process cache when redis is available.
func initCache(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) domain.ListCache {
	memory := repository.NewMemoryListCache(cfg.Cache.TTL)
	if client == nil {
		return memory
	}
	primary := repository.NewRedisListCache(client, cfg.Cache.TTL)
	return repository.NewFailoverListCache(primary, memory, logging.Component(logger, "cache"))
}

func initTelegram(cfg *config.Config, bus *events.EventBus, client *redis.Client, logger *zerolog.Logger) (*worker.AlertWorker, error) {
	bot, err := notify.NewBot(cfg.Telegram)
	if err != nil || bot == nil {
		return nil, err
	}

	alertWorker := worker.NewAlertWorker(bot, client, worker.RetryPolicy{}, logging.Component(logger, "alert-worker"))
	notify.NewAgencyAlerts(bot, cfg.Telegram.AgencyChats, logging.Component(logger, "telegram")).
		WithQueue(alertWorker).
		Register(bus)
	logger.Info().Str("bot", bot.Self.UserName).Int("agencies", len(cfg.Telegram.AgencyChats)).Msg("telegram alerts enabled")
	return alertWorker, nil
}

// vehicleSuggester keeps a disabled client out of the service so it reports "disabled".
func vehicleSuggester(c *suggest.Client) domain.VehicleSuggester {
	if !c.Enabled() {
		return nil
	}
	return c
}

func startServers(ctx context.Context, httpServer *api.HTTPServer, alertWorker *worker.AlertWorker, cfg *config.Config, logger *zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(httpServer.Start)

	if alertWorker != nil {
		g.Go(func() error { return alertWorker.Run(gctx) })
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metricsServer := newMetricsServer(cfg.Monitoring.PrometheusPort)
		g.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return shutdown(metricsServer.Shutdown, 3*time.Second)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received")
		return shutdown(httpServer.Shutdown, cfg.API.HTTP.ShutdownTimeout)
	})

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")
	err := g.Wait()
	logger.Info().Msg("API server stopped")
	return err
}

func newMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func shutdown(fn func(context.Context) error, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return fn(ctx)
}
