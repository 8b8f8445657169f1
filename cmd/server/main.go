package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dosepilot/reminder-service/config"
	"github.com/dosepilot/reminder-service/internal/health"
	"github.com/dosepilot/reminder-service/internal/infrastructure/postgres"
	ctxlog "github.com/dosepilot/reminder-service/internal/log"
	"github.com/dosepilot/reminder-service/internal/metrics"
	"github.com/dosepilot/reminder-service/internal/notify"
	"github.com/dosepilot/reminder-service/internal/scheduler"
	"github.com/dosepilot/reminder-service/internal/sweeper"
	httptransport "github.com/dosepilot/reminder-service/internal/transport/http"
	"github.com/dosepilot/reminder-service/internal/transport/http/handler"
	"github.com/dosepilot/reminder-service/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("timezone %q: %v", cfg.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	reminderRepo := postgres.NewReminderRepository(pool)
	deviceRepo := postgres.NewDeviceRepository(pool)
	deliveryRepo := postgres.NewDeliveryRepository(pool)

	// Delivery chain: push first, email as fallback, every attempt recorded.
	// Local dev just logs.
	var dispatcher notify.Dispatcher
	if cfg.Env == "local" {
		dispatcher = notify.NewLogDispatcher(logger)
	} else {
		push := notify.NewPushDispatcher(deviceRepo, cfg.PushGatewayURL, cfg.PushAPIKey,
			time.Duration(cfg.PushTimeoutSec)*time.Second, cfg.PushRatePerSec, cfg.PushBurst, logger)
		email := notify.NewEmailDispatcher(userRepo, cfg.ResendAPIKey, cfg.ResendFrom, logger)
		dispatcher = notify.NewRecordingDispatcher(
			notify.NewFallbackDispatcher(push, email, logger), deliveryRepo, logger)
	}

	orchestrator := scheduler.NewOrchestrator(dispatcher, loc, logger)

	reminderUsecase := usecase.NewReminderUsecase(reminderRepo, deliveryRepo, orchestrator, dispatcher, logger)
	deviceUsecase := usecase.NewDeviceUsecase(deviceRepo, logger)

	reminderHandler := handler.NewReminderHandler(reminderUsecase, logger)
	deviceHandler := handler.NewDeviceHandler(deviceUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, cfg.PushGatewayURL, logger, prometheus.DefaultRegisterer)

	// Rebuild jobs from storage so reminders survive restarts.
	if users, err := reminderUsecase.Rehydrate(ctx); err != nil {
		logger.Error("rehydrate on boot", "error", err)
	} else {
		logger.Info("boot rehydration complete", "users", users)
	}

	sweep := sweeper.New(cfg.ResyncCron, reminderUsecase, deviceRepo,
		time.Duration(cfg.DeviceTokenTTLDays)*24*time.Hour, logger)
	if err := sweep.Start(); err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, reminderHandler, deviceHandler, userRepo, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	sweep.Stop()
	orchestrator.Shutdown()
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
