package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/jackc/pgx/v5/stdlib"

	alarmapp "github.com/mhdr/Monitoring2025-sub018/internal/alarms/application"
	alarmpostgres "github.com/mhdr/Monitoring2025-sub018/internal/alarms/infrastructure/postgres"
	alarmnotify "github.com/mhdr/Monitoring2025-sub018/internal/alarms/notify"
	"github.com/mhdr/Monitoring2025-sub018/internal/config"
	controlapp "github.com/mhdr/Monitoring2025-sub018/internal/control/application"
	controlpostgres "github.com/mhdr/Monitoring2025-sub018/internal/control/infrastructure/postgres"
	"github.com/mhdr/Monitoring2025-sub018/internal/observability/metrics"
	pointsredis "github.com/mhdr/Monitoring2025-sub018/internal/points/infrastructure/redis"
	rateapp "github.com/mhdr/Monitoring2025-sub018/internal/rate/application"
	ratepostgres "github.com/mhdr/Monitoring2025-sub018/internal/rate/infrastructure/postgres"
	"github.com/mhdr/Monitoring2025-sub018/internal/runtime"
	triggerapp "github.com/mhdr/Monitoring2025-sub018/internal/triggers/application"
	triggerpostgres "github.com/mhdr/Monitoring2025-sub018/internal/triggers/infrastructure/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	metrics.Init()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal("db ping failed", zap.Error(err))
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	store, err := pointsredis.NewStore(redisClient, cfg.Redis.KeyPrefix, logger)
	if err != nil {
		logger.Fatal("point store init failed", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("timezone load failed", zap.Error(err))
	}

	var alarmOpts []alarmapp.Option
	if url := os.Getenv("ALARM_WEBHOOK_URL"); url != "" {
		notifier, err := alarmnotify.NewWebhookNotifier(url, logger)
		if err != nil {
			logger.Fatal("webhook notifier init failed", zap.Error(err))
		}
		alarmOpts = append(alarmOpts, alarmapp.WithNotifier(notifier))
	}

	alarmEngine, err := alarmapp.NewEngine(
		alarmpostgres.NewDefinitionRepository(db),
		alarmpostgres.NewActiveRepository(db),
		alarmpostgres.NewHistoryRepository(db),
		alarmpostgres.NewStateRepository(db),
		store,
		logger,
		alarmOpts...,
	)
	if err != nil {
		logger.Fatal("alarm engine init failed", zap.Error(err))
	}

	controlManager, err := controlapp.NewManager(
		controlpostgres.NewConfigRepository(db),
		controlpostgres.NewStateRepository(db),
		store,
		logger,
	)
	if err != nil {
		logger.Fatal("control manager init failed", zap.Error(err))
	}

	rateEngine, err := rateapp.NewEngine(
		ratepostgres.NewConfigRepository(db),
		ratepostgres.NewSampleRepository(db),
		store,
		logger,
	)
	if err != nil {
		logger.Fatal("rate engine init failed", zap.Error(err))
	}

	triggerScheduler, err := triggerapp.NewScheduler(
		triggerpostgres.NewRepository(db),
		store,
		loc,
		logger,
	)
	if err != nil {
		logger.Fatal("trigger scheduler init failed", zap.Error(err))
	}

	runner := runtime.NewRunner(logger)
	mustRegister(logger, runner, "alarms", alarmEngine, cfg.Intervals.Alarms)
	mustRegister(logger, runner, "control", controlManager, cfg.Intervals.Control)
	mustRegister(logger, runner, "rate", rateEngine, cfg.Intervals.Rate)
	mustRegister(logger, runner, "triggers", triggerScheduler, cfg.Intervals.Triggers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		logger.Info("observability listener started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("observability listener failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	runner.Wait()
	logger.Info("stopped")
}

func mustRegister(logger *zap.Logger, runner *runtime.Runner, name string, ticker runtime.Ticker, interval time.Duration) {
	if err := runner.Register(name, ticker, interval); err != nil {
		logger.Fatal("engine registration failed", zap.String("engine", name), zap.Error(err))
	}
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
