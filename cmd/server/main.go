package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/api"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/config"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/logger"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/metrics"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/portfolio"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/repository"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default ./config.yaml when present)")
	flag.Parse()

	boot := logger.New(logger.Config{Level: "info", Pretty: true})
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment()})
	logger.SetGlobalLogger(log)
	log.Info().Str("environment", cfg.Environment).Msg("starting portfolio service")

	ctx := context.Background()
	db, err := repository.Open(ctx, cfg.Database, logger.Component(log, "repository"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	registry := engine.DefaultRegistry()
	if len(cfg.Contracts) > 0 {
		if registry, err = engine.NewRegistry(cfg.Contracts...); err != nil {
			log.Fatal().Err(err).Msg("invalid contract registry")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	store := portfolio.NewGuardedStore(db, portfolio.BoundaryPolicy{
		Timeout:     cfg.Store.Timeout,
		MaxRetries:  cfg.Store.MaxRetries,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		OpenTimeout: cfg.Breaker.Timeout,
	}, m, logger.Component(log, "store"))
	svc := portfolio.NewService(store, registry, m, logger.Component(log, "portfolio"))

	sched := scheduler.New(log, m)
	if cfg.Scheduler.Enabled {
		if err := registerJobs(sched, svc, cfg, log); err != nil {
			log.Fatal().Err(err).Msg("failed to register jobs")
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := api.New(api.Config{
		Addr:           cfg.Addr(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DevMode:        cfg.IsDevelopment(),
		Log:            log,
		Service:        svc,
		Metrics:        m,
		Gatherer:       reg,
		InitialCapital: cfg.Report.Capital(),
		RiskFreeRate:   cfg.Report.RiskFree(),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}

func registerJobs(sched *scheduler.Scheduler, svc *portfolio.Service, cfg *config.Config, log zerolog.Logger) error {
	timeout := cfg.Store.Timeout * time.Duration(cfg.Store.MaxRetries+1)
	if err := sched.AddJob(cfg.Scheduler.CleanupSchedule, scheduler.NewOrphanCleanupJob(svc, timeout, logger.Component(log, "orphan_cleanup"))); err != nil {
		return err
	}
	return sched.AddJob(cfg.Scheduler.ExposureSchedule, scheduler.NewExposureRefreshJob(svc, timeout))
}
