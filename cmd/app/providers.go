package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/paceline/paceline/internal/domain/plan"
	"github.com/paceline/paceline/internal/domain/stats"
	"github.com/paceline/paceline/internal/domain/suggest"
	"github.com/paceline/paceline/internal/domain/weather"
	"github.com/paceline/paceline/internal/infra/config"
	"github.com/paceline/paceline/internal/infra/forecaststore"
	"github.com/paceline/paceline/internal/infra/planrepo"
	"github.com/paceline/paceline/internal/infra/runrepo"
	"github.com/paceline/paceline/internal/infra/weatherapi"
	httpiface "github.com/paceline/paceline/internal/interface/http"
)

func provideLocation(cfg *config.Config) *time.Location {
	if cfg.Plan.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(cfg.Plan.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// provideCalendar returns nil when no anchor date is configured, which
// downstream services treat as "no active training plan".
func provideCalendar(cfg *config.Config, loc *time.Location, logger *slog.Logger) *plan.Calendar {
	if strings.TrimSpace(cfg.Plan.AnchorDate) == "" {
		logger.Info("plan anchor date not set, training plan inactive")
		return nil
	}
	anchor, err := time.ParseInLocation("2006-01-02", cfg.Plan.AnchorDate, loc)
	if err != nil {
		logger.Error("invalid plan anchor date, training plan inactive", "error", err)
		return nil
	}
	cal := plan.NewCalendar(anchor, loc)
	return &cal
}

func providePgxPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideRunRepository(pool *pgxpool.Pool) plan.RunRepository {
	if pool == nil {
		return runrepo.NewMemoryRepository()
	}
	return runrepo.NewPostgresRepository(pool)
}

func provideTargetStore(pool *pgxpool.Pool, cal *plan.Calendar) plan.TargetStore {
	if pool == nil || cal == nil {
		return planrepo.NewMemoryRepository()
	}
	return planrepo.NewPostgresRepository(pool, *cal)
}

func provideForecastStore(cfg *config.Config, logger *slog.Logger) weather.ForecastStore {
	if cfg.Weather.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return forecaststore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return forecaststore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("forecast valkey store enabled", "addr", cfg.Weather.Valkey.Addr)
			return forecaststore.NewValkeyStore(client, "forecast")
		}
	}
	return forecaststore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Weather.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Weather.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Weather.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideForecastProvider(cfg *config.Config) weather.Provider {
	return weatherapi.NewClient(cfg.Weather.APIBaseURL, cfg.Weather.APIKey, cfg.Weather.RequestTimeout)
}

func provideWeatherService(cfg *config.Config, store weather.ForecastStore, provider weather.Provider, loc *time.Location, logger *slog.Logger) *weather.Service {
	return weather.NewService(store, provider, cfg.Weather.CacheTTL, cfg.Weather.RequestTimeout, loc, logger)
}

func providePlanService(cal *plan.Calendar, store plan.TargetStore, logger *slog.Logger) *plan.Service {
	return plan.NewService(cal, store, logger)
}

func provideSuggestService(cfg *config.Config, weatherSvc *weather.Service, runs plan.RunRepository, planSvc *plan.Service, cal *plan.Calendar, loc *time.Location, logger *slog.Logger) *suggest.Service {
	scfg := suggest.Config{
		DefaultLocation: cfg.Weather.DefaultLocation,
		LongRunRestDays: cfg.Plan.LongRunRestDays,
		EasyRunRestDays: cfg.Plan.EasyRunRestDays,
	}
	return suggest.NewService(scfg, weatherSvc, runs, planSvc, schedulingCalendar(cal, loc), logger)
}

func provideStatsService(cfg *config.Config, runs plan.RunRepository, cal *plan.Calendar, loc *time.Location, logger *slog.Logger) *stats.Service {
	return stats.NewService(runs, schedulingCalendar(cal, loc), cfg.Plan.StreakThresholdKm, logger)
}

func provideHandler(suggestSvc *suggest.Service, planSvc *plan.Service, statsSvc *stats.Service, runs plan.RunRepository, logger *slog.Logger) *httpiface.Handler {
	return httpiface.NewHandler(suggestSvc, planSvc, statsSvc, runs, logger)
}

// schedulingCalendar always yields a usable calendar for day/weekend
// arithmetic; the anchor only matters once a plan is active.
func schedulingCalendar(cal *plan.Calendar, loc *time.Location) plan.Calendar {
	if cal != nil {
		return *cal
	}
	return plan.NewCalendar(time.Unix(0, 0), loc)
}
