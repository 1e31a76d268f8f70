//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/paceline/paceline/internal/bootstrap"
	"github.com/paceline/paceline/internal/infra/config"
	httpiface "github.com/paceline/paceline/internal/interface/http"
	"github.com/paceline/paceline/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideLocation,
		provideCalendar,
		providePgxPool,
		provideRunRepository,
		provideTargetStore,
		provideForecastStore,
		provideForecastProvider,
		provideWeatherService,
		providePlanService,
		provideSuggestService,
		provideStatsService,
		provideHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
