package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/returnearn/internal/adapter/scoring"
	"github.com/polkiloo/returnearn/internal/app"
	"github.com/polkiloo/returnearn/internal/config"
	"github.com/polkiloo/returnearn/internal/logger"
	"github.com/polkiloo/returnearn/internal/metrics"
	"github.com/polkiloo/returnearn/internal/pkg/auth"
	"github.com/polkiloo/returnearn/internal/server/http/handlers"
	"github.com/polkiloo/returnearn/internal/server/http/router"
	"github.com/polkiloo/returnearn/internal/storage"
	"github.com/polkiloo/returnearn/internal/usecase"
)

// Core wires configuration, storage, scoring and use cases without the HTTP server.
func Core(args []string, opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module(args),
		logger.Module,
		metrics.Module,
		auth.Module,
		storage.Module,
		scoring.Module,
		usecase.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Module wires the full portal including the HTTP server.
func Module(args []string, opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		Core(args),
		fx.Provide(func(f *app.PortalFacade) handlers.PortalFacade { return f }),
		fx.Provide(func(m *metrics.Metrics) app.MultiplierGauge { return m }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
