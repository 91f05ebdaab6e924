package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/returnearn/internal/config"
	"github.com/polkiloo/returnearn/internal/usecase"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewPortalFacade,
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

// MultiplierGauge reports the multiplier in force at startup.
type MultiplierGauge interface {
	MultiplierChanged(multiplier float64)
}

type bootstrapParams struct {
	fx.In

	Config   *config.Config
	Admins   *usecase.AdminUseCase
	Policies *usecase.PolicyUseCase
	Gauge    MultiplierGauge
	Logger   *slog.Logger
}

// bootstrap seeds the configured admin account and publishes the current multiplier.
func bootstrap(ctx context.Context, p bootstrapParams) error {
	created, err := p.Admins.Ensure(ctx, p.Config.AdminLogin, p.Config.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		p.Logger.Info("bootstrap admin created", slog.String("admin", p.Config.AdminLogin))
	}

	policy, err := p.Policies.Current(ctx)
	if err != nil {
		return err
	}
	p.Gauge.MultiplierChanged(policy.Multiplier)
	p.Logger.Info("reward policy loaded",
		slog.Int64("version", policy.Version),
		slog.Float64("multiplier", policy.Multiplier),
	)
	return nil
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Config     *config.Config
	Bootstrap  bootstrapParams
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := bootstrap(ctx, p.Bootstrap); err != nil {
				return err
			}

			p.Logger.Info("starting returnearn", slog.String("addr", p.Server.Addr))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("returnearn stopped")
			return nil
		},
	})
}
