package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/polkiloo/returnearn/internal/adapter/scoring"
	"github.com/polkiloo/returnearn/internal/config"
	"github.com/polkiloo/returnearn/internal/di"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/logger"
	"github.com/polkiloo/returnearn/internal/usecase"
)

// Subcommands pass their trailing arguments to config.Load, so cobra flag
// parsing is disabled throughout.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:                "returnearn",
		Short:              "Return and Earn portal",
		SilenceUsage:       true,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), args)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:                "serve [config flags]",
			Short:              "Run the HTTP portal",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), args)
			},
		},
		newAdminCommand(),
		&cobra.Command{
			Use:                "score CONDITION DAYS_USED [config flags]",
			Short:              "Score a return and price it at the default multiplier",
			Args:               cobra.MinimumNArgs(2),
			DisableFlagParsing: true,
			RunE:               scoreReturn,
		},
	)
	return root
}

func newAdminCommand() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	admin.AddCommand(&cobra.Command{
		Use:                "create LOGIN PASSWORD [config flags]",
		Short:              "Create an admin account",
		Args:               cobra.MinimumNArgs(2),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createAdmin(cmd, args[0], args[1], args[2:])
		},
	})
	return admin
}

func serve(ctx context.Context, args []string) error {
	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.Module(args),
	)
	return run(ctx, app)
}

func createAdmin(cmd *cobra.Command, login, password string, args []string) error {
	ctx := cmd.Context()
	var admins *usecase.AdminUseCase
	app := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		di.Core(args),
		fx.Populate(&admins),
	)
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	created, err := admins.Create(ctx, login, password)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %q created with id %d\n", created.Login, created.ID)
	return nil
}

func scoreReturn(cmd *cobra.Command, args []string) error {
	condition, ok := model.ParseCondition(args[0])
	if !ok {
		return fmt.Errorf("unknown condition %q", args[0])
	}
	days, err := strconv.Atoi(args[1])
	if err != nil || days < 0 {
		return fmt.Errorf("days used must be a non-negative integer, got %q", args[1])
	}

	cfg, err := config.Load(args[2:])
	if err != nil {
		return err
	}
	scorer, err := scoring.New(cfg, logger.New(cfg))
	if err != nil {
		return err
	}

	score, err := scorer.Score(cmd.Context(), condition, days)
	if err != nil {
		return err
	}
	reward := usecase.Reward(score.Value, cfg.DefaultMultiplier)
	fmt.Fprintf(cmd.OutOrStdout(), "score=%.2f credit=%d action=%s model=%s\n",
		score.Value, reward.Credit, reward.Action, score.ModelVersion)
	return nil
}
