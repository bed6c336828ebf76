// @title        Price Matrix API
// @version      1.0
// @description  Prioritized pricing rule sets per price matrix
// @BasePath     /
// @Schemes      http https

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricematrix/internal/clock"
	"github.com/railzwaylabs/pricematrix/internal/config"
	"github.com/railzwaylabs/pricematrix/internal/lock"
	"github.com/railzwaylabs/pricematrix/internal/migration"
	"github.com/railzwaylabs/pricematrix/internal/observability"
	"github.com/railzwaylabs/pricematrix/internal/pricematrix"
	"github.com/railzwaylabs/pricematrix/internal/redis"
	"github.com/railzwaylabs/pricematrix/internal/seed"
	"github.com/railzwaylabs/pricematrix/internal/server"
	"github.com/railzwaylabs/pricematrix/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "pricematrix",
		Short:   "Price matrix service",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the fixture price matrices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		lock.Module,
		migration.Module,
		pricematrix.Module,
		seed.Module,
		fx.Invoke(seed.RunOnStart),
		server.Module,
	)
	app.Run()
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runSeed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		seeder *seed.Seeder
		log    *zap.Logger
	)
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		pricematrix.Module,
		seed.Module,
		fx.Populate(&seeder, &log),
	)

	startCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	ids, err := seeder.Seed(startCtx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	for _, id := range ids {
		log.Info("price matrix ready", zap.String("id", id.String()))
	}
	return nil
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
