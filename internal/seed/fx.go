package seed

import (
	"context"

	"github.com/railzwaylabs/pricematrix/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("seed",
	fx.Provide(New),
)

// RunOnStart seeds fixtures during startup when SEED_ON_START is set.
func RunOnStart(lc fx.Lifecycle, cfg config.Config, seeder *Seeder, log *zap.Logger) {
	if !cfg.SeedOnStart {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ids, err := seeder.Seed(ctx)
			if err != nil {
				return err
			}
			log.Info("startup seed complete", zap.Int("matrices", len(ids)))
			return nil
		},
	})
}
