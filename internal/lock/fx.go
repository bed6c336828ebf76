package lock

import (
	"github.com/railzwaylabs/pricematrix/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("lock",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Redis *redis.Client `optional:"true"`
}

// New picks the redis locker when a client is available.
func New(p Params) Locker {
	if p.Redis != nil {
		p.Log.Info("matrix lock backed by redis", zap.String("addr", p.Cfg.Redis.Addr))
		return NewRedisLocker(p.Redis, p.Cfg.Lock.TTL, p.Cfg.Lock.Wait)
	}
	p.Log.Info("matrix lock is process local")
	return NewLocalLocker(p.Cfg.Lock.Wait)
}
