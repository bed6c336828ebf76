package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/pricematrix/internal/config"
	pricematrixdomain "github.com/railzwaylabs/pricematrix/internal/pricematrix/domain"
	"github.com/railzwaylabs/pricematrix/internal/seed"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(RunHTTP),
)

type ServerParams struct {
	fx.In

	Cfg            config.Config
	Log            *zap.Logger
	Engine         *gin.Engine
	DB             *gorm.DB
	Redis          *redis.Client `optional:"true"`
	Gatherer       prometheus.Gatherer
	PriceMatrixSvc pricematrixdomain.Service
	Seeder         *seed.Seeder
}

type Server struct {
	cfg      config.Config
	log      *zap.Logger
	engine   *gin.Engine
	db       *gorm.DB
	redis    *redis.Client
	gatherer prometheus.Gatherer

	priceMatrixSvc pricematrixdomain.Service
	seeder         *seed.Seeder
}

func NewServer(p ServerParams) *Server {
	return &Server{
		cfg:            p.Cfg,
		log:            p.Log.Named("server"),
		engine:         p.Engine,
		db:             p.DB,
		redis:          p.Redis,
		gatherer:       p.Gatherer,
		priceMatrixSvc: p.PriceMatrixSvc,
		seeder:         p.Seeder,
	}
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, log *zap.Logger, reg prometheus.Registerer) (*gin.Engine, error) {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(log.Named("http")))

	if cfg.Observability.MetricsEnabled {
		metrics, err := newHTTPMetrics(reg)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics.Middleware())
	}
	return engine, nil
}

func (s *Server) RegisterAPIRoutes() {
	r := s.engine

	r.GET("/health", s.Health)
	r.GET("/ready", s.Ready)
	r.GET("/swagger/doc.json", s.SwaggerDoc)
	if s.cfg.Observability.MetricsEnabled {
		r.GET("/metrics", s.Metrics())
	}

	r.POST("/seed", s.Seed)

	matrices := r.Group("/pricematrix")
	{
		matrices.GET("", s.ListPriceMatrices)
		matrices.GET("/:matrixId", s.GetPriceMatrix)
		matrices.POST("/:matrixId/ruleset", s.CreateRuleSet)
		matrices.PUT("/:matrixId/ruleset/:id", s.UpdateRuleSet)
		matrices.DELETE("/:matrixId/ruleset/:id", s.DeleteRuleSet)
		matrices.POST("/:matrixId/ruleset/:id/priority/:direction", s.ChangeRuleSetPriority)
	}
}

// Handler returns the engine wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Location", "X-Request-ID"},
		MaxAge:         300,
	})(s.engine)
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
