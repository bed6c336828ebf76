package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/railzwaylabs/pricematrix/docs"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// @Summary  Liveness
// @Tags     system
// @Produce  json
// @Success  200
// @Router   /health [get]
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary  Readiness
// @Tags     system
// @Produce  json
// @Success  200  {object}  ReadinessResponse
// @Failure  503  {object}  ReadinessResponse
// @Router   /ready [get]
func (s *Server) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if err := s.pingDB(ctx); err != nil {
		s.log.Warn("database not ready", zap.Error(err))
		checks["database"] = "unavailable"
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.log.Warn("redis not ready", zap.Error(err))
			checks["redis"] = "unavailable"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Checks: checks})
		return
	}
	c.JSON(http.StatusOK, ReadinessResponse{Status: "ready", Checks: checks})
}

func (s *Server) pingDB(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Server) SwaggerDoc(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
