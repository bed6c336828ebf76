package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type SeedResponse struct {
	MatrixIDs []snowflake.ID `json:"matrixIds"`
}

// @Summary      Seed Fixtures
// @Description  Idempotently create the fixture price matrices
// @Tags         system
// @Produce      json
// @Success      200  {object}  SeedResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /seed [post]
func (s *Server) Seed(c *gin.Context) {
	ids, err := s.seeder.Seed(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, SeedResponse{MatrixIDs: ids})
}
