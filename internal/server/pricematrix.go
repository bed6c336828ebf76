package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	pricematrixdomain "github.com/railzwaylabs/pricematrix/internal/pricematrix/domain"
)

// @Summary      List Price Matrices
// @Description  List matrices with their rule set counts
// @Tags         pricematrix
// @Produce      json
// @Success      200  {array}   pricematrixdomain.MatrixSummaryResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /pricematrix [get]
func (s *Server) ListPriceMatrices(c *gin.Context) {
	resp, err := s.priceMatrixSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Get Price Matrix
// @Description  Matrix with its rule sets ordered by descending priority
// @Tags         pricematrix
// @Produce      json
// @Param        matrixId  path  string  true  "Price Matrix ID"
// @Success      200  {object}  pricematrixdomain.MatrixResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pricematrix/{matrixId} [get]
func (s *Server) GetPriceMatrix(c *gin.Context) {
	resp, err := s.priceMatrixSvc.Get(c.Request.Context(), c.Param("matrixId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Change Rule Set Priority
// @Description  Swap priority with the nearest rule set above (direction > 0) or below (direction < 0)
// @Tags         pricematrix
// @Produce      json
// @Param        matrixId   path  string   true  "Price Matrix ID"
// @Param        id         path  string   true  "Rule Set ID"
// @Param        direction  path  integer  true  "Direction"
// @Success      200
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pricematrix/{matrixId}/ruleset/{id}/priority/{direction} [post]
func (s *Server) ChangeRuleSetPriority(c *gin.Context) {
	direction, err := strconv.Atoi(c.Param("direction"))
	if err != nil {
		AbortWithError(c, pricematrixdomain.ErrInvalidDirection)
		return
	}

	err = s.priceMatrixSvc.ChangePriority(c.Request.Context(), pricematrixdomain.ChangePriorityRequest{
		MatrixID:  c.Param("matrixId"),
		RuleSetID: c.Param("id"),
		Direction: direction,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// @Summary      Create Rule Set
// @Description  Append a rule set with the highest priority of the matrix
// @Tags         pricematrix
// @Accept       json
// @Produce      json
// @Param        matrixId  path  string                            true  "Price Matrix ID"
// @Param        request   body  pricematrixdomain.RuleSetRequest  true  "Rule Set"
// @Success      201  {object}  pricematrixdomain.RuleSetResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pricematrix/{matrixId}/ruleset [post]
func (s *Server) CreateRuleSet(c *gin.Context) {
	var req pricematrixdomain.RuleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError("invalid rule set payload"))
		return
	}
	matrixID, err := snowflake.ParseString(strings.TrimSpace(c.Param("matrixId")))
	if err != nil {
		AbortWithError(c, pricematrixdomain.ErrInvalidID)
		return
	}
	req.MatrixID = matrixID.String()

	resp, err := s.priceMatrixSvc.CreateRuleSet(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Location", matrixID.String()+"/ruleset/"+resp.RuleSetID.String())
	c.JSON(http.StatusCreated, resp)
}

// @Summary      Update Rule Set
// @Description  Replace the rule set fields and its complete rule list
// @Tags         pricematrix
// @Accept       json
// @Produce      json
// @Param        matrixId  path  string                            true  "Price Matrix ID"
// @Param        id        path  string                            true  "Rule Set ID"
// @Param        request   body  pricematrixdomain.RuleSetRequest  true  "Rule Set"
// @Success      200  {object}  pricematrixdomain.RuleSetResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pricematrix/{matrixId}/ruleset/{id} [put]
func (s *Server) UpdateRuleSet(c *gin.Context) {
	var req pricematrixdomain.RuleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError("invalid rule set payload"))
		return
	}
	req.MatrixID = c.Param("matrixId")
	req.RuleSetID = c.Param("id")

	resp, err := s.priceMatrixSvc.UpdateRuleSet(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Delete Rule Set
// @Tags         pricematrix
// @Param        matrixId  path  string  true  "Price Matrix ID"
// @Param        id        path  string  true  "Rule Set ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /pricematrix/{matrixId}/ruleset/{id} [delete]
func (s *Server) DeleteRuleSet(c *gin.Context) {
	if err := s.priceMatrixSvc.DeleteRuleSet(c.Request.Context(), c.Param("matrixId"), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
