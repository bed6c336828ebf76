package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/pricematrix/internal/lock"
	pricematrixdomain "github.com/railzwaylabs/pricematrix/internal/pricematrix/domain"
	"gorm.io/gorm"
)

const (
	errorTypeNotFound         = "not_found"
	errorTypeInvalidOperation = "invalid_operation"
	errorTypeValidation       = "validation_error"
	errorTypeConflict         = "conflict"
	errorTypeInternal         = "internal_error"
)

var errInvalidRequest = errors.New("invalid_request")

type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type requestError struct {
	cause   error
	message string
}

func (e *requestError) Error() string { return e.message }
func (e *requestError) Unwrap() error { return e.cause }

func invalidRequestError(message string) error {
	return &requestError{cause: errInvalidRequest, message: message}
}

// AbortWithError writes the error envelope for err and records it on the context.
func AbortWithError(c *gin.Context, err error) {
	status, body := classifyError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

func classifyError(err error) (int, ErrorBody) {
	var reqErr *requestError
	switch {
	case errors.Is(err, pricematrixdomain.ErrMatrixNotFound):
		return http.StatusNotFound, ErrorBody{Type: errorTypeNotFound, Message: "price matrix not found"}
	case errors.Is(err, pricematrixdomain.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Type: errorTypeNotFound, Message: "rule set not found"}
	case errors.Is(err, pricematrixdomain.ErrNoNeighbour):
		return http.StatusBadRequest, ErrorBody{Type: errorTypeInvalidOperation, Message: "no rule set in that direction"}
	case errors.Is(err, pricematrixdomain.ErrInvalidID):
		return http.StatusBadRequest, ErrorBody{Type: errorTypeValidation, Message: "invalid id"}
	case errors.Is(err, pricematrixdomain.ErrInvalidDirection):
		return http.StatusBadRequest, ErrorBody{Type: errorTypeValidation, Message: "invalid direction"}
	case errors.Is(err, pricematrixdomain.ErrInvalidRule):
		return http.StatusBadRequest, ErrorBody{Type: errorTypeValidation, Message: "a rule carries at most one value"}
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, ErrorBody{Type: errorTypeValidation, Message: reqErr.message}
	case errors.Is(err, lock.ErrNotAcquired):
		return http.StatusConflict, ErrorBody{Type: errorTypeConflict, Message: "price matrix is busy, retry later"}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, ErrorBody{Type: errorTypeConflict, Message: "conflicting write"}
	default:
		return http.StatusInternalServerError, ErrorBody{Type: errorTypeInternal, Message: "internal server error"}
	}
}
