package handlers

import (
	"errors"
	"net/http"

	"bookingcore/internal/domain"
	"bookingcore/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Conflict
// details (competing rows, blackout windows) ride along so callers can
// re-query availability and pick again instead of blind-retrying.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		var conflict domain.ConflictError
		errors.As(err, &conflict)
		respondError(c, http.StatusConflict, "conflict", err.Error(), conflict.Details)
	case domain.IsInsufficient(err):
		respondError(c, http.StatusConflict, "insufficient_entitlement", err.Error(), nil)
	case domain.IsUnsupported(err):
		respondError(c, http.StatusNotImplemented, "unsupported", err.Error(), nil)
	case domain.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      err.Error(),
			"code":       "transient_store_error",
			"retryable":  true,
			"request_id": middleware.GetRequestID(c),
		})
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "an internal error occurred", nil)
	}
}
