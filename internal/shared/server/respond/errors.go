package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"job-selector/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response and aborts the chain.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// Validation sends a 400 validation_error response.
func Validation(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "validation_error", message, nil)
}

// NotFound sends a 404 not_found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "not_found", message, nil)
}

// Internal sends a 500 internal response without leaking the cause.
func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
}
