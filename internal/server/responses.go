package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse defines the standard envelope for API responses.
type APIResponse struct {
	Status  string   `json:"status"` // "success" or "error"
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Success sends a successful response with the provided data and message.
func Success(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, APIResponse{Status: "success", Data: data, Message: message})
	slog.Info("api success", "path", c.Request.URL.Path, "status", http.StatusOK)
}

// Error sends an error response with the provided code, message, and optional errors.
func Error(c *gin.Context, code int, message string, errs ...string) {
	c.JSON(code, APIResponse{Status: "error", Message: message, Errors: errs})
	slog.Error("api error", "path", c.Request.URL.Path, "status", code, "errors", errs)
}
