package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse wraps a successful payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Success writes {success: true, data: data}.
func Success(c *gin.Context, status int, data any) {
	JSON(c, status, SuccessResponse{Success: true, Data: data})
}

// Message writes {success: true, message: msg}.
func Message(c *gin.Context, status int, msg string) {
	JSON(c, status, SuccessResponse{Success: true, Message: msg})
}
