package respond

import (
	"github.com/gin-gonic/gin"

	"submission-backend/internal/shared/telemetry"
)

// ErrorResponse is the error envelope returned by every handler.
type ErrorResponse struct {
	Error   string  `json:"error"`
	Message string  `json:"message,omitempty"`
	RawText *string `json:"rawText,omitempty"`
}

// Error logs the failure and aborts with a standardized error envelope.
// message is optional; cause is logged but never sent to the client.
func Error(c *gin.Context, status int, errMsg, message string, cause error) {
	abort(c, status, ErrorResponse{Error: errMsg, Message: message}, cause)
}

// ErrorWithRaw is Error for failures where the raw upstream text is the most
// useful diagnostic; raw is returned verbatim in rawText.
func ErrorWithRaw(c *gin.Context, status int, errMsg, raw string, cause error) {
	abort(c, status, ErrorResponse{Error: errMsg, RawText: &raw}, cause)
}

func abort(c *gin.Context, status int, body ErrorResponse, cause error) {
	fields := map[string]any{
		"status":     status,
		"error_msg":  body.Error,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if body.Message != "" {
		fields["message"] = body.Message
	}
	if cause != nil {
		fields["error"] = cause
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, body)
}
