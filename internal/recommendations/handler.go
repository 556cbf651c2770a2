package recommendations

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"submission-backend/internal/shared/server/middleware"
	"submission-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches recommendation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommend-formats", h.recommend)
	rg.POST("/recommend-formats/async", h.enqueue)
}

type recommendRequest struct {
	SubmissionID   string          `json:"submissionId"`
	SubmissionData json.RawMessage `json:"submissionData"`
}

func (h *Handler) recommend(c *gin.Context) {
	var req recommendRequest
	// An empty body is an empty request, not a malformed one.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if id := strings.TrimSpace(req.SubmissionID); id != "" {
		c.Set("submissionId", id)
	}

	result, err := h.Svc.Enrich(c.Request.Context(), Request{
		SubmissionID:   req.SubmissionID,
		SubmissionData: req.SubmissionData,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	respond.Success(c, http.StatusOK, result)
}

type enqueueRequest struct {
	SubmissionID string `json:"submissionId"`
}

func (h *Handler) enqueue(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	c.Set("submissionId", strings.TrimSpace(req.SubmissionID))

	err := h.Svc.Submit(c.Request.Context(), req.SubmissionID, middleware.RequestIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrQueueDisabled) {
			respond.Error(c, http.StatusServiceUnavailable, "Asynchronous enrichment unavailable", err.Error(), err)
			return
		}
		if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) {
			writeError(c, err)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to queue enrichment", err.Error(), err)
		return
	}

	respond.Message(c, http.StatusAccepted, "Enrichment queued")
}

func writeError(c *gin.Context, err error) {
	var (
		missing  *MissingConfigError
		upstream *UpstreamError
		parse    *ParseError
	)
	switch {
	case errors.As(err, &missing):
		respond.Error(c, http.StatusInternalServerError, "Server configuration error", missing.Error(), err)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "Invalid request", inputDetail(err), err)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "Submission not found", "", err)
	case errors.As(err, &parse):
		respond.ErrorWithRaw(c, http.StatusInternalServerError, "Failed to parse AI response", parse.Raw, err)
	case errors.As(err, &upstream):
		respond.Error(c, http.StatusInternalServerError, "Failed to generate recommendations", upstream.Message(), err)
	default:
		respond.Error(c, http.StatusInternalServerError, "Failed to generate recommendations", err.Error(), err)
	}
}

func inputDetail(err error) string {
	msg := err.Error()
	prefix := ErrInvalidInput.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}
