package translations

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches translation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/save-translations", h.save)
}

type saveRequest struct {
	PageName     string          `json:"pageName"`
	Translations json.RawMessage `json:"translations"`
}

func (h *Handler) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	c.Set("pageName", req.PageName)

	file, err := h.Svc.Export(c.Request.Context(), req.PageName, req.Translations)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "Missing pageName or translations", err.Error(), err)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to save translations", err.Error(), err)
		return
	}

	respond.Message(c, http.StatusOK, "Translations saved to "+file)
}
