package submissions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"submission-backend/internal/shared/server/respond"
)

// Handler exposes read access to submission records.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches submission routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions/:id", h.get)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("submissionId", id)

	rec, err := h.Store.Load(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidID):
			respond.Error(c, http.StatusBadRequest, "Invalid submission ID", "", err)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Submission not found", "", err)
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to load submission", err.Error(), err)
		}
		return
	}

	respond.Success(c, http.StatusOK, rec)
}
