package assignment

import (
	"github.com/gin-gonic/gin"

	"github.com/trialbridge/lead-api/internal/service/assignment"
	"github.com/trialbridge/lead-api/pkg/errors"
	"github.com/trialbridge/lead-api/pkg/httputil"
)

type Handler struct {
	service assignment.Service
}

func NewHandler(service assignment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	assignments := r.Group("/assignments")
	{
		assignments.GET("/suggest", h.Suggest)
	}
}

// Suggest returns the nearest eligible partner for a postal code, with its
// current quota. Responds with null data when nothing is in range.
func (h *Handler) Suggest(c *gin.Context) {
	zip := c.Query("zip")
	if zip == "" {
		httputil.RespondWithError(c, errors.BadRequest("zip query parameter is required"))
		return
	}

	suggestion, err := h.service.Suggest(c.Request.Context(), zip)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, suggestion)
}
