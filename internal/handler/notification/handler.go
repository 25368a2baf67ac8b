package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trialbridge/lead-api/internal/middleware"
	"github.com/trialbridge/lead-api/internal/service/notification"
	"github.com/trialbridge/lead-api/pkg/errors"
	"github.com/trialbridge/lead-api/pkg/httputil"
)

type Handler struct {
	service notification.Service
}

func NewHandler(service notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.POST("/:id/read", h.MarkRead)
	}

	messages := r.Group("/messages")
	{
		messages.GET("", h.ListMessages)
		messages.POST("/:id/read", h.MarkMessageRead)
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims.PartnerID == nil {
		httputil.RespondWithError(c, errors.BadRequest("account is not linked to a partner"))
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.service.List(c.Request.Context(), *claims.PartnerID, unreadOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) MarkRead(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims.PartnerID == nil {
		httputil.RespondWithError(c, errors.BadRequest("account is not linked to a partner"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid notification ID"))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), *claims.PartnerID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"read": true})
}

func (h *Handler) ListMessages(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims.PartnerID == nil {
		httputil.RespondWithError(c, errors.BadRequest("account is not linked to a partner"))
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), *claims.PartnerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, messages)
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims.PartnerID == nil {
		httputil.RespondWithError(c, errors.BadRequest("account is not linked to a partner"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid message ID"))
		return
	}

	if err := h.service.MarkMessageRead(c.Request.Context(), *claims.PartnerID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"read": true})
}
