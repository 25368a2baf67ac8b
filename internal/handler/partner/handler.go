package partner

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trialbridge/lead-api/internal/middleware"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/service/partner"
	"github.com/trialbridge/lead-api/pkg/errors"
	"github.com/trialbridge/lead-api/pkg/httputil"
)

type Handler struct {
	service partner.Service
}

func NewHandler(service partner.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	partners := r.Group("/partners")
	{
		partners.POST("", authMw.RequireAdmin(), h.CreatePartner)
		partners.GET("", h.ListPartners)
		partners.GET("/:id", h.GetPartner)
		partners.PUT("/:id", authMw.RequireAdmin(), h.UpdatePartner)
		partners.GET("/:id/quota", h.GetQuota)
	}
}

func (h *Handler) CreatePartner(c *gin.Context) {
	var req model.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	p, err := h.service.CreatePartner(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

func (h *Handler) GetPartner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid partner ID"))
		return
	}

	p, err := h.service.GetPartner(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) UpdatePartner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid partner ID"))
		return
	}

	var req model.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	p, err := h.service.UpdatePartner(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) ListPartners(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	partners, err := h.service.ListPartners(c.Request.Context(), activeOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, partners)
}

func (h *Handler) GetQuota(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid partner ID"))
		return
	}

	quota, err := h.service.GetQuota(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, quota)
}
