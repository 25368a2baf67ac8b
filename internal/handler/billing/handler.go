package billing

import (
	"github.com/gin-gonic/gin"

	"github.com/trialbridge/lead-api/internal/middleware"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/service/billing"
	"github.com/trialbridge/lead-api/pkg/errors"
	"github.com/trialbridge/lead-api/pkg/httputil"
)

type Handler struct {
	service billing.Service
}

func NewHandler(service billing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	billingGroup := r.Group("/billing")
	{
		billingGroup.GET("/plans", h.ListPlans)
		billingGroup.POST("/checkout", h.CreateCheckout)
		billingGroup.GET("/portal", h.Portal)
	}
}

func (h *Handler) ListPlans(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.service.ListPlans(c.Request.Context()))
}

func (h *Handler) CreateCheckout(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims.PartnerID == nil {
		httputil.RespondWithError(c, errors.BadRequest("account is not linked to a partner"))
		return
	}

	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	resp, err := h.service.CreateCheckout(c.Request.Context(), *claims.PartnerID, req.PlanID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Portal(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims.PartnerID == nil {
		httputil.RespondWithError(c, errors.BadRequest("account is not linked to a partner"))
		return
	}

	resp, err := h.service.PortalURL(c.Request.Context(), *claims.PartnerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}
