package screener

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trialbridge/lead-api/internal/middleware"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/service/screener"
	"github.com/trialbridge/lead-api/pkg/errors"
	"github.com/trialbridge/lead-api/pkg/httputil"
)

type Handler struct {
	service screener.Service
}

func NewHandler(service screener.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	screeners := r.Group("/screeners", authMw.RequireAdmin())
	{
		screeners.POST("", h.CreateForm)
		screeners.GET("", h.ListForms)
		screeners.GET("/:id", h.GetForm)
		screeners.PUT("/:id", h.UpdateForm)
		screeners.DELETE("/:id", h.DeleteForm)
		screeners.POST("/:id/publish", h.PublishForm)
		screeners.POST("/:id/duplicate", h.DuplicateForm)
		screeners.POST("/generate", h.GenerateFields)
	}
}

func (h *Handler) CreateForm(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)

	var req model.CreateScreenerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	form, err := h.service.CreateForm(c.Request.Context(), claims, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, form)
}

func (h *Handler) GetForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid form ID"))
		return
	}

	form, err := h.service.GetForm(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, form)
}

func (h *Handler) UpdateForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid form ID"))
		return
	}

	var req model.UpdateScreenerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	form, err := h.service.UpdateForm(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, form)
}

func (h *Handler) DeleteForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid form ID"))
		return
	}

	if err := h.service.DeleteForm(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListForms(c *gin.Context) {
	forms, err := h.service.ListForms(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, forms)
}

func (h *Handler) PublishForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid form ID"))
		return
	}

	form, err := h.service.PublishForm(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, form)
}

func (h *Handler) DuplicateForm(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid form ID"))
		return
	}

	form, err := h.service.DuplicateForm(c.Request.Context(), claims, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, form)
}

func (h *Handler) GenerateFields(c *gin.Context) {
	var req model.GenerateScreenerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	fields, err := h.service.GenerateFields(c.Request.Context(), req.ProtocolText)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, fields)
}
