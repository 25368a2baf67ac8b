package lead

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trialbridge/lead-api/internal/middleware"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/service/assignment"
	"github.com/trialbridge/lead-api/internal/service/lead"
	"github.com/trialbridge/lead-api/pkg/errors"
	"github.com/trialbridge/lead-api/pkg/httputil"
)

type Handler struct {
	service    lead.Service
	suggester  assignment.Service
	autoAssign bool
}

func NewHandler(service lead.Service, suggester assignment.Service, autoAssign bool) *Handler {
	return &Handler{service: service, suggester: suggester, autoAssign: autoAssign}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	leads := r.Group("/leads")
	{
		leads.POST("", h.CreateLead)
		leads.GET("", h.ListLeads)
		leads.GET("/:id", h.GetLead)
		leads.PUT("/:id/status", h.UpdateStatus)
		leads.PUT("/:id/quality", h.UpdateQuality)
		leads.PUT("/:id/notes", h.UpdateNotes)
		leads.POST("/:id/viewed", h.MarkViewed)
		leads.POST("/:id/reassign", authMw.RequireAdmin(), h.Reassign)
		leads.GET("/:id/history/status", h.StatusHistory)
		leads.GET("/:id/history/assignments", h.AssignmentHistory)
		leads.GET("/:id/history/quality", h.QualityHistory)
	}
}

// CreateLead accepts a lead for the caller's partner, or for an explicit
// partner_id when the caller is an admin.
func (h *Handler) CreateLead(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)

	var req model.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	var partnerID uuid.UUID
	switch {
	case req.PartnerID != "" && claims.IsAdmin():
		id, err := uuid.Parse(req.PartnerID)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid partner ID"))
			return
		}
		partnerID = id
	case claims.PartnerID != nil:
		partnerID = *claims.PartnerID
	case h.autoAssign && claims.IsAdmin() && req.Zip != "":
		suggestion, err := h.suggester.Suggest(c.Request.Context(), req.Zip)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		if suggestion == nil {
			httputil.RespondWithError(c, errors.BadRequest("no partner within range, partner_id is required"))
			return
		}
		partnerID = suggestion.Partner.ID
	default:
		httputil.RespondWithError(c, errors.BadRequest("partner_id is required"))
		return
	}

	l, err := h.service.CreateLead(c.Request.Context(), claims, &req, partnerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, l)
}

func (h *Handler) GetLead(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	l, err := h.service.GetLead(c.Request.Context(), claims, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, l)
}

func (h *Handler) ListLeads(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)

	filters := &model.LeadFilters{
		Status:  model.LeadStatus(c.Query("status")),
		Quality: model.LeadQuality(c.Query("quality")),
	}
	if raw := c.Query("partner_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid partner ID"))
			return
		}
		filters.PartnerID = id
	}

	leads, err := h.service.ListLeads(c.Request.Context(), claims, filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, leads)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	var req model.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	l, err := h.service.UpdateStatus(c.Request.Context(), claims, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, l)
}

func (h *Handler) UpdateQuality(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	var req model.UpdateLeadQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	l, err := h.service.UpdateQuality(c.Request.Context(), claims, id, req.Quality)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, l)
}

func (h *Handler) UpdateNotes(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	var req model.UpdateLeadNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	if err := h.service.UpdateNotes(c.Request.Context(), claims, id, req.Notes); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"updated": true})
}

func (h *Handler) MarkViewed(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	if err := h.service.MarkViewed(c.Request.Context(), claims, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"viewed": true})
}

func (h *Handler) Reassign(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	var req model.ReassignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error()))
		return
	}

	toPartnerID, err := uuid.Parse(req.ToPartnerID)
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid partner ID"))
		return
	}

	l, err := h.service.Reassign(c.Request.Context(), claims, id, toPartnerID, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, l)
}

func (h *Handler) StatusHistory(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	history, err := h.service.StatusHistory(c.Request.Context(), claims, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}

func (h *Handler) AssignmentHistory(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	history, err := h.service.AssignmentHistory(c.Request.Context(), claims, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}

func (h *Handler) QualityHistory(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid lead ID"))
		return
	}

	history, err := h.service.QualityHistory(c.Request.Context(), claims, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}
