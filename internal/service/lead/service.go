package lead

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/internal/service/event"
	"github.com/trialbridge/lead-api/pkg/errors"
	"github.com/trialbridge/lead-api/pkg/metrics"
)

type Service interface {
	CreateLead(ctx context.Context, actor *model.TokenClaims, req *model.CreateLeadRequest, partnerID uuid.UUID) (*model.Lead, error)
	GetLead(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) (*model.Lead, error)
	ListLeads(ctx context.Context, actor *model.TokenClaims, filters *model.LeadFilters) ([]*model.Lead, error)
	UpdateStatus(ctx context.Context, actor *model.TokenClaims, id uuid.UUID, status model.LeadStatus) (*model.Lead, error)
	UpdateQuality(ctx context.Context, actor *model.TokenClaims, id uuid.UUID, quality model.LeadQuality) (*model.Lead, error)
	UpdateNotes(ctx context.Context, actor *model.TokenClaims, id uuid.UUID, notes string) error
	MarkViewed(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) error
	Reassign(ctx context.Context, actor *model.TokenClaims, id, toPartnerID uuid.UUID, reason string) (*model.Lead, error)
	StatusHistory(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) ([]*model.LeadStatusChange, error)
	AssignmentHistory(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) ([]*model.LeadAssignment, error)
	QualityHistory(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) ([]*model.LeadQualityChange, error)
}

type service struct {
	leadRepo    repository.LeadRepository
	partnerRepo repository.PartnerRepository
	emitter     event.Emitter
	metrics     *metrics.Metrics
}

func NewService(leadRepo repository.LeadRepository, partnerRepo repository.PartnerRepository, emitter event.Emitter, m *metrics.Metrics) Service {
	return &service{
		leadRepo:    leadRepo,
		partnerRepo: partnerRepo,
		emitter:     emitter,
		metrics:     m,
	}
}

// CreateLead records a new lead under partnerID, its initial assignment
// history entry, and a LEAD_CREATED outbox event. Unknown partner IDs get
// a placeholder partner so inbound referrals are never dropped.
func (s *service) CreateLead(ctx context.Context, actor *model.TokenClaims, req *model.CreateLeadRequest, partnerID uuid.UUID) (*model.Lead, error) {
	partner, err := s.partnerRepo.GetOrCreate(ctx, partnerID)
	if err != nil {
		log.Error().Err(err).Str("partner_id", partnerID.String()).Msg("Failed to resolve partner for lead")
		return nil, errors.Internal("failed to resolve partner")
	}

	lead := &model.Lead{
		Base:       model.Base{ID: uuid.New()},
		PartnerID:  partner.ID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Zip:        req.Zip,
		Indication: req.Indication,
		Protocol:   req.Protocol,
		Notes:      req.Notes,
		Status:     model.LeadStatusNew,
		Quality:    model.LeadQualityWarm,
	}

	initial := &model.LeadAssignment{
		ID:          uuid.New(),
		LeadID:      lead.ID,
		ToPartnerID: partner.ID,
		AssignedBy:  actor.UserID,
		AssignedAt:  time.Now(),
	}

	if err := s.leadRepo.Create(ctx, lead, initial); err != nil {
		log.Error().Err(err).Str("partner_id", partner.ID.String()).Msg("Failed to create lead")
		return nil, errors.Internal("failed to create lead")
	}

	if s.metrics != nil {
		s.metrics.LeadsCreated.Inc()
	}

	if err := s.emitter.Emit(ctx, model.EventLeadCreated, model.LeadCreatedEvent{
		LeadID:    lead.ID,
		PartnerID: partner.ID,
		Name:      lead.Name,
		Zip:       lead.Zip,
		CreatedBy: actor.UserID,
		CreatedAt: initial.AssignedAt,
	}); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("Failed to emit lead created event")
	}

	return lead, nil
}

func (s *service) GetLead(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) (*model.Lead, error) {
	lead, err := s.leadRepo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("lead not found")
	}
	if err := s.authorize(actor, lead.PartnerID); err != nil {
		return nil, err
	}
	return lead, nil
}

// ListLeads scopes partner callers to their own leads. A partner caller
// asking for another partner's leads gets an empty result and a permission
// error rather than data.
func (s *service) ListLeads(ctx context.Context, actor *model.TokenClaims, filters *model.LeadFilters) ([]*model.Lead, error) {
	if filters == nil {
		filters = &model.LeadFilters{}
	}

	if !actor.IsAdmin() {
		if actor.PartnerID == nil {
			return []*model.Lead{}, errors.Forbidden("no partner scope on account")
		}
		if filters.PartnerID != uuid.Nil && filters.PartnerID != *actor.PartnerID {
			return []*model.Lead{}, errors.Forbidden("cannot list another partner's leads")
		}
		filters.PartnerID = *actor.PartnerID
	}

	leads, err := s.leadRepo.List(ctx, filters)
	if err != nil {
		return nil, errors.Internal("failed to list leads")
	}
	return leads, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor *model.TokenClaims, id uuid.UUID, status model.LeadStatus) (*model.Lead, error) {
	if !model.ValidLeadStatus(status) {
		return nil, errors.BadRequest("invalid lead status")
	}

	lead, err := s.GetLead(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	old := lead.Status
	change := &model.LeadStatusChange{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		OldStatus: &old,
		NewStatus: status,
		ChangedBy: actor.UserID,
		CreatedAt: time.Now(),
	}

	lead.Status = status
	if err := s.leadRepo.UpdateStatus(ctx, lead, change); err != nil {
		log.Error().Err(err).Str("lead_id", id.String()).Msg("Failed to update lead status")
		return nil, errors.Internal("failed to update lead status")
	}

	if err := s.emitter.Emit(ctx, model.EventLeadStatusChanged, model.LeadStatusChangedEvent{
		LeadID:    lead.ID,
		PartnerID: lead.PartnerID,
		OldStatus: old,
		NewStatus: status,
		ChangedBy: actor.UserID,
		ChangedAt: change.CreatedAt,
	}); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("Failed to emit status changed event")
	}

	return lead, nil
}

func (s *service) UpdateQuality(ctx context.Context, actor *model.TokenClaims, id uuid.UUID, quality model.LeadQuality) (*model.Lead, error) {
	if !model.ValidLeadQuality(quality) {
		return nil, errors.BadRequest("invalid lead quality")
	}

	lead, err := s.GetLead(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	change := &model.LeadQualityChange{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		Quality:   quality,
		ChangedBy: actor.UserID,
		CreatedAt: time.Now(),
	}

	lead.Quality = quality
	if err := s.leadRepo.UpdateQuality(ctx, lead, change); err != nil {
		log.Error().Err(err).Str("lead_id", id.String()).Msg("Failed to update lead quality")
		return nil, errors.Internal("failed to update lead quality")
	}

	if err := s.emitter.Emit(ctx, model.EventLeadQualityChanged, model.LeadQualityChangedEvent{
		LeadID:    lead.ID,
		PartnerID: lead.PartnerID,
		Quality:   quality,
		ChangedBy: actor.UserID,
		ChangedAt: change.CreatedAt,
	}); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("Failed to emit quality changed event")
	}

	return lead, nil
}

func (s *service) UpdateNotes(ctx context.Context, actor *model.TokenClaims, id uuid.UUID, notes string) error {
	if _, err := s.GetLead(ctx, actor, id); err != nil {
		return err
	}
	if err := s.leadRepo.UpdateNotes(ctx, id, notes); err != nil {
		return errors.Internal("failed to update lead notes")
	}
	return nil
}

func (s *service) MarkViewed(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) error {
	if _, err := s.GetLead(ctx, actor, id); err != nil {
		return err
	}
	if err := s.leadRepo.MarkViewed(ctx, id, time.Now()); err != nil {
		return errors.Internal("failed to mark lead viewed")
	}
	return nil
}

// Reassign moves a lead to another partner and appends to the assignment
// history. Moves to a different partner require a reason; reassigning to
// the current owner is a no-op.
func (s *service) Reassign(ctx context.Context, actor *model.TokenClaims, id, toPartnerID uuid.UUID, reason string) (*model.Lead, error) {
	lead, err := s.GetLead(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if lead.PartnerID == toPartnerID {
		return lead, nil
	}
	if reason == "" {
		return nil, errors.BadRequest("reason is required when reassigning to a different partner")
	}

	// Destination partners are lazily created with the default quota, the
	// same contract lead creation uses.
	dest, err := s.partnerRepo.GetOrCreate(ctx, toPartnerID)
	if err != nil {
		log.Error().Err(err).Str("partner_id", toPartnerID.String()).Msg("Failed to resolve destination partner")
		return nil, errors.Internal("failed to resolve destination partner")
	}
	if !dest.Active {
		return nil, errors.BadRequest("destination partner is inactive")
	}

	from := lead.PartnerID
	assignment := &model.LeadAssignment{
		ID:            uuid.New(),
		LeadID:        lead.ID,
		FromPartnerID: &from,
		ToPartnerID:   dest.ID,
		AssignedBy:    actor.UserID,
		Reason:        &reason,
		AssignedAt:    time.Now(),
	}

	lead.PartnerID = dest.ID
	if err := s.leadRepo.Reassign(ctx, lead, assignment); err != nil {
		log.Error().Err(err).
			Str("lead_id", lead.ID.String()).
			Str("to_partner_id", dest.ID.String()).
			Msg("Failed to reassign lead")
		return nil, errors.Internal("failed to reassign lead")
	}

	if s.metrics != nil {
		s.metrics.LeadsReassigned.Inc()
	}

	if err := s.emitter.Emit(ctx, model.EventLeadReassigned, model.LeadReassignedEvent{
		LeadID:        lead.ID,
		FromPartnerID: from,
		ToPartnerID:   dest.ID,
		AssignedBy:    actor.UserID,
		Reason:        reason,
		AssignedAt:    assignment.AssignedAt,
	}); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("Failed to emit reassigned event")
	}

	return lead, nil
}

func (s *service) StatusHistory(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) ([]*model.LeadStatusChange, error) {
	if _, err := s.GetLead(ctx, actor, id); err != nil {
		return nil, err
	}
	history, err := s.leadRepo.StatusHistory(ctx, id)
	if err != nil {
		return nil, errors.Internal("failed to fetch status history")
	}
	return history, nil
}

func (s *service) AssignmentHistory(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) ([]*model.LeadAssignment, error) {
	if _, err := s.GetLead(ctx, actor, id); err != nil {
		return nil, err
	}
	history, err := s.leadRepo.AssignmentHistory(ctx, id)
	if err != nil {
		return nil, errors.Internal("failed to fetch assignment history")
	}
	return history, nil
}

func (s *service) QualityHistory(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) ([]*model.LeadQualityChange, error) {
	if _, err := s.GetLead(ctx, actor, id); err != nil {
		return nil, err
	}
	history, err := s.leadRepo.QualityHistory(ctx, id)
	if err != nil {
		return nil, errors.Internal("failed to fetch quality history")
	}
	return history, nil
}

func (s *service) authorize(actor *model.TokenClaims, ownerID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.PartnerID != nil && *actor.PartnerID == ownerID {
		return nil
	}
	return errors.Forbidden("lead belongs to another partner")
}
