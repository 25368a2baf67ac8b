package partner

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/pkg/errors"
)

const (
	DefaultWarningThreshold  = 75
	DefaultCriticalThreshold = 90
)

type Service interface {
	CreatePartner(ctx context.Context, req *model.CreatePartnerRequest) (*model.Partner, error)
	GetPartner(ctx context.Context, id uuid.UUID) (*model.Partner, error)
	UpdatePartner(ctx context.Context, id uuid.UUID, req *model.UpdatePartnerRequest) (*model.Partner, error)
	ListPartners(ctx context.Context, activeOnly bool) ([]*model.Partner, error)
	GetQuota(ctx context.Context, id uuid.UUID) (*model.Quota, error)
}

type service struct {
	repo              repository.PartnerRepository
	warningThreshold  int
	criticalThreshold int
}

func NewService(repo repository.PartnerRepository, warningThreshold, criticalThreshold int) Service {
	if warningThreshold <= 0 {
		warningThreshold = DefaultWarningThreshold
	}
	if criticalThreshold <= 0 {
		criticalThreshold = DefaultCriticalThreshold
	}
	return &service{
		repo:              repo,
		warningThreshold:  warningThreshold,
		criticalThreshold: criticalThreshold,
	}
}

func (s *service) CreatePartner(ctx context.Context, req *model.CreatePartnerRequest) (*model.Partner, error) {
	maxLeads := req.MaxLeads
	if maxLeads <= 0 {
		maxLeads = model.DefaultMaxLeads
	}

	partner := &model.Partner{
		Base:             model.Base{ID: uuid.New()},
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Active:           true,
		MaxLeads:         maxLeads,
		SubscriptionTier: "free",
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		Zip:              req.Zip,
		ServiceRadius:    req.ServiceRadius,
		Specialties:      req.Specialties,
	}

	if err := s.repo.Create(ctx, partner); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to create partner")
		return nil, errors.Internal("failed to create partner")
	}
	return partner, nil
}

func (s *service) GetPartner(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	partner, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("partner not found")
	}
	return partner, nil
}

func (s *service) UpdatePartner(ctx context.Context, id uuid.UUID, req *model.UpdatePartnerRequest) (*model.Partner, error) {
	partner, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("partner not found")
	}

	if req.Name != nil {
		partner.Name = *req.Name
	}
	if req.Email != nil {
		partner.Email = *req.Email
	}
	if req.Phone != nil {
		partner.Phone = *req.Phone
	}
	if req.Active != nil {
		partner.Active = *req.Active
	}
	if req.MaxLeads != nil {
		partner.MaxLeads = *req.MaxLeads
	}
	if req.Address != nil {
		partner.Address = *req.Address
	}
	if req.City != nil {
		partner.City = *req.City
	}
	if req.State != nil {
		partner.State = *req.State
	}
	if req.Zip != nil {
		partner.Zip = *req.Zip
	}
	if req.ServiceRadius != nil {
		partner.ServiceRadius = req.ServiceRadius
	}
	if req.Specialties != nil {
		partner.Specialties = req.Specialties
	}

	if err := s.repo.Update(ctx, partner); err != nil {
		log.Error().Err(err).Str("partner_id", id.String()).Msg("Failed to update partner")
		return nil, errors.Internal("failed to update partner")
	}
	return partner, nil
}

func (s *service) ListPartners(ctx context.Context, activeOnly bool) ([]*model.Partner, error) {
	partners, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, errors.Internal("failed to list partners")
	}
	return partners, nil
}

func (s *service) GetQuota(ctx context.Context, id uuid.UUID) (*model.Quota, error) {
	partner, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("partner not found")
	}
	quota := ComputeQuota(partner, s.warningThreshold, s.criticalThreshold)
	return &quota, nil
}

// ComputeQuota derives the utilization view of a partner's lead capacity.
// Utilization is a rounded percentage; a zero max counts as fully utilized
// only when leads exist.
func ComputeQuota(p *model.Partner, warningThreshold, criticalThreshold int) model.Quota {
	var utilization int
	if p.MaxLeads > 0 {
		utilization = int(math.Round(float64(p.CurrentLeads) / float64(p.MaxLeads) * 100))
	} else if p.CurrentLeads > 0 {
		utilization = 100
	}

	status := model.QuotaStatusOK
	switch {
	case utilization >= criticalThreshold:
		status = model.QuotaStatusCritical
	case utilization >= warningThreshold:
		status = model.QuotaStatusWarning
	}

	return model.Quota{
		PartnerID:    p.ID.String(),
		CurrentLeads: p.CurrentLeads,
		MaxLeads:     p.MaxLeads,
		Utilization:  utilization,
		Status:       status,
	}
}
