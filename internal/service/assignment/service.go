package assignment

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/trialbridge/lead-api/internal/geo"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/internal/service/partner"
	"github.com/trialbridge/lead-api/pkg/errors"
)

// Suggestion pairs the nearest matching partner with its current quota so
// callers can see capacity before routing a lead.
type Suggestion struct {
	Partner  *model.Partner `json:"partner"`
	Distance float64        `json:"distance_miles"`
	Quota    model.Quota    `json:"quota"`
}

type Service interface {
	// Suggest returns the nearest active partner whose service radius covers
	// the postal code, or nil when nothing matches.
	Suggest(ctx context.Context, zip string) (*Suggestion, error)
}

type service struct {
	partnerRepo       repository.PartnerRepository
	matcher           *geo.Matcher
	warningThreshold  int
	criticalThreshold int
}

func NewService(partnerRepo repository.PartnerRepository, matcher *geo.Matcher, warningThreshold, criticalThreshold int) Service {
	if warningThreshold <= 0 {
		warningThreshold = partner.DefaultWarningThreshold
	}
	if criticalThreshold <= 0 {
		criticalThreshold = partner.DefaultCriticalThreshold
	}
	return &service{
		partnerRepo:       partnerRepo,
		matcher:           matcher,
		warningThreshold:  warningThreshold,
		criticalThreshold: criticalThreshold,
	}
}

func (s *service) Suggest(ctx context.Context, zip string) (*Suggestion, error) {
	if len(zip) != 5 {
		return nil, errors.BadRequest("zip must be a 5-digit postal code")
	}

	partners, err := s.partnerRepo.List(ctx, true)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list partners for assignment")
		return nil, errors.Internal("failed to list partners")
	}

	match := s.matcher.Nearest(zip, partners)
	if match == nil {
		return nil, nil
	}

	return &Suggestion{
		Partner:  match.Partner,
		Distance: match.Distance,
		Quota:    partner.ComputeQuota(match.Partner, s.warningThreshold, s.criticalThreshold),
	}, nil
}
