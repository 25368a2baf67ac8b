package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/customer"

	"github.com/trialbridge/lead-api/internal/config"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/pkg/errors"
)

type Service interface {
	ListPlans(ctx context.Context) []model.Plan
	// CreateCheckout starts a Stripe subscription checkout for a plan and
	// returns the hosted page URL.
	CreateCheckout(ctx context.Context, partnerID uuid.UUID, planID string) (*model.CheckoutResponse, error)
	// PortalURL returns a Stripe billing portal session for an existing
	// customer.
	PortalURL(ctx context.Context, partnerID uuid.UUID) (*model.PortalResponse, error)
	// ApplyPlan sets a partner's tier and quota after a completed checkout.
	ApplyPlan(ctx context.Context, partnerID uuid.UUID, planID string) error
}

type service struct {
	partnerRepo repository.PartnerRepository
	cfg         config.StripeConfig
	plans       []model.Plan
}

func NewService(partnerRepo repository.PartnerRepository, cfg config.StripeConfig, plans []model.Plan) Service {
	stripe.Key = cfg.SecretKey

	return &service{
		partnerRepo: partnerRepo,
		cfg:         cfg,
		plans:       plans,
	}
}

func (s *service) ListPlans(ctx context.Context) []model.Plan {
	return s.plans
}

func (s *service) plan(id string) (*model.Plan, bool) {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return &s.plans[i], true
		}
	}
	return nil, false
}

func (s *service) CreateCheckout(ctx context.Context, partnerID uuid.UUID, planID string) (*model.CheckoutResponse, error) {
	plan, ok := s.plan(planID)
	if !ok {
		return nil, errors.BadRequest("unknown plan")
	}

	partner, err := s.partnerRepo.Get(ctx, partnerID)
	if err != nil {
		return nil, errors.NotFound("partner not found")
	}

	customerID, err := s.ensureCustomer(ctx, partner)
	if err != nil {
		log.Error().Err(err).Str("partner_id", partnerID.String()).Msg("Failed to resolve stripe customer")
		return nil, errors.Internal("failed to resolve billing customer")
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	params.AddMetadata("partner_id", partner.ID.String())
	params.AddMetadata("plan_id", plan.ID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		log.Error().Err(err).Str("plan_id", plan.ID).Msg("Failed to create checkout session")
		return nil, errors.Internal("failed to create checkout session")
	}

	return &model.CheckoutResponse{URL: sess.URL}, nil
}

func (s *service) PortalURL(ctx context.Context, partnerID uuid.UUID) (*model.PortalResponse, error) {
	partner, err := s.partnerRepo.Get(ctx, partnerID)
	if err != nil {
		return nil, errors.NotFound("partner not found")
	}
	if partner.StripeCustomerID == nil {
		return nil, errors.BadRequest("partner has no billing account")
	}

	sess, err := session.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*partner.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.ReturnURL),
	})
	if err != nil {
		log.Error().Err(err).Str("partner_id", partnerID.String()).Msg("Failed to create billing portal session")
		return nil, errors.Internal("failed to create billing portal session")
	}

	return &model.PortalResponse{URL: sess.URL}, nil
}

func (s *service) ApplyPlan(ctx context.Context, partnerID uuid.UUID, planID string) error {
	plan, ok := s.plan(planID)
	if !ok {
		return errors.BadRequest("unknown plan")
	}

	partner, err := s.partnerRepo.Get(ctx, partnerID)
	if err != nil {
		return errors.NotFound("partner not found")
	}

	partner.SubscriptionTier = plan.ID
	partner.MaxLeads = plan.MaxLeads
	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return errors.Internal("failed to apply plan")
	}

	log.Info().
		Str("partner_id", partnerID.String()).
		Str("plan_id", plan.ID).
		Int("max_leads", plan.MaxLeads).
		Msg("Plan applied to partner")
	return nil
}

func (s *service) ensureCustomer(ctx context.Context, partner *model.Partner) (string, error) {
	if partner.StripeCustomerID != nil && *partner.StripeCustomerID != "" {
		return *partner.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(partner.Email),
		Name:  stripe.String(partner.Name),
	}
	params.AddMetadata("partner_id", partner.ID.String())

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	partner.StripeCustomerID = &cust.ID
	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return "", fmt.Errorf("failed to store stripe customer id: %w", err)
	}
	return cust.ID, nil
}
