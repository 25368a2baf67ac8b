package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
)

type partnerRepository struct {
	BaseRepository
}

func NewPartnerRepository(base BaseRepository) repository.PartnerRepository {
	return &partnerRepository{base}
}

func (r *partnerRepository) Create(ctx context.Context, partner *model.Partner) error {
	query := `
		INSERT INTO partners (
			id, name, email, phone, active, max_leads, current_leads,
			subscription_tier, stripe_customer_id, address, city, state, zip,
			service_radius, specialties, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
	`
	partner.CreatedAt = time.Now()
	partner.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		partner.ID,
		partner.Name,
		partner.Email,
		partner.Phone,
		partner.Active,
		partner.MaxLeads,
		partner.CurrentLeads,
		partner.SubscriptionTier,
		partner.StripeCustomerID,
		partner.Address,
		partner.City,
		partner.State,
		partner.Zip,
		partner.ServiceRadius,
		partner.Specialties,
		partner.CreatedAt,
		partner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}
	return nil
}

func (r *partnerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	query := `SELECT * FROM partners WHERE id = $1`
	var partner model.Partner
	if err := r.db.GetContext(ctx, &partner, query, id); err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return &partner, nil
}

func (r *partnerRepository) GetOrCreate(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	partner, err := r.Get(ctx, id)
	if err == nil {
		return partner, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	partner = &model.Partner{
		Base:     model.Base{ID: id},
		Name:     "Unregistered Partner",
		Active:   true,
		MaxLeads: model.DefaultMaxLeads,
	}
	if err := r.Create(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to create placeholder partner: %w", err)
	}
	return partner, nil
}

func (r *partnerRepository) Update(ctx context.Context, partner *model.Partner) error {
	query := `
		UPDATE partners SET
			name = $1, email = $2, phone = $3, active = $4, max_leads = $5,
			subscription_tier = $6, stripe_customer_id = $7, address = $8,
			city = $9, state = $10, zip = $11, service_radius = $12,
			specialties = $13, updated_at = $14
		WHERE id = $15
	`
	partner.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		partner.Name,
		partner.Email,
		partner.Phone,
		partner.Active,
		partner.MaxLeads,
		partner.SubscriptionTier,
		partner.StripeCustomerID,
		partner.Address,
		partner.City,
		partner.State,
		partner.Zip,
		partner.ServiceRadius,
		partner.Specialties,
		partner.UpdatedAt,
		partner.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}
	return nil
}

func (r *partnerRepository) List(ctx context.Context, activeOnly bool) ([]*model.Partner, error) {
	query := `SELECT * FROM partners`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name ASC`

	var partners []*model.Partner
	if err := r.db.SelectContext(ctx, &partners, query); err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	return partners, nil
}

func (r *partnerRepository) RecountLeads(ctx context.Context) (int64, error) {
	query := `
		UPDATE partners p SET
			current_leads = c.n,
			updated_at = NOW()
		FROM (
			SELECT p2.id, COUNT(l.id) AS n
			FROM partners p2
			LEFT JOIN leads l ON l.partner_id = p2.id
			GROUP BY p2.id
		) c
		WHERE p.id = c.id AND p.current_leads <> c.n
	`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to recount leads: %w", err)
	}
	return result.RowsAffected()
}

// adjustLeadCount shifts a partner's counter within a transaction, never
// going below zero.
func adjustLeadCount(ctx context.Context, tx *sqlx.Tx, partnerID uuid.UUID, delta int) error {
	query := `
		UPDATE partners
		SET current_leads = GREATEST(current_leads + $1, 0), updated_at = NOW()
		WHERE id = $2
	`
	_, err := tx.ExecContext(ctx, query, delta, partnerID)
	if err != nil {
		return fmt.Errorf("failed to adjust lead count: %w", err)
	}
	return nil
}
