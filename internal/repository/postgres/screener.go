package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
)

type screenerRepository struct {
	BaseRepository
}

func NewScreenerRepository(base BaseRepository) repository.ScreenerRepository {
	return &screenerRepository{base}
}

func (r *screenerRepository) Create(ctx context.Context, form *model.ScreenerForm) error {
	query := `
		INSERT INTO screener_forms (
			id, name, version, status, fields, assigned_partners, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	form.CreatedAt = time.Now()
	form.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		form.ID,
		form.Name,
		form.Version,
		form.Status,
		form.Fields,
		form.AssignedPartners,
		form.CreatedBy,
		form.CreatedAt,
		form.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create screener form: %w", err)
	}
	return nil
}

func (r *screenerRepository) Get(ctx context.Context, id uuid.UUID) (*model.ScreenerForm, error) {
	query := `SELECT * FROM screener_forms WHERE id = $1`
	var form model.ScreenerForm
	if err := r.db.GetContext(ctx, &form, query, id); err != nil {
		return nil, fmt.Errorf("failed to get screener form: %w", err)
	}
	return &form, nil
}

func (r *screenerRepository) Update(ctx context.Context, form *model.ScreenerForm) error {
	query := `
		UPDATE screener_forms SET
			name = $1, version = $2, status = $3, fields = $4,
			assigned_partners = $5, updated_at = $6
		WHERE id = $7
	`
	form.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		form.Name,
		form.Version,
		form.Status,
		form.Fields,
		form.AssignedPartners,
		form.UpdatedAt,
		form.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update screener form: %w", err)
	}
	return nil
}

func (r *screenerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM screener_forms WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete screener form: %w", err)
	}
	return nil
}

func (r *screenerRepository) List(ctx context.Context) ([]*model.ScreenerForm, error) {
	query := `SELECT * FROM screener_forms ORDER BY created_at DESC`
	var forms []*model.ScreenerForm
	if err := r.db.SelectContext(ctx, &forms, query); err != nil {
		return nil, fmt.Errorf("failed to list screener forms: %w", err)
	}
	return forms, nil
}
