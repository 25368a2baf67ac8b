package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
)

type leadRepository struct {
	BaseRepository
}

func NewLeadRepository(base BaseRepository) repository.LeadRepository {
	return &leadRepository{base}
}

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead, initial *model.LeadAssignment) error {
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO leads (
				id, partner_id, name, email, phone, zip, indication, protocol,
				notes, status, quality, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
			)
		`
		if _, err := tx.ExecContext(ctx, query,
			lead.ID,
			lead.PartnerID,
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Zip,
			lead.Indication,
			lead.Protocol,
			lead.Notes,
			lead.Status,
			lead.Quality,
			lead.CreatedAt,
			lead.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create lead: %w", err)
		}

		if err := insertAssignment(ctx, tx, initial); err != nil {
			return err
		}

		return adjustLeadCount(ctx, tx, lead.PartnerID, 1)
	})
}

func (r *leadRepository) Get(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	query := `SELECT * FROM leads WHERE id = $1`
	var lead model.Lead
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

func (r *leadRepository) List(ctx context.Context, filters *model.LeadFilters) ([]*model.Lead, error) {
	query := `SELECT * FROM leads WHERE 1=1`
	args := []interface{}{}

	if filters != nil {
		if filters.PartnerID != uuid.Nil {
			args = append(args, filters.PartnerID)
			query += fmt.Sprintf(" AND partner_id = $%d", len(args))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
		if filters.Quality != "" {
			args = append(args, filters.Quality)
			query += fmt.Sprintf(" AND quality = $%d", len(args))
		}
	}
	query += ` ORDER BY created_at DESC`

	var leads []*model.Lead
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (r *leadRepository) UpdateStatus(ctx context.Context, lead *model.Lead, change *model.LeadStatusChange) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, query, lead.Status, time.Now(), lead.ID); err != nil {
			return fmt.Errorf("failed to update lead status: %w", err)
		}

		hist := `
			INSERT INTO lead_status_history (id, lead_id, old_status, new_status, changed_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, hist,
			change.ID, change.LeadID, change.OldStatus, change.NewStatus,
			change.ChangedBy, change.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}
		return nil
	})
}

func (r *leadRepository) UpdateQuality(ctx context.Context, lead *model.Lead, change *model.LeadQualityChange) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `UPDATE leads SET quality = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, query, lead.Quality, time.Now(), lead.ID); err != nil {
			return fmt.Errorf("failed to update lead quality: %w", err)
		}

		hist := `
			INSERT INTO lead_quality_history (id, lead_id, quality, changed_by, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.ExecContext(ctx, hist,
			change.ID, change.LeadID, change.Quality, change.ChangedBy, change.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to append quality history: %w", err)
		}
		return nil
	})
}

func (r *leadRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	query := `UPDATE leads SET notes = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, notes, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update lead notes: %w", err)
	}
	return nil
}

func (r *leadRepository) MarkViewed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE leads SET last_viewed = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark lead viewed: %w", err)
	}
	return nil
}

// Reassign keeps the lead row (and its identity) and moves ownership in a
// single transaction so counters and history cannot diverge from the owner
// column.
func (r *leadRepository) Reassign(ctx context.Context, lead *model.Lead, assignment *model.LeadAssignment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `UPDATE leads SET partner_id = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, query, assignment.ToPartnerID, time.Now(), lead.ID); err != nil {
			return fmt.Errorf("failed to move lead: %w", err)
		}

		if err := insertAssignment(ctx, tx, assignment); err != nil {
			return err
		}

		if assignment.FromPartnerID != nil {
			if err := adjustLeadCount(ctx, tx, *assignment.FromPartnerID, -1); err != nil {
				return err
			}
		}
		return adjustLeadCount(ctx, tx, assignment.ToPartnerID, 1)
	})
}

func (r *leadRepository) StatusHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadStatusChange, error) {
	query := `SELECT * FROM lead_status_history WHERE lead_id = $1 ORDER BY created_at ASC`
	var changes []*model.LeadStatusChange
	if err := r.db.SelectContext(ctx, &changes, query, leadID); err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	return changes, nil
}

func (r *leadRepository) AssignmentHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadAssignment, error) {
	query := `SELECT * FROM lead_assignments WHERE lead_id = $1 ORDER BY assigned_at ASC`
	var assignments []*model.LeadAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, leadID); err != nil {
		return nil, fmt.Errorf("failed to get assignment history: %w", err)
	}
	return assignments, nil
}

func (r *leadRepository) QualityHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadQualityChange, error) {
	query := `SELECT * FROM lead_quality_history WHERE lead_id = $1 ORDER BY created_at ASC`
	var changes []*model.LeadQualityChange
	if err := r.db.SelectContext(ctx, &changes, query, leadID); err != nil {
		return nil, fmt.Errorf("failed to get quality history: %w", err)
	}
	return changes, nil
}

func insertAssignment(ctx context.Context, tx *sqlx.Tx, a *model.LeadAssignment) error {
	query := `
		INSERT INTO lead_assignments (id, lead_id, from_partner_id, to_partner_id, assigned_by, reason, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, query,
		a.ID, a.LeadID, a.FromPartnerID, a.ToPartnerID, a.AssignedBy, a.Reason, a.AssignedAt,
	); err != nil {
		return fmt.Errorf("failed to append assignment history: %w", err)
	}
	return nil
}
