package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/trialbridge/lead-api/internal/model"
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *model.Partner) error
	Get(ctx context.Context, id uuid.UUID) (*model.Partner, error)
	// GetOrCreate resolves a partner, creating a placeholder with the default
	// quota when no record exists for the ID.
	GetOrCreate(ctx context.Context, id uuid.UUID) (*model.Partner, error)
	Update(ctx context.Context, partner *model.Partner) error
	List(ctx context.Context, activeOnly bool) ([]*model.Partner, error)
	// RecountLeads repairs current_leads drift by recomputing from the
	// leads table. Returns the number of partners adjusted.
	RecountLeads(ctx context.Context) (int64, error)
}

type LeadRepository interface {
	// Create inserts the lead, its initial assignment history entry, and
	// increments the owning partner's lead counter in one transaction.
	Create(ctx context.Context, lead *model.Lead, initial *model.LeadAssignment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	List(ctx context.Context, filters *model.LeadFilters) ([]*model.Lead, error)
	UpdateStatus(ctx context.Context, lead *model.Lead, change *model.LeadStatusChange) error
	UpdateQuality(ctx context.Context, lead *model.Lead, change *model.LeadQualityChange) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
	MarkViewed(ctx context.Context, id uuid.UUID, at time.Time) error
	// Reassign moves ownership in one transaction: owner update, history
	// append, source counter decrement (floor zero), destination increment.
	Reassign(ctx context.Context, lead *model.Lead, assignment *model.LeadAssignment) error
	StatusHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadStatusChange, error)
	AssignmentHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadAssignment, error)
	QualityHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadQualityChange, error)
}

type ScreenerRepository interface {
	Create(ctx context.Context, form *model.ScreenerForm) error
	Get(ctx context.Context, id uuid.UUID) (*model.ScreenerForm, error)
	Update(ctx context.Context, form *model.ScreenerForm) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.ScreenerForm, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListForPartner(ctx context.Context, partnerID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	// MarkRead updates only rows owned by partnerID; sql.ErrNoRows when the
	// notification does not exist under that partner.
	MarkRead(ctx context.Context, id, partnerID uuid.UUID, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	ListForPartner(ctx context.Context, partnerID uuid.UUID) ([]*model.Message, error)
	// MarkRead updates only rows owned by partnerID; sql.ErrNoRows when the
	// message does not exist under that partner.
	MarkRead(ctx context.Context, id, partnerID uuid.UUID) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	BeginTx(ctx context.Context) (*sql.Tx, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error
	MoveToDeadLetter(ctx context.Context, tx *sql.Tx, evt *model.OutboxEvent) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}
