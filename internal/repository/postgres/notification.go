package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, partner_id, type, subject, content, read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	n.CreatedAt = time.Now()
	n.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.PartnerID, n.Type, n.Subject, n.Content, n.Read, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListForPartner(ctx context.Context, partnerID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	query := `SELECT * FROM notifications WHERE partner_id = $1`
	if unreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC`

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, partnerID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, partnerID uuid.UUID, at time.Time) error {
	query := `UPDATE notifications SET read = true, read_at = $1, updated_at = $1 WHERE id = $2 AND partner_id = $3`
	result, err := r.db.ExecContext(ctx, query, at, id, partnerID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type messageRepository struct {
	BaseRepository
}

func NewMessageRepository(base BaseRepository) repository.MessageRepository {
	return &messageRepository{base}
}

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	query := `
		INSERT INTO messages (id, partner_id, sender, subject, body, read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.PartnerID, m.Sender, m.Subject, m.Body, m.Read, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) ListForPartner(ctx context.Context, partnerID uuid.UUID) ([]*model.Message, error) {
	query := `SELECT * FROM messages WHERE partner_id = $1 ORDER BY created_at DESC`
	var messages []*model.Message
	if err := r.db.SelectContext(ctx, &messages, query, partnerID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id, partnerID uuid.UUID) error {
	query := `UPDATE messages SET read = true, updated_at = NOW() WHERE id = $1 AND partner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, partnerID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
