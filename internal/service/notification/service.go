package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/pkg/errors"
)

type Service interface {
	List(ctx context.Context, partnerID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, partnerID, notificationID uuid.UUID) error
	ListMessages(ctx context.Context, partnerID uuid.UUID) ([]*model.Message, error)
	MarkMessageRead(ctx context.Context, partnerID, messageID uuid.UUID) error
}

type service struct {
	notificationRepo repository.NotificationRepository
	messageRepo      repository.MessageRepository
}

func NewService(notificationRepo repository.NotificationRepository, messageRepo repository.MessageRepository) Service {
	return &service{
		notificationRepo: notificationRepo,
		messageRepo:      messageRepo,
	}
}

func (s *service) List(ctx context.Context, partnerID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	notifications, err := s.notificationRepo.ListForPartner(ctx, partnerID, unreadOnly)
	if err != nil {
		return nil, errors.Internal("failed to list notifications")
	}
	return notifications, nil
}

func (s *service) MarkRead(ctx context.Context, partnerID, notificationID uuid.UUID) error {
	err := s.notificationRepo.MarkRead(ctx, notificationID, partnerID, time.Now())
	if err == sql.ErrNoRows {
		return errors.NotFound("notification not found")
	}
	if err != nil {
		return errors.Internal("failed to mark notification read")
	}
	return nil
}

func (s *service) ListMessages(ctx context.Context, partnerID uuid.UUID) ([]*model.Message, error) {
	messages, err := s.messageRepo.ListForPartner(ctx, partnerID)
	if err != nil {
		return nil, errors.Internal("failed to list messages")
	}
	return messages, nil
}

func (s *service) MarkMessageRead(ctx context.Context, partnerID, messageID uuid.UUID) error {
	err := s.messageRepo.MarkRead(ctx, messageID, partnerID)
	if err == sql.ErrNoRows {
		return errors.NotFound("message not found")
	}
	if err != nil {
		return errors.Internal("failed to mark message read")
	}
	return nil
}
