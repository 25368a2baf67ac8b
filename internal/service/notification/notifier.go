package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trialbridge/lead-api/internal/email"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/pkg/messaging"
)

// Notifier consumes published lead events and fans them out to partner
// notifications, mailbox messages, and email.
type Notifier struct {
	broker           messaging.Broker
	notificationRepo repository.NotificationRepository
	messageRepo      repository.MessageRepository
	partnerRepo      repository.PartnerRepository
	email            email.Service
}

func NewNotifier(
	broker messaging.Broker,
	notificationRepo repository.NotificationRepository,
	messageRepo repository.MessageRepository,
	partnerRepo repository.PartnerRepository,
	emailSvc email.Service,
) *Notifier {
	return &Notifier{
		broker:           broker,
		notificationRepo: notificationRepo,
		messageRepo:      messageRepo,
		partnerRepo:      partnerRepo,
		email:            emailSvc,
	}
}

// Start subscribes to the lead event channels and processes events until
// ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	created, err := n.broker.Subscribe(ctx, model.EventLeadCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventLeadCreated, err)
	}
	reassigned, err := n.broker.Subscribe(ctx, model.EventLeadReassigned)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventLeadReassigned, err)
	}
	statusChanged, err := n.broker.Subscribe(ctx, model.EventLeadStatusChanged)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventLeadStatusChanged, err)
	}

	go n.consume(ctx, created, reassigned, statusChanged)
	return nil
}

func (n *Notifier) consume(ctx context.Context, created, reassigned, statusChanged <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-created:
			if !ok {
				return
			}
			if err := n.handleLeadCreated(ctx, payload); err != nil {
				log.Error().Err(err).Msg("Failed to handle lead created event")
			}
		case payload, ok := <-reassigned:
			if !ok {
				return
			}
			if err := n.handleLeadReassigned(ctx, payload); err != nil {
				log.Error().Err(err).Msg("Failed to handle lead reassigned event")
			}
		case payload, ok := <-statusChanged:
			if !ok {
				return
			}
			if err := n.handleStatusChanged(ctx, payload); err != nil {
				log.Error().Err(err).Msg("Failed to handle status changed event")
			}
		}
	}
}

func (n *Notifier) handleLeadCreated(ctx context.Context, payload []byte) error {
	var evt model.LeadCreatedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("failed to decode lead created event: %w", err)
	}

	subject := "New lead assigned"
	content := fmt.Sprintf("Lead %s has been added to your pipeline.", evt.Name)

	return n.notify(ctx, evt.PartnerID, model.NotificationTypeLeadCreated, subject, content)
}

func (n *Notifier) handleLeadReassigned(ctx context.Context, payload []byte) error {
	var evt model.LeadReassignedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("failed to decode lead reassigned event: %w", err)
	}

	subject := "Lead transferred to your site"
	content := fmt.Sprintf("A lead was reassigned to you. Reason: %s", evt.Reason)
	if err := n.notify(ctx, evt.ToPartnerID, model.NotificationTypeLeadReassign, subject, content); err != nil {
		return err
	}

	outSubject := "Lead transferred away"
	outContent := "One of your leads was reassigned to another site."
	if err := n.notify(ctx, evt.FromPartnerID, model.NotificationTypeLeadReassign, outSubject, outContent); err != nil {
		return err
	}

	// Reassignment is the one event partners expect email for.
	partner, err := n.partnerRepo.Get(ctx, evt.ToPartnerID)
	if err == nil && partner.Email != "" {
		if err := n.email.Send(ctx, partner.Email, subject, content); err != nil {
			log.Error().Err(err).Str("partner_id", evt.ToPartnerID.String()).Msg("Failed to send reassignment email")
		}
	}
	return nil
}

func (n *Notifier) handleStatusChanged(ctx context.Context, payload []byte) error {
	var evt model.LeadStatusChangedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("failed to decode status changed event: %w", err)
	}

	subject := "Lead status updated"
	content := fmt.Sprintf("A lead moved from %s to %s.", evt.OldStatus, evt.NewStatus)
	return n.notify(ctx, evt.PartnerID, model.NotificationTypeLeadStatus, subject, content)
}

func (n *Notifier) notify(ctx context.Context, partnerID uuid.UUID, notifType model.NotificationType, subject, content string) error {
	notif := &model.Notification{
		Base:      model.Base{ID: uuid.New()},
		PartnerID: partnerID,
		Type:      notifType,
		Subject:   subject,
		Content:   content,
	}
	if err := n.notificationRepo.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	msg := &model.Message{
		Base:      model.Base{ID: uuid.New()},
		PartnerID: partnerID,
		Sender:    "system",
		Subject:   subject,
		Body:      content,
	}
	if err := n.messageRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}
