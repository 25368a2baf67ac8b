package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeLeadCreated   NotificationType = "lead_created"
	NotificationTypeLeadStatus    NotificationType = "lead_status"
	NotificationTypeLeadReassign  NotificationType = "lead_reassigned"
	NotificationTypeQuotaWarning  NotificationType = "quota_warning"
	NotificationTypeQuotaCritical NotificationType = "quota_critical"
)

// Notification is an in-app notification scoped to a partner.
type Notification struct {
	Base
	PartnerID uuid.UUID        `db:"partner_id" json:"partner_id"`
	Type      NotificationType `db:"type" json:"type"`
	Subject   string           `db:"subject" json:"subject"`
	Content   string           `db:"content" json:"content"`
	Read      bool             `db:"read" json:"read"`
	ReadAt    *time.Time       `db:"read_at" json:"read_at,omitempty"`
}

// Message is a mailbox entry for a partner, created alongside notifications
// for lead lifecycle events.
type Message struct {
	Base
	PartnerID uuid.UUID `db:"partner_id" json:"partner_id"`
	Sender    string    `db:"sender" json:"sender"`
	Subject   string    `db:"subject" json:"subject"`
	Body      string    `db:"body" json:"body"`
	Read      bool      `db:"read" json:"read"`
}
