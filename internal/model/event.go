package model

import (
	"time"

	"github.com/google/uuid"
)

// Domain event types written to the outbox and published by the worker.
const (
	EventLeadCreated        = "LEAD_CREATED"
	EventLeadStatusChanged  = "LEAD_STATUS_CHANGED"
	EventLeadReassigned     = "LEAD_REASSIGNED"
	EventLeadQualityChanged = "LEAD_QUALITY_CHANGED"
)

type LeadCreatedEvent struct {
	LeadID    uuid.UUID `json:"lead_id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Name      string    `json:"name"`
	Zip       string    `json:"zip"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type LeadStatusChangedEvent struct {
	LeadID    uuid.UUID  `json:"lead_id"`
	PartnerID uuid.UUID  `json:"partner_id"`
	OldStatus LeadStatus `json:"old_status"`
	NewStatus LeadStatus `json:"new_status"`
	ChangedBy uuid.UUID  `json:"changed_by"`
	ChangedAt time.Time  `json:"changed_at"`
}

type LeadQualityChangedEvent struct {
	LeadID    uuid.UUID   `json:"lead_id"`
	PartnerID uuid.UUID   `json:"partner_id"`
	Quality   LeadQuality `json:"quality"`
	ChangedBy uuid.UUID   `json:"changed_by"`
	ChangedAt time.Time   `json:"changed_at"`
}

type LeadReassignedEvent struct {
	LeadID        uuid.UUID `json:"lead_id"`
	FromPartnerID uuid.UUID `json:"from_partner_id"`
	ToPartnerID   uuid.UUID `json:"to_partner_id"`
	AssignedBy    uuid.UUID `json:"assigned_by"`
	Reason        string    `json:"reason,omitempty"`
	AssignedAt    time.Time `json:"assigned_at"`
}
