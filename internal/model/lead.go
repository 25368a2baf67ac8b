package model

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusNotContacted LeadStatus = "not_contacted"
	LeadStatusContacted    LeadStatus = "contacted"
	LeadStatusQualified    LeadStatus = "qualified"
	LeadStatusConverted    LeadStatus = "converted"
	LeadStatusLost         LeadStatus = "lost"
)

type LeadQuality string

const (
	LeadQualityHot  LeadQuality = "hot"
	LeadQualityWarm LeadQuality = "warm"
	LeadQualityCold LeadQuality = "cold"
)

// ValidLeadStatus reports whether s is one of the pipeline statuses.
// Transitions themselves are unrestricted; any status may follow any other.
func ValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusNotContacted, LeadStatusContacted,
		LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

func ValidLeadQuality(q LeadQuality) bool {
	switch q {
	case LeadQualityHot, LeadQualityWarm, LeadQualityCold:
		return true
	}
	return false
}

// Lead is a prospective trial participant owned by exactly one partner.
type Lead struct {
	Base
	PartnerID  uuid.UUID   `db:"partner_id" json:"partner_id"`
	Name       string      `db:"name" json:"name"`
	Email      string      `db:"email" json:"email"`
	Phone      string      `db:"phone" json:"phone"`
	Zip        string      `db:"zip" json:"zip"`
	Indication string      `db:"indication" json:"indication"`
	Protocol   string      `db:"protocol" json:"protocol"`
	Notes      string      `db:"notes" json:"notes"`
	Status     LeadStatus  `db:"status" json:"status"`
	Quality    LeadQuality `db:"quality" json:"quality"`
	LastViewed *time.Time  `db:"last_viewed" json:"last_viewed,omitempty"`
}

// LeadStatusChange is an append-only status history entry.
type LeadStatusChange struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	LeadID    uuid.UUID   `db:"lead_id" json:"lead_id"`
	OldStatus *LeadStatus `db:"old_status" json:"old_status,omitempty"`
	NewStatus LeadStatus  `db:"new_status" json:"new_status"`
	ChangedBy uuid.UUID   `db:"changed_by" json:"changed_by"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// LeadAssignment is an append-only ownership history entry. The latest
// entry's ToPartnerID always equals the lead's current partner.
type LeadAssignment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	LeadID        uuid.UUID  `db:"lead_id" json:"lead_id"`
	FromPartnerID *uuid.UUID `db:"from_partner_id" json:"from_partner_id,omitempty"`
	ToPartnerID   uuid.UUID  `db:"to_partner_id" json:"to_partner_id"`
	AssignedBy    uuid.UUID  `db:"assigned_by" json:"assigned_by"`
	Reason        *string    `db:"reason" json:"reason,omitempty"`
	AssignedAt    time.Time  `db:"assigned_at" json:"assigned_at"`
}

type LeadQualityChange struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	LeadID    uuid.UUID   `db:"lead_id" json:"lead_id"`
	Quality   LeadQuality `db:"quality" json:"quality"`
	ChangedBy uuid.UUID   `db:"changed_by" json:"changed_by"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

type LeadFilters struct {
	PartnerID uuid.UUID
	Status    LeadStatus
	Quality   LeadQuality
}

type CreateLeadRequest struct {
	PartnerID  string `json:"partner_id" binding:"omitempty,uuid"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Zip        string `json:"zip" binding:"omitempty,zip5"`
	Indication string `json:"indication"`
	Protocol   string `json:"protocol"`
	Notes      string `json:"notes"`
}

type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" binding:"required"`
}

type UpdateLeadQualityRequest struct {
	Quality LeadQuality `json:"quality" binding:"required"`
}

type UpdateLeadNotesRequest struct {
	Notes string `json:"notes"`
}

type ReassignLeadRequest struct {
	ToPartnerID string `json:"to_partner_id" binding:"required,uuid"`
	Reason      string `json:"reason"`
}
