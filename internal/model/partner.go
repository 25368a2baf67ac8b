package model

import (
	"github.com/lib/pq"
)

const DefaultMaxLeads = 50

type QuotaStatus string

const (
	QuotaStatusOK       QuotaStatus = "ok"
	QuotaStatusWarning  QuotaStatus = "warning"
	QuotaStatusCritical QuotaStatus = "critical"
)

// Partner is a research site that owns and works leads.
type Partner struct {
	Base
	Name             string         `db:"name" json:"name"`
	Email            string         `db:"email" json:"email"`
	Phone            string         `db:"phone" json:"phone"`
	Active           bool           `db:"active" json:"active"`
	MaxLeads         int            `db:"max_leads" json:"max_leads"`
	CurrentLeads     int            `db:"current_leads" json:"current_leads"`
	SubscriptionTier string         `db:"subscription_tier" json:"subscription_tier"`
	StripeCustomerID *string        `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	Address          string         `db:"address" json:"address"`
	City             string         `db:"city" json:"city"`
	State            string         `db:"state" json:"state"`
	Zip              string         `db:"zip" json:"zip"`
	ServiceRadius    *float64       `db:"service_radius" json:"service_radius,omitempty"`
	Specialties      pq.StringArray `db:"specialties" json:"specialties"`
}

// Quota is the derived current-vs-maximum view for a partner.
type Quota struct {
	PartnerID    string      `json:"partner_id"`
	CurrentLeads int         `json:"current_leads"`
	MaxLeads     int         `json:"max_leads"`
	Utilization  int         `json:"utilization"`
	Status       QuotaStatus `json:"status"`
}

type CreatePartnerRequest struct {
	Name          string   `json:"name" binding:"required"`
	Email         string   `json:"email" binding:"required,email"`
	Phone         string   `json:"phone"`
	MaxLeads      int      `json:"max_leads"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Zip           string   `json:"zip" binding:"omitempty,zip5"`
	ServiceRadius *float64 `json:"service_radius" binding:"omitempty,gt=0"`
	Specialties   []string `json:"specialties"`
}

type UpdatePartnerRequest struct {
	Name          *string  `json:"name"`
	Email         *string  `json:"email" binding:"omitempty,email"`
	Phone         *string  `json:"phone"`
	Active        *bool    `json:"active"`
	MaxLeads      *int     `json:"max_leads" binding:"omitempty,gt=0"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	State         *string  `json:"state"`
	Zip           *string  `json:"zip" binding:"omitempty,zip5"`
	ServiceRadius *float64 `json:"service_radius" binding:"omitempty,gt=0"`
	Specialties   []string `json:"specialties"`
}
