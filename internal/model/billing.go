package model

// Plan is a priced subscription tier offered to partners.
type Plan struct {
	ID            string `json:"id" mapstructure:"id"`
	Name          string `json:"name" mapstructure:"name"`
	PriceCents    int64  `json:"price_cents" mapstructure:"price_cents"`
	MaxLeads      int    `json:"max_leads" mapstructure:"max_leads"`
	StripePriceID string `json:"-" mapstructure:"stripe_price_id"`
}

type CheckoutRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type PortalResponse struct {
	URL string `json:"url"`
}
