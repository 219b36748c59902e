package domain

import "github.com/shopspring/decimal"

// Unlimited is the quota sentinel meaning "no limit".
const Unlimited = -1

// PriorityTier tags the support level of a plan.
type PriorityTier string

const (
	PriorityBasic    PriorityTier = "basic"
	PriorityStandard PriorityTier = "standard"
	PriorityPremium  PriorityTier = "premium"
	PriorityPro      PriorityTier = "pro"
)

// Valid reports whether the tier is one of the known tags.
func (p PriorityTier) Valid() bool {
	switch p {
	case PriorityBasic, PriorityStandard, PriorityPremium, PriorityPro:
		return true
	}
	return false
}

// Quota is a weekly/monthly usage allowance. Unlimited (-1) lifts the limit.
type Quota struct {
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
}

// SubscriptionPlan is a purchasable tier. Plans are immutable once loaded.
type SubscriptionPlan struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Description     string          `json:"description"`
	Features        []string        `json:"features"`
	TeamGenerations Quota           `json:"teamGenerations"`
	HistoricalStats bool            `json:"historicalStats"`
	ManagerInsights bool            `json:"managerInsights"`
	NewsAccess      bool            `json:"newsAccess"`
	Priority        PriorityTier    `json:"priority"`
	Color           string          `json:"color"`
	Popular         bool            `json:"popular,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver.
func (p SubscriptionPlan) Clone() SubscriptionPlan {
	out := p
	out.Features = append([]string(nil), p.Features...)
	return out
}
