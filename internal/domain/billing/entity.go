package billing

import (
	"database/sql"
	"time"
)

// PlanID identifies a subscription tier
type PlanID string

const (
	PlanFree    PlanID = "free"
	PlanStarter PlanID = "starter"
	PlanPro     PlanID = "pro"
)

// Status of a subscription
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// BillingPeriod for the subscription cycle
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

// Plan defines a subscription tier. Limit values of -1 mean unlimited.
type Plan struct {
	ID          PlanID `gorm:"column:id;primaryKey" json:"id"`
	Name        string `gorm:"column:name" json:"name"`
	Description string `gorm:"column:description" json:"description"`

	PriceMonthly float64  `gorm:"column:price_monthly" json:"price_monthly"`
	PriceYearly  *float64 `gorm:"column:price_yearly" json:"price_yearly,omitempty"`

	MaxCampaigns  int `gorm:"column:max_campaigns" json:"max_campaigns"`
	MaxBulkRows   int `gorm:"column:max_bulk_rows" json:"max_bulk_rows"`
	MaxAlertRules int `gorm:"column:max_alert_rules" json:"max_alert_rules"`

	AdvancedInsights bool `gorm:"column:advanced_insights" json:"advanced_insights"`
	PrioritySupport  bool `gorm:"column:priority_support" json:"priority_support"`

	IsActive  bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Plan) TableName() string { return "billing_plans" }

// Subscription tracks one user's plan.
type Subscription struct {
	ID            string         `gorm:"column:id;primaryKey" json:"id"`
	UserID        int64          `gorm:"column:user_id;index" json:"user_id"`
	PlanID        PlanID         `gorm:"column:plan_id" json:"plan_id"`
	Status        Status         `gorm:"column:status" json:"status"`
	BillingPeriod BillingPeriod  `gorm:"column:billing_period" json:"billing_period"`
	StartedAt     time.Time      `gorm:"column:started_at" json:"started_at"`
	ExpiresAt     sql.NullTime   `gorm:"column:expires_at" json:"expires_at,omitempty"`
	AutoRenew     bool           `gorm:"column:auto_renew" json:"auto_renew"`
	CancelReason  sql.NullString `gorm:"column:cancel_reason" json:"cancel_reason,omitempty"`
	CancelledAt   sql.NullTime   `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`

	StripeSessionID sql.NullString `gorm:"column:stripe_session_id" json:"stripe_session_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// IsExpired checks if the subscription has passed its expiry date
func (s *Subscription) IsExpired() bool {
	if !s.ExpiresAt.Valid {
		return false
	}
	return time.Now().After(s.ExpiresAt.Time)
}

// IsUsable checks if the subscription currently grants its plan
func (s *Subscription) IsUsable() bool {
	return s.Status == StatusActive && !s.IsExpired()
}

// DefaultPlans is the catalog seeded on first boot.
func DefaultPlans() []*Plan {
	yearlyStarter := 49000.0
	yearlyPro := 190000.0
	return []*Plan{
		{
			ID: PlanFree, Name: "Free", Description: "Try the platform with demo credentials",
			MaxCampaigns: 5, MaxBulkRows: 50, MaxAlertRules: 3,
			IsActive: true,
		},
		{
			ID: PlanStarter, Name: "Starter", Description: "For small teams running real campaigns",
			PriceMonthly: 4900, PriceYearly: &yearlyStarter,
			MaxCampaigns: 50, MaxBulkRows: 500, MaxAlertRules: 20,
			AdvancedInsights: true,
			IsActive:         true,
		},
		{
			ID: PlanPro, Name: "Pro", Description: "Unlimited campaigns and large bulk uploads",
			PriceMonthly: 19900, PriceYearly: &yearlyPro,
			MaxCampaigns: -1, MaxBulkRows: 5000, MaxAlertRules: -1,
			AdvancedInsights: true, PrioritySupport: true,
			IsActive: true,
		},
	}
}
