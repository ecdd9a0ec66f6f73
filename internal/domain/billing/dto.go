package billing

type SubscribeRequest struct {
	PlanID        string `json:"plan_id" binding:"required"`
	BillingPeriod string `json:"billing_period" binding:"required,oneof=monthly yearly"`
}

type SubscribeResult struct {
	Subscription *Subscription `json:"subscription"`
	CheckoutURL  string        `json:"checkout_url,omitempty"`
}

type ConfirmRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type PlanLimits struct {
	MaxCampaigns  int `json:"max_campaigns"`
	MaxBulkRows   int `json:"max_bulk_rows"`
	MaxAlertRules int `json:"max_alert_rules"`
}

type PlanFeatures struct {
	AdvancedInsights bool `json:"advanced_insights"`
	PrioritySupport  bool `json:"priority_support"`
}

type CurrentUsage struct {
	Campaigns  int `json:"campaigns"`
	AlertRules int `json:"alert_rules"`
}

type UsageResponse struct {
	PlanID   string       `json:"plan_id"`
	PlanName string       `json:"plan_name"`
	Limits   PlanLimits   `json:"limits"`
	Features PlanFeatures `json:"features"`
	Usage    CurrentUsage `json:"usage"`
}
