package alert

type CreateRuleRequest struct {
	Name           string    `json:"name" binding:"required"`
	Description    string    `json:"description"`
	Type           AlertType `json:"type" binding:"required"`
	Condition      Condition `json:"condition" binding:"required"`
	ThresholdValue string    `json:"threshold_value"`
	CampaignID     *int64    `json:"campaign_id"`
	Frequency      Frequency `json:"frequency"`

	SlackWebhookURL    string `json:"slack_webhook_url"`
	ChatworkWebhookURL string `json:"chatwork_webhook_url"`
	MessageTemplate    string `json:"message_template"`
}

type UpdateRuleRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	ThresholdValue string  `json:"threshold_value"`
	IsActive       *bool   `json:"is_active"`

	SlackWebhookURL    *string `json:"slack_webhook_url"`
	ChatworkWebhookURL *string `json:"chatwork_webhook_url"`
	MessageTemplate    *string `json:"message_template"`
}

type UpdateSettingsRequest struct {
	Enabled             *bool   `json:"enabled"`
	QuietHoursStart     *string `json:"quiet_hours_start"`
	QuietHoursEnd       *string `json:"quiet_hours_end"`
	DefaultSlackWebhook *string `json:"default_slack_webhook"`
	MaxPerHour          *int    `json:"max_per_hour"`
	MaxPerDay           *int    `json:"max_per_day"`
}
