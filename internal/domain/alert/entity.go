package alert

import "time"

type AlertType string

const (
	TypeBudgetThreshold    AlertType = "BUDGET_THRESHOLD"
	TypePerformanceDrop    AlertType = "PERFORMANCE_DROP"
	TypeCampaignStatus     AlertType = "CAMPAIGN_STATUS"
	TypeBulkUploadComplete AlertType = "BULK_UPLOAD_COMPLETE"
	TypeBulkUploadFailed   AlertType = "BULK_UPLOAD_FAILED"
)

type Condition string

const (
	ConditionGreaterThan Condition = "GREATER_THAN"
	ConditionLessThan    Condition = "LESS_THAN"
	ConditionEquals      Condition = "EQUALS"
	ConditionNotEquals   Condition = "NOT_EQUALS"
)

type Frequency string

const (
	FrequencyImmediate Frequency = "IMMEDIATE"
	FrequencyHourly    Frequency = "HOURLY"
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
)

type Channel string

const (
	ChannelSlack     Channel = "SLACK"
	ChannelChatwork  Channel = "CHATWORK"
	ChannelDashboard Channel = "DASHBOARD"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

const DefaultMessageTemplate = "アラート: {alert_name} | キャンペーン: {campaign_name} | 値: {current_value} | 閾値: {threshold_value}"

// AlertRule is one user-defined trigger. A nil CampaignID means the
// rule watches every campaign of the user.
type AlertRule struct {
	ID     int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"column:user_id;index" json:"user_id"`

	Name        string `gorm:"column:name" json:"name"`
	Description string `gorm:"column:description" json:"description,omitempty"`

	Type           AlertType `gorm:"column:type" json:"type"`
	Condition      Condition `gorm:"column:condition" json:"condition"`
	ThresholdValue string    `gorm:"column:threshold_value" json:"threshold_value"`

	CampaignID *int64 `gorm:"column:campaign_id" json:"campaign_id,omitempty"`

	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	Frequency Frequency `gorm:"column:frequency;default:IMMEDIATE" json:"frequency"`

	SlackWebhookURL    string `gorm:"column:slack_webhook_url" json:"slack_webhook_url,omitempty"`
	ChatworkWebhookURL string `gorm:"column:chatwork_webhook_url" json:"chatwork_webhook_url,omitempty"`
	MessageTemplate    string `gorm:"column:message_template" json:"message_template,omitempty"`

	LastTriggered *time.Time `gorm:"column:last_triggered" json:"last_triggered,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (AlertRule) TableName() string { return "alert_rules" }

// AlertNotification is one delivery attempt on one channel.
type AlertNotification struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RuleID     int64  `gorm:"column:rule_id;index" json:"rule_id"`
	UserID     int64  `gorm:"column:user_id;index" json:"user_id"`
	CampaignID *int64 `gorm:"column:campaign_id" json:"campaign_id,omitempty"`

	Title          string `gorm:"column:title" json:"title"`
	Message        string `gorm:"column:message" json:"message"`
	CurrentValue   string `gorm:"column:current_value" json:"current_value"`
	ThresholdValue string `gorm:"column:threshold_value" json:"threshold_value"`

	Channel      Channel            `gorm:"column:channel" json:"channel"`
	Status       NotificationStatus `gorm:"column:status;default:PENDING" json:"status"`
	ErrorMessage string             `gorm:"column:error_message" json:"error_message,omitempty"`

	SentAt    *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (AlertNotification) TableName() string { return "alert_notifications" }

// AlertSettings holds the per-user gate in front of every delivery:
// a global switch, quiet hours and hourly/daily caps.
type AlertSettings struct {
	ID     int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"column:user_id;uniqueIndex" json:"user_id"`

	Enabled bool `gorm:"column:enabled;default:true" json:"enabled"`

	// "HH:MM" wall-clock times; the range may wrap past midnight
	QuietHoursStart string `gorm:"column:quiet_hours_start" json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   string `gorm:"column:quiet_hours_end" json:"quiet_hours_end,omitempty"`

	DefaultSlackWebhook string `gorm:"column:default_slack_webhook" json:"default_slack_webhook,omitempty"`

	MaxPerHour int `gorm:"column:max_per_hour;default:10" json:"max_per_hour"`
	MaxPerDay  int `gorm:"column:max_per_day;default:50" json:"max_per_day"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (AlertSettings) TableName() string { return "alert_settings" }
