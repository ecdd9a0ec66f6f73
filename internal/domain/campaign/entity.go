package campaign

import "time"

type Status string

const (
	StatusDraft   Status = "DRAFT"
	StatusActive  Status = "ACTIVE"
	StatusPaused  Status = "PAUSED"
	StatusDeleted Status = "DELETED"
)

type BudgetType string

const (
	BudgetDaily    BudgetType = "DAILY"
	BudgetLifetime BudgetType = "LIFETIME"
)

// EntityKind identifies one level of the Campaign → AdSet → Ad graph.
// Remote operations (activate, pause, status sync) are generic over the
// kind instead of being copied per entity type.
type EntityKind string

const (
	KindCampaign EntityKind = "campaign"
	KindAdSet    EntityKind = "adset"
	KindAd       EntityKind = "ad"
)

// Campaign mirrors one Meta campaign. RemoteID is empty until the
// submitter attaches the Graph API identifier (or a demo one).
type Campaign struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"column:user_id;index" json:"user_id"`
	AdAccountID int64  `gorm:"column:ad_account_id;index" json:"ad_account_id"`
	RemoteID    string `gorm:"column:remote_id;index" json:"remote_id,omitempty"`

	Name      string `gorm:"column:name" json:"name"`
	Objective string `gorm:"column:objective" json:"objective"`
	Status    Status `gorm:"column:status;default:PAUSED" json:"status"`

	BudgetType BudgetType `gorm:"column:budget_type" json:"budget_type"`
	Budget     float64    `gorm:"column:budget" json:"budget"`

	StartDate time.Time  `gorm:"column:start_date" json:"start_date"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`

	AdSets []AdSet `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"adsets,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }

// GeoLocations holds the geographic part of a targeting spec.
type GeoLocations struct {
	Countries []string `json:"countries"`
}

// Targeting is the structured audience spec stored on an ad set.
// Genders uses the Graph API convention: 1 = male, 2 = female.
type Targeting struct {
	GeoLocations GeoLocations `json:"geo_locations"`
	AgeMin       int          `json:"age_min"`
	AgeMax       int          `json:"age_max"`
	Genders      []int        `json:"genders"`
	Interests    []string     `json:"interests,omitempty"`
}

type AdSet struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CampaignID int64  `gorm:"column:campaign_id;index" json:"campaign_id"`
	RemoteID   string `gorm:"column:remote_id;index" json:"remote_id,omitempty"`

	Name   string `gorm:"column:name" json:"name"`
	Status Status `gorm:"column:status;default:PAUSED" json:"status"`

	BidStrategy       string    `gorm:"column:bid_strategy" json:"bid_strategy"`
	BidAmount         int64     `gorm:"column:bid_amount" json:"bid_amount"`
	OptimizationGoal  string    `gorm:"column:optimization_goal" json:"optimization_goal"`
	PlacementType     string    `gorm:"column:placement_type" json:"placement_type"`
	AttributionWindow string    `gorm:"column:attribution_window" json:"attribution_window"`
	Targeting         Targeting `gorm:"column:targeting;serializer:json" json:"targeting"`

	StartTime *time.Time `gorm:"column:start_time" json:"start_time,omitempty"`
	EndTime   *time.Time `gorm:"column:end_time" json:"end_time,omitempty"`

	Ads []Ad `gorm:"foreignKey:AdSetID;constraint:OnDelete:CASCADE" json:"ads,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (AdSet) TableName() string { return "adsets" }

type Ad struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AdSetID  int64  `gorm:"column:adset_id;index" json:"adset_id"`
	RemoteID string `gorm:"column:remote_id;index" json:"remote_id,omitempty"`

	Name   string `gorm:"column:name" json:"name"`
	Status Status `gorm:"column:status;default:PAUSED" json:"status"`

	Headline    string `gorm:"column:headline" json:"headline"`
	Description string `gorm:"column:description" json:"description"`
	LinkURL     string `gorm:"column:link_url" json:"link_url"`
	CTAType     string `gorm:"column:cta_type" json:"cta_type"`
	ImageURL    string `gorm:"column:image_url" json:"image_url"`
	ImageHash   string `gorm:"column:image_hash" json:"image_hash,omitempty"`
	PageID      string `gorm:"column:page_id" json:"page_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Ad) TableName() string { return "ads" }

// Insights is the read-only performance snapshot for a campaign.
type Insights struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
	Conversions int64   `json:"conversions"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
}
