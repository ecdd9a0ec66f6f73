package bulkupload

import "time"

type BatchStatus string

const (
	BatchUploading  BatchStatus = "UPLOADING"
	BatchValidating BatchStatus = "VALIDATING"
	BatchValidated  BatchStatus = "VALIDATED"
	BatchProcessing BatchStatus = "PROCESSING"
	BatchCompleted  BatchStatus = "COMPLETED"
	BatchFailed     BatchStatus = "FAILED"
)

type RowVerdict string

const (
	VerdictPending RowVerdict = "PENDING"
	VerdictSuccess RowVerdict = "SUCCESS"
	VerdictFailed  RowVerdict = "FAILED"
)

// Row is one line of the upload file, parsed into named fields at the
// CSV boundary. Everything stays a string here; the validator and the
// materializer interpret numbers and dates.
type Row struct {
	CampaignName       string `json:"campaign_name"`
	Objective          string `json:"objective"`
	BudgetType         string `json:"budget_type"`
	Budget             string `json:"budget"`
	BidStrategy        string `json:"bid_strategy"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	BudgetOptimization string `json:"budget_optimization"`

	AdSetName          string `json:"adset_name"`
	PlacementType      string `json:"placement_type"`
	ConversionLocation string `json:"conversion_location"`
	OptimizationEvent  string `json:"optimization_event"`
	AgeMin             string `json:"age_min"`
	AgeMax             string `json:"age_max"`
	Gender             string `json:"gender"`
	Locations          string `json:"locations"`
	Interests          string `json:"interests"`
	AttributionWindow  string `json:"attribution_window"`

	AdName      string `json:"ad_name"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	WebsiteURL  string `json:"website_url"`
	CTA         string `json:"cta"`
	ImageURL    string `json:"image_url"`

	CampaignStatus   string `json:"campaign_status"`
	TargetingPreset  string `json:"targeting_preset"`
	CreativeTemplate string `json:"creative_template"`
	Notes            string `json:"notes"`
}

// UploadBatch tracks one uploaded file through validation and
// materialization. Counters are written by the validator once and then
// by the processing loop after every row.
type UploadBatch struct {
	ID     int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"column:user_id;index" json:"user_id"`

	FileName string `gorm:"column:file_name" json:"file_name"`

	TotalRows     int `gorm:"column:total_rows" json:"total_rows"`
	ProcessedRows int `gorm:"column:processed_rows" json:"processed_rows"`
	SuccessRows   int `gorm:"column:success_rows" json:"success_rows"`
	FailedRows    int `gorm:"column:failed_rows" json:"failed_rows"`

	Status   BatchStatus `gorm:"column:status;default:UPLOADING" json:"status"`
	ErrorLog string      `gorm:"column:error_log" json:"error_log,omitempty"`

	SelectedAccountID *int64 `gorm:"column:selected_account_id" json:"selected_account_id,omitempty"`

	Rows []BatchRow `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (UploadBatch) TableName() string { return "upload_batches" }

// BatchRow is one source row with its verdict. RowNumber counts from 2
// because row 1 of the file is the header. A verdict set to FAILED never
// goes back to SUCCESS.
type BatchRow struct {
	ID      int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BatchID int64 `gorm:"column:batch_id;index" json:"batch_id"`

	RowNumber int        `gorm:"column:row_number" json:"row_number"`
	Record    Row        `gorm:"column:record;serializer:json" json:"record"`
	Verdict   RowVerdict `gorm:"column:verdict;default:PENDING" json:"verdict"`

	ErrorMessage string `gorm:"column:error_message" json:"error_message,omitempty"`
	CampaignID   *int64 `gorm:"column:campaign_id" json:"campaign_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (BatchRow) TableName() string { return "upload_batch_rows" }
