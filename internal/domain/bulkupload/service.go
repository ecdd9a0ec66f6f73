package bulkupload

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"adpilot/internal/domain/account"
	"adpilot/internal/domain/campaign"
	"adpilot/internal/queue"

	"go.uber.org/zap"
)

// AccountResolver supplies the ad account rows are materialized under.
type AccountResolver interface {
	ResolveForUser(ctx context.Context, userID int64, selectedID *int64) (*account.AdAccount, error)
}

// PlanGuard lets billing cap the number of rows per upload.
type PlanGuard interface {
	CanUploadRows(ctx context.Context, userID int64, rows int) error
}

// BatchObserver is told when a processing run finishes, so interested
// parties (alerting) can react without the pipeline knowing about them.
type BatchObserver interface {
	BatchCompleted(ctx context.Context, userID, batchID int64, successful, failed int)
}

type Service struct {
	repo      Repository
	campaigns campaign.Repository
	accounts  AccountResolver
	gateway   campaign.RemoteGateway
	guard     PlanGuard
	tasks     queue.Submitter
	observer  BatchObserver
	log       *zap.Logger
}

// SetObserver registers the completion hook. Optional.
func (s *Service) SetObserver(o BatchObserver) { s.observer = o }

func NewService(repo Repository, campaigns campaign.Repository, accounts AccountResolver, gateway campaign.RemoteGateway, guard PlanGuard, tasks queue.Submitter, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		campaigns: campaigns,
		accounts:  accounts,
		gateway:   gateway,
		guard:     guard,
		tasks:     tasks,
		log:       log,
	}
}

// UploadReport is returned to the client right after validation.
type UploadReport struct {
	BatchID     int64       `json:"bulk_upload_id"`
	TotalRows   int         `json:"total_records"`
	ValidRows   int         `json:"valid_records"`
	InvalidRows int         `json:"invalid_records"`
	Status      BatchStatus `json:"status"`
	Results     []RowResult `json:"validation_results"`
}

// UploadAndValidate parses the file, validates every row and persists
// the batch with its per-row verdicts. A batch with zero invalid rows
// goes straight to COMPLETED; otherwise it waits in VALIDATED until the
// client triggers processing.
func (s *Service) UploadAndValidate(ctx context.Context, userID int64, fileName string, selectedAccountID *int64, file io.Reader) (*UploadReport, error) {
	rows, err := parseCSV(file)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	if s.guard != nil {
		if err := s.guard.CanUploadRows(ctx, userID, len(rows)); err != nil {
			return nil, err
		}
	}

	results := ValidateRows(rows)

	batch := &UploadBatch{
		UserID:            userID,
		FileName:          fileName,
		TotalRows:         len(rows),
		Status:            BatchValidating,
		SelectedAccountID: selectedAccountID,
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	records := make([]BatchRow, 0, len(results))
	valid, invalid := 0, 0
	for _, res := range results {
		verdict := VerdictSuccess
		if !res.Valid {
			verdict = VerdictFailed
			invalid++
		} else {
			valid++
		}
		records = append(records, BatchRow{
			BatchID:      batch.ID,
			RowNumber:    res.RowNumber,
			Record:       res.Record,
			Verdict:      verdict,
			ErrorMessage: strings.Join(res.Errors, "; "),
		})
	}
	if err := s.repo.RecordRows(ctx, records); err != nil {
		return nil, err
	}

	batch.SuccessRows = valid
	batch.FailedRows = invalid
	if invalid == 0 {
		batch.Status = BatchCompleted
	} else {
		batch.Status = BatchValidated
	}
	if err := s.repo.UpdateBatch(ctx, batch); err != nil {
		return nil, err
	}

	s.log.Info("upload validated",
		zap.Int64("batch_id", batch.ID),
		zap.String("file", fileName),
		zap.Int("total", len(rows)),
		zap.Int("valid", valid),
		zap.Int("invalid", invalid))

	return &UploadReport{
		BatchID:     batch.ID,
		TotalRows:   batch.TotalRows,
		ValidRows:   valid,
		InvalidRows: invalid,
		Status:      batch.Status,
		Results:     results,
	}, nil
}

// Process flips the batch to PROCESSING and schedules the row loop in
// the background. A batch already in PROCESSING is rejected.
func (s *Service) Process(ctx context.Context, userID, batchID int64) error {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.UserID != userID {
		return ErrNotOwner
	}
	if batch.Status == BatchProcessing {
		return ErrAlreadyProcessing
	}

	batch.Status = BatchProcessing
	batch.ProcessedRows = 0
	if err := s.repo.UpdateBatch(ctx, batch); err != nil {
		return err
	}

	s.tasks.Submit(fmt.Sprintf("process-batch-%d", batchID), func(taskCtx context.Context) error {
		return s.run(taskCtx, batchID)
	})

	s.log.Info("batch processing scheduled", zap.Int64("batch_id", batchID))
	return nil
}

// run is the background row loop. Row failures are isolated: each one is
// recorded and counted, never aborting the loop. The batch always
// reaches COMPLETED unless the batch record itself cannot be loaded or
// saved, in which case it is marked FAILED and the task is not retried.
func (s *Service) run(ctx context.Context, batchID int64) error {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		s.log.Error("batch disappeared before processing", zap.Int64("batch_id", batchID), zap.Error(err))
		return queue.Permanent(err)
	}

	rows, err := s.repo.ListRows(ctx, batchID, VerdictSuccess)
	if err != nil {
		return s.failBatch(ctx, batch, fmt.Sprintf("failed to load rows: %v", err))
	}

	if len(rows) == 0 {
		batch.Status = BatchCompleted
		batch.ErrorLog = "no valid records to process"
		if err := s.repo.UpdateBatch(ctx, batch); err != nil {
			return queue.Permanent(err)
		}
		return nil
	}

	acct, err := s.accounts.ResolveForUser(ctx, batch.UserID, batch.SelectedAccountID)
	if err != nil {
		return s.failBatch(ctx, batch, fmt.Sprintf("failed to resolve ad account: %v", err))
	}

	successful, failed := 0, 0
	for i, row := range rows {
		created, rowErr := s.materializeRow(ctx, batch.UserID, acct, row.Record)
		if rowErr != nil {
			failed++
			msg := fmt.Sprintf("row %d: %v", row.RowNumber, rowErr)
			if err := s.repo.MarkRowFailed(ctx, row.ID, msg); err != nil {
				s.log.Error("failed to record row failure", zap.Int64("row_id", row.ID), zap.Error(err))
			}
			s.log.Warn("row materialization failed",
				zap.Int64("batch_id", batchID),
				zap.Int("row_number", row.RowNumber),
				zap.Error(rowErr))
		} else {
			successful++
			if err := s.repo.SetRowCampaign(ctx, row.ID, created.ID); err != nil {
				s.log.Error("failed to link row to campaign", zap.Int64("row_id", row.ID), zap.Error(err))
			}
			s.enqueueSubmit(created.ID)
		}

		batch.ProcessedRows = i + 1
		batch.SuccessRows = successful
		batch.FailedRows = failed
		if err := s.repo.UpdateBatch(ctx, batch); err != nil {
			return queue.Permanent(err)
		}
	}

	batch.Status = BatchCompleted
	if err := s.repo.UpdateBatch(ctx, batch); err != nil {
		return queue.Permanent(err)
	}

	if s.observer != nil {
		s.observer.BatchCompleted(ctx, batch.UserID, batch.ID, successful, failed)
	}

	s.log.Info("batch processing completed",
		zap.Int64("batch_id", batchID),
		zap.Int("successful", successful),
		zap.Int("failed", failed))
	return nil
}

func (s *Service) failBatch(ctx context.Context, batch *UploadBatch, reason string) error {
	batch.Status = BatchFailed
	batch.ErrorLog = reason
	if err := s.repo.UpdateBatch(ctx, batch); err != nil {
		s.log.Error("failed to mark batch failed", zap.Int64("batch_id", batch.ID), zap.Error(err))
	}
	return queue.Permanent(fmt.Errorf("batch %d failed: %s", batch.ID, reason))
}

func (s *Service) enqueueSubmit(campaignID int64) {
	s.tasks.Submit(fmt.Sprintf("submit-campaign-%d", campaignID), func(ctx context.Context) error {
		return s.gateway.SubmitCampaign(ctx, campaignID)
	})
}

// materializeRow turns one validated row into a persisted
// Campaign → AdSet → Ad graph. The insert is a single transaction, so a
// failure leaves nothing behind for this row.
func (s *Service) materializeRow(ctx context.Context, userID int64, acct *account.AdAccount, r Row) (*campaign.Campaign, error) {
	budget, err := strconv.ParseFloat(r.Budget, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid budget %q", r.Budget)
	}
	startDate, err := campaign.ParseDate(r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}
	endDate, err := normalizeEndDate(r, startDate)
	if err != nil {
		return nil, err
	}

	status := campaign.StatusPaused
	if r.CampaignStatus == string(campaign.StatusActive) {
		status = campaign.StatusActive
	}

	ageMin := parseIntDefault(r.AgeMin, 13)
	ageMax := parseIntDefault(r.AgeMax, 65)

	c := &campaign.Campaign{
		UserID:      userID,
		AdAccountID: acct.ID,
		Name:        r.CampaignName,
		Objective:   r.Objective,
		Status:      status,
		BudgetType:  campaign.BudgetType(r.BudgetType),
		Budget:      budget,
		StartDate:   startDate,
		EndDate:     endDate,
		AdSets: []campaign.AdSet{{
			Name:              r.AdSetName,
			Status:            campaign.StatusPaused,
			BidStrategy:       MapBidStrategy(r.BidStrategy),
			BidAmount:         1500,
			OptimizationGoal:  MapOptimizationEvent(r.OptimizationEvent),
			PlacementType:     r.PlacementType,
			AttributionWindow: r.AttributionWindow,
			Targeting:         campaign.BuildTargeting(splitList(r.Locations), ageMin, ageMax, r.Gender, splitList(r.Interests)),
			Ads: []campaign.Ad{{
				Name:        r.AdName,
				Status:      campaign.StatusPaused,
				Headline:    r.Headline,
				Description: r.Description,
				LinkURL:     r.WebsiteURL,
				CTAType:     r.CTA,
				ImageURL:    r.ImageURL,
			}},
		}},
	}

	if err := s.campaigns.CreateGraph(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// normalizeEndDate cleans up the end_date column. Spreadsheet exports
// sometimes put booleans or "None" in it; those count as absent. A
// LIFETIME budget needs an end date, so an absent one defaults to 30
// days after the start. A DAILY budget never carries one.
func normalizeEndDate(r Row, startDate time.Time) (*time.Time, error) {
	raw := strings.TrimSpace(r.EndDate)
	switch strings.ToUpper(raw) {
	case "", "TRUE", "FALSE", "NONE", "NAN":
		raw = ""
	}

	if r.BudgetType == string(campaign.BudgetDaily) {
		return nil, nil
	}

	if raw == "" {
		d := startDate.AddDate(0, 0, 30)
		return &d, nil
	}
	d, err := campaign.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %w", err)
	}
	return &d, nil
}

// ProgressReport is recomputed from the batch row on every read.
type ProgressReport struct {
	Total              int         `json:"total"`
	Processed          int         `json:"processed"`
	Successful         int         `json:"successful"`
	Failed             int         `json:"failed"`
	Status             BatchStatus `json:"status"`
	ProgressPercentage float64     `json:"progress_percentage"`
	ErrorLog           string      `json:"error_log,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	FailedRecords      []*BatchRow `json:"failed_records"`
}

// Progress reports the current state of a batch, including the detail
// of every failed row.
func (s *Service) Progress(ctx context.Context, userID, batchID int64) (*ProgressReport, error) {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.UserID != userID {
		return nil, ErrNotOwner
	}

	failedRows, err := s.repo.ListRows(ctx, batchID, VerdictFailed)
	if err != nil {
		return nil, err
	}

	pct := 0.0
	if batch.TotalRows > 0 {
		pct = math.Round(float64(batch.ProcessedRows)/float64(batch.TotalRows)*10000) / 100
	}

	return &ProgressReport{
		Total:              batch.TotalRows,
		Processed:          batch.ProcessedRows,
		Successful:         batch.SuccessRows,
		Failed:             batch.FailedRows,
		Status:             batch.Status,
		ProgressPercentage: pct,
		ErrorLog:           batch.ErrorLog,
		CreatedAt:          batch.CreatedAt,
		UpdatedAt:          batch.UpdatedAt,
		FailedRecords:      failedRows,
	}, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*UploadBatch, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, batchID int64) (*UploadBatch, error) {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.UserID != userID {
		return nil, ErrNotOwner
	}
	return batch, nil
}

// parseCSV reads the upload into typed rows. A UTF-8 BOM is tolerated
// because spreadsheet tools prepend one.
func parseCSV(file io.Reader) ([]Row, error) {
	br := bufio.NewReader(file)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		if _, err := br.Discard(3); err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		rows = append(rows, Row{
			CampaignName:       get("campaign_name"),
			Objective:          get("objective"),
			BudgetType:         get("budget_type"),
			Budget:             get("budget"),
			BidStrategy:        get("bid_strategy"),
			StartDate:          get("start_date"),
			EndDate:            get("end_date"),
			BudgetOptimization: get("budget_optimization"),
			AdSetName:          get("adset_name"),
			PlacementType:      get("placement_type"),
			ConversionLocation: get("conversion_location"),
			OptimizationEvent:  get("optimization_event"),
			AgeMin:             get("age_min"),
			AgeMax:             get("age_max"),
			Gender:             get("gender"),
			Locations:          get("locations"),
			Interests:          get("interests"),
			AttributionWindow:  get("attribution_window"),
			AdName:             get("ad_name"),
			Headline:           get("headline"),
			Description:        get("description"),
			WebsiteURL:         get("website_url"),
			CTA:                get("cta"),
			ImageURL:           get("image_url"),
			CampaignStatus:     get("campaign_status"),
			TargetingPreset:    get("targeting_preset"),
			CreativeTemplate:   get("creative_template"),
			Notes:              get("notes"),
		})
	}
	return rows, nil
}

func parseIntDefault(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// splitList parses a cell like "JP;US" or "tech, travel" into items.
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ';'
	})
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			items = append(items, f)
		}
	}
	return items
}
