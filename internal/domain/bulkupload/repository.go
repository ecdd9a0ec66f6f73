package bulkupload

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	CreateBatch(ctx context.Context, b *UploadBatch) error
	GetBatch(ctx context.Context, id int64) (*UploadBatch, error)
	ListByUserID(ctx context.Context, userID int64) ([]*UploadBatch, error)
	UpdateBatch(ctx context.Context, b *UploadBatch) error

	RecordRows(ctx context.Context, rows []BatchRow) error
	ListRows(ctx context.Context, batchID int64, verdict RowVerdict) ([]*BatchRow, error)
	MarkRowFailed(ctx context.Context, rowID int64, message string) error
	SetRowCampaign(ctx context.Context, rowID, campaignID int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(ctx context.Context, b *UploadBatch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) GetBatch(ctx context.Context, id int64) (*UploadBatch, error) {
	var b UploadBatch
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBatchNotFound
	}
	return &b, err
}

func (r *repository) ListByUserID(ctx context.Context, userID int64) ([]*UploadBatch, error) {
	var batches []*UploadBatch
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&batches).Error
	return batches, err
}

func (r *repository) UpdateBatch(ctx context.Context, b *UploadBatch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// RecordRows inserts the verdict rows in source-file order.
func (r *repository) RecordRows(ctx context.Context, rows []BatchRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

func (r *repository) ListRows(ctx context.Context, batchID int64, verdict RowVerdict) ([]*BatchRow, error) {
	q := r.db.WithContext(ctx).Where("batch_id = ?", batchID)
	if verdict != "" {
		q = q.Where("verdict = ?", verdict)
	}
	var rows []*BatchRow
	err := q.Order("row_number ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) MarkRowFailed(ctx context.Context, rowID int64, message string) error {
	return r.db.WithContext(ctx).Model(&BatchRow{}).
		Where("id = ?", rowID).
		Updates(map[string]any{
			"verdict":       VerdictFailed,
			"error_message": message,
		}).Error
}

func (r *repository) SetRowCampaign(ctx context.Context, rowID, campaignID int64) error {
	return r.db.WithContext(ctx).Model(&BatchRow{}).
		Where("id = ?", rowID).
		Update("campaign_id", campaignID).Error
}
