package campaign

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	DB() *gorm.DB

	CreateGraph(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id int64) (*Campaign, error)
	GetGraphByID(ctx context.Context, id int64) (*Campaign, error)
	ListByUserID(ctx context.Context, userID int64, includeDeleted bool) ([]*Campaign, error)
	Update(ctx context.Context, c *Campaign) error

	GetAdSetByID(ctx context.Context, id int64) (*AdSet, error)
	GetAdByID(ctx context.Context, id int64) (*Ad, error)
	UpdateAdSet(ctx context.Context, a *AdSet) error
	UpdateAd(ctx context.Context, a *Ad) error

	UpdateStatus(ctx context.Context, kind EntityKind, id int64, status Status) error
	CountActiveByUserID(ctx context.Context, userID int64) (int, error)
	ListStale(ctx context.Context, limit int) ([]*Campaign, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) DB() *gorm.DB { return r.db }

// CreateGraph persists a campaign together with its nested ad sets and
// ads in one transaction. gorm cascades the association inserts.
func (r *repository) CreateGraph(ctx context.Context, c *Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Campaign, error) {
	var c Campaign
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	return &c, err
}

func (r *repository) GetGraphByID(ctx context.Context, id int64) (*Campaign, error) {
	var c Campaign
	err := r.db.WithContext(ctx).
		Preload("AdSets").
		Preload("AdSets.Ads").
		Where("id = ?", id).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	return &c, err
}

func (r *repository) ListByUserID(ctx context.Context, userID int64, includeDeleted bool) ([]*Campaign, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeDeleted {
		q = q.Where("status <> ?", StatusDeleted)
	}
	var campaigns []*Campaign
	err := q.Order("created_at DESC").Find(&campaigns).Error
	return campaigns, err
}

func (r *repository) Update(ctx context.Context, c *Campaign) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *repository) GetAdSetByID(ctx context.Context, id int64) (*AdSet, error) {
	var a AdSet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdSetNotFound
	}
	return &a, err
}

func (r *repository) GetAdByID(ctx context.Context, id int64) (*Ad, error) {
	var a Ad
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdNotFound
	}
	return &a, err
}

func (r *repository) UpdateAdSet(ctx context.Context, a *AdSet) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) UpdateAd(ctx context.Context, a *Ad) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// UpdateStatus writes the status of one entity of the given kind. This
// is the single code path behind activate/pause/sync for all three
// levels of the graph.
func (r *repository) UpdateStatus(ctx context.Context, kind EntityKind, id int64, status Status) error {
	model, err := modelForKind(kind)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) CountActiveByUserID(ctx context.Context, userID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Campaign{}).
		Where("user_id = ? AND status <> ?", userID, StatusDeleted).
		Count(&count).Error
	return int(count), err
}

// ListStale returns submitted campaigns whose local status may lag the
// remote one; used by the sync worker.
func (r *repository) ListStale(ctx context.Context, limit int) ([]*Campaign, error) {
	var campaigns []*Campaign
	err := r.db.WithContext(ctx).
		Where("remote_id <> '' AND status <> ?", StatusDeleted).
		Order("updated_at ASC").
		Limit(limit).
		Find(&campaigns).Error
	return campaigns, err
}

func modelForKind(kind EntityKind) (any, error) {
	switch kind {
	case KindCampaign:
		return &Campaign{}, nil
	case KindAdSet:
		return &AdSet{}, nil
	case KindAd:
		return &Ad{}, nil
	default:
		return nil, ErrUnknownKind
	}
}
