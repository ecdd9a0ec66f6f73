package account

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, a *AdAccount) error
	GetByID(ctx context.Context, id int64) (*AdAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*AdAccount, error)
	FirstActiveByUserID(ctx context.Context, userID int64) (*AdAccount, error)
	Update(ctx context.Context, a *AdAccount) error
	ExistsByAccountID(ctx context.Context, accountID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *AdAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*AdAccount, error) {
	var a AdAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	return &a, err
}

func (r *repository) ListByUserID(ctx context.Context, userID int64) ([]*AdAccount, error) {
	var accounts []*AdAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

// FirstActiveByUserID returns nil, nil when the user has no active account.
func (r *repository) FirstActiveByUserID(ctx context.Context, userID int64) (*AdAccount, error) {
	var a AdAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) Update(ctx context.Context, a *AdAccount) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) ExistsByAccountID(ctx context.Context, accountID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AdAccount{}).
		Where("account_id = ?", accountID).Count(&count).Error
	return count > 0, err
}
