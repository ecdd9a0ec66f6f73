package alert

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateRule(ctx context.Context, r *AlertRule) error
	GetRule(ctx context.Context, id int64) (*AlertRule, error)
	ListRulesByUserID(ctx context.Context, userID int64) ([]*AlertRule, error)
	ListActiveRulesForCampaign(ctx context.Context, userID, campaignID int64) ([]*AlertRule, error)
	ListActiveRulesByType(ctx context.Context, userID int64, t AlertType) ([]*AlertRule, error)
	UpdateRule(ctx context.Context, r *AlertRule) error
	DeleteRule(ctx context.Context, id int64) error
	CountRulesByUserID(ctx context.Context, userID int64) (int, error)

	CreateNotification(ctx context.Context, n *AlertNotification) error
	UpdateNotification(ctx context.Context, n *AlertNotification) error
	ListNotificationsByUserID(ctx context.Context, userID int64, limit int) ([]*AlertNotification, error)
	CountNotificationsSince(ctx context.Context, userID int64, since time.Time) (int, error)

	GetSettings(ctx context.Context, userID int64) (*AlertSettings, error)
	SaveSettings(ctx context.Context, s *AlertSettings) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRule(ctx context.Context, rule *AlertRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) GetRule(ctx context.Context, id int64) (*AlertRule, error) {
	var rule AlertRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRuleNotFound
	}
	return &rule, err
}

func (r *repository) ListRulesByUserID(ctx context.Context, userID int64) ([]*AlertRule, error) {
	var rules []*AlertRule
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rules).Error
	return rules, err
}

// ListActiveRulesForCampaign returns rules watching this campaign,
// including rules with no campaign bound (those watch everything).
func (r *repository) ListActiveRulesForCampaign(ctx context.Context, userID, campaignID int64) ([]*AlertRule, error) {
	var rules []*AlertRule
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("campaign_id IS NULL OR campaign_id = ?", campaignID).
		Find(&rules).Error
	return rules, err
}

func (r *repository) ListActiveRulesByType(ctx context.Context, userID int64, t AlertType) ([]*AlertRule, error) {
	var rules []*AlertRule
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND type = ?", userID, true, t).
		Find(&rules).Error
	return rules, err
}

func (r *repository) UpdateRule(ctx context.Context, rule *AlertRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *repository) DeleteRule(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&AlertRule{}, id).Error
}

func (r *repository) CountRulesByUserID(ctx context.Context, userID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AlertRule{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return int(count), err
}

func (r *repository) CreateNotification(ctx context.Context, n *AlertNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) UpdateNotification(ctx context.Context, n *AlertNotification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *repository) ListNotificationsByUserID(ctx context.Context, userID int64, limit int) ([]*AlertNotification, error) {
	var notifications []*AlertNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *repository) CountNotificationsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AlertNotification{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return int(count), err
}

func (r *repository) GetSettings(ctx context.Context, userID int64) (*AlertSettings, error) {
	var s AlertSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *repository) SaveSettings(ctx context.Context, s *AlertSettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}
