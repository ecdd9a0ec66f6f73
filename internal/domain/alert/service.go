package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adpilot/internal/domain/campaign"

	"go.uber.org/zap"
)

// PlanGuard lets billing cap the number of alert rules.
type PlanGuard interface {
	CanCreateAlertRule(ctx context.Context, userID int64) error
}

type Service struct {
	repo     Repository
	notifier *Notifier
	guard    PlanGuard
	log      *zap.Logger

	// injectable for tests
	now func() time.Time
}

func NewService(repo Repository, notifier *Notifier, guard PlanGuard, log *zap.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, guard: guard, log: log, now: time.Now}
}

func (s *Service) CreateRule(ctx context.Context, userID int64, req CreateRuleRequest) (*AlertRule, error) {
	if s.guard != nil {
		if err := s.guard.CanCreateAlertRule(ctx, userID); err != nil {
			return nil, err
		}
	}

	switch req.Type {
	case TypeBudgetThreshold, TypePerformanceDrop, TypeCampaignStatus, TypeBulkUploadComplete, TypeBulkUploadFailed:
	default:
		return nil, ErrInvalidType
	}

	rule := &AlertRule{
		UserID:             userID,
		Name:               req.Name,
		Description:        req.Description,
		Type:               req.Type,
		Condition:          req.Condition,
		ThresholdValue:     req.ThresholdValue,
		CampaignID:         req.CampaignID,
		IsActive:           true,
		Frequency:          req.Frequency,
		SlackWebhookURL:    req.SlackWebhookURL,
		ChatworkWebhookURL: req.ChatworkWebhookURL,
		MessageTemplate:    req.MessageTemplate,
	}
	if rule.Frequency == "" {
		rule.Frequency = FrequencyImmediate
	}
	if rule.MessageTemplate == "" {
		rule.MessageTemplate = DefaultMessageTemplate
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Service) ListRules(ctx context.Context, userID int64) ([]*AlertRule, error) {
	return s.repo.ListRulesByUserID(ctx, userID)
}

func (s *Service) GetRule(ctx context.Context, userID, id int64) (*AlertRule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule.UserID != userID {
		return nil, ErrNotOwner
	}
	return rule, nil
}

func (s *Service) UpdateRule(ctx context.Context, userID, id int64, req UpdateRuleRequest) (*AlertRule, error) {
	rule, err := s.GetRule(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		rule.Name = req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.ThresholdValue != "" {
		rule.ThresholdValue = req.ThresholdValue
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.SlackWebhookURL != nil {
		rule.SlackWebhookURL = *req.SlackWebhookURL
	}
	if req.ChatworkWebhookURL != nil {
		rule.ChatworkWebhookURL = *req.ChatworkWebhookURL
	}
	if req.MessageTemplate != nil {
		rule.MessageTemplate = *req.MessageTemplate
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Service) DeleteRule(ctx context.Context, userID, id int64) error {
	if _, err := s.GetRule(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteRule(ctx, id)
}

func (s *Service) ListNotifications(ctx context.Context, userID int64, limit int) ([]*AlertNotification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListNotificationsByUserID(ctx, userID, limit)
}

// GetSettings returns the user's settings, creating defaults on first
// access.
func (s *Service) GetSettings(ctx context.Context, userID int64) (*AlertSettings, error) {
	settings, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &AlertSettings{UserID: userID, Enabled: true, MaxPerHour: 10, MaxPerDay: 50}
		if err := s.repo.SaveSettings(ctx, settings); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, userID int64, req UpdateSettingsRequest) (*AlertSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.QuietHoursStart != nil {
		settings.QuietHoursStart = *req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		settings.QuietHoursEnd = *req.QuietHoursEnd
	}
	if req.DefaultSlackWebhook != nil {
		settings.DefaultSlackWebhook = *req.DefaultSlackWebhook
	}
	if req.MaxPerHour != nil && *req.MaxPerHour > 0 {
		settings.MaxPerHour = *req.MaxPerHour
	}
	if req.MaxPerDay != nil && *req.MaxPerDay > 0 {
		settings.MaxPerDay = *req.MaxPerDay
	}

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// EvaluateCampaign runs every active rule watching the campaign against
// the given snapshot and dispatches notifications for the ones that
// fire.
func (s *Service) EvaluateCampaign(ctx context.Context, c *campaign.Campaign, insights *campaign.Insights) error {
	rules, err := s.repo.ListActiveRulesForCampaign(ctx, c.UserID, c.ID)
	if err != nil {
		return err
	}

	for _, rule := range rules {
		fired, value, err := Evaluate(rule, c, insights)
		if err != nil || !fired {
			continue
		}
		s.dispatch(ctx, rule, c.Name, &c.ID, value)
	}
	return nil
}

// BatchCompleted notifies rules subscribed to bulk upload outcomes.
// It satisfies the upload pipeline's observer hook.
func (s *Service) BatchCompleted(ctx context.Context, userID, batchID int64, successful, failed int) {
	t := TypeBulkUploadComplete
	if failed > 0 && successful == 0 {
		t = TypeBulkUploadFailed
	}

	rules, err := s.repo.ListActiveRulesByType(ctx, userID, t)
	if err != nil {
		s.log.Error("failed to load bulk upload alert rules", zap.Error(err))
		return
	}

	value := fmt.Sprintf("batch %d: %d succeeded, %d failed", batchID, successful, failed)
	for _, rule := range rules {
		s.dispatch(ctx, rule, fmt.Sprintf("Bulk upload #%d", batchID), nil, value)
	}
}

// dispatch runs the delivery gates and sends on every configured
// channel. A dashboard record is always written when the gates pass.
func (s *Service) dispatch(ctx context.Context, rule *AlertRule, subjectName string, campaignID *int64, currentValue string) {
	settings, err := s.GetSettings(ctx, rule.UserID)
	if err != nil {
		s.log.Error("failed to load alert settings", zap.Int64("rule_id", rule.ID), zap.Error(err))
		return
	}

	if !settings.Enabled {
		return
	}
	if s.inQuietHours(settings) {
		s.log.Debug("quiet hours active, suppressing alert", zap.Int64("rule_id", rule.ID))
		return
	}
	if !s.underCaps(ctx, rule.UserID, settings) {
		s.log.Warn("notification cap reached", zap.Int64("user_id", rule.UserID))
		return
	}
	if !s.dueByFrequency(rule) {
		return
	}

	message := formatMessage(rule.MessageTemplate, map[string]string{
		"alert_name":      rule.Name,
		"campaign_name":   subjectName,
		"current_value":   currentValue,
		"threshold_value": rule.ThresholdValue,
	})

	if rule.SlackWebhookURL != "" {
		s.deliver(ctx, rule, campaignID, ChannelSlack, message, currentValue, func() error {
			return s.notifier.SendSlack(ctx, rule.SlackWebhookURL, message)
		})
	} else if settings.DefaultSlackWebhook != "" {
		s.deliver(ctx, rule, campaignID, ChannelSlack, message, currentValue, func() error {
			return s.notifier.SendSlack(ctx, settings.DefaultSlackWebhook, message)
		})
	}
	if rule.ChatworkWebhookURL != "" {
		s.deliver(ctx, rule, campaignID, ChannelChatwork, message, currentValue, func() error {
			return s.notifier.SendChatwork(ctx, rule.ChatworkWebhookURL, message)
		})
	}

	// dashboard entry is unconditional
	now := s.now()
	dashboard := &AlertNotification{
		RuleID:         rule.ID,
		UserID:         rule.UserID,
		CampaignID:     campaignID,
		Title:          fmt.Sprintf("%s - %s", rule.Name, rule.Type),
		Message:        message,
		CurrentValue:   currentValue,
		ThresholdValue: rule.ThresholdValue,
		Channel:        ChannelDashboard,
		Status:         NotificationSent,
		SentAt:         &now,
	}
	if err := s.repo.CreateNotification(ctx, dashboard); err != nil {
		s.log.Error("failed to record dashboard notification", zap.Error(err))
	}

	rule.LastTriggered = &now
	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		s.log.Error("failed to update rule trigger time", zap.Error(err))
	}
}

func (s *Service) deliver(ctx context.Context, rule *AlertRule, campaignID *int64, channel Channel, message, currentValue string, send func() error) {
	n := &AlertNotification{
		RuleID:         rule.ID,
		UserID:         rule.UserID,
		CampaignID:     campaignID,
		Title:          fmt.Sprintf("%s - %s", rule.Name, rule.Type),
		Message:        message,
		CurrentValue:   currentValue,
		ThresholdValue: rule.ThresholdValue,
		Channel:        channel,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.log.Error("failed to create notification record", zap.Error(err))
		return
	}

	if err := send(); err != nil {
		n.Status = NotificationFailed
		n.ErrorMessage = err.Error()
		s.log.Warn("notification delivery failed",
			zap.Int64("rule_id", rule.ID),
			zap.String("channel", string(channel)),
			zap.Error(err))
	} else {
		now := s.now()
		n.Status = NotificationSent
		n.SentAt = &now
	}
	if err := s.repo.UpdateNotification(ctx, n); err != nil {
		s.log.Error("failed to update notification record", zap.Error(err))
	}
}

// inQuietHours evaluates the wall-clock quiet window, which may wrap
// past midnight (22:00-06:00).
func (s *Service) inQuietHours(settings *AlertSettings) bool {
	if settings.QuietHoursStart == "" || settings.QuietHoursEnd == "" {
		return false
	}
	start, err1 := time.Parse("15:04", settings.QuietHoursStart)
	end, err2 := time.Parse("15:04", settings.QuietHoursEnd)
	if err1 != nil || err2 != nil {
		return false
	}

	now := s.now()
	minutes := now.Hour()*60 + now.Minute()
	startM := start.Hour()*60 + start.Minute()
	endM := end.Hour()*60 + end.Minute()

	if startM <= endM {
		return minutes >= startM && minutes <= endM
	}
	return minutes >= startM || minutes <= endM
}

func (s *Service) underCaps(ctx context.Context, userID int64, settings *AlertSettings) bool {
	now := s.now()

	hourly, err := s.repo.CountNotificationsSince(ctx, userID, now.Add(-time.Hour))
	if err != nil {
		return true
	}
	if hourly >= settings.MaxPerHour {
		return false
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	daily, err := s.repo.CountNotificationsSince(ctx, userID, midnight)
	if err != nil {
		return true
	}
	return daily < settings.MaxPerDay
}

func (s *Service) dueByFrequency(rule *AlertRule) bool {
	if rule.Frequency == FrequencyImmediate || rule.LastTriggered == nil {
		return true
	}
	elapsed := s.now().Sub(*rule.LastTriggered)
	switch rule.Frequency {
	case FrequencyHourly:
		return elapsed >= time.Hour
	case FrequencyDaily:
		return elapsed >= 24*time.Hour
	case FrequencyWeekly:
		return elapsed >= 7*24*time.Hour
	default:
		return true
	}
}

func formatMessage(template string, values map[string]string) string {
	replacements := make([]string, 0, len(values)*2)
	for k, v := range values {
		replacements = append(replacements, "{"+k+"}", v)
	}
	return strings.NewReplacer(replacements...).Replace(template)
}
