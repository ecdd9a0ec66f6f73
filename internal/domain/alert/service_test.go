package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"adpilot/internal/domain/campaign"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"go.uber.org/zap"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:alert_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&AlertRule{}, &AlertNotification{}, &AlertSettings{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(NewRepository(db), NewNotifier(2*time.Second), nil, zap.NewNop())
}

func slackStub(t *testing.T, calls *atomic.Int64, lastText *atomic.Value) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if lastText != nil {
			lastText.Store(payload["text"])
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRuleCRUD(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, 1, CreateRuleRequest{
		Name:           "Budget watch",
		Type:           TypeBudgetThreshold,
		Condition:      ConditionGreaterThan,
		ThresholdValue: "80",
	})
	if err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}
	if rule.Frequency != FrequencyImmediate {
		t.Fatalf("expected default frequency IMMEDIATE, got %s", rule.Frequency)
	}
	if rule.MessageTemplate == "" {
		t.Fatalf("expected default message template")
	}

	rules, err := svc.ListRules(ctx, 1)
	if err != nil || len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d / %v", len(rules), err)
	}

	inactive := false
	updated, err := svc.UpdateRule(ctx, 1, rule.ID, UpdateRuleRequest{IsActive: &inactive, ThresholdValue: "90"})
	if err != nil {
		t.Fatalf("UpdateRule returned error: %v", err)
	}
	if updated.IsActive || updated.ThresholdValue != "90" {
		t.Fatalf("unexpected updated rule: %+v", updated)
	}

	if _, err := svc.UpdateRule(ctx, 2, rule.ID, UpdateRuleRequest{}); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := svc.DeleteRule(ctx, 1, rule.ID); err != nil {
		t.Fatalf("DeleteRule returned error: %v", err)
	}
	if _, err := svc.GetRule(ctx, 1, rule.ID); err != ErrRuleNotFound {
		t.Fatalf("expected ErrRuleNotFound after delete, got %v", err)
	}
}

func TestCreateRuleRejectsUnknownType(t *testing.T) {
	svc := setupTestService(t)
	_, err := svc.CreateRule(context.Background(), 1, CreateRuleRequest{Name: "x", Type: "MYSTERY", Condition: ConditionEquals})
	if err != ErrInvalidType {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestSettingsCreatedOnFirstAccess(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx, 7)
	if err != nil {
		t.Fatalf("GetSettings returned error: %v", err)
	}
	if !settings.Enabled || settings.MaxPerHour != 10 || settings.MaxPerDay != 50 {
		t.Fatalf("unexpected defaults: %+v", settings)
	}

	again, err := svc.GetSettings(ctx, 7)
	if err != nil {
		t.Fatalf("GetSettings second call returned error: %v", err)
	}
	if again.ID != settings.ID {
		t.Fatalf("expected same settings row")
	}
}

func TestEvaluateCampaignDispatchesWebhook(t *testing.T) {
	var calls atomic.Int64
	var lastText atomic.Value
	server := slackStub(t, &calls, &lastText)
	defer server.Close()

	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRule(ctx, 1, CreateRuleRequest{
		Name:            "Budget watch",
		Type:            TypeBudgetThreshold,
		Condition:       ConditionGreaterThan,
		ThresholdValue:  "80",
		SlackWebhookURL: server.URL,
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	c := &campaign.Campaign{ID: 11, UserID: 1, Name: "Summer Sale", Budget: 1000}
	if err := svc.EvaluateCampaign(ctx, c, &campaign.Insights{Spend: 900}); err != nil {
		t.Fatalf("EvaluateCampaign returned error: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("expected 1 webhook delivery, got %d", calls.Load())
	}
	text, _ := lastText.Load().(string)
	if text == "" {
		t.Fatalf("expected formatted message in webhook payload")
	}

	notifications, err := svc.ListNotifications(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListNotifications returned error: %v", err)
	}
	// one slack delivery plus the dashboard record
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notification records, got %d", len(notifications))
	}
	for _, n := range notifications {
		if n.Status != NotificationSent {
			t.Fatalf("expected SENT, got %s on channel %s", n.Status, n.Channel)
		}
	}
}

func TestEvaluateCampaignSkipsNonFiringRules(t *testing.T) {
	var calls atomic.Int64
	server := slackStub(t, &calls, nil)
	defer server.Close()

	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRule(ctx, 1, CreateRuleRequest{
		Name:            "Budget watch",
		Type:            TypeBudgetThreshold,
		Condition:       ConditionGreaterThan,
		ThresholdValue:  "80",
		SlackWebhookURL: server.URL,
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	c := &campaign.Campaign{ID: 11, UserID: 1, Name: "Summer Sale", Budget: 1000}
	if err := svc.EvaluateCampaign(ctx, c, &campaign.Insights{Spend: 100}); err != nil {
		t.Fatalf("EvaluateCampaign returned error: %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no delivery for 10%% usage, got %d", calls.Load())
	}
}

func TestQuietHoursSuppressDelivery(t *testing.T) {
	var calls atomic.Int64
	server := slackStub(t, &calls, nil)
	defer server.Close()

	svc := setupTestService(t)
	ctx := context.Background()

	// window wraps past midnight; frozen clock sits inside it
	svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC)
	}

	if _, err := svc.UpdateSettings(ctx, 1, UpdateSettingsRequest{
		QuietHoursStart: ptr("22:00"),
		QuietHoursEnd:   ptr("06:00"),
	}); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	if _, err := svc.CreateRule(ctx, 1, CreateRuleRequest{
		Name:            "Night watch",
		Type:            TypeCampaignStatus,
		Condition:       ConditionEquals,
		ThresholdValue:  "PAUSED",
		SlackWebhookURL: server.URL,
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	c := &campaign.Campaign{ID: 1, UserID: 1, Name: "X", Status: campaign.StatusPaused}
	if err := svc.EvaluateCampaign(ctx, c, nil); err != nil {
		t.Fatalf("EvaluateCampaign returned error: %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected quiet hours to suppress delivery, got %d calls", calls.Load())
	}
}

func TestHourlyCapSuppressesDelivery(t *testing.T) {
	var calls atomic.Int64
	server := slackStub(t, &calls, nil)
	defer server.Close()

	svc := setupTestService(t)
	ctx := context.Background()

	one := 1
	if _, err := svc.UpdateSettings(ctx, 1, UpdateSettingsRequest{MaxPerHour: &one}); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	if _, err := svc.CreateRule(ctx, 1, CreateRuleRequest{
		Name:            "Status watch",
		Type:            TypeCampaignStatus,
		Condition:       ConditionEquals,
		ThresholdValue:  "PAUSED",
		SlackWebhookURL: server.URL,
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	c := &campaign.Campaign{ID: 1, UserID: 1, Name: "X", Status: campaign.StatusPaused}
	if err := svc.EvaluateCampaign(ctx, c, nil); err != nil {
		t.Fatalf("EvaluateCampaign returned error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected first delivery, got %d", calls.Load())
	}

	// cap of one is now used up
	if err := svc.EvaluateCampaign(ctx, c, nil); err != nil {
		t.Fatalf("EvaluateCampaign returned error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected cap to block second delivery, got %d", calls.Load())
	}
}

func TestFrequencyThrottlesRepeatedTriggers(t *testing.T) {
	var calls atomic.Int64
	server := slackStub(t, &calls, nil)
	defer server.Close()

	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRule(ctx, 1, CreateRuleRequest{
		Name:            "Hourly watch",
		Type:            TypeCampaignStatus,
		Condition:       ConditionEquals,
		ThresholdValue:  "PAUSED",
		Frequency:       FrequencyHourly,
		SlackWebhookURL: server.URL,
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	c := &campaign.Campaign{ID: 1, UserID: 1, Name: "X", Status: campaign.StatusPaused}
	if err := svc.EvaluateCampaign(ctx, c, nil); err != nil {
		t.Fatalf("EvaluateCampaign returned error: %v", err)
	}
	if err := svc.EvaluateCampaign(ctx, c, nil); err != nil {
		t.Fatalf("EvaluateCampaign returned error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected hourly frequency to block the second trigger, got %d", calls.Load())
	}
}

func TestFailedWebhookRecordsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRule(ctx, 1, CreateRuleRequest{
		Name:            "Broken hook",
		Type:            TypeCampaignStatus,
		Condition:       ConditionEquals,
		ThresholdValue:  "PAUSED",
		SlackWebhookURL: server.URL,
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	c := &campaign.Campaign{ID: 1, UserID: 1, Name: "X", Status: campaign.StatusPaused}
	if err := svc.EvaluateCampaign(ctx, c, nil); err != nil {
		t.Fatalf("EvaluateCampaign returned error: %v", err)
	}

	notifications, err := svc.ListNotifications(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListNotifications returned error: %v", err)
	}

	var sawFailed bool
	for _, n := range notifications {
		if n.Channel == ChannelSlack && n.Status == NotificationFailed && n.ErrorMessage != "" {
			sawFailed = true
		}
	}
	if !sawFailed {
		t.Fatalf("expected failed slack notification record, got %+v", notifications)
	}
}

func TestBatchCompletedNotifiesSubscribers(t *testing.T) {
	var calls atomic.Int64
	var lastText atomic.Value
	server := slackStub(t, &calls, &lastText)
	defer server.Close()

	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRule(ctx, 1, CreateRuleRequest{
		Name:            "Upload done",
		Type:            TypeBulkUploadComplete,
		Condition:       ConditionEquals,
		SlackWebhookURL: server.URL,
	}); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	svc.BatchCompleted(ctx, 1, 42, 10, 2)
	if calls.Load() != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls.Load())
	}
}

func ptr[T any](v T) *T { return &v }
