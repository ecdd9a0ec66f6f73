package billing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"

	"adpilot/internal/domain/alert"
	"adpilot/internal/domain/bulkupload"
	"adpilot/internal/domain/campaign"
)

// CampaignCounter is implemented by the campaign repository.
type CampaignCounter interface {
	CountActiveByUserID(ctx context.Context, userID int64) (int, error)
}

// RuleCounter is implemented by the alert repository.
type RuleCounter interface {
	CountRulesByUserID(ctx context.Context, userID int64) (int, error)
}

// checkoutStarter creates a hosted payment page and returns its URL.
// Swapped out in tests so no Stripe call leaves the process.
type checkoutStarter func(userID int64, plan *Plan, period BillingPeriod, sessionID string) (string, error)

// Service handles plan catalog, subscriptions and usage limits.
type Service struct {
	repo      Repository
	campaigns CampaignCounter
	rules     RuleCounter
	log       *zap.Logger

	stripeKey     string
	startCheckout checkoutStarter
}

func NewService(repo Repository, campaigns CampaignCounter, rules RuleCounter, stripeKey string, log *zap.Logger) *Service {
	s := &Service{
		repo:      repo,
		campaigns: campaigns,
		rules:     rules,
		stripeKey: stripeKey,
		log:       log,
	}
	s.startCheckout = s.stripeCheckout
	return s
}

// defaultFreePlan is the fallback when the catalog is unreadable.
func defaultFreePlan() *Plan {
	return &Plan{
		ID:            PlanFree,
		Name:          "Free",
		MaxCampaigns:  5,
		MaxBulkRows:   50,
		MaxAlertRules: 3,
		IsActive:      true,
	}
}

// GetPlans returns all active plans (public, no auth required)
func (s *Service) GetPlans(ctx context.Context) ([]*Plan, error) {
	return s.repo.ListPlans(ctx)
}

// GetCurrentSubscription returns the user's active subscription and plan.
// If no subscription exists, returns a virtual free-tier subscription.
func (s *Service) GetCurrentSubscription(ctx context.Context, userID int64) (*Subscription, *Plan, error) {
	sub, err := s.repo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if sub == nil || sub.IsExpired() {
		freePlan, _ := s.repo.GetPlanByID(ctx, PlanFree)
		if freePlan == nil {
			freePlan = defaultFreePlan()
		}
		return &Subscription{
			UserID:        userID,
			PlanID:        PlanFree,
			Status:        StatusActive,
			BillingPeriod: BillingMonthly,
			StartedAt:     time.Now(),
		}, freePlan, nil
	}

	plan, err := s.repo.GetPlanByID(ctx, sub.PlanID)
	if err != nil || plan == nil {
		plan = defaultFreePlan()
	}
	return sub, plan, nil
}

// Subscribe moves the user onto a paid plan. Free plans and deployments
// without a Stripe key activate immediately; otherwise the subscription is
// created pending and the caller is redirected to checkout.
func (s *Service) Subscribe(ctx context.Context, userID int64, req *SubscribeRequest) (*SubscribeResult, error) {
	planID := PlanID(req.PlanID)
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil || plan == nil {
		return nil, ErrPlanNotFound
	}

	existing, err := s.repo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.PlanID == planID && !existing.IsExpired() {
		return nil, ErrAlreadySubscribed
	}

	period := BillingPeriod(req.BillingPeriod)
	var expiresAt time.Time
	switch period {
	case BillingMonthly:
		expiresAt = time.Now().AddDate(0, 1, 0)
	case BillingYearly:
		expiresAt = time.Now().AddDate(1, 0, 0)
	default:
		return nil, ErrInvalidBillingPeriod
	}

	now := time.Now()
	sub := &Subscription{
		ID:            uuid.New().String(),
		UserID:        userID,
		PlanID:        planID,
		BillingPeriod: period,
		StartedAt:     now,
		ExpiresAt:     sql.NullTime{Time: expiresAt, Valid: true},
		AutoRenew:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	price := plan.PriceMonthly
	if period == BillingYearly && plan.PriceYearly != nil {
		price = *plan.PriceYearly
	}

	if price == 0 || s.stripeKey == "" {
		sub.Status = StatusActive
		if existing != nil {
			_ = s.repo.Cancel(ctx, existing.ID, fmt.Sprintf("Upgraded to %s", planID))
		}
		if err := s.repo.Create(ctx, sub); err != nil {
			return nil, err
		}
		s.log.Info("subscription activated",
			zap.Int64("user_id", userID),
			zap.String("plan", string(planID)))
		return &SubscribeResult{Subscription: sub}, nil
	}

	sessionID := uuid.New().String()
	sub.Status = StatusPending
	sub.StripeSessionID = sql.NullString{String: sessionID, Valid: true}

	checkoutURL, err := s.startCheckout(userID, plan, period, sessionID)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.Int64("user_id", userID),
		zap.String("plan", string(planID)),
		zap.String("session_id", sessionID))
	return &SubscribeResult{Subscription: sub, CheckoutURL: checkoutURL}, nil
}

// ConfirmCheckout activates the pending subscription tied to a completed
// checkout session.
func (s *Service) ConfirmCheckout(ctx context.Context, userID int64, sessionID string) (*Subscription, error) {
	sub, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if sub.Status == StatusActive {
		return sub, nil
	}

	if existing, err := s.repo.GetActiveByUserID(ctx, userID); err == nil && existing != nil {
		_ = s.repo.Cancel(ctx, existing.ID, fmt.Sprintf("Upgraded to %s", sub.PlanID))
	}

	sub.Status = StatusActive
	sub.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("subscription confirmed",
		zap.Int64("user_id", userID),
		zap.String("plan", string(sub.PlanID)))
	return sub, nil
}

// Cancel cancels the user's active paid subscription.
func (s *Service) Cancel(ctx context.Context, userID int64, reason string) error {
	sub, err := s.repo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNoSubscription
	}
	return s.repo.Cancel(ctx, sub.ID, reason)
}

// GetPlan returns the user's current plan (falls back to free).
func (s *Service) GetPlan(ctx context.Context, userID int64) (*Plan, error) {
	_, plan, err := s.GetCurrentSubscription(ctx, userID)
	return plan, err
}

// GetUsage returns current usage against the plan limits.
func (s *Service) GetUsage(ctx context.Context, userID int64) (*UsageResponse, error) {
	_, plan, err := s.GetCurrentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	campaignCount := 0
	if s.campaigns != nil {
		campaignCount, _ = s.campaigns.CountActiveByUserID(ctx, userID)
	}
	ruleCount := 0
	if s.rules != nil {
		ruleCount, _ = s.rules.CountRulesByUserID(ctx, userID)
	}

	return &UsageResponse{
		PlanID:   string(plan.ID),
		PlanName: plan.Name,
		Limits: PlanLimits{
			MaxCampaigns:  plan.MaxCampaigns,
			MaxBulkRows:   plan.MaxBulkRows,
			MaxAlertRules: plan.MaxAlertRules,
		},
		Features: PlanFeatures{
			AdvancedInsights: plan.AdvancedInsights,
			PrioritySupport:  plan.PrioritySupport,
		},
		Usage: CurrentUsage{
			Campaigns:  campaignCount,
			AlertRules: ruleCount,
		},
	}, nil
}

// ExpireOldSubscriptions is called by a background job.
func (s *Service) ExpireOldSubscriptions(ctx context.Context) (int, error) {
	return s.repo.ExpireOldSubscriptions(ctx)
}

// ---- Limit checkers (wired into the other domain services) ----

// CanCreateCampaign reports whether the user is under the campaign cap.
func (s *Service) CanCreateCampaign(ctx context.Context, userID int64) error {
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return err
	}
	if plan.MaxCampaigns == -1 {
		return nil
	}
	count, err := s.campaigns.CountActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if count >= plan.MaxCampaigns {
		return campaign.ErrPlanLimit
	}
	return nil
}

// CanUploadRows reports whether a CSV of the given size fits the plan.
func (s *Service) CanUploadRows(ctx context.Context, userID int64, rows int) error {
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return err
	}
	if plan.MaxBulkRows == -1 {
		return nil
	}
	if rows > plan.MaxBulkRows {
		return bulkupload.ErrRowLimit
	}
	return nil
}

// CanCreateAlertRule reports whether the user is under the rule cap.
func (s *Service) CanCreateAlertRule(ctx context.Context, userID int64) error {
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return err
	}
	if plan.MaxAlertRules == -1 {
		return nil
	}
	count, err := s.rules.CountRulesByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if count >= plan.MaxAlertRules {
		return alert.ErrRuleCapHit
	}
	return nil
}

var (
	_ campaign.PlanGuard   = (*Service)(nil)
	_ bulkupload.PlanGuard = (*Service)(nil)
	_ alert.PlanGuard      = (*Service)(nil)
)

// buildCheckoutParams assembles the Stripe checkout session request. The
// session id we generated locally rides along in the metadata so the
// confirm endpoint can find the pending subscription.
func buildCheckoutParams(userID int64, plan *Plan, period BillingPeriod, sessionID string) *stripe.CheckoutSessionParams {
	price := plan.PriceMonthly
	interval := string(stripe.PriceRecurringIntervalMonth)
	if period == BillingYearly && plan.PriceYearly != nil {
		price = *plan.PriceYearly
		interval = string(stripe.PriceRecurringIntervalYear)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyJPY)),
				UnitAmount: stripe.Int64(int64(price)),
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String(interval),
				},
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(plan.Name),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String("https://app.adpilot.example/billing/success?session_id=" + sessionID),
		CancelURL:  stripe.String("https://app.adpilot.example/billing/cancel"),
	}
	params.AddMetadata("user_id", fmt.Sprintf("%d", userID))
	params.AddMetadata("plan", string(plan.ID))
	params.AddMetadata("session_id", sessionID)
	return params
}

func (s *Service) stripeCheckout(userID int64, plan *Plan, period BillingPeriod, sessionID string) (string, error) {
	stripe.Key = s.stripeKey

	sess, err := session.New(buildCheckoutParams(userID, plan, period, sessionID))
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}
