package billing

import "errors"

var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrAlreadySubscribed    = errors.New("already subscribed to this plan")
	ErrInvalidBillingPeriod = errors.New("invalid billing period")
	ErrNoSubscription       = errors.New("no active subscription")
	ErrSessionNotFound      = errors.New("checkout session not found")
)
