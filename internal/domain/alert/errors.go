package alert

import "errors"

var (
	ErrRuleNotFound = errors.New("alert rule not found")
	ErrNotOwner     = errors.New("you do not own this alert rule")
	ErrInvalidType  = errors.New("unknown alert type")
	ErrRuleCapHit   = errors.New("alert rule limit reached for the current plan")
)
