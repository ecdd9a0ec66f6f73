package campaign

import "errors"

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrAdSetNotFound    = errors.New("ad set not found")
	ErrAdNotFound       = errors.New("ad not found")
	ErrNotOwner         = errors.New("you do not own this campaign")
	ErrUnknownKind      = errors.New("unknown entity kind")
	ErrAlreadyDeleted   = errors.New("campaign is already deleted")
	ErrPlanLimit        = errors.New("campaign limit reached for the current plan")
)
