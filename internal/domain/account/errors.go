package account

import "errors"

var (
	ErrAccountNotFound  = errors.New("ad account not found")
	ErrNotOwner         = errors.New("you do not own this ad account")
	ErrDuplicateAccount = errors.New("this ad account is already linked")
)
