package auth

import "errors"

var (
	ErrEmailAlreadyExists  = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidTwoFactor    = errors.New("invalid two-factor code")
	ErrTwoFactorNotPending = errors.New("no pending two-factor login")
	ErrTwoFactorEnabled    = errors.New("two-factor auth is already enabled")
	ErrTwoFactorDisabled   = errors.New("two-factor auth is not enabled")
)
