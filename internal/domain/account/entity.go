package account

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// CredentialKind tells whether an ad account's token can reach the real
// Graph API. It is decided once, when the row is loaded, so callers never
// re-inspect the token string.
type CredentialKind string

const (
	CredentialLive        CredentialKind = "live"
	CredentialPlaceholder CredentialKind = "placeholder"
)

// AdAccount links a user to a Meta ad account. Placeholder accounts keep
// the whole pipeline exercisable without live credentials.
type AdAccount struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"column:user_id;index" json:"user_id"`
	AccountID   string `gorm:"column:account_id;uniqueIndex" json:"account_id"`
	AccountName string `gorm:"column:account_name" json:"account_name"`
	AccessToken string `gorm:"column:access_token" json:"-"`
	IsActive    bool   `gorm:"column:is_active;default:true" json:"is_active"`

	CredentialKind CredentialKind `gorm:"-" json:"credential_kind"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (AdAccount) TableName() string { return "ad_accounts" }

func (a *AdAccount) AfterFind(tx *gorm.DB) error {
	a.CredentialKind = ClassifyCredential(a.AccessToken)
	return nil
}

func (a *AdAccount) AfterCreate(tx *gorm.DB) error {
	a.CredentialKind = ClassifyCredential(a.AccessToken)
	return nil
}

// ClassifyCredential is the single place that knows what a placeholder
// token looks like.
func ClassifyCredential(token string) CredentialKind {
	token = strings.TrimSpace(token)
	if token == "" || strings.HasPrefix(token, "demo_") {
		return CredentialPlaceholder
	}
	return CredentialLive
}
