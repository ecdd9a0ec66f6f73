package auth

import "time"

// User is a platform account. Ad accounts, campaigns, batches, alert
// rules and subscriptions all hang off a user.
type User struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"column:email;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"column:password_hash" json:"-"`
	Name         string `gorm:"column:name" json:"name"`
	Company      string `gorm:"column:company" json:"company,omitempty"`
	Language     string `gorm:"column:language;default:ja" json:"language"`
	Timezone     string `gorm:"column:timezone;default:Asia/Tokyo" json:"timezone"`
	IsDemo       bool   `gorm:"column:is_demo" json:"is_demo"`

	TwoFactorEnabled bool   `gorm:"column:two_factor_enabled" json:"two_factor_enabled"`
	TwoFactorSecret  string `gorm:"column:two_factor_secret" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// BackupCode is a single-use recovery code for accounts with 2FA enabled.
// Only the hash is stored; the plaintext is shown once at generation.
type BackupCode struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"column:user_id;index" json:"user_id"`
	CodeHash  string     `gorm:"column:code_hash" json:"-"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (BackupCode) TableName() string { return "backup_codes" }
