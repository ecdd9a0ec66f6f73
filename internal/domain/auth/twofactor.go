package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const backupCodeCount = 8

// SetupTwoFactor generates a fresh TOTP secret for the user and returns
// the provisioning data. The secret is stored immediately but 2FA stays
// disabled until the first code is verified via EnableTwoFactor.
func (s *Service) SetupTwoFactor(ctx context.Context, userID int64) (*TwoFactorSetup, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, ErrTwoFactorEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "AdPilot",
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	user.TwoFactorSecret = key.Secret()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &TwoFactorSetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// EnableTwoFactor verifies the first TOTP code against the stored secret,
// flips the flag and returns the plaintext backup codes exactly once.
func (s *Service) EnableTwoFactor(ctx context.Context, userID int64, code string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, ErrTwoFactorEnabled
	}
	if user.TwoFactorSecret == "" || !totp.Validate(code, user.TwoFactorSecret) {
		return nil, ErrInvalidTwoFactor
	}

	plaintext, hashed, err := generateBackupCodes(userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.ReplaceBackupCodes(ctx, userID, hashed); err != nil {
		return nil, err
	}

	user.TwoFactorEnabled = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("two-factor auth enabled", zap.Int64("user_id", userID))
	return plaintext, nil
}

// DisableTwoFactor requires both the password and a valid code, then
// wipes the secret and all backup codes.
func (s *Service) DisableTwoFactor(ctx context.Context, userID int64, req TwoFactorDisableRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return ErrTwoFactorDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return ErrInvalidCredentials
	}
	if !s.checkTwoFactorCode(ctx, user, req.Code) {
		return ErrInvalidTwoFactor
	}

	if err := s.users.ReplaceBackupCodes(ctx, userID, nil); err != nil {
		return err
	}

	user.TwoFactorEnabled = false
	user.TwoFactorSecret = ""
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info("two-factor auth disabled", zap.Int64("user_id", userID))
	return nil
}

// checkTwoFactorCode accepts either a current TOTP code or an unused
// backup code. A matching backup code is consumed.
func (s *Service) checkTwoFactorCode(ctx context.Context, user *User, code string) bool {
	if totp.Validate(code, user.TwoFactorSecret) {
		return true
	}

	codes, err := s.users.ListUnusedBackupCodes(ctx, user.ID)
	if err != nil {
		return false
	}
	hash := hashBackupCode(code)
	for _, bc := range codes {
		if bc.CodeHash == hash {
			if err := s.users.MarkBackupCodeUsed(ctx, bc.ID); err != nil {
				s.log.Warn("failed to consume backup code", zap.Int64("user_id", user.ID), zap.Error(err))
				return false
			}
			return true
		}
	}
	return false
}

func generateBackupCodes(userID int64) ([]string, []*BackupCode, error) {
	plaintext := make([]string, 0, backupCodeCount)
	hashed := make([]*BackupCode, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return nil, nil, err
		}
		code := hex.EncodeToString(buf)
		plaintext = append(plaintext, code)
		hashed = append(hashed, &BackupCode{
			UserID:   userID,
			CodeHash: hashBackupCode(code),
		})
	}
	return plaintext, hashed, nil
}

func hashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
