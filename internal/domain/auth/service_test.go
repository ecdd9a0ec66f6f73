package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	jwtsvc "adpilot/internal/pkg/jwt"

	"github.com/pquerna/otp/totp"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"go.uber.org/zap"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{
		DriverName: "sqlite",
		DSN:        dsn,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &BackupCode{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewService(NewRepository(db), jwtsvc.New("test-secret", time.Hour), zap.NewNop())
}

func register(t *testing.T, svc *Service, email string) *User {
	t.Helper()
	user, token, err := svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "password123",
		Name:     "Test User",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token on registration")
	}
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user := register(t, svc, "Taro@Example.com")
	if user.Email != "taro@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Language != "ja" || user.Timezone != "Asia/Tokyo" {
		t.Fatalf("unexpected defaults: %s %s", user.Language, user.Timezone)
	}

	result, err := svc.Login(ctx, LoginRequest{Email: "taro@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken == "" || result.RequiresTwoFactor {
		t.Fatalf("expected plain login, got %+v", result)
	}
	if result.User.PasswordHash != "" {
		t.Fatal("password hash leaked in login result")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := setupTestService(t)
	register(t, svc, "dup@example.com")

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "DUP@example.com",
		Password: "password123",
		Name:     "Second",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	register(t, svc, "user@example.com")

	if _, err := svc.Login(ctx, LoginRequest{Email: "user@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	user := register(t, svc, "user@example.com")

	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: "New Name", Language: "en"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "New Name" || updated.Language != "en" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Timezone != "Asia/Tokyo" {
		t.Fatalf("unset field was clobbered: %q", updated.Timezone)
	}
}

func enableTwoFactor(t *testing.T, svc *Service, userID int64) (secret string, backupCodes []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := svc.SetupTwoFactor(ctx, userID)
	if err != nil {
		t.Fatalf("SetupTwoFactor: %v", err)
	}
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	backupCodes, err = svc.EnableTwoFactor(ctx, userID, code)
	if err != nil {
		t.Fatalf("EnableTwoFactor: %v", err)
	}
	return setup.Secret, backupCodes
}

func TestTwoFactorLoginFlow(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	user := register(t, svc, "user@example.com")
	secret, _ := enableTwoFactor(t, svc, user.ID)

	result, err := svc.Login(ctx, LoginRequest{Email: "user@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !result.RequiresTwoFactor || result.PendingToken == "" {
		t.Fatalf("expected pending 2FA login, got %+v", result)
	}
	if result.AccessToken != "" {
		t.Fatal("access token issued before 2FA verification")
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	verified, err := svc.VerifyTwoFactor(ctx, TwoFactorVerifyRequest{
		PendingToken: result.PendingToken,
		Code:         code,
	})
	if err != nil {
		t.Fatalf("VerifyTwoFactor: %v", err)
	}
	if verified.AccessToken == "" {
		t.Fatal("expected access token after 2FA verification")
	}
}

func TestVerifyTwoFactorRejectsAccessToken(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	user := register(t, svc, "user@example.com")
	enableTwoFactor(t, svc, user.ID)

	// A full access token must not pass as a pending token.
	accessToken, err := svc.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	_, err = svc.VerifyTwoFactor(ctx, TwoFactorVerifyRequest{PendingToken: accessToken, Code: "000000"})
	if !errors.Is(err, ErrTwoFactorNotPending) {
		t.Fatalf("expected ErrTwoFactorNotPending, got %v", err)
	}
}

func TestBackupCodeConsumedOnce(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	user := register(t, svc, "user@example.com")
	_, codes := enableTwoFactor(t, svc, user.ID)
	if len(codes) != backupCodeCount {
		t.Fatalf("expected %d backup codes, got %d", backupCodeCount, len(codes))
	}

	login := func() string {
		result, err := svc.Login(ctx, LoginRequest{Email: "user@example.com", Password: "password123"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		return result.PendingToken
	}

	if _, err := svc.VerifyTwoFactor(ctx, TwoFactorVerifyRequest{PendingToken: login(), Code: codes[0]}); err != nil {
		t.Fatalf("first backup code use: %v", err)
	}

	_, err := svc.VerifyTwoFactor(ctx, TwoFactorVerifyRequest{PendingToken: login(), Code: codes[0]})
	if !errors.Is(err, ErrInvalidTwoFactor) {
		t.Fatalf("expected consumed backup code to be rejected, got %v", err)
	}

	if _, err := svc.VerifyTwoFactor(ctx, TwoFactorVerifyRequest{PendingToken: login(), Code: codes[1]}); err != nil {
		t.Fatalf("second backup code use: %v", err)
	}
}

func TestSetupTwoFactorRejectsWhenEnabled(t *testing.T) {
	svc := setupTestService(t)
	user := register(t, svc, "user@example.com")
	enableTwoFactor(t, svc, user.ID)

	if _, err := svc.SetupTwoFactor(context.Background(), user.ID); !errors.Is(err, ErrTwoFactorEnabled) {
		t.Fatalf("expected ErrTwoFactorEnabled, got %v", err)
	}
}

func TestDisableTwoFactorRequiresPasswordAndCode(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	user := register(t, svc, "user@example.com")
	secret, _ := enableTwoFactor(t, svc, user.ID)

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	if err := svc.DisableTwoFactor(ctx, user.ID, TwoFactorDisableRequest{Password: "wrong", Code: code}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.DisableTwoFactor(ctx, user.ID, TwoFactorDisableRequest{Password: "password123", Code: "000000"}); !errors.Is(err, ErrInvalidTwoFactor) {
		t.Fatalf("expected ErrInvalidTwoFactor, got %v", err)
	}
	if err := svc.DisableTwoFactor(ctx, user.ID, TwoFactorDisableRequest{Password: "password123", Code: code}); err != nil {
		t.Fatalf("DisableTwoFactor: %v", err)
	}

	updated, err := svc.GetCurrentUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser: %v", err)
	}
	if updated.TwoFactorEnabled {
		t.Fatal("two-factor flag still set after disable")
	}
}
