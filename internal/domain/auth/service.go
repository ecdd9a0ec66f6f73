package auth

import (
	"context"
	"strings"

	jwtsvc "adpilot/internal/pkg/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type jwtService interface {
	GenerateToken(userID int64, email string) (string, error)
	GenerateTwoFactorToken(userID int64, email string) (string, error)
	ValidateToken(tokenStr string) (*jwtsvc.Claims, error)
}

// Service contains all business logic for registration, login and 2FA.
type Service struct {
	users Repository
	jwt   jwtService
	log   *zap.Logger
}

func NewService(users Repository, jwt jwtService, log *zap.Logger) *Service {
	return &Service{users: users, jwt: jwt, log: log}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Company:      req.Company,
		Language:     "ja",
		Timezone:     "Asia/Tokyo",
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	user.PasswordHash = ""
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""

	if user.TwoFactorEnabled {
		pending, err := s.jwt.GenerateTwoFactorToken(user.ID, user.Email)
		if err != nil {
			return nil, err
		}
		return &LoginResult{User: user, RequiresTwoFactor: true, PendingToken: pending}, nil
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

// VerifyTwoFactor exchanges the pending token plus a TOTP or backup code
// for a full access token.
func (s *Service) VerifyTwoFactor(ctx context.Context, req TwoFactorVerifyRequest) (*LoginResult, error) {
	claims, err := s.jwt.ValidateToken(req.PendingToken)
	if err != nil || claims.Kind != jwtsvc.KindTwoFactor {
		return nil, ErrTwoFactorNotPending
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.TwoFactorEnabled {
		return nil, ErrTwoFactorDisabled
	}

	if !s.checkTwoFactorCode(ctx, user, req.Code) {
		return nil, ErrInvalidTwoFactor
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.log.Info("two-factor login completed", zap.Int64("user_id", user.ID))
	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Company != "" {
		user.Company = req.Company
	}
	if req.Language != "" {
		user.Language = req.Language
	}
	if req.Timezone != "" {
		user.Timezone = req.Timezone
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}
