package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes a full session token from the short-lived
// token issued between the password step and the 2FA verification step.
type TokenKind string

const (
	KindAccess    TokenKind = "access"
	KindTwoFactor TokenKind = "2fa_pending"
	twoFactorTTL            = 5 * time.Minute
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	UserID int64     `json:"user_id"`
	Email  string    `json:"email"`
	Kind   TokenKind `json:"kind"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateToken issues a full access token for an authenticated user.
func (s *Service) GenerateToken(userID int64, email string) (string, error) {
	return s.generate(userID, email, KindAccess, s.ttl)
}

// GenerateTwoFactorToken issues the pending token returned after a correct
// password when the account has 2FA enabled. It is only accepted by the
// 2FA verification endpoint.
func (s *Service) GenerateTwoFactorToken(userID int64, email string) (string, error) {
	return s.generate(userID, email, KindTwoFactor, twoFactorTTL)
}

func (s *Service) generate(userID int64, email string, kind TokenKind, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Kind:   kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}
