// Package auth issues and verifies the signed account tokens that carry a caller's identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nomadx/internal/config"
	"nomadx/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity part of an account token. The subject is the account id.
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Account rebuilds the signed-in account from the claims.
func (c *Claims) Account() models.Account {
	return models.Account{
		ID:          c.Subject,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		PhoneNumber: c.Phone,
	}
}

type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewService(cfg config.APIAuthConfig) *Service {
	return &Service{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue signs an HS256 token for account.
func (s *Service) Issue(account models.Account) (string, error) {
	if account.ID == "" {
		return "", errors.New("account id is required")
	}

	now := s.now()
	claims := Claims{
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Phone:       account.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   account.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its claims. Every failure wraps ErrInvalidToken.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
