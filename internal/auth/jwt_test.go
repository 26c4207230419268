package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadx/internal/config"
	"nomadx/internal/models"
)

func newTestService() *Service {
	return NewService(config.APIAuthConfig{Secret: "0123456789abcdef", Issuer: "nomadx", TokenTTL: time.Hour})
}

func TestIssueAndValidate(t *testing.T) {
	s := newTestService()
	account := models.Account{ID: "cust-1", Email: "ana@example.com", DisplayName: "Ana", PhoneNumber: "+3801"}

	token, err := s.Issue(account)
	require.NoError(t, err)

	claims, err := s.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, account, claims.Account())
	assert.Equal(t, "nomadx", claims.Issuer)
}

func TestIssue_RequiresID(t *testing.T) {
	_, err := newTestService().Issue(models.Account{Email: "x@y.z"})
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	s := newTestService()
	token, err := s.Issue(models.Account{ID: "ag-1"})
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService(config.APIAuthConfig{Secret: "fedcba9876543210", Issuer: "nomadx", TokenTTL: time.Hour})
		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewService(config.APIAuthConfig{Secret: "0123456789abcdef", Issuer: "elsewhere", TokenTTL: time.Hour})
		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := newTestService()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "admin", Issuer: "nomadx"},
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Validate(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
