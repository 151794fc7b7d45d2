package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/requestcontext"
)

var tokens = NewService("test-signing-key", "veriledger-test", time.Minute)

func TestGenerateAndValidate(t *testing.T) {
	token, err := tokens.Generate(context.Background(), "0xcaller", "acme")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "0xcaller", claims.Caller().String())
	assert.Equal(t, "acme", claims.TenantID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGenerateRequiresCaller(t *testing.T) {
	_, err := tokens.Generate(context.Background(), "", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestValidateRejects(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Validate("not-a-token")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		ctx := requestcontext.WithTime(context.Background(), time.Now().Add(-time.Hour))
		token, err := tokens.Generate(ctx, "0xcaller", "")
		require.NoError(t, err)
		_, err = tokens.Validate(token)
		require.ErrorContains(t, err, "token expired")
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewService("another-key", "veriledger-test", time.Minute)
		token, err := other.Generate(context.Background(), "0xcaller", "")
		require.NoError(t, err)
		_, err = tokens.Validate(token)
		require.ErrorContains(t, err, "invalid token")
	})

	t.Run("foreign issuer", func(t *testing.T) {
		other := NewService("test-signing-key", "someone-else", time.Minute)
		token, err := other.Generate(context.Background(), "0xcaller", "")
		require.NoError(t, err)
		_, err = tokens.Validate(token)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, CallerClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "0xcaller", Issuer: "veriledger-test"},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Validate(signed)
		assert.Error(t, err)
	})

	t.Run("empty subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, CallerClaims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "veriledger-test"},
		})
		signed, err := token.SignedString([]byte("test-signing-key"))
		require.NoError(t, err)
		_, err = tokens.Validate(signed)
		require.ErrorContains(t, err, "no subject")
	})
}
