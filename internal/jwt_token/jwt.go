// Package jwttoken mints and validates the HS256 bearer tokens that carry a
// caller identity to the HTTP edge.
package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/requestcontext"
)

// CallerClaims are the claims of a caller token. The subject is the caller
// identity; TenantID optionally scopes the token to a tenant.
type CallerClaims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Caller returns the identity named by the token subject, lower-cased like
// every parsed identity.
func (c *CallerClaims) Caller() id.Identity {
	return id.Identity(strings.ToLower(c.Subject))
}

// Service signs and validates caller tokens with a shared secret.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

// DefaultTokenTTL is used when NewService receives a non-positive TTL.
const DefaultTokenTTL = 15 * time.Minute

func NewService(signingKey, issuer string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{signingKey: []byte(signingKey), issuer: issuer, tokenTTL: tokenTTL}
}

// Generate mints a token for caller. The token id is random so two tokens
// minted in the same second still differ.
func (s *Service) Generate(ctx context.Context, caller id.Identity, tenantID id.TenantID) (string, error) {
	if caller.IsZero() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "caller identity is required")
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token id")
	}
	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CallerClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        hex.EncodeToString(b),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate parses a token, rejecting any algorithm but HS256, a foreign
// issuer and an empty subject.
func (s *Service) Validate(tokenString string) (*CallerClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &CallerClaims{}, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*CallerClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}
	if _, err := id.ParseIdentity(claims.Subject); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token subject is not an identity")
	}
	return claims, nil
}
