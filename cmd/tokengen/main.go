// Package main mints caller bearer tokens for local runs against the ledger
// API. The signing secret must match CALLER_TOKEN_SECRET on the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "veriledger/internal/jwt_token"
	id "veriledger/pkg/domain"
)

const (
	// Dev secret, 32 bytes so it passes server config validation.
	devSecret          = "dev-caller-secret-change-me-0000"
	defaultTokenIssuer = "veriledger"
	defaultTokenTTL    = time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	Caller    string            `json:"caller"`
	TenantID  string            `json:"tenant_id,omitempty"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	caller := flag.String("caller", "", "Caller identity (required)")
	tenant := flag.String("tenant", "", "Tenant ID (optional)")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	issuer := flag.String("issuer", envOr("CALLER_TOKEN_ISSUER", defaultTokenIssuer), "Token issuer")
	secret := flag.String("secret", envOr("CALLER_TOKEN_SECRET", devSecret), "HS256 signing secret")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if err := run(*caller, *tenant, *issuer, *secret, *ttl, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func run(rawCaller, rawTenant, issuer, secret string, ttl time.Duration, asJSON bool) error {
	caller, err := id.ParseIdentity(rawCaller)
	if err != nil {
		return fmt.Errorf("-caller: %w", err)
	}
	var tenantID id.TenantID
	if rawTenant != "" {
		if tenantID, err = id.ParseTenantID(rawTenant); err != nil {
			return fmt.Errorf("-tenant: %w", err)
		}
	}

	token, err := jwttoken.NewService(secret, issuer, ttl).Generate(context.Background(), caller, tenantID)
	if err != nil {
		return err
	}

	if !asJSON {
		fmt.Println(token)
		return nil
	}
	out := tokenOutput{
		Token:     token,
		Type:      "Bearer",
		Caller:    caller.String(),
		TenantID:  tenantID.String(),
		ExpiresIn: ttl.String(),
		Usage: map[string]string{
			"curl": fmt.Sprintf("curl -H 'Authorization: Bearer %s' http://localhost:8080/v1/tenants", token),
		},
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
