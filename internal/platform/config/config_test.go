package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("owner is required", func(t *testing.T) {
		t.Setenv("LEDGER_OWNER", "")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("LEDGER_OWNER", "0xowner")
		t.Setenv("LEDGER_SIGNERS", "")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "0xowner", cfg.Ledger.Issuer, "issuer falls back to owner")
		assert.Equal(t, "kyc-identity", cfg.Ledger.CredentialType)
		assert.Equal(t, 5*time.Second, cfg.Ledger.TxTimeout)
		assert.Equal(t, "kyc.audit", cfg.Kafka.Topic)
		assert.False(t, cfg.MultisigEnabled())
	})

	t.Run("signers default to majority threshold", func(t *testing.T) {
		t.Setenv("LEDGER_OWNER", "0xowner")
		t.Setenv("LEDGER_SIGNERS", "0xa, 0xb ,0xc")
		t.Setenv("LEDGER_THRESHOLD", "")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"0xa", "0xb", "0xc"}, cfg.Ledger.Signers)
		assert.Equal(t, 2, cfg.Ledger.Threshold)
		assert.True(t, cfg.MultisigEnabled())
	})

	t.Run("threshold above signer count is rejected", func(t *testing.T) {
		t.Setenv("LEDGER_OWNER", "0xowner")
		t.Setenv("LEDGER_SIGNERS", "0xa,0xb")
		t.Setenv("LEDGER_THRESHOLD", "3")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("header trust follows the token secret", func(t *testing.T) {
		t.Setenv("LEDGER_OWNER", "0xowner")
		t.Setenv("LEDGER_SIGNERS", "")
		t.Setenv("CALLER_TOKEN_SECRET", "")
		t.Setenv("CALLER_TRUST_HEADER", "")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.Auth.TrustHeader)
		assert.Equal(t, "veriledger", cfg.Auth.TokenIssuer)

		t.Setenv("CALLER_TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
		cfg, err = FromEnv()
		require.NoError(t, err)
		assert.False(t, cfg.Auth.TrustHeader)

		t.Setenv("CALLER_TRUST_HEADER", "true")
		cfg, err = FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.Auth.TrustHeader)
	})

	t.Run("short token secret is rejected", func(t *testing.T) {
		t.Setenv("LEDGER_OWNER", "0xowner")
		t.Setenv("LEDGER_SIGNERS", "")
		t.Setenv("CALLER_TOKEN_SECRET", "short")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("admin token and proxies", func(t *testing.T) {
		t.Setenv("LEDGER_OWNER", "0xowner")
		t.Setenv("LEDGER_SIGNERS", "")
		t.Setenv("CALLER_TOKEN_SECRET", "")
		t.Setenv("ADMIN_API_TOKEN", "s3cret")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.Auth.AdminToken)
		assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Auth.TrustedProxies)
	})
}
