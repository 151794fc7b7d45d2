package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures the process level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration
	Auth            Auth
	Ledger          Ledger
	Database        DatabaseConfig
	Redis           RedisConfig
	Kafka           KafkaConfig
}

// Auth configures how the HTTP edge resolves the caller identity.
// Without a secret the X-Caller-Identity header is trusted unless
// CALLER_TRUST_HEADER says otherwise (development only).
type Auth struct {
	TokenSecret    string
	TokenIssuer    string
	TrustHeader    bool
	AdminToken     string
	TrustedProxies []string
}

// Ledger holds the identities the components are wired with.
type Ledger struct {
	Owner              string
	Signers            []string
	Threshold          int
	Issuer             string
	CredentialType     string
	CredentialValidity time.Duration
	TxTimeout          time.Duration
}

// DatabaseConfig configures the optional PostgreSQL backend.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional Redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit stream.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// FromEnv builds the Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:            getEnv("VERILEDGER_ADDR", ":8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Auth: Auth{
			TokenSecret:    os.Getenv("CALLER_TOKEN_SECRET"),
			TokenIssuer:    getEnv("CALLER_TOKEN_ISSUER", "veriledger"),
			AdminToken:     os.Getenv("ADMIN_API_TOKEN"),
			TrustedProxies: getList("TRUSTED_PROXIES"),
		},
		Ledger: Ledger{
			Owner:              os.Getenv("LEDGER_OWNER"),
			Signers:            getList("LEDGER_SIGNERS"),
			Threshold:          getInt("LEDGER_THRESHOLD", 0),
			Issuer:             os.Getenv("LEDGER_ISSUER"),
			CredentialType:     getEnv("ONBOARDING_CREDENTIAL_TYPE", "kyc-identity"),
			CredentialValidity: getDuration("ONBOARDING_CREDENTIAL_VALIDITY", 365*24*time.Hour),
			TxTimeout:          getDuration("LEDGER_TX_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "kyc.audit"),
		},
	}
	cfg.Auth.TrustHeader = getBool("CALLER_TRUST_HEADER", cfg.Auth.TokenSecret == "")
	if cfg.Ledger.Issuer == "" {
		cfg.Ledger.Issuer = cfg.Ledger.Owner
	}
	if cfg.Ledger.Threshold == 0 && len(cfg.Ledger.Signers) > 0 {
		cfg.Ledger.Threshold = len(cfg.Ledger.Signers)/2 + 1
	}
	return cfg, cfg.Validate()
}

// Validate checks the cross-field rules FromEnv cannot express with defaults.
func (s Server) Validate() error {
	if strings.TrimSpace(s.Ledger.Owner) == "" {
		return fmt.Errorf("LEDGER_OWNER is required")
	}
	if len(s.Ledger.Signers) > 0 && (s.Ledger.Threshold < 1 || s.Ledger.Threshold > len(s.Ledger.Signers)) {
		return fmt.Errorf("LEDGER_THRESHOLD must be between 1 and %d", len(s.Ledger.Signers))
	}
	if s.Auth.TokenSecret != "" && len(s.Auth.TokenSecret) < 32 {
		return fmt.Errorf("CALLER_TOKEN_SECRET must be at least 32 bytes")
	}
	if s.Ledger.CredentialValidity < 0 {
		return fmt.Errorf("ONBOARDING_CREDENTIAL_VALIDITY must not be negative")
	}
	return nil
}

// MultisigEnabled reports whether a signer set is configured.
func (s Server) MultisigEnabled() bool {
	return len(s.Ledger.Signers) > 0
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
