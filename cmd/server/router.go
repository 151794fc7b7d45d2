package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "veriledger/internal/admin"
	compliancehandler "veriledger/internal/compliance/handler"
	credentialhandler "veriledger/internal/credential/handler"
	typehandler "veriledger/internal/credentialtype/handler"
	governancehandler "veriledger/internal/governance/handler"
	jwttoken "veriledger/internal/jwt_token"
	onboardinghandler "veriledger/internal/onboarding/handler"
	"veriledger/internal/platform/config"
	"veriledger/internal/platform/health"
	"veriledger/internal/platform/kafka"
	tenanthandler "veriledger/internal/tenant/handler"
	"veriledger/pkg/platform/middleware/admin"
	"veriledger/pkg/platform/middleware/auth"
	"veriledger/pkg/platform/middleware/metadata"
	"veriledger/pkg/platform/middleware/request"
	"veriledger/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
	tokenTTL       = time.Hour
)

func newRouter(cfg config.Server, a *app, in *infra, log *slog.Logger) (http.Handler, error) {
	meta, err := metadata.New(cfg.Auth.TrustedProxies)
	if err != nil {
		return nil, err
	}

	callers := auth.Config{TrustHeader: cfg.Auth.TrustHeader}
	if cfg.Auth.TokenSecret != "" {
		callers.Validator = jwttoken.NewService(cfg.Auth.TokenSecret, cfg.Auth.TokenIssuer, tokenTTL)
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(meta.Handler)
	r.Use(request.Logger(log))
	r.Use(request.Recovery(log))
	r.Use(request.Latency(a.metrics))

	checks := health.New(in.backend())
	if in.db != nil {
		checks.RegisterCheck("postgres", in.db.Health)
	}
	if in.redis != nil {
		checks.RegisterCheck("redis", in.redis.Health)
	}
	if cfg.Kafka.Brokers != "" {
		checks.RegisterCheck("kafka", kafka.NewHealthChecker(cfg.Kafka.Brokers).Check)
	}
	checks.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(request.Timeout(requestTimeout))
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(request.ContentTypeJSON)
		r.Use(auth.ResolveCaller(callers, log))

		tenanthandler.New(a.tenants, log).Register(r)
		typehandler.New(a.catalog, log).Register(r)
		credentialhandler.New(a.credentials, log).Register(r)
		compliancehandler.New(a.compliance, log).Register(r)
		governancehandler.New(a.grants, a.emergency, a.authority, a.upgrader, log).Register(r)

		onboarding := onboardinghandler.New(a.onboarding, log)
		onboarding.Register(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireToken(cfg.Auth.AdminToken, log))
			adminhandler.New(a.admin, log).Register(r)
			onboarding.RegisterAdmin(r)
		})
	})
	return r, nil
}
