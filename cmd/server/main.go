package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"veriledger/internal/platform/config"
	"veriledger/internal/platform/logger"
)

const redisStatsInterval = 15 * time.Second

// main wires the ledger components, exposes the HTTP router and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close(log)

	a, err := buildApp(ctx, cfg, in, log)
	if err != nil {
		return err
	}

	router, err := newRouter(cfg, a, in, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("initializing veriledger",
		"addr", cfg.Addr,
		"backend", in.backend(),
		"multisig", cfg.MultisigEnabled(),
		"audit_stream", a.outbox != nil,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if a.outbox != nil {
		a.outbox.Start()
	}
	if in.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(redisStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					in.redis.RecordPoolStats()
				}
			}
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if a.outbox != nil {
			if stopErr := a.outbox.Stop(shutdownCtx); stopErr != nil {
				log.Error("outbox worker did not drain", "error", stopErr)
			}
		}
		return err
	})
	return g.Wait()
}
