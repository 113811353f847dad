package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"toolkit-gateway/callable"
	contactapp "toolkit-gateway/contact/application"
	"toolkit-gateway/middleware/ratelimit"
	"toolkit-gateway/middleware/ratelimit/infra"
	refineapp "toolkit-gateway/refine/application"
	refineinfra "toolkit-gateway/refine/infra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg
	if err := cfg.RequireModel(); err != nil {
		return err
	}

	d := newDeps(cfg, a.log)
	defer func() {
		if err := d.Close(); err != nil {
			a.log.Warn("closing dependencies", "error", err)
		}
	}()

	stats, gatherer, err := d.statsStore(ctx)
	if err != nil {
		return err
	}
	gate, err := d.gate(ctx, stats)
	if err != nil {
		return err
	}
	repo, err := d.contactRepo(ctx)
	if err != nil {
		return err
	}
	model, err := refineinfra.NewGeminiModel(ctx, refineinfra.GeminiConfig{
		APIKey:          cfg.Refine.APIKey,
		Model:           cfg.Refine.Model,
		Temperature:     cfg.Refine.Temperature,
		MaxOutputTokens: cfg.Refine.MaxOutputTokens,
	})
	if err != nil {
		return err
	}

	submitter := contactapp.Service{Gate: gate, Repo: repo, Log: a.log}
	if n := d.notifier(); n != nil {
		submitter.Notifier = n
	}

	keyFn := ratelimit.DefaultKeyFunc(cfg.Server.KeyHeader, cfg.Server.TrustXFF, cfg.Server.TrustedProxies...)
	opts := callable.RouterOptions{
		Refiner:   refineapp.Service{Gate: gate, Model: model, Timeout: cfg.Refine.Timeout, Log: a.log},
		Submitter: submitter,
		KeyFn:     keyFn,
		Verifier:  callable.NewTokenVerifier(cfg.Auth.JWTSecret),
		Origins:   cfg.Server.CORSOrigins,
		Concurrency: ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            cfg.Server.ConcurrencyMax,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.Server.ConcurrencyTimeout,
			Reject:         callable.Reject,
			Stats:          stats,
		}),
		Metrics: gatherer,
		Log:     a.log,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Burst.Enabled {
		burst := infra.NewStore(cfg.Burst.RPS, cfg.Burst.Burst)
		g.Go(func() error {
			burst.RunJanitor(gctx)
			return nil
		})
		opts.Burst = ratelimit.Middleware(ratelimit.Options{
			Store:               burst,
			Stats:               stats,
			KeyFn:               keyFn,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.Burst.RetryAfter,
			AddRateLimitHeaders: cfg.Burst.AddHeaders,
			Reject:              callable.Reject,
		})
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           callable.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// a escrita precisa caber a chamada ao modelo
		WriteTimeout: cfg.Refine.Timeout + 15*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	g.Go(func() error {
		a.log.Info("gateway listening",
			"addr", cfg.Server.ListenAddr,
			"quota_backend", cfg.Quota.Backend,
			"daily_limit", cfg.Quota.DailyLimit,
			"timezone", cfg.Quota.Timezone,
			"contact_backend", cfg.Contact.Backend,
			"model", model.Name(),
		)
		a.log.Info("burst", "enabled", cfg.Burst.Enabled, "rps", cfg.Burst.RPS, "burst", cfg.Burst.Burst, "key_header", cfg.Server.KeyHeader, "trust_xff", cfg.Server.TrustXFF, "trusted_proxies", cfg.Server.TrustedProxies)
		a.log.Info("stats", "enabled", cfg.Stats.Enabled, "backend", cfg.Stats.Backend)
		a.log.Info("concurrency", "max", cfg.Server.ConcurrencyMax, "acquire_timeout", cfg.Server.ConcurrencyTimeout)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		a.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
