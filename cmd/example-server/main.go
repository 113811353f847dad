package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toolkit-gateway/callable"
	contactapp "toolkit-gateway/contact/application"
	contactinfra "toolkit-gateway/contact/infra"
	"toolkit-gateway/internal/logger"
	"toolkit-gateway/middleware/ratelimit"
	"toolkit-gateway/middleware/ratelimit/application"
	"toolkit-gateway/middleware/ratelimit/infra"
	refineapp "toolkit-gateway/refine/application"
	refinedomain "toolkit-gateway/refine/domain"
	refineinfra "toolkit-gateway/refine/infra"
)

func main() {
	// Exemplo: tudo em memória, um processo só. Sem GEMINI_API_KEY o refinePrompt
	// sempre devolve o fallback.
	log := logger.Init(logger.Options{Level: "debug"})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	burst := infra.NewStore(5, 10)
	go burst.RunJanitor(ctx)

	stats := infra.NewMemoryStatsStore(infra.WithTrackKeys(true))
	gate := application.Gate{Store: infra.NewMemoryUsageStore(), Stats: stats, Log: log}

	var model refinedomain.Model
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		m, err := refineinfra.NewGeminiModel(ctx, refineinfra.GeminiConfig{APIKey: key})
		if err != nil {
			log.Error("gemini client", "error", err)
			os.Exit(1)
		}
		model = m
	} else {
		log.Warn("GEMINI_API_KEY not set, refinePrompt will answer with the fallback")
	}

	// Só o endereço de rede: header e X-Forwarded-For são controlados pelo cliente.
	keyFn := ratelimit.DefaultKeyFunc("", false)
	h := callable.NewRouter(callable.RouterOptions{
		Refiner:     refineapp.Service{Gate: gate, Model: model, Log: log},
		Submitter:   contactapp.Service{Gate: gate, Repo: contactinfra.NewMemoryRepository(), Log: log},
		KeyFn:       keyFn,
		Concurrency: ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: 50, Reject: callable.Reject, Stats: stats}),
		Burst: ratelimit.Middleware(ratelimit.Options{
			Store:               burst,
			Stats:               stats,
			KeyFn:               keyFn,
			AddRateLimitHeaders: true,
			Reject:              callable.Reject,
		}),
		Log: log,
	})

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		t := stats.Total()
		log.Info("decisions", "allowed", t.Allowed, "denied", t.Denied, "fail_open", t.FailOpen)
	}()

	log.Info("example server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
