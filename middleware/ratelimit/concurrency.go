package ratelimit

import (
	"net/http"
	"time"

	"toolkit-gateway/middleware/ratelimit/application"
	"toolkit-gateway/middleware/ratelimit/domain"
	"toolkit-gateway/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Reject         RejectFunc
	Stats          domain.StatsStore
}

// ConcurrencyMiddleware limita quantas requisições ficam em voo ao mesmo tempo.
// Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Reject == nil {
		opts.Reject = plainReject
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
		Stats:          opts.Stats,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Admit(r.Context(), application.Attempt{Method: r.Method, Path: r.URL.Path})
			if !ok {
				opts.Reject(w, r, opts.RejectStatus)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
