package callable

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"toolkit-gateway/apperr"
	"toolkit-gateway/middleware/ratelimit"
)

type RouterOptions struct {
	Refiner   Refiner
	Submitter Submitter
	KeyFn     ratelimit.KeyFunc
	Verifier  *TokenVerifier
	Origins   []string
	// Burst roda depois da validação do payload; Concurrency envolve a RPC inteira.
	Burst       Shield
	Concurrency func(http.Handler) http.Handler
	// Metrics, se não nil, é exposto em GET /metrics.
	Metrics prometheus.Gatherer
	Log     *slog.Logger
}

func NewRouter(opts RouterOptions) http.Handler {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors(opts.Origins))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Status:  apperr.CodeInvalidArgument,
			Message: "method not allowed, use POST",
		}})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if opts.Concurrency != nil {
			r.Use(opts.Concurrency)
		}
		if opts.Refiner != nil {
			r.Post("/refinePrompt", RefineHandler(opts.Refiner, opts.KeyFn, opts.Burst))
		}
		if opts.Submitter != nil {
			r.Post("/submitContact", ContactHandler(opts.Submitter, opts.KeyFn, opts.Verifier, opts.Burst, log))
		}
	})
	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
