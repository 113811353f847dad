package ratelimit

import (
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"toolkit-gateway/middleware/ratelimit/application"
	"toolkit-gateway/middleware/ratelimit/domain"
)

// KeyFunc extrai o endereço de rede do chamador (sem normalizar).
type KeyFunc func(r *http.Request) string

// RejectFunc escreve a resposta de recusa. Se nil, usa http.Error em texto puro.
type RejectFunc func(w http.ResponseWriter, r *http.Request, status int)

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	TrustedProxies      []string
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Reject              RejectFunc
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// DefaultKeyFunc: header configurado -> X-Forwarded-For (se confiável) -> host do
// RemoteAddr -> "unknown".
//
// No X-Forwarded-For vale o IP mais à direita que não está em trustedProxies
// (IPs ou CIDRs). As entradas à esquerda vêm do cliente e podem ser forjadas.
// Entradas inválidas em trustedProxies são ignoradas; use ParseTrustedProxies
// para validar antes.
func DefaultKeyFunc(keyHeader string, trustXFF bool, trustedProxies ...string) KeyFunc {
	trusted, _ := ParseTrustedProxies(trustedProxies)
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			if ip := forwardedClient(r.Header.Values("X-Forwarded-For"), trusted); ip != "" {
				return ip
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return string(domain.UnknownKey)
	}
}

// ParseTrustedProxies converte IPs e CIDRs em prefixos. Devolve os válidos e
// um erro juntando os inválidos.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	var (
		out  []netip.Prefix
		errs []error
	)
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, errors.Join(errs...)
}

// forwardedClient anda do fim para o começo, pulando proxies confiáveis.
// Vários headers X-Forwarded-For valem como uma lista só, na ordem recebida.
func forwardedClient(values []string, trusted []netip.Prefix) string {
	var hops []string
	for _, v := range values {
		hops = append(hops, strings.Split(v, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if isTrusted(hop, trusted) {
			continue
		}
		return hop
	}
	return ""
}

func isTrusted(hop string, trusted []netip.Prefix) bool {
	a, err := netip.ParseAddr(hop)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// Middleware aplica o limite de burst por chave antes das RPCs.
// Ele não consome a cota diária; isso é responsabilidade do Gate dentro de cada serviço.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor, opts.TrustedProxies...)
	}
	if opts.Reject == nil {
		opts.Reject = plainReject
	}

	svc := application.BurstService{
		Store:      opts.Store,
		Stats:      opts.Stats,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			key := domain.NormalizeKey(opts.KeyFn(r))

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", string(key))
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-RateLimit-Burst", formatInt(ri.Burst()))
				}
			}

			dec := svc.Check(r.Context(), application.Attempt{Key: key, Method: r.Method, Path: r.URL.Path})
			if !dec.Allowed {
				w.Header().Set("Retry-After", formatInt(int(dec.RetryAfter.Seconds())))
				opts.Reject(w, r, opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func plainReject(w http.ResponseWriter, _ *http.Request, status int) {
	http.Error(w, http.StatusText(status), status)
}
