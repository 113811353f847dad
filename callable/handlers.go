package callable

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	contactapp "toolkit-gateway/contact/application"
	contactdomain "toolkit-gateway/contact/domain"
	"toolkit-gateway/middleware/ratelimit"
	"toolkit-gateway/middleware/ratelimit/domain"
	refineapp "toolkit-gateway/refine/application"
)

type Refiner interface {
	Validate(req refineapp.Request) error
	Refine(ctx context.Context, req refineapp.Request) (refineapp.Result, error)
}

type Submitter interface {
	Validate(req contactapp.Request) error
	Submit(ctx context.Context, req contactapp.Request) (contactapp.Receipt, error)
}

// Shield envolve só a chamada ao serviço, depois da validação: entrada
// inválida sempre volta INVALID_ARGUMENT, esteja o limitador cheio ou não.
type Shield func(http.Handler) http.Handler

func (s Shield) serve(w http.ResponseWriter, r *http.Request, call http.HandlerFunc) {
	if s == nil {
		call(w, r)
		return
	}
	s(call).ServeHTTP(w, r)
}

type refinePayload struct {
	Input    string `json:"input"`
	Flavor   string `json:"flavor"`
	Language string `json:"language"`
}

type contactPayload struct {
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Language string `json:"language"`
}

// RefineHandler atende refinePrompt. A identidade é só o endereço de rede.
func RefineHandler(svc Refiner, keyFn ratelimit.KeyFunc, shield Shield) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[refinePayload](w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		req := refineapp.Request{
			Identity: address(keyFn, r),
			Input:    in.Input,
			Flavor:   in.Flavor,
			Language: in.Language,
		}
		if err := svc.Validate(req); err != nil {
			writeError(w, err)
			return
		}
		shield.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			res, err := svc.Refine(r.Context(), req)
			if err != nil {
				writeError(w, err)
				return
			}
			writeResult(w, res)
		})
	}
}

// ContactHandler atende submitContact. Sem endereço, usa o uid do token.
func ContactHandler(svc Submitter, keyFn ratelimit.KeyFunc, verifier *TokenVerifier, shield Shield, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[contactPayload](w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		uid, err := verifier.UID(r)
		if err != nil && !errors.Is(err, errNoToken) && log != nil {
			log.DebugContext(r.Context(), "ignoring invalid bearer token", "error", err)
		}
		meta := map[string]string{}
		if ua := r.UserAgent(); ua != "" {
			meta["user_agent"] = ua
		}
		if o := r.Header.Get("Origin"); o != "" {
			meta["origin"] = o
		}
		if uid != "" {
			meta["uid"] = uid
		}

		req := contactapp.Request{
			Identity: contactdomain.ResolveIdentity(address(keyFn, r), uid),
			Email:    in.Email,
			Subject:  in.Subject,
			Message:  in.Message,
			Language: in.Language,
			Metadata: meta,
		}
		if err := svc.Validate(req); err != nil {
			writeError(w, err)
			return
		}
		shield.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			rec, err := svc.Submit(r.Context(), req)
			if err != nil {
				writeError(w, err)
				return
			}
			writeResult(w, rec)
		})
	}
}

func address(keyFn ratelimit.KeyFunc, r *http.Request) string {
	if keyFn == nil {
		keyFn = ratelimit.DefaultKeyFunc("", false)
	}
	if v := keyFn(r); v != "" {
		return v
	}
	return string(domain.UnknownKey)
}
