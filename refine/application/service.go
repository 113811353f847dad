package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"toolkit-gateway/apperr"
	"toolkit-gateway/refine/domain"
)

// DefaultTimeout limita a chamada ao modelo quando Service.Timeout não é configurado.
const DefaultTimeout = 30 * time.Second

var errEmptyOutput = errors.New("model returned empty output")

// QuotaGate é a cota diária consultada antes de chamar o modelo.
type QuotaGate interface {
	Check(ctx context.Context, identity string) bool
}

type Request struct {
	Identity string
	Input    string
	Flavor   string
	Language string
}

// Result é o envelope devolvido ao cliente. Falhas do modelo voltam aqui com
// Success=false e um prompt de fallback em Result, nunca como erro.
type Result struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

type Service struct {
	Gate    QuotaGate
	Model   domain.Model
	Timeout time.Duration
	Log     *slog.Logger
}

// Refine valida a entrada, consome cota e chama o modelo.
//
// Erros devolvidos: InvalidArgument (entrada vazia) e ResourceExhausted (cota).
// Qualquer falha do modelo vira Result{Success:false} com o fallback.
func (s Service) Refine(ctx context.Context, req Request) (Result, error) {
	if err := s.Validate(req); err != nil {
		return Result{}, err
	}
	if s.Gate != nil && !s.Gate.Check(ctx, req.Identity) {
		return Result{}, apperr.QuotaExceeded()
	}

	lang := domain.ParseLanguage(req.Language)
	prompt := domain.BuildPrompt(req.Input, req.Flavor, lang)

	out, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger().WarnContext(ctx, "prompt refinement failed, returning fallback",
			"flavor", req.Flavor, "language", lang, "error", err)
		return Result{
			Success: false,
			Result:  domain.Fallback(req.Input, lang),
			Error:   err.Error(),
		}, nil
	}
	return Result{Success: true, Result: out}, nil
}

// Validate checa a entrada sem tocar na cota.
func (s Service) Validate(req Request) error {
	if strings.TrimSpace(req.Input) == "" {
		return apperr.InvalidArgument("input is required")
	}
	return nil
}

func (s Service) generate(ctx context.Context, prompt string) (out string, err error) {
	if s.Model == nil {
		return "", errors.New("no model configured")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger().ErrorContext(ctx, "model panicked", "panic", r)
			err = errors.New("model call panicked")
		}
	}()

	out, err = s.Model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", errEmptyOutput
	}
	return out, nil
}

func (s Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
