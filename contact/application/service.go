package application

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"toolkit-gateway/apperr"
	"toolkit-gateway/contact/domain"
)

// QuotaGate é a cota diária consultada antes de gravar.
type QuotaGate interface {
	Check(ctx context.Context, identity string) bool
}

type Request struct {
	Identity string            `json:"-"`
	Email    string            `json:"email" validate:"required,max=320"`
	Subject  string            `json:"subject" validate:"required,max=200"`
	Message  string            `json:"message" validate:"required,max=10000"`
	Language string            `json:"language" validate:"max=16"`
	Metadata map[string]string `json:"-"`
}

type Receipt struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type Service struct {
	Gate     QuotaGate
	Repo     domain.Repository
	Notifier domain.Notifier
	Now      func() time.Time
	NewID    func() string
	Log      *slog.Logger
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Submit valida, consome cota e grava a submissão.
//
// A validação acontece antes do Gate: entrada inválida não gasta cota nem grava.
// Falha de gravação volta como Internal com a mensagem original.
func (s Service) Submit(ctx context.Context, req Request) (Receipt, error) {
	req = req.normalized()
	if err := validateRequest(req); err != nil {
		return Receipt{}, err
	}

	identity := req.Identity
	if identity == "" {
		identity = domain.UnknownIdentity
	}
	if s.Gate != nil && !s.Gate.Check(ctx, identity) {
		return Receipt{}, apperr.QuotaExceeded()
	}

	lang := req.Language
	if lang == "" {
		lang = "ja"
	}
	sub := &domain.Submission{
		ID:        s.newID(),
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		Language:  lang,
		Identity:  identity,
		CreatedAt: s.now().UTC(),
		Status:    domain.StatusNew,
		Metadata:  req.Metadata,
	}
	if err := s.Repo.Create(ctx, sub); err != nil {
		s.logger().ErrorContext(ctx, "contact submission persist failed", "identity", identity, "error", err)
		return Receipt{}, apperr.Internal(err)
	}
	s.logger().InfoContext(ctx, "contact submission stored", "id", sub.ID, "identity", identity)

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, *sub); err != nil {
			s.logger().WarnContext(ctx, "contact notification failed", "id", sub.ID, "error", err)
		}
	}
	return Receipt{Success: true, ID: sub.ID}, nil
}

// Validate checa o formulário sem tocar na cota nem no repositório.
func (s Service) Validate(req Request) error {
	return validateRequest(req.normalized())
}

func (r Request) normalized() Request {
	r.Email = strings.TrimSpace(r.Email)
	r.Subject = strings.TrimSpace(r.Subject)
	if strings.TrimSpace(r.Message) == "" {
		r.Message = ""
	}
	return r
}

func validateRequest(req Request) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperr.InvalidArgument(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return apperr.InvalidArgument(strings.Join(msgs, "; "))
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
