// Package apperr define os tipos de erro que os serviços devolvem e que a camada
// de transporte traduz para o envelope das RPCs.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeResourceExhausted Code = "RESOURCE_EXHAUSTED"
	CodeInternal          Code = "INTERNAL"
)

// HTTPStatus devolve o status HTTP usado para o código.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error é um erro com código. Message vai para o cliente; Err fica só nos logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

func ResourceExhausted(msg string) *Error {
	return &Error{Code: CodeResourceExhausted, Message: msg}
}

// QuotaExceededMessage é a mensagem bilíngue mostrada quando a cota diária acaba.
const QuotaExceededMessage = "本日の利用上限に達しました。明日また試してください。 / Daily request limit reached. Please try again tomorrow."

// TooManyRequestsMessage é a mensagem bilíngue das recusas de burst.
const TooManyRequestsMessage = "リクエストが多すぎます。しばらく待ってから再試行してください。 / Too many requests. Please wait a moment and try again."

// QuotaExceeded é o erro devolvido pelos serviços quando o Gate nega.
func QuotaExceeded() *Error {
	return ResourceExhausted(QuotaExceededMessage)
}

// Internal carrega a mensagem do erro subjacente para o cliente.
func Internal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// From extrai o *Error de err. Erros sem código viram INTERNAL.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// CodeOf devolve o código de err ("" se err == nil).
func CodeOf(err error) Code {
	if e := From(err); e != nil {
		return e.Code
	}
	return ""
}
