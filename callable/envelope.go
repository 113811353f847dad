package callable

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"toolkit-gateway/apperr"
)

// MaxBodyBytes limita o corpo aceito por RPC.
const MaxBodyBytes = 64 << 10

type request[T any] struct {
	Data T `json:"data"`
}

type response[T any] struct {
	Result T `json:"result"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Status  apperr.Code `json:"status"`
	Message string      `json:"message"`
}

// decode lê o envelope {"data": ...}. Corpo vazio equivale a data vazio.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var in request[T]
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return in.Data, nil
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return in.Data, apperr.InvalidArgument(fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit))
		}
		return in.Data, apperr.InvalidArgument("malformed request body: " + err.Error())
	}
	return in.Data, nil
}

func writeResult[T any](w http.ResponseWriter, v T) {
	writeJSON(w, http.StatusOK, response[T]{Result: v})
}

// writeError converte qualquer erro para o corpo {"error": {...}} com o status HTTP do código.
func writeError(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	writeJSON(w, e.Code.HTTPStatus(), errorBody{Error: errorDetail{Status: e.Code, Message: e.Message}})
}

func (d errorDetail) body() errorBody { return errorBody{Error: d} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Reject escreve as recusas dos limitadores HTTP (burst, concorrência) no
// mesmo envelope de erro das RPCs.
func Reject(w http.ResponseWriter, _ *http.Request, status int) {
	detail := errorDetail{Status: apperr.CodeInternal, Message: http.StatusText(status)}
	if status == http.StatusTooManyRequests {
		detail = errorDetail{Status: apperr.CodeResourceExhausted, Message: apperr.TooManyRequestsMessage}
	}
	writeJSON(w, status, detail.body())
}
