package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/playperu/quizshow/internal/game"
)

const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeInternal     = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// decode reads the request body into a T and answers 400 when it is
// malformed. An empty body decodes to the zero T only if optional is set.
func decode[T any](w http.ResponseWriter, r *http.Request, optional bool) (T, bool) {
	var v T
	err := readJSON(r, &v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return v, true
	}
	writeError(w, http.StatusBadRequest, "invalid request body", codeBadRequest)
	return v, false
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, ErrorResponse{OK: false, Error: msg, Code: code})
}

// writeGameError maps a rejected operation to its status. Anything that is
// not a *game.Error is a storage failure and is hidden from the caller.
func writeGameError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ge *game.Error
	if !errors.As(err, &ge) {
		logger.Error("operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", codeInternal)
		return
	}
	writeError(w, statusFor(ge.Kind), ge.Msg, ge.Kind.String())
}

func statusFor(k game.Kind) int {
	switch k {
	case game.KindNotAllowed:
		return http.StatusForbidden
	case game.KindInvalidReference:
		return http.StatusNotFound
	case game.KindInvalidState, game.KindAlreadyDone:
		return http.StatusConflict
	case game.KindInvalidAmount, game.KindExceedsLimit:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
