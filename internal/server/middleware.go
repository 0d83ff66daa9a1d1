package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizshow/internal/game"
	"github.com/playperu/quizshow/internal/quiz"
	"github.com/playperu/quizshow/internal/session"
)

type ctxKey int

const (
	ctxKeySession ctxKey = iota
	ctxKeyUser
)

func sessionMiddleware(sessions *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.Get(chi.URLParam(r, "session"))
			if err != nil {
				writeError(w, http.StatusNotFound, "session not found", codeNotFound)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authMiddleware checks HTTP Basic credentials against the session's users.
func authMiddleware(logger *slog.Logger, requireAdmin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="quizshow"`)
				writeError(w, http.StatusUnauthorized, "authentication required", codeUnauthorized)
				return
			}

			u, err := sessionFrom(r).Store.Authenticate(r.Context(), username, password)
			if errors.Is(err, quiz.ErrInvalidCredentials) {
				w.Header().Set("WWW-Authenticate", `Basic realm="quizshow"`)
				writeError(w, http.StatusUnauthorized, "invalid credentials", codeUnauthorized)
				return
			}
			if err != nil {
				logger.Error("authenticating", "username", username, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error", codeInternal)
				return
			}
			if requireAdmin && u.Role != quiz.RoleAdmin {
				writeError(w, http.StatusForbidden, "admin only", codeForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(ctxKeySession).(*session.Session)
}

func userFrom(r *http.Request) quiz.User {
	return r.Context().Value(ctxKeyUser).(quiz.User)
}

// actingTeam resolves the team an action runs for and writes the error
// response when it cannot. Team users always act as themselves.
func actingTeam(w http.ResponseWriter, r *http.Request, requested *int64) (int64, bool) {
	u := userFrom(r)
	if u.Role == quiz.RoleTeam {
		if requested != nil && *requested != u.ID {
			writeError(w, http.StatusForbidden, "cannot act for another team", codeForbidden)
			return 0, false
		}
		return u.ID, true
	}
	if requested == nil {
		writeError(w, http.StatusBadRequest, "teamId is required", codeBadRequest)
		return 0, false
	}
	return *requested, true
}

// stateFor returns st as the requesting user may see it. Only admins see
// round-two answer text before the reveal.
func stateFor(r *http.Request, st game.State) game.State {
	if u, ok := r.Context().Value(ctxKeyUser).(quiz.User); ok && u.Role == quiz.RoleAdmin {
		return st
	}
	return st.Public()
}
