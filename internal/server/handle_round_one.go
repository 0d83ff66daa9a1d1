package server

import (
	"log/slog"
	"net/http"
)

func handleSelectTopic(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[SelectTopicRequest](w, r, false)
		if !ok {
			return
		}
		teamID, ok := actingTeam(w, r, req.TeamID)
		if !ok {
			return
		}

		st, err := sessionFrom(r).Machine.SelectTopic(r.Context(), teamID, req.TopicID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: stateFor(r, st)})
	}
}

func handleEligibility(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[EligibilityRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetEligibleSelectors(r.Context(), req.TeamIDs)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

// handleSelector sets the current selector. A null teamId clears it.
func handleSelector(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[SelectorRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetCurrentSelector(r.Context(), req.TeamID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR1QuestionVisible(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[VisibilityRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetQuestionVisible(r.Context(), req.Visible)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR1QuestionSelect(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[QuestionSelectRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetCurrentQuestion(r.Context(), req.ID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleBuzzAllow(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[BuzzAllowRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetBuzzAllowed(r.Context(), req.Allowed)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleBuzzIn(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[TeamRequest](w, r, true)
		if !ok {
			return
		}
		teamID, ok := actingTeam(w, r, req.TeamID)
		if !ok {
			return
		}

		st, err := sessionFrom(r).Machine.BuzzIn(r.Context(), teamID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: stateFor(r, st)})
	}
}

func handleUseHermes(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[TeamRequest](w, r, true)
		if !ok {
			return
		}
		teamID, ok := actingTeam(w, r, req.TeamID)
		if !ok {
			return
		}

		st, teams, err := sessionFrom(r).Machine.UseHermes(r.Context(), teamID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateTeamsResponse{OK: true, State: stateFor(r, st), Teams: teams})
	}
}

func handleClearHermes(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := sessionFrom(r).Machine.ClearHermesCue(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}
