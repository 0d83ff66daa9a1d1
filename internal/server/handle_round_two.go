package server

import (
	"log/slog"
	"net/http"
)

func handleR2Topic(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[TopicRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetR2Topic(r.Context(), req.TopicID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR2RevealTopic(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := sessionFrom(r).Machine.RevealR2Topic(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR2MaxBet(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[MaxBetRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetMaxBet(r.Context(), req.MaxBet)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR2SetOptions(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[R2OptionsRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetR2Options(r.Context(), req.Options, req.Visible)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR2QuestionSelect(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[QuestionSelectRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SelectR2Question(r.Context(), req.ID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR2QuestionVisible(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[VisibilityRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetR2QuestionVisible(r.Context(), req.Visible)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR2AnswerWindow(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[AnswerWindowRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetAnswerWindow(r.Context(), req.Open)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handlePlaceBet(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[BetRequest](w, r, false)
		if !ok {
			return
		}
		teamID, ok := actingTeam(w, r, req.TeamID)
		if !ok {
			return
		}

		st, err := sessionFrom(r).Machine.PlaceBet(r.Context(), teamID, req.Amount)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: stateFor(r, st)})
	}
}

func handleSubmitAnswer(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[AnswerRequest](w, r, false)
		if !ok {
			return
		}
		teamID, ok := actingTeam(w, r, req.TeamID)
		if !ok {
			return
		}

		st, err := sessionFrom(r).Machine.SubmitAnswer(r.Context(), teamID, req.Answer)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: stateFor(r, st)})
	}
}

// handleR2RevealAnswer reveals the stored answer, or the one in the body
// when given.
func handleR2RevealAnswer(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[RevealAnswerRequest](w, r, true)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.RevealCorrectAnswer(r.Context(), req.CorrectAnswer)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR2ManualCorrect(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ManualCorrectRequest](w, r, false)
		if !ok {
			return
		}
		st, err := sessionFrom(r).Machine.SetManualCorrect(r.Context(), req.TeamIDs)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleR2Settle(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sessionFrom(r).Machine.Settle(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, SettleResponse{
			OK:         true,
			State:      res.State,
			Teams:      res.Teams,
			Settlement: res.Settlement,
		})
	}
}
