package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/playperu/quizshow/internal/quiz"
)

func handleGameState(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := sessionFrom(r).Machine.View(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, GameStateResponse{
			OK:              true,
			State:           v.GameState.Public(),
			Teams:           v.Teams,
			Topics:          v.Topics,
			R2Topics:        v.R2Topics,
			AvailableTopics: v.AvailableTopics,
			Round:           v.Round,
		})
	}
}

// handleQuestions lists a topic's questions. Answers are never included.
func handleQuestions(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		round, err := strconv.Atoi(q.Get("round"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "round must be 1 or 2", codeBadRequest)
			return
		}
		topicID, err := strconv.ParseInt(q.Get("topicId"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "topicId is required", codeBadRequest)
			return
		}

		qs, err := sessionFrom(r).Machine.Questions(r.Context(), quiz.RoundNumber(round), topicID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, QuestionsResponse{OK: true, Questions: qs})
	}
}

// handleR2Options lists the stored options of a round-two question.
func handleR2Options(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("questionId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "questionId is required", codeBadRequest)
			return
		}

		options, err := sessionFrom(r).Machine.R2Options(r.Context(), id)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, OptionsResponse{OK: true, Options: options})
	}
}

func handleGetRound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := sessionFrom(r).Machine.Round(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, RoundResponse{OK: true, Round: round})
	}
}

func handleSetRound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[RoundRequest](w, r, false)
		if !ok {
			return
		}
		round, err := sessionFrom(r).Machine.SetRound(r.Context(), req.Round)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, RoundResponse{OK: true, Round: round})
	}
}

func handleReset(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := sessionFrom(r).Machine.ResetGameState(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{OK: true, State: st})
	}
}

func handleAdjustScore(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ScoreRequest](w, r, false)
		if !ok {
			return
		}
		teams, err := sessionFrom(r).Machine.AdjustScore(r.Context(), req.TeamID, req.Delta)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, TeamsResponse{OK: true, Teams: teams})
	}
}
