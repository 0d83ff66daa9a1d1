package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Quizshow API", "/openapi.json", "/docs"))
	if opts.Health != nil {
		r.Mount("/healthz", opts.Health)
	}

	r.Route("/api/{session}", func(r chi.Router) {
		r.Use(sessionMiddleware(opts.Sessions))

		// Read side, no credentials.
		r.Get("/game/state", handleGameState(logger))
		r.Get("/game/questions", handleQuestions(logger))
		r.Get("/game/r2/options", handleR2Options(logger))
		r.Get("/game/stream", handleStream(logger, opts.KeepAlive, opts.Clock))
		r.Get("/game/ws", handleWS(logger, opts.KeepAlive, opts.Clock, originPatterns(opts.CORSOrigins)))
		r.Get("/round", handleGetRound(logger))

		// Team actions. Admins may act for any team.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(logger, false))
			r.Post("/game/r1/select-topic", handleSelectTopic(logger))
			r.Post("/game/buzz/in", handleBuzzIn(logger))
			r.Post("/game/hermes/use", handleUseHermes(logger))
			r.Post("/game/r2/bet", handlePlaceBet(logger))
			r.Post("/game/r2/answer", handleSubmitAnswer(logger))
		})

		// Host controls.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(logger, true))
			r.Post("/game/r1/eligibility", handleEligibility(logger))
			r.Post("/game/r1/selector", handleSelector(logger))
			r.Post("/game/r1/question", handleR1QuestionVisible(logger))
			r.Post("/game/r1/question/select", handleR1QuestionSelect(logger))
			r.Post("/game/buzz/allow", handleBuzzAllow(logger))
			r.Post("/game/hermes/clear", handleClearHermes(logger))
			r.Post("/game/score", handleAdjustScore(logger))
			r.Post("/game/r2/topic", handleR2Topic(logger))
			r.Post("/game/r2/reveal-topic", handleR2RevealTopic(logger))
			r.Post("/game/r2/max-bet", handleR2MaxBet(logger))
			r.Post("/game/r2/options", handleR2SetOptions(logger))
			r.Post("/game/r2/question/select", handleR2QuestionSelect(logger))
			r.Post("/game/r2/question", handleR2QuestionVisible(logger))
			r.Post("/game/r2/answer-window", handleR2AnswerWindow(logger))
			r.Post("/game/r2/reveal-answer", handleR2RevealAnswer(logger))
			r.Post("/game/r2/manual-correct", handleR2ManualCorrect(logger))
			r.Post("/game/r2/settle", handleR2Settle(logger))
			r.Post("/game/reset", handleReset(logger))
			r.Post("/round", handleSetRound(logger))
		})
	})
}
