package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

type sessionParams struct {
	Session string `path:"session" description:"Game session name."`
}

type questionsParams struct {
	Session string `path:"session"`
	Round   int    `query:"round" required:"true" description:"1 or 2."`
	TopicID int64  `query:"topicId" required:"true"`
}

type optionsParams struct {
	Session    string `path:"session"`
	QuestionID string `query:"questionId" required:"true"`
}

type apiOperation struct {
	method, path string
	summary      string
	description  string
	req          any
	resp         any
	// auth is "", "team" or "admin".
	auth   string
	errors []int
}

var (
	gameErrors = []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict}
	betErrors  = []int{http.StatusBadRequest, http.StatusForbidden, http.StatusConflict, http.StatusUnprocessableEntity}
)

var apiOperations = []apiOperation{
	{http.MethodPost, "/game/r1/select-topic", "Select round-one topic", "The current selector claims an unclaimed topic.",
		SelectTopicRequest{}, StateResponse{}, "team", gameErrors},
	{http.MethodPost, "/game/buzz/in", "Buzz in", "First team to buzz while buzzing is allowed wins the race.",
		TeamRequest{}, StateResponse{}, "team", gameErrors},
	{http.MethodPost, "/game/hermes/use", "Use Hermes", "Spends the team's one-time Hermes power-up.",
		TeamRequest{}, StateTeamsResponse{}, "team", gameErrors},
	{http.MethodPost, "/game/r2/bet", "Place bet", "Places or raises the team's round-two bet.",
		BetRequest{}, StateResponse{}, "team", betErrors},
	{http.MethodPost, "/game/r2/answer", "Submit answer", "Submits the team's round-two answer while the window is open.",
		AnswerRequest{}, StateResponse{}, "team", gameErrors},

	{http.MethodPost, "/game/r1/eligibility", "Set eligible selectors", "Replaces the teams that may pick a topic.",
		EligibilityRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r1/selector", "Set current selector", "Hands the topic pick to a team. Null clears it.",
		SelectorRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r1/question", "Round-one question visibility", "Shows or hides the current round-one question.",
		VisibilityRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r1/question/select", "Select round-one question", "Sets the current question and starts a fresh buzz race.",
		QuestionSelectRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/buzz/allow", "Allow buzzing", "Opens or closes the buzz race.",
		BuzzAllowRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/hermes/clear", "Clear Hermes cue", "Hides the Hermes cue. Usage flags are kept.",
		nil, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/score", "Adjust score", "Adds a delta to a team's score.",
		ScoreRequest{}, TeamsResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/topic", "Set round-two topic", "Resets round two to the topic and preloads its first question.",
		TopicRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/reveal-topic", "Reveal round-two topic", "Makes the topic visible and opens betting.",
		nil, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/max-bet", "Set maximum bet", "Sets the bet cap. Zero means only the team score caps bets.",
		MaxBetRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/options", "Set round-two options", "Replaces the answer options and optionally shows or hides them.",
		R2OptionsRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/question/select", "Select round-two question", "Loads a question of the current topic.",
		QuestionSelectRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/question", "Round-two question visibility", "Shows or hides the round-two question.",
		VisibilityRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/answer-window", "Answer window", "Opens or closes the answer window.",
		AnswerWindowRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/reveal-answer", "Reveal correct answer", "Reveals the correct answer and closes the window.",
		RevealAnswerRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/manual-correct", "Mark teams correct", "Marks teams correct regardless of their answer text.",
		ManualCorrectRequest{}, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/r2/settle", "Settle round two", "Pays out the pot and returns round two to idle.",
		nil, SettleResponse{}, "admin", gameErrors},
	{http.MethodPost, "/game/reset", "Reset game state", "Clears every game-state section. Scores are kept.",
		nil, StateResponse{}, "admin", gameErrors},
	{http.MethodPost, "/round", "Set round", "Moves the show to another top-level round.",
		RoundRequest{}, RoundResponse{}, "admin", gameErrors},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Quizshow API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the live multi-team quiz show.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Pings the database of every open session.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/{session}/game/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/{session}/game/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the full game state with teams, topics and the current round.")
	getState.AddReqStructure(sessionParams{})
	getState.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getState)

	// GET /api/{session}/game/questions
	getQuestions, _ := r.NewOperationContext(http.MethodGet, "/api/{session}/game/questions")
	getQuestions.SetSummary("List questions")
	getQuestions.SetDescription("Lists the questions of a topic. Answers are not included.")
	getQuestions.AddReqStructure(questionsParams{})
	getQuestions.AddRespStructure(QuestionsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getQuestions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getQuestions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getQuestions)

	// GET /api/{session}/game/r2/options
	getOptions, _ := r.NewOperationContext(http.MethodGet, "/api/{session}/game/r2/options")
	getOptions.SetSummary("List round-two options")
	getOptions.SetDescription("Lists the stored answer options of a round-two question.")
	getOptions.AddReqStructure(optionsParams{})
	getOptions.AddRespStructure(OptionsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getOptions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getOptions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getOptions)

	// GET /api/{session}/game/stream
	getStream, _ := r.NewOperationContext(http.MethodGet, "/api/{session}/game/stream")
	getStream.SetSummary("SSE event stream")
	getStream.SetDescription("Server-Sent Events stream. The first event is init with the full state.")
	getStream.AddReqStructure(sessionParams{})
	getStream.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getStream)

	// GET /api/{session}/game/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/{session}/game/ws")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("The event stream over a WebSocket, one JSON text frame per event.")
	getWS.AddReqStructure(sessionParams{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /api/{session}/round
	getRound, _ := r.NewOperationContext(http.MethodGet, "/api/{session}/round")
	getRound.SetSummary("Get round")
	getRound.SetDescription("Returns the current top-level round.")
	getRound.AddReqStructure(sessionParams{})
	getRound.AddRespStructure(RoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getRound)

	for _, op := range apiOperations {
		oc, err := r.NewOperationContext(op.method, "/api/{session}"+op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		switch op.auth {
		case "team":
			oc.SetDescription(op.description + " Requires team or admin Basic credentials.")
		case "admin":
			oc.SetDescription(op.description + " Requires admin Basic credentials.")
		default:
			oc.SetDescription(op.description)
		}
		oc.AddReqStructure(sessionParams{})
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		for _, status := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
