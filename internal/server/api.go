package server

import (
	"github.com/playperu/quizshow/internal/game"
	"github.com/playperu/quizshow/internal/quiz"
)

// Requests. TeamID on team actions is only read for admin callers.

type TeamRequest struct {
	TeamID *int64 `json:"teamId,omitempty"`
}

type SelectTopicRequest struct {
	TeamID  *int64 `json:"teamId,omitempty"`
	TopicID int64  `json:"topicId"`
}

type BetRequest struct {
	TeamID *int64 `json:"teamId,omitempty"`
	Amount int    `json:"amount"`
}

type AnswerRequest struct {
	TeamID *int64 `json:"teamId,omitempty"`
	Answer string `json:"answer"`
}

type EligibilityRequest struct {
	TeamIDs []int64 `json:"teamIds"`
}

type SelectorRequest struct {
	TeamID *int64 `json:"teamId"`
}

type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

type QuestionSelectRequest struct {
	ID *string `json:"id"`
}

type BuzzAllowRequest struct {
	Allowed bool `json:"allowed"`
}

type ScoreRequest struct {
	TeamID int64 `json:"teamId"`
	Delta  int   `json:"delta"`
}

type TopicRequest struct {
	TopicID int64 `json:"topicId"`
}

type MaxBetRequest struct {
	MaxBet int `json:"maxBet"`
}

type R2OptionsRequest struct {
	Options []string `json:"options"`
	Visible *bool    `json:"visible,omitempty"`
}

type AnswerWindowRequest struct {
	Open bool `json:"open"`
}

type RevealAnswerRequest struct {
	// CorrectAnswer overrides the answer stored with the question.
	CorrectAnswer *string `json:"correctAnswer,omitempty"`
}

type ManualCorrectRequest struct {
	TeamIDs []int64 `json:"teamIds"`
}

type RoundRequest struct {
	Round quiz.Round `json:"round"`
}

// Responses.

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

type StateResponse struct {
	OK    bool       `json:"ok"`
	State game.State `json:"state"`
}

type StateTeamsResponse struct {
	OK    bool        `json:"ok"`
	State game.State  `json:"state"`
	Teams []quiz.Team `json:"teams"`
}

type TeamsResponse struct {
	OK    bool        `json:"ok"`
	Teams []quiz.Team `json:"teams"`
}

type SettleResponse struct {
	OK         bool            `json:"ok"`
	State      game.State      `json:"state"`
	Teams      []quiz.Team     `json:"teams"`
	Settlement game.Settlement `json:"settlement"`
}

type GameStateResponse struct {
	OK              bool         `json:"ok"`
	State           game.State   `json:"state"`
	Teams           []quiz.Team  `json:"teams"`
	Topics          []quiz.Topic `json:"topics"`
	R2Topics        []quiz.Topic `json:"r2Topics"`
	AvailableTopics []int64      `json:"availableTopics"`
	Round           quiz.Round   `json:"round"`
}

type QuestionsResponse struct {
	OK        bool            `json:"ok"`
	Questions []quiz.Question `json:"questions"`
}

type OptionsResponse struct {
	OK      bool     `json:"ok"`
	Options []string `json:"options"`
}

type RoundResponse struct {
	OK    bool       `json:"ok"`
	Round quiz.Round `json:"round"`
}

type HealthCheck struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
}

type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]HealthCheck `json:"checks"`
}
