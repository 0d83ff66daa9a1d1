package game

import "github.com/playperu/quizshow/internal/quiz"

// Event types pushed to every subscriber of a session.
const (
	EventInit               = "init"
	EventScoreUpdate        = "score:update"
	EventRound              = "round"
	EventR1Eligibility      = "r1:eligibility"
	EventR1Selector         = "r1:selector"
	EventR1TopicSelected    = "r1:topic:selected"
	EventR1Question         = "r1:question"
	EventR1QuestionSelected = "r1:question:selected"
	EventR1Options          = "r1:options"
	EventBuzzAllow          = "buzz:allow"
	EventBuzzWinner         = "buzz:winner"
	EventHermesUsed         = "hermes:used"
	EventHermesCleared      = "hermes:cleared"
	EventR2Topic            = "r2:topic"
	EventR2TopicVisible     = "r2:topic:visible"
	EventR2MaxBet           = "r2:max-bet"
	EventR2Question         = "r2:question"
	EventR2QuestionSelected = "r2:question:selected"
	EventR2Options          = "r2:options"
	EventR2AnswerWindow     = "r2:answer-window"
	EventR2Bet              = "r2:bet"
	EventR2Answer           = "r2:answer"
	EventR2AnswerRevealed   = "r2:answer:revealed"
	EventR2ManualCorrect    = "r2:manual-correct"
	EventR2Settled          = "r2:settled"
)

type TeamsPayload struct {
	Teams []quiz.Team `json:"teams"`
}

type RoundPayload struct {
	Round quiz.Round `json:"round"`
}

type EligibilityPayload struct {
	EligibleSelectors []int64 `json:"eligibleSelectors"`
}

type SelectorPayload struct {
	CurrentSelector *int64 `json:"currentSelector"`
}

type TopicSelectedPayload struct {
	TeamID          int64           `json:"teamId"`
	TopicID         int64           `json:"topicId"`
	SelectedTopics  map[int64]int64 `json:"selectedTopics"`
	AvailableTopics []int64         `json:"availableTopics"`
}

type VisibilityPayload struct {
	Visible bool  `json:"visible"`
	Stage   Stage `json:"stage,omitempty"`
}

type QuestionSelectedPayload struct {
	ID      *string `json:"id"`
	TopicID *int64  `json:"topicId,omitempty"`
	Text    *string `json:"text,omitempty"`
}

type OptionsPayload struct {
	Options []string `json:"options"`
}

type BuzzPayload struct {
	Allowed bool   `json:"allowed"`
	Winner  *int64 `json:"winner"`
}

type HermesUsedPayload struct {
	TeamID       int64       `json:"teamId"`
	LastUsedByID *int64      `json:"lastUsedById"`
	Teams        []quiz.Team `json:"teams"`
}

type TopicPayload struct {
	TopicID *int64 `json:"topicId"`
}

type R2OptionsPayload struct {
	Options []string `json:"options"`
	Visible bool     `json:"visible"`
}

type MaxBetPayload struct {
	MaxBet int           `json:"maxBet"`
	Bets   map[int64]int `json:"bets"`
}

type AnswerWindowPayload struct {
	Open  bool  `json:"open"`
	Stage Stage `json:"stage"`
}

type BetPayload struct {
	TeamID int64 `json:"teamId"`
	Amount int   `json:"amount"`
}

// AnswerPayload never carries the answer text.
type AnswerPayload struct {
	TeamID int64 `json:"teamId"`
}

type AnswerRevealedPayload struct {
	CorrectAnswer string `json:"correctAnswer"`
}

type ManualCorrectPayload struct {
	TeamIDs []int64 `json:"teamIds"`
}

type SettledPayload struct {
	Settlement
	Teams []quiz.Team `json:"teams"`
}
