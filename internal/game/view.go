package game

import (
	"context"
	"fmt"

	"github.com/playperu/quizshow/internal/quiz"
)

// View is the full read-side picture of a session.
type View struct {
	GameState       State        `json:"gameState"`
	Teams           []quiz.Team  `json:"teams"`
	Topics          []quiz.Topic `json:"topics"`
	R2Topics        []quiz.Topic `json:"r2Topics"`
	AvailableTopics []int64      `json:"availableTopics"`
	Round           quiz.Round   `json:"round"`
}

// View reads the current snapshot without taking the mutation lock. The
// store commits sections atomically, so the snapshot is never partial.
func (m *Machine) View(ctx context.Context) (View, error) {
	st, err := m.store.Load(ctx)
	if err != nil {
		return View{}, fmt.Errorf("loading state: %w", err)
	}
	teams, err := m.teams(ctx)
	if err != nil {
		return View{}, err
	}
	topics, err := m.bank.Topics(ctx, quiz.RoundOne)
	if err != nil {
		return View{}, fmt.Errorf("listing round one topics: %w", err)
	}
	r2Topics, err := m.bank.Topics(ctx, quiz.RoundTwo)
	if err != nil {
		return View{}, fmt.Errorf("listing round two topics: %w", err)
	}
	round, err := m.store.Round(ctx)
	if err != nil {
		return View{}, fmt.Errorf("loading round: %w", err)
	}
	return View{
		GameState:       st,
		Teams:           teams,
		Topics:          topics,
		R2Topics:        r2Topics,
		AvailableTopics: AvailableTopics(topics, st.RoundOne.SelectedTopics),
		Round:           round,
	}, nil
}

// Round returns the current top-level round.
func (m *Machine) Round(ctx context.Context) (quiz.Round, error) {
	r, err := m.store.Round(ctx)
	if err != nil {
		return "", fmt.Errorf("loading round: %w", err)
	}
	return r, nil
}

// Questions lists the questions of one topic.
func (m *Machine) Questions(ctx context.Context, round quiz.RoundNumber, topicID int64) ([]quiz.Question, error) {
	if !round.Valid() {
		return nil, ErrInvalidRound
	}
	qs, err := m.bank.Questions(ctx, round, topicID)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	if qs == nil {
		qs = []quiz.Question{}
	}
	return qs, nil
}

// R2Options lists the stored answer options of a round-two question.
func (m *Machine) R2Options(ctx context.Context, questionID string) ([]string, error) {
	if _, err := m.bank.Question(ctx, quiz.RoundTwo, questionID); err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidQuestion
		}
		return nil, fmt.Errorf("loading question %q: %w", questionID, err)
	}
	options, err := m.bank.Options(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("loading options: %w", err)
	}
	if options == nil {
		options = []string{}
	}
	return options, nil
}
