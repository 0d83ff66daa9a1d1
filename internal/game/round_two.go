package game

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/playperu/quizshow/internal/eventbus"
	"github.com/playperu/quizshow/internal/quiz"
)

// SetR2Topic starts a new wagering cycle on a round-two topic. The section
// is reset and the first question of the topic, if any, is preloaded.
func (m *Machine) SetR2Topic(ctx context.Context, topicID int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.bank.Topic(ctx, quiz.RoundTwo, topicID); err != nil {
		if isNotFound(err) {
			return State{}, ErrInvalidTopic
		}
		return State{}, fmt.Errorf("loading topic %d: %w", topicID, err)
	}
	questions, err := m.bank.Questions(ctx, quiz.RoundTwo, topicID)
	if err != nil {
		return State{}, fmt.Errorf("listing questions: %w", err)
	}
	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}

	r2 := defaultRoundTwo()
	r2.TopicID = ptr(topicID)
	r2.Stage = StageTopic
	events := []eventbus.Event{m.event(EventR2Topic, TopicPayload{TopicID: r2.TopicID})}
	if len(questions) > 0 {
		if err := m.loadR2Question(ctx, &r2, questions[0]); err != nil {
			return State{}, err
		}
		events = append(events, m.event(EventR2QuestionSelected, QuestionSelectedPayload{
			ID: r2.CurrentQuestionID, TopicID: r2.TopicID, Text: r2.CurrentQuestionText,
		}))
	}
	st.RoundTwo = r2

	st, err = m.saveState(ctx, st, events...)
	if err != nil {
		return State{}, err
	}
	m.logger.Info("round two topic set", "topic_id", topicID)
	return st, nil
}

func (m *Machine) loadR2Question(ctx context.Context, r2 *RoundTwo, q quiz.Question) error {
	options, err := m.bank.Options(ctx, q.ID)
	if err != nil {
		return fmt.Errorf("loading options: %w", err)
	}
	if options == nil {
		options = []string{}
	}
	r2.CurrentQuestionID = ptr(q.ID)
	r2.CurrentQuestionText = ptr(q.Text)
	r2.Options = options
	r2.OptionsVisible = false
	return nil
}

// RevealR2Topic shows the topic to the teams, which opens betting.
func (m *Machine) RevealR2Topic(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	if st.RoundTwo.TopicID == nil {
		return State{}, ErrNoTopicSet
	}
	if st.RoundTwo.TopicVisible {
		return st, nil
	}
	st.RoundTwo.TopicVisible = true

	return m.saveState(ctx, st, m.event(EventR2TopicVisible, VisibilityPayload{Visible: true}))
}

// SetMaxBet sets the table limit. Negative values clamp to zero, which
// means no limit beyond each team's score. Bets above a new positive limit
// are lowered to it.
func (m *Machine) SetMaxBet(ctx context.Context, n int) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	r2.MaxBet = max(n, 0)
	if r2.MaxBet > 0 {
		for id, bet := range r2.Bets {
			if bet > r2.MaxBet {
				r2.Bets[id] = r2.MaxBet
				m.logger.Info("bet lowered to max bet", "team_id", id, "from", bet, "to", r2.MaxBet)
			}
		}
	}

	return m.saveState(ctx, st, m.event(EventR2MaxBet, MaxBetPayload{MaxBet: r2.MaxBet, Bets: r2.Bets}))
}

// SetR2Options replaces the answer options of the current round-two
// question. Blank and repeated options are dropped. A nil visible keeps the
// current visibility.
func (m *Machine) SetR2Options(ctx context.Context, options []string, visible *bool) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	if r2.TopicID == nil {
		return State{}, ErrNoTopicSet
	}
	if r2.Stage == StageRevealed {
		return State{}, ErrAnswerFinal
	}
	list := make([]string, 0, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o != "" && !slices.Contains(list, o) {
			list = append(list, o)
		}
	}
	r2.Options = list
	if visible != nil {
		r2.OptionsVisible = *visible
	}

	return m.saveState(ctx, st, m.event(EventR2Options, R2OptionsPayload{
		Options: r2.Options, Visible: r2.OptionsVisible,
	}))
}

// SelectR2Question swaps the round-two question without touching bets.
func (m *Machine) SelectR2Question(ctx context.Context, id *string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	if id == nil {
		r2.CurrentQuestionID = nil
		r2.CurrentQuestionText = nil
		r2.Options = []string{}
	} else {
		q, err := m.bank.Question(ctx, quiz.RoundTwo, *id)
		if isNotFound(err) {
			return State{}, ErrInvalidQuestion
		}
		if err != nil {
			return State{}, fmt.Errorf("loading question %q: %w", *id, err)
		}
		if r2.TopicID != nil && q.TopicID != *r2.TopicID {
			return State{}, ErrTopicMismatch
		}
		if err := m.loadR2Question(ctx, r2, q); err != nil {
			return State{}, err
		}
	}

	return m.saveState(ctx, st, m.event(EventR2QuestionSelected, QuestionSelectedPayload{
		ID: r2.CurrentQuestionID, TopicID: r2.TopicID, Text: r2.CurrentQuestionText,
	}))
}

// SetR2QuestionVisible shows or hides the question. Showing it for the first
// time moves betting to the increase-only stage.
func (m *Machine) SetR2QuestionVisible(ctx context.Context, visible bool) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	r2.QuestionVisible = visible
	if visible && r2.Stage == StageTopic {
		r2.Stage = StageQuestion
	}

	return m.saveState(ctx, st, m.event(EventR2Question, VisibilityPayload{Visible: visible, Stage: r2.Stage}))
}

// SetAnswerWindow opens or closes answer submission.
func (m *Machine) SetAnswerWindow(ctx context.Context, open bool) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	if open {
		if r2.TopicID == nil {
			return State{}, ErrNoTopicSet
		}
		if r2.Stage == StageRevealed {
			return State{}, ErrAnswerFinal
		}
		r2.AnswerWindowOpen = true
		r2.Stage = StageAnswer
	} else {
		r2.AnswerWindowOpen = false
		if r2.Stage == StageAnswer {
			r2.Stage = StageQuestion
		}
	}

	return m.saveState(ctx, st, m.event(EventR2AnswerWindow, AnswerWindowPayload{Open: r2.AnswerWindowOpen, Stage: r2.Stage}))
}

// PlaceBet records a team's wager. Bets are capped by the table limit and
// the team's score, and may only grow once the question is shown.
func (m *Machine) PlaceBet(ctx context.Context, teamID int64, amount int) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.team(ctx, teamID)
	if err != nil {
		return State{}, err
	}
	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	switch {
	case r2.TopicID == nil:
		return State{}, ErrNoTopicSet
	case !r2.TopicVisible:
		return State{}, ErrTopicNotRevealed
	case r2.Stage != StageTopic && r2.Stage != StageQuestion:
		return State{}, ErrBettingClosed
	case amount < 0:
		return State{}, ErrInvalidAmount
	case r2.Stage == StageQuestion && amount < r2.Bets[teamID]:
		return State{}, ErrCannotDecrease
	case amount > BetLimit(r2.MaxBet, t.Score):
		return State{}, ErrExceedsLimit
	}
	r2.Bets[teamID] = amount

	st, err = m.saveState(ctx, st, m.event(EventR2Bet, BetPayload{TeamID: teamID, Amount: amount}))
	if err != nil {
		return State{}, err
	}
	m.logger.Info("bet placed", "team_id", teamID, "amount", amount)
	return st, nil
}

// BetLimit is the largest bet a team holding score may place. A zero
// table limit means only the score caps the bet.
func BetLimit(maxBet, score int) int {
	if maxBet <= 0 {
		return score
	}
	return min(maxBet, score)
}

// SubmitAnswer stores a team's answer while the window is open. When the
// question has options the answer must be one of them.
func (m *Machine) SubmitAnswer(ctx context.Context, teamID int64, text string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.team(ctx, teamID); err != nil {
		return State{}, err
	}
	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	if !r2.AnswerWindowOpen {
		return State{}, ErrWindowClosed
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		return State{}, ErrInvalidAnswer
	}
	if len(r2.Options) > 0 && !slices.Contains(r2.Options, answer) {
		return State{}, ErrInvalidAnswer
	}
	r2.Answers[teamID] = answer

	return m.saveState(ctx, st, m.event(EventR2Answer, AnswerPayload{TeamID: teamID}))
}

// RevealCorrectAnswer fixes the correct answer and freezes bets and
// answers. With explicit nil the answer stored for the current question
// is used.
func (m *Machine) RevealCorrectAnswer(ctx context.Context, explicit *string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	if r2.Stage == StageRevealed {
		return State{}, ErrAnswerFinal
	}

	var correct string
	if explicit != nil {
		correct = strings.TrimSpace(*explicit)
	} else {
		if r2.CurrentQuestionID == nil {
			return State{}, ErrNoQuestion
		}
		q, err := m.bank.Question(ctx, quiz.RoundTwo, *r2.CurrentQuestionID)
		if isNotFound(err) {
			return State{}, ErrInvalidQuestion
		}
		if err != nil {
			return State{}, fmt.Errorf("loading question %q: %w", *r2.CurrentQuestionID, err)
		}
		correct = strings.TrimSpace(q.Answer)
	}
	if correct == "" {
		return State{}, ErrNoCorrectAnswer
	}

	r2.CorrectAnswer = ptr(correct)
	r2.Stage = StageRevealed
	r2.AnswerWindowOpen = false

	return m.saveState(ctx, st, m.event(EventR2AnswerRevealed, AnswerRevealedPayload{CorrectAnswer: correct}))
}

// SetManualCorrect marks teams as correct regardless of their typed answer.
func (m *Machine) SetManualCorrect(ctx context.Context, teamIDs []int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r2 := &st.RoundTwo
	if r2.TopicID == nil {
		return State{}, ErrNoTopicSet
	}
	ids := make([]int64, 0, len(teamIDs))
	for _, id := range teamIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	r2.ManualCorrect = ids

	return m.saveState(ctx, st, m.event(EventR2ManualCorrect, ManualCorrectPayload{TeamIDs: ids}))
}

// SettleResult is returned by Settle.
type SettleResult struct {
	State      State       `json:"state"`
	Settlement Settlement  `json:"settlement"`
	Teams      []quiz.Team `json:"teams"`
}

// Settle pays out the current question and returns round two to idle.
// Score changes and the section reset commit together.
func (m *Machine) Settle(ctx context.Context) (SettleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return SettleResult{}, err
	}
	r2 := st.RoundTwo
	if r2.CorrectAnswer == nil || *r2.CorrectAnswer == "" {
		return SettleResult{}, ErrNoCorrectAnswer
	}
	teams, err := m.teams(ctx)
	if err != nil {
		return SettleResult{}, err
	}
	scores := make(map[int64]int, len(teams))
	for _, t := range teams {
		scores[t.ID] = t.Score
	}

	s := Settle(r2, *r2.CorrectAnswer, scores)
	st.RoundTwo = defaultRoundTwo()

	if err := m.store.Commit(ctx, Commit{State: &st, ScoreDeltas: s.Deltas}); err != nil {
		return SettleResult{}, fmt.Errorf("committing settlement: %w", err)
	}
	if teams, err = m.teams(ctx); err != nil {
		return SettleResult{}, err
	}
	m.bus.Publish(m.event(EventR2Settled, SettledPayload{Settlement: s, Teams: teams}))
	m.logger.Info("round two settled", "pot", s.Pot, "winners", s.Winners)
	return SettleResult{State: st, Settlement: s, Teams: teams}, nil
}
