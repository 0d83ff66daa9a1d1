package game

import (
	"context"
	"fmt"
	"slices"

	"github.com/playperu/quizshow/internal/quiz"
)

// SetEligibleSelectors replaces the set of teams that may be picked as
// selector. Duplicates are dropped, first occurrence wins.
func (m *Machine) SetEligibleSelectors(ctx context.Context, ids []int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	eligible := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(eligible, id) {
			eligible = append(eligible, id)
		}
	}
	st.RoundOne.EligibleSelectors = eligible

	return m.saveState(ctx, st,
		m.event(EventR1Eligibility, EligibilityPayload{EligibleSelectors: eligible}))
}

// SetCurrentSelector hands the topic pick to a team, or clears it when id
// is nil. Membership in the eligible set is not checked so the host can
// override.
func (m *Machine) SetCurrentSelector(ctx context.Context, id *int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	st.RoundOne.CurrentSelector = clonePtr(id)

	return m.saveState(ctx, st,
		m.event(EventR1Selector, SelectorPayload{CurrentSelector: st.RoundOne.CurrentSelector}))
}

// SelectTopic lets the current selector claim a round-one topic.
func (m *Machine) SelectTopic(ctx context.Context, teamID, topicID int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r1 := &st.RoundOne
	if r1.CurrentSelector == nil || *r1.CurrentSelector != teamID {
		return State{}, ErrNotSelector
	}
	topics, err := m.bank.Topics(ctx, quiz.RoundOne)
	if err != nil {
		return State{}, fmt.Errorf("listing topics: %w", err)
	}
	if !slices.ContainsFunc(topics, func(t quiz.Topic) bool { return t.ID == topicID }) {
		return State{}, ErrInvalidTopic
	}
	for _, claimed := range r1.SelectedTopics {
		if claimed == topicID {
			return State{}, ErrTopicTaken
		}
	}
	if _, ok := r1.SelectedTopics[teamID]; ok {
		return State{}, ErrAlreadySelected
	}

	r1.SelectedTopics[teamID] = topicID
	r1.CurrentQuestionTopicID = ptr(topicID)
	r1.CurrentTopicSelectedBy = ptr(teamID)
	r1.CurrentQuestionID = nil
	r1.Options = []string{}
	r1.CurrentSelector = nil

	st, err = m.saveState(ctx, st, m.event(EventR1TopicSelected, TopicSelectedPayload{
		TeamID:          teamID,
		TopicID:         topicID,
		SelectedTopics:  r1.SelectedTopics,
		AvailableTopics: AvailableTopics(topics, r1.SelectedTopics),
	}))
	if err != nil {
		return State{}, err
	}
	m.logger.Info("topic selected", "team_id", teamID, "topic_id", topicID)
	return st, nil
}

// AvailableTopics lists the ids of topics no team has claimed yet, in
// question-bank order.
func AvailableTopics(topics []quiz.Topic, selected map[int64]int64) []int64 {
	claimed := make(map[int64]bool, len(selected))
	for _, id := range selected {
		claimed[id] = true
	}
	out := []int64{}
	for _, t := range topics {
		if !claimed[t.ID] {
			out = append(out, t.ID)
		}
	}
	return out
}

func (m *Machine) SetQuestionVisible(ctx context.Context, visible bool) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	st.RoundOne.QuestionVisible = visible

	return m.saveState(ctx, st, m.event(EventR1Question, VisibilityPayload{Visible: visible}))
}

// SetCurrentQuestion shows a round-one question, or clears it when id is
// nil. A new question always starts a fresh buzz race.
func (m *Machine) SetCurrentQuestion(ctx context.Context, id *string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	r1 := &st.RoundOne

	options := []string{}
	if id != nil {
		q, err := m.bank.Question(ctx, quiz.RoundOne, *id)
		if isNotFound(err) {
			return State{}, ErrInvalidQuestion
		}
		if err != nil {
			return State{}, fmt.Errorf("loading question %q: %w", *id, err)
		}
		if r1.CurrentQuestionTopicID != nil && q.TopicID != *r1.CurrentQuestionTopicID {
			return State{}, ErrTopicMismatch
		}
		if options, err = m.bank.Options(ctx, q.ID); err != nil {
			return State{}, fmt.Errorf("loading options: %w", err)
		}
	}

	if options == nil {
		options = []string{}
	}
	r1.CurrentQuestionID = clonePtr(id)
	r1.Options = options
	st.Buzz = defaultBuzz()

	return m.saveState(ctx, st,
		m.event(EventR1QuestionSelected, QuestionSelectedPayload{ID: r1.CurrentQuestionID, TopicID: r1.CurrentQuestionTopicID}),
		m.event(EventBuzzAllow, BuzzPayload{Allowed: false, Winner: nil}),
		m.event(EventR1Options, OptionsPayload{Options: options}),
	)
}
