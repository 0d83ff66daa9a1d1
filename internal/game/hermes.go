package game

import (
	"context"
	"fmt"

	"github.com/playperu/quizshow/internal/quiz"
)

// UseHermes spends a team's one-shot power-up and raises the visible cue.
func (m *Machine) UseHermes(ctx context.Context, teamID int64) (State, []quiz.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.team(ctx, teamID)
	if err != nil {
		return State{}, nil, err
	}
	if t.HermesUsed {
		return State{}, nil, ErrHermesUsed
	}
	st, err := m.load(ctx)
	if err != nil {
		return State{}, nil, err
	}
	st.Hermes.LastUsedByID = ptr(teamID)

	if err := m.store.Commit(ctx, Commit{State: &st, HermesUsed: teamID}); err != nil {
		return State{}, nil, fmt.Errorf("committing hermes: %w", err)
	}
	teams, err := m.teams(ctx)
	if err != nil {
		return State{}, nil, err
	}
	m.bus.Publish(m.event(EventHermesUsed, HermesUsedPayload{
		TeamID:       teamID,
		LastUsedByID: st.Hermes.LastUsedByID,
		Teams:        teams,
	}))
	m.logger.Info("hermes used", "team_id", teamID)
	return st, teams, nil
}

// ClearHermesCue hides the cue. The usage flag itself is never reset.
func (m *Machine) ClearHermesCue(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	st.Hermes.LastUsedByID = nil

	return m.saveState(ctx, st, m.event(EventHermesCleared, struct{}{}))
}
