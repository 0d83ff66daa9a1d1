package game

import (
	"context"
	"slices"
)

// SetBuzzAllowed opens or closes the buzzers. Opening starts a fresh race
// but keeps the history of teams that already won on this question.
func (m *Machine) SetBuzzAllowed(ctx context.Context, allowed bool) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	st.Buzz.Allowed = allowed
	if allowed {
		st.Buzz.Winner = nil
	}

	return m.saveState(ctx, st,
		m.event(EventBuzzAllow, BuzzPayload{Allowed: st.Buzz.Allowed, Winner: st.Buzz.Winner}))
}

// BuzzIn claims the single winner slot. The first call to reach the lock
// wins; every later call sees the closed buzzer.
func (m *Machine) BuzzIn(ctx context.Context, teamID int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	b := &st.Buzz
	if !b.Allowed || b.Winner != nil {
		return State{}, ErrBuzzClosed
	}
	if sel := st.RoundOne.CurrentTopicSelectedBy; sel != nil && *sel == teamID {
		return State{}, ErrSelectorCannotBuzz
	}
	if slices.Contains(b.Winners, teamID) {
		return State{}, ErrAlreadyBuzzed
	}

	b.Winner = ptr(teamID)
	b.Allowed = false
	b.Winners = append(b.Winners, teamID)

	st, err = m.saveState(ctx, st,
		m.event(EventBuzzWinner, BuzzPayload{Allowed: false, Winner: b.Winner}))
	if err != nil {
		return State{}, err
	}
	m.logger.Info("buzz winner", "team_id", teamID)
	return st, nil
}
