// Package game holds the authoritative state machine of a quiz session:
// round-one topic selection, the buzz race, the Hermes power-up and the
// round-two wagering flow. Every mutation runs as one serialized
// load-validate-commit-publish unit.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/playperu/quizshow/internal/eventbus"
	"github.com/playperu/quizshow/internal/quiz"
)

// Store persists the game-state sections and team score rows of a session.
type Store interface {
	Load(ctx context.Context) (State, error)
	Commit(ctx context.Context, c Commit) error
	Reset(ctx context.Context) (State, error)
	Round(ctx context.Context) (quiz.Round, error)
	SetRound(ctx context.Context, r quiz.Round) error
}

// Commit is one atomic write. State is nil when no section changes.
type Commit struct {
	State       *State
	ScoreDeltas map[int64]int
	HermesUsed  int64
}

// Directory resolves teams. Team returns quiz.ErrNotFound for unknown ids.
type Directory interface {
	Teams(ctx context.Context) ([]quiz.Team, error)
	Team(ctx context.Context, id int64) (quiz.Team, error)
}

// QuestionBank is the read-only question store. Lookups of unknown ids
// return quiz.ErrNotFound.
type QuestionBank interface {
	Topics(ctx context.Context, round quiz.RoundNumber) ([]quiz.Topic, error)
	Topic(ctx context.Context, round quiz.RoundNumber, id int64) (quiz.Topic, error)
	Questions(ctx context.Context, round quiz.RoundNumber, topicID int64) ([]quiz.Question, error)
	Question(ctx context.Context, round quiz.RoundNumber, id string) (quiz.Question, error)
	Options(ctx context.Context, questionID string) ([]string, error)
}

type Machine struct {
	mu     sync.Mutex
	store  Store
	dir    Directory
	bank   QuestionBank
	bus    *eventbus.Bus
	clock  clockwork.Clock
	logger *slog.Logger
}

type Option func(*Machine)

func WithClock(c clockwork.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

func NewMachine(store Store, dir Directory, bank QuestionBank, bus *eventbus.Bus, opts ...Option) *Machine {
	m := &Machine{
		store:  store,
		dir:    dir,
		bank:   bank,
		bus:    bus,
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) event(typ string, payload any) eventbus.Event {
	return eventbus.Event{Type: typ, Payload: payload, TS: m.clock.Now().UnixMilli()}
}

// InitEvent wraps the public view of a snapshot as the first event of a
// stream.
func (m *Machine) InitEvent(st State) eventbus.Event {
	return m.event(EventInit, st.Public())
}

// Subscribe captures the current state and registers a subscriber in one
// step, so no event committed after the snapshot is missed and none before
// it is delivered.
func (m *Machine) Subscribe(ctx context.Context) (State, *eventbus.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.store.Load(ctx)
	if err != nil {
		return State{}, nil, fmt.Errorf("loading state: %w", err)
	}
	return st, m.bus.Subscribe(), nil
}

// load must be called with m.mu held.
func (m *Machine) load(ctx context.Context) (State, error) {
	st, err := m.store.Load(ctx)
	if err != nil {
		return State{}, fmt.Errorf("loading state: %w", err)
	}
	return st, nil
}

// commit persists c and then publishes events in order. Must be called
// with m.mu held.
func (m *Machine) commit(ctx context.Context, c Commit, events ...eventbus.Event) error {
	if err := m.store.Commit(ctx, c); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	for _, e := range events {
		m.bus.Publish(e)
	}
	return nil
}

// saveState commits st alone and publishes events once it is durable.
func (m *Machine) saveState(ctx context.Context, st State, events ...eventbus.Event) (State, error) {
	if err := m.commit(ctx, Commit{State: &st}, events...); err != nil {
		return State{}, err
	}
	return st, nil
}

func (m *Machine) teams(ctx context.Context) ([]quiz.Team, error) {
	teams, err := m.dir.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	return teams, nil
}

func (m *Machine) team(ctx context.Context, id int64) (quiz.Team, error) {
	t, err := m.dir.Team(ctx, id)
	if isNotFound(err) {
		return quiz.Team{}, ErrUnknownTeam
	}
	if err != nil {
		return quiz.Team{}, fmt.Errorf("loading team %d: %w", id, err)
	}
	return t, nil
}

// ResetGameState clears every section and broadcasts a single init event.
func (m *Machine) ResetGameState(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.store.Reset(ctx)
	if err != nil {
		return State{}, fmt.Errorf("resetting state: %w", err)
	}
	m.bus.Publish(m.InitEvent(st))
	m.logger.Info("game state reset")
	return st, nil
}

// AdjustScore adds delta to a team's score.
func (m *Machine) AdjustScore(ctx context.Context, teamID int64, delta int) ([]quiz.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.team(ctx, teamID); err != nil {
		return nil, err
	}
	if err := m.store.Commit(ctx, Commit{ScoreDeltas: map[int64]int{teamID: delta}}); err != nil {
		return nil, fmt.Errorf("committing score: %w", err)
	}
	teams, err := m.teams(ctx)
	if err != nil {
		return nil, err
	}
	m.bus.Publish(m.event(EventScoreUpdate, TeamsPayload{Teams: teams}))
	m.logger.Info("score adjusted", "team_id", teamID, "delta", delta)
	return teams, nil
}

// SetRound moves the show to another top-level round.
func (m *Machine) SetRound(ctx context.Context, r quiz.Round) (quiz.Round, error) {
	if !r.Valid() {
		return "", ErrInvalidRound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetRound(ctx, r); err != nil {
		return "", fmt.Errorf("saving round: %w", err)
	}
	m.bus.Publish(m.event(EventRound, RoundPayload{Round: r}))
	m.logger.Info("round changed", "round", r)
	return r, nil
}

func isNotFound(err error) bool { return errors.Is(err, quiz.ErrNotFound) }
