package game

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/playperu/quizshow/internal/eventbus"
	"github.com/playperu/quizshow/internal/quiz"
)

// memStore is an in-memory Store and Directory.
type memStore struct {
	mu    sync.Mutex
	state State
	teams map[int64]*quiz.Team
	round quiz.Round
}

func newMemStore(teams ...quiz.Team) *memStore {
	s := &memStore{state: Default(), teams: map[int64]*quiz.Team{}, round: quiz.RoundPreOne}
	for _, t := range teams {
		s.teams[t.ID] = &t
	}
	return s
}

func (s *memStore) Load(context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

func (s *memStore) Commit(_ context.Context, c Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.State != nil {
		st := c.State.Clone()
		st.normalize()
		s.state = st
	}
	for id, d := range c.ScoreDeltas {
		if t, ok := s.teams[id]; ok {
			t.Score += d
		}
	}
	if t, ok := s.teams[c.HermesUsed]; ok {
		t.HermesUsed = true
	}
	return nil
}

func (s *memStore) Reset(context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Default()
	return s.state.Clone(), nil
}

func (s *memStore) Round(context.Context) (quiz.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round, nil
}

func (s *memStore) SetRound(_ context.Context, r quiz.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = r
	return nil
}

func (s *memStore) Teams(context.Context) ([]quiz.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]quiz.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b quiz.Team) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *memStore) Team(_ context.Context, id int64) (quiz.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return quiz.Team{}, quiz.ErrNotFound
	}
	return *t, nil
}

func (s *memStore) score(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teams[id].Score
}

type memBank struct {
	topics    map[quiz.RoundNumber][]quiz.Topic
	questions map[quiz.RoundNumber][]quiz.Question
	options   map[string][]string
}

func (b *memBank) Topics(_ context.Context, round quiz.RoundNumber) ([]quiz.Topic, error) {
	return b.topics[round], nil
}

func (b *memBank) Topic(_ context.Context, round quiz.RoundNumber, id int64) (quiz.Topic, error) {
	for _, t := range b.topics[round] {
		if t.ID == id {
			return t, nil
		}
	}
	return quiz.Topic{}, quiz.ErrNotFound
}

func (b *memBank) Questions(_ context.Context, round quiz.RoundNumber, topicID int64) ([]quiz.Question, error) {
	var out []quiz.Question
	for _, q := range b.questions[round] {
		if q.TopicID == topicID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (b *memBank) Question(_ context.Context, round quiz.RoundNumber, id string) (quiz.Question, error) {
	for _, q := range b.questions[round] {
		if q.ID == id {
			return q, nil
		}
	}
	return quiz.Question{}, quiz.ErrNotFound
}

func (b *memBank) Options(_ context.Context, questionID string) ([]string, error) {
	return b.options[questionID], nil
}

func testBank() *memBank {
	return &memBank{
		topics: map[quiz.RoundNumber][]quiz.Topic{
			quiz.RoundOne: {{ID: 1, Name: "History"}, {ID: 2, Name: "Science"}, {ID: 3, Name: "Art"}},
			quiz.RoundTwo: {{ID: 10, Name: "Geography"}, {ID: 11, Name: "Music"}, {ID: 12, Name: "Empty"}},
		},
		questions: map[quiz.RoundNumber][]quiz.Question{
			quiz.RoundOne: {
				{ID: "h1", TopicID: 1, Text: "Who built Machu Picchu?", Answer: "The Inca"},
				{ID: "s1", TopicID: 2, Text: "Symbol for gold?", Answer: "Au"},
			},
			quiz.RoundTwo: {
				{ID: "g1", TopicID: 10, Text: "Capital of Peru?", Answer: "Lima"},
				{ID: "g2", TopicID: 10, Text: "Longest river?", Answer: "Amazon"},
				{ID: "m1", TopicID: 11, Text: "Pick the instrument", Answer: "Charango"},
			},
		},
		options: map[string][]string{
			"s1": {"Au", "Ag", "Fe"},
			"m1": {"Charango", "Cajon"},
		},
	}
}

var testEpoch = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

type fixture struct {
	m     *Machine
	store *memStore
	bus   *eventbus.Bus
	sub   *eventbus.Subscription
	clock *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore(
		quiz.Team{ID: 1, Username: "team1", Score: 100},
		quiz.Team{ID: 2, Username: "team2", Score: 100},
		quiz.Team{ID: 3, Username: "team3", Score: 100},
		quiz.Team{ID: 4, Username: "team4", Score: 20},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(256, logger)
	clock := clockwork.NewFakeClockAt(testEpoch)
	m := NewMachine(store, store, testBank(), bus, WithClock(clock), WithLogger(logger))
	sub := bus.Subscribe()
	t.Cleanup(sub.Close)
	return &fixture{m: m, store: store, bus: bus, sub: sub, clock: clock}
}

// drain returns every event published so far.
func (f *fixture) drain() []eventbus.Event {
	var out []eventbus.Event
	for {
		select {
		case e := <-f.sub.C():
			out = append(out, e)
		default:
			return out
		}
	}
}

func (f *fixture) types() []string {
	var out []string
	for _, e := range f.drain() {
		out = append(out, e.Type)
	}
	return out
}
