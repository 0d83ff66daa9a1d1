// Package session owns the live game sessions of a process. Each session
// has its own database, event bus and state machine.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/playperu/quizshow/internal/database"
	"github.com/playperu/quizshow/internal/eventbus"
	"github.com/playperu/quizshow/internal/game"
	"github.com/playperu/quizshow/internal/migrations"
	"github.com/playperu/quizshow/internal/seed"
	"github.com/playperu/quizshow/internal/store"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrInvalidName = errors.New("invalid session name")
)

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// Session is one running quiz game.
type Session struct {
	Name    string
	Store   *store.SQLiteStore
	Bus     *eventbus.Bus
	Machine *game.Machine

	db          *sql.DB
	stopJournal func()
}

// Check pings the session database.
func (s *Session) Check(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

type Options struct {
	// Dir holds one database file per session. database.Memory keeps every
	// session in memory.
	Dir    string
	Buffer int
	Seed   seed.Data
	Clock  clockwork.Clock
	Logger *slog.Logger
}

type Registry struct {
	opts     Options
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Registry{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get returns an open session.
func (r *Registry) Get(name string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[name]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Names lists open sessions in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open opens, migrates and seeds the named session. Opening an already
// open session returns it.
func (r *Registry) Open(ctx context.Context, name string) (*Session, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[name]; ok {
		return s, nil
	}
	s, err := r.open(ctx, name)
	if err != nil {
		return nil, err
	}
	r.sessions[name] = s
	return s, nil
}

func (r *Registry) open(ctx context.Context, name string) (*Session, error) {
	path := database.Memory
	if r.opts.Dir != database.Memory {
		path = filepath.Join(r.opts.Dir, name+".db")
	}
	db, err := database.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening session db %q: %w", name, err)
	}
	version, err := migrations.Run(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating session db %q: %w", name, err)
	}

	st := store.New(db)
	seeded, err := seed.Apply(ctx, st, r.opts.Seed)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding session %q: %w", name, err)
	}

	logger := r.opts.Logger.With("session", name)
	bus := eventbus.New(r.opts.Buffer, logger)
	m := game.NewMachine(st, st, st, bus,
		game.WithClock(r.opts.Clock),
		game.WithLogger(logger),
	)
	stopJournal := bus.SubscribeFunc(func(e eventbus.Event) error {
		logger.Debug("event published", "type", e.Type, "ts", e.TS)
		return nil
	})
	logger.Info("session opened", "path", path, "schema_version", version, "seeded", seeded)

	return &Session{Name: name, Store: st, Bus: bus, Machine: m, db: db, stopJournal: stopJournal}, nil
}

// Close closes every session database.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, s := range r.sessions {
		s.stopJournal()
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing session %q: %w", name, err))
		}
		delete(r.sessions, name)
	}
	return errors.Join(errs...)
}
