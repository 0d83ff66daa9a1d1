// Package store is the SQLite-backed persistence of one quiz session: the
// game-state sections, the team directory and the question bank.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/playperu/quizshow/internal/game"
	"github.com/playperu/quizshow/internal/quiz"
)

const roundKey = "current_round"

// SQLiteStore implements game.Store, game.Directory and game.QuestionBank
// on a migrated database.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ game.Store        = (*SQLiteStore)(nil)
	_ game.Directory    = (*SQLiteStore)(nil)
	_ game.QuestionBank = (*SQLiteStore)(nil)
)

func New(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Ping reports whether the underlying database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns every section merged over its defaults. Team-state rows are
// created for team users that do not have one yet.
func (s *SQLiteStore) Load(ctx context.Context) (game.State, error) {
	if err := s.ensureTeamState(ctx); err != nil {
		return game.State{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT section, json(data) FROM game_state`)
	if err != nil {
		return game.State{}, err
	}
	defer rows.Close()

	raw := make(map[string][]byte, len(game.Sections))
	for rows.Next() {
		var section, data string
		if err := rows.Scan(&section, &data); err != nil {
			return game.State{}, err
		}
		raw[section] = []byte(data)
	}
	if err := rows.Err(); err != nil {
		return game.State{}, err
	}
	st, err := game.DecodeSections(raw)
	if err != nil {
		return game.State{}, fmt.Errorf("decoding sections: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) ensureTeamState(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO team_state (user_id)
		SELECT id FROM users WHERE role = 'team'
	`)
	return err
}

// Commit writes sections, score deltas and the hermes flag in one
// transaction.
func (s *SQLiteStore) Commit(ctx context.Context, c game.Commit) error {
	var sections map[string][]byte
	if c.State != nil {
		var err error
		if sections, err = game.EncodeSections(*c.State); err != nil {
			return fmt.Errorf("encoding sections: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, name := range game.Sections {
		data, ok := sections[name]
		if !ok {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_state (section, data) VALUES (?, jsonb(?))
			 ON CONFLICT(section) DO UPDATE SET data = excluded.data`,
			name, string(data),
		)
		if err != nil {
			return fmt.Errorf("writing section %s: %w", name, err)
		}
	}

	for teamID, delta := range c.ScoreDeltas {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO team_state (user_id, score) VALUES (?, ?)
			 ON CONFLICT(user_id) DO UPDATE SET score = team_state.score + excluded.score`,
			teamID, delta,
		)
		if err != nil {
			return fmt.Errorf("applying score delta for team %d: %w", teamID, err)
		}
	}

	if c.HermesUsed != 0 {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO team_state (user_id, hermes_used) VALUES (?, 1)
			 ON CONFLICT(user_id) DO UPDATE SET hermes_used = 1`,
			c.HermesUsed,
		)
		if err != nil {
			return fmt.Errorf("marking hermes for team %d: %w", c.HermesUsed, err)
		}
	}

	return tx.Commit()
}

// Reset drops every section row. The next Load returns defaults.
func (s *SQLiteStore) Reset(ctx context.Context) (game.State, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_state`); err != nil {
		return game.State{}, err
	}
	return game.Default(), nil
}

func (s *SQLiteStore) Round(ctx context.Context) (quiz.Round, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, roundKey,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.RoundPreOne, nil
	}
	if err != nil {
		return "", err
	}
	if r := quiz.Round(v); r.Valid() {
		return r, nil
	}
	return quiz.RoundPreOne, nil
}

func (s *SQLiteStore) SetRound(ctx context.Context, r quiz.Round) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		roundKey, string(r),
	)
	return err
}
