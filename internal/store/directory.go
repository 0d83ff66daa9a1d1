package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/quizshow/internal/quiz"
)

const teamColumns = `u.id, u.username, COALESCE(ts.score, 0), COALESCE(ts.hermes_used, 0)`

func (s *SQLiteStore) Teams(ctx context.Context) ([]quiz.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+teamColumns+`
		FROM users u
		LEFT JOIN team_state ts ON ts.user_id = u.id
		WHERE u.role = 'team'
		ORDER BY u.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []quiz.Team{}
	for rows.Next() {
		var t quiz.Team
		if err := rows.Scan(&t.ID, &t.Username, &t.Score, &t.HermesUsed); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLiteStore) Team(ctx context.Context, id int64) (quiz.Team, error) {
	var t quiz.Team
	err := s.db.QueryRowContext(ctx, `
		SELECT `+teamColumns+`
		FROM users u
		LEFT JOIN team_state ts ON ts.user_id = u.id
		WHERE u.id = ? AND u.role = 'team'
	`, id).Scan(&t.ID, &t.Username, &t.Score, &t.HermesUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return t, quiz.ErrNotFound
	}
	return t, err
}

// Authenticate checks a username/password pair. Usernames match without
// regard to case.
func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) (quiz.User, error) {
	var (
		u    quiz.User
		hash string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, role, password_hash FROM users WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &u.Role, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.User{}, quiz.ErrInvalidCredentials
	}
	if err != nil {
		return quiz.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return quiz.User{}, quiz.ErrInvalidCredentials
	}
	return u, nil
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CreateUser stores a user with a bcrypt hash of password. Teams get their
// score row immediately.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, password string, role quiz.Role, score int) (quiz.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return quiz.User{}, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return quiz.User{}, err
	}
	defer tx.Rollback()

	u := quiz.User{Username: username, Role: role}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)
		RETURNING id
	`, username, string(hash), string(role)).Scan(&u.ID)
	if err != nil {
		return quiz.User{}, fmt.Errorf("inserting user %q: %w", username, err)
	}
	if role == quiz.RoleTeam {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO team_state (user_id, score) VALUES (?, ?)`, u.ID, score,
		); err != nil {
			return quiz.User{}, fmt.Errorf("inserting team state: %w", err)
		}
	}
	return u, tx.Commit()
}
