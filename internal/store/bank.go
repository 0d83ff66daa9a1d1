package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/playperu/quizshow/internal/quiz"
)

func (s *SQLiteStore) Topics(ctx context.Context, round quiz.RoundNumber) ([]quiz.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM topics WHERE round = ? ORDER BY position, id
	`, int(round))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := []quiz.Topic{}
	for rows.Next() {
		var t quiz.Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (s *SQLiteStore) Topic(ctx context.Context, round quiz.RoundNumber, id int64) (quiz.Topic, error) {
	var t quiz.Topic
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM topics WHERE round = ? AND id = ?
	`, int(round), id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return t, quiz.ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) Questions(ctx context.Context, round quiz.RoundNumber, topicID int64) ([]quiz.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic_id, text, answer FROM questions
		WHERE round = ? AND topic_id = ?
		ORDER BY position, id
	`, int(round), topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []quiz.Question{}
	for rows.Next() {
		var q quiz.Question
		if err := rows.Scan(&q.ID, &q.TopicID, &q.Text, &q.Answer); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) Question(ctx context.Context, round quiz.RoundNumber, id string) (quiz.Question, error) {
	var q quiz.Question
	err := s.db.QueryRowContext(ctx, `
		SELECT id, topic_id, text, answer FROM questions WHERE round = ? AND id = ?
	`, int(round), id).Scan(&q.ID, &q.TopicID, &q.Text, &q.Answer)
	if errors.Is(err, sql.ErrNoRows) {
		return q, quiz.ErrNotFound
	}
	return q, err
}

// Options returns the multiple-choice options of a question in display
// order. Free-text questions have none.
func (s *SQLiteStore) Options(ctx context.Context, questionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT text FROM question_options WHERE question_id = ? ORDER BY position
	`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []string{}
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

func (s *SQLiteStore) CreateTopic(ctx context.Context, round quiz.RoundNumber, name string, position int) (quiz.Topic, error) {
	t := quiz.Topic{Name: name}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO topics (round, name, position) VALUES (?, ?, ?)
		RETURNING id
	`, int(round), name, position).Scan(&t.ID)
	return t, err
}

// CreateQuestion stores q together with its options.
func (s *SQLiteStore) CreateQuestion(ctx context.Context, round quiz.RoundNumber, q quiz.Question, options []string, position int) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO questions (id, round, topic_id, text, answer, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`, q.ID, int(round), q.TopicID, q.Text, q.Answer, position)
	if err != nil {
		return err
	}
	for i, o := range options {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO question_options (question_id, position, text) VALUES (?, ?, ?)
		`, q.ID, i, o); err != nil {
			return err
		}
	}
	return tx.Commit()
}
