// Package seed loads the users and question bank of a fresh session
// database from YAML.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/playperu/quizshow/internal/quiz"
)

//go:embed default.yaml
var defaultData []byte

type Data struct {
	Users    []User  `yaml:"users"`
	RoundOne []Topic `yaml:"round_one"`
	RoundTwo []Topic `yaml:"round_two"`
}

type User struct {
	Username string    `yaml:"username"`
	Password string    `yaml:"password"`
	Role     quiz.Role `yaml:"role"`
	Score    int       `yaml:"score"`
}

type Topic struct {
	Name      string     `yaml:"name"`
	Questions []Question `yaml:"questions"`
}

type Question struct {
	ID      string   `yaml:"id"`
	Text    string   `yaml:"text"`
	Answer  string   `yaml:"answer"`
	Options []string `yaml:"options"`
}

// Target is what Apply writes into. store.SQLiteStore satisfies it.
type Target interface {
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, username, password string, role quiz.Role, score int) (quiz.User, error)
	CreateTopic(ctx context.Context, round quiz.RoundNumber, name string, position int) (quiz.Topic, error)
	CreateQuestion(ctx context.Context, round quiz.RoundNumber, q quiz.Question, options []string, position int) error
}

// Load reads seed data from path, or the embedded default when path is
// empty.
func Load(path string) (Data, error) {
	raw := defaultData
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return Data{}, fmt.Errorf("reading seed file: %w", err)
		}
	}
	return Parse(raw)
}

func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("parsing seed data: %w", err)
	}
	if err := d.validate(); err != nil {
		return Data{}, err
	}
	return d, nil
}

func (d Data) validate() error {
	seen := map[string]bool{}
	for _, u := range d.Users {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("user %q: username and password are required", u.Username)
		}
		if u.Role != quiz.RoleAdmin && u.Role != quiz.RoleTeam {
			return fmt.Errorf("user %q: unknown role %q", u.Username, u.Role)
		}
	}
	for _, topics := range [][]Topic{d.RoundOne, d.RoundTwo} {
		for _, t := range topics {
			for _, q := range t.Questions {
				if q.ID == "" {
					return fmt.Errorf("topic %q: question without id", t.Name)
				}
				if seen[q.ID] {
					return fmt.Errorf("duplicate question id %q", q.ID)
				}
				seen[q.ID] = true
			}
		}
	}
	return nil
}

// Apply writes d into an empty database. It does nothing when users
// already exist, and reports whether it seeded.
func Apply(ctx context.Context, dst Target, d Data) (bool, error) {
	n, err := dst.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	for _, u := range d.Users {
		if _, err := dst.CreateUser(ctx, u.Username, u.Password, u.Role, u.Score); err != nil {
			return false, err
		}
	}
	rounds := []struct {
		number quiz.RoundNumber
		topics []Topic
	}{
		{quiz.RoundOne, d.RoundOne},
		{quiz.RoundTwo, d.RoundTwo},
	}
	for _, r := range rounds {
		for i, t := range r.topics {
			topic, err := dst.CreateTopic(ctx, r.number, t.Name, i)
			if err != nil {
				return false, fmt.Errorf("creating topic %q: %w", t.Name, err)
			}
			for j, q := range t.Questions {
				question := quiz.Question{ID: q.ID, TopicID: topic.ID, Text: q.Text, Answer: q.Answer}
				if err := dst.CreateQuestion(ctx, r.number, question, q.Options, j); err != nil {
					return false, fmt.Errorf("creating question %q: %w", q.ID, err)
				}
			}
		}
	}
	return true, nil
}
