// Package quiz defines the core domain types shared by the game machine,
// the stores and the HTTP layer. It has zero external dependencies.
package quiz

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleTeam  Role = "team"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Team is a user with role "team" joined with its score record.
type Team struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Score      int    `json:"score"`
	HermesUsed bool   `json:"hermesUsed"`
}

// RoundNumber selects the question bank of round one or round two.
type RoundNumber int

const (
	RoundOne RoundNumber = 1
	RoundTwo RoundNumber = 2
)

func (n RoundNumber) Valid() bool { return n == RoundOne || n == RoundTwo }

type Topic struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Question struct {
	ID      string `json:"id"`
	TopicID int64  `json:"topicId"`
	Text    string `json:"text"`
	Answer  string `json:"-"`
}

// Round is the top-level phase of the show the clients navigate to.
type Round string

const (
	RoundPreOne Round = "pre-round-one"
	RoundFirst  Round = "round-one"
	RoundSecond Round = "round-two"
)

var Rounds = []Round{RoundPreOne, RoundFirst, RoundSecond}

func (r Round) Valid() bool {
	for _, v := range Rounds {
		if r == v {
			return true
		}
	}
	return false
}
