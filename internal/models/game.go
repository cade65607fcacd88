package models

import (
	"fmt"
	"strings"
	"time"
)

// Move is a hand shape a player or the AI can throw
type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// Moves lists every move in enumeration order. Tie-breaks rely on this order.
var Moves = []Move{Rock, Paper, Scissors}

// ParseMove converts a wire value into a Move
func ParseMove(s string) (Move, error) {
	switch m := Move(strings.ToLower(strings.TrimSpace(s))); m {
	case Rock, Paper, Scissors:
		return m, nil
	default:
		return "", fmt.Errorf("invalid move %q", s)
	}
}

// Valid reports whether m is one of the three moves
func (m Move) Valid() bool {
	return m == Rock || m == Paper || m == Scissors
}

// Outcome is the result of a single round from the player's perspective
type Outcome string

const (
	PlayerWin Outcome = "player_win"
	AIWin     Outcome = "ai_win"
	Draw      Outcome = "draw"
)

// ParseOutcome converts a stored value into an Outcome
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case PlayerWin, AIWin, Draw:
		return o, nil
	default:
		return "", fmt.Errorf("invalid outcome %q", s)
	}
}

// SessionStatus tracks whether a game session still accepts rounds
type SessionStatus string

const (
	StatusPlaying  SessionStatus = "playing"
	StatusFinished SessionStatus = "finished"
)

// DefaultTotalRounds is the number of rounds in a match unless configured otherwise
const DefaultTotalRounds = 5

// RoundRecord is one resolved round. Records are append-only.
type RoundRecord struct {
	Number     int       `json:"number"`
	PlayerMove Move      `json:"playerChoice"`
	AIMove     Move      `json:"aiChoice"`
	Outcome    Outcome   `json:"result"`
	WasTimeout bool      `json:"wasTimeout"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GameSession is a single match between a player and an opponent
type GameSession struct {
	ID          string        `json:"id"`
	OpponentID  int64         `json:"aiId"`
	PlayerName  string        `json:"playerName"`
	TotalRounds int           `json:"totalRounds"`
	PlayerWins  int           `json:"playerWins"`
	AIWins      int           `json:"aiWins"`
	Draws       int           `json:"draws"`
	Status      SessionStatus `json:"status"`
	AIComment   string        `json:"aiComment,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	FinishedAt  *time.Time    `json:"finishedAt,omitempty"`
}

// RoundsPlayed returns how many rounds have been recorded, derived from the tallies
func (s *GameSession) RoundsPlayed() int {
	return s.PlayerWins + s.AIWins + s.Draws
}

// IsFinished reports whether the session has been finalized
func (s *GameSession) IsFinished() bool {
	return s.Status == StatusFinished
}
