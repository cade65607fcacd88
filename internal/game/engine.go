package game

import (
	"math/rand"
	"sync"
	"time"

	"rpsarena/internal/models"
)

// Rand is the source of randomness used by the engine.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Engine decides the AI's next move from the round history without any external call
type Engine struct {
	mu  sync.Mutex
	rng Rand
}

// NewEngine creates an engine. A nil rng uses a time-seeded source.
func NewEngine(rng Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

// RandomMove returns a uniformly random move
func (e *Engine) RandomMove() models.Move {
	return models.Moves[e.intn(len(models.Moves))]
}

// Decide returns the AI move for the next round. It never fails.
func (e *Engine) Decide(history []models.RoundRecord, difficulty models.Difficulty) models.Move {
	switch difficulty {
	case models.DifficultyChaos:
		return e.RandomMove()
	case models.DifficultyNormal:
		return e.decideNormal(history)
	default:
		// Difficulty is validated when a profile is loaded; this keeps Decide total.
		return e.decideNormal(history)
	}
}

func (e *Engine) decideNormal(history []models.RoundRecord) models.Move {
	// Humans open with rock more than anything else
	if len(history) == 0 {
		return models.Paper
	}

	last := history[len(history)-1]

	switch last.Outcome {
	case models.AIWin:
		// Player retaliates with whatever beat our last move
		predicted := Counter(last.AIMove)
		return Counter(predicted)
	case models.PlayerWin:
		// Player sticks with the winning move
		return Counter(last.PlayerMove)
	case models.Draw:
		return Counter(e.predictAfterDraw(history, last.PlayerMove))
	}

	return Counter(mostFrequent(history))
}

// predictAfterDraw assumes the player switches away from their last move and picks
// whichever of the two remaining moves they have used more. Equal counts are a coin flip.
func (e *Engine) predictAfterDraw(history []models.RoundRecord, lastPlayer models.Move) models.Move {
	counts := playerCounts(history)

	others := make([]models.Move, 0, 2)
	for _, m := range models.Moves {
		if m != lastPlayer {
			others = append(others, m)
		}
	}

	a, b := others[0], others[1]
	switch {
	case counts[a] > counts[b]:
		return a
	case counts[b] > counts[a]:
		return b
	default:
		return others[e.intn(2)]
	}
}

// mostFrequent returns the player's most used move, ties going to the earlier move in enumeration order
func mostFrequent(history []models.RoundRecord) models.Move {
	counts := playerCounts(history)
	best := models.Moves[0]
	for _, m := range models.Moves[1:] {
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best
}

func playerCounts(history []models.RoundRecord) map[models.Move]int {
	counts := make(map[models.Move]int, len(models.Moves))
	for _, r := range history {
		counts[r.PlayerMove]++
	}
	return counts
}
