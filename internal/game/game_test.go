package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpsarena/internal/models"
)

// fixedRand always answers the same index, clamped to n
type fixedRand struct {
	i int
}

func (f fixedRand) Intn(n int) int {
	if f.i >= n {
		return n - 1
	}
	return f.i
}

func round(n int, player, ai models.Move) models.RoundRecord {
	return models.RoundRecord{Number: n, PlayerMove: player, AIMove: ai, Outcome: Resolve(player, ai)}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		player models.Move
		ai     models.Move
		want   models.Outcome
	}{
		{models.Rock, models.Rock, models.Draw},
		{models.Rock, models.Paper, models.AIWin},
		{models.Rock, models.Scissors, models.PlayerWin},
		{models.Paper, models.Rock, models.PlayerWin},
		{models.Paper, models.Paper, models.Draw},
		{models.Paper, models.Scissors, models.AIWin},
		{models.Scissors, models.Rock, models.AIWin},
		{models.Scissors, models.Paper, models.PlayerWin},
		{models.Scissors, models.Scissors, models.Draw},
	}

	for _, tt := range tests {
		t.Run(string(tt.player)+"_vs_"+string(tt.ai), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.player, tt.ai))
		})
	}
}

func TestCounter(t *testing.T) {
	for _, m := range models.Moves {
		assert.Equal(t, models.AIWin, Resolve(m, Counter(m)), "counter of %s must beat it", m)
	}
}

func TestDecideNormal(t *testing.T) {
	tests := []struct {
		name    string
		history []models.RoundRecord
		rng     Rand
		want    models.Move
	}{
		{
			name: "empty history opens with paper",
			want: models.Paper,
		},
		{
			name:    "ai won with rock, player retaliates with paper, countered by scissors",
			history: []models.RoundRecord{round(1, models.Scissors, models.Rock)},
			want:    models.Scissors,
		},
		{
			name:    "ai won with paper, player retaliates with scissors, countered by rock",
			history: []models.RoundRecord{round(1, models.Rock, models.Paper)},
			want:    models.Rock,
		},
		{
			name:    "player won with rock and repeats it",
			history: []models.RoundRecord{round(1, models.Rock, models.Scissors)},
			want:    models.Paper,
		},
		{
			name:    "player won with scissors and repeats it",
			history: []models.RoundRecord{round(1, models.Scissors, models.Paper)},
			want:    models.Rock,
		},
		{
			name: "draw predicts the more used of the other two moves",
			history: []models.RoundRecord{
				round(1, models.Paper, models.Scissors),
				round(2, models.Rock, models.Rock),
			},
			want: models.Scissors,
		},
		{
			name: "draw ignores the last used move when counting",
			history: []models.RoundRecord{
				round(1, models.Scissors, models.Rock),
				round(2, models.Scissors, models.Rock),
				round(3, models.Rock, models.Scissors),
				round(4, models.Scissors, models.Scissors),
			},
			want: models.Paper,
		},
		{
			name:    "draw with tied other moves takes the first pick",
			history: []models.RoundRecord{round(1, models.Rock, models.Rock)},
			rng:     fixedRand{i: 0},
			want:    models.Scissors,
		},
		{
			name:    "draw with tied other moves takes the second pick",
			history: []models.RoundRecord{round(1, models.Rock, models.Rock)},
			rng:     fixedRand{i: 1},
			want:    models.Rock,
		},
		{
			name: "unknown outcome counters the most frequent move",
			history: []models.RoundRecord{
				{Number: 1, PlayerMove: models.Scissors, AIMove: models.Rock, Outcome: models.AIWin},
				{Number: 2, PlayerMove: models.Scissors, AIMove: models.Rock, Outcome: models.AIWin},
				{Number: 3, PlayerMove: models.Rock, AIMove: models.Rock, Outcome: models.Outcome("bogus")},
			},
			want: models.Rock,
		},
		{
			name: "unknown outcome breaks frequency ties by enumeration order",
			history: []models.RoundRecord{
				{Number: 1, PlayerMove: models.Paper, Outcome: models.Draw},
				{Number: 2, PlayerMove: models.Scissors, Outcome: models.Draw},
				{Number: 3, PlayerMove: models.Rock, Outcome: models.Outcome("bogus")},
			},
			want: models.Paper,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := tt.rng
			if rng == nil {
				rng = rand.New(rand.NewSource(1))
			}
			e := NewEngine(rng)
			assert.Equal(t, tt.want, e.Decide(tt.history, models.DifficultyNormal))
		})
	}
}

func TestDecideNormalEmptyHistoryAlwaysPaper(t *testing.T) {
	e := NewEngine(nil)
	for i := 0; i < 100; i++ {
		require.Equal(t, models.Paper, e.Decide(nil, models.DifficultyNormal))
	}
}

func TestDecideChaosIsUniform(t *testing.T) {
	const trials = 10000
	e := NewEngine(rand.New(rand.NewSource(42)))
	history := []models.RoundRecord{
		round(1, models.Rock, models.Paper),
		round(2, models.Rock, models.Rock),
	}

	counts := map[models.Move]int{}
	for i := 0; i < trials; i++ {
		m := e.Decide(history, models.DifficultyChaos)
		require.True(t, m.Valid())
		counts[m]++
	}

	expected := trials / 3
	tolerance := trials * 5 / 100
	for _, m := range models.Moves {
		assert.InDelta(t, expected, counts[m], float64(tolerance), "move %s drawn %d times", m, counts[m])
	}
}

func TestRandomMoveCoversAllMoves(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(7)))
	seen := map[models.Move]bool{}
	for i := 0; i < 300; i++ {
		seen[e.RandomMove()] = true
	}
	assert.Len(t, seen, 3)
}

func TestComment(t *testing.T) {
	tests := []struct {
		name       string
		playerWins int
		aiWins     int
		tone       Tone
	}{
		{name: "player swept", playerWins: 3, aiWins: 0, tone: ToneAILost},
		{name: "ai swept", playerWins: 0, aiWins: 3, tone: ToneAIWon},
		{name: "even", playerWins: 2, aiWins: 2, tone: ToneDraw},
	}

	c := NewCommentator(rand.New(rand.NewSource(3)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tone, ToneFor(tt.playerWins, tt.aiWins))
			for _, locale := range []string{LocaleZh, LocaleEn, "fr", ""} {
				for i := 0; i < 20; i++ {
					got := c.Comment(tt.playerWins, tt.aiWins, locale)
					assert.NotEmpty(t, got)
					assert.Contains(t, pools[NormalizeLocale(locale)].pool(tt.tone), got)
				}
			}
		})
	}
}

func TestCommentPoolsAreNonEmpty(t *testing.T) {
	for locale, p := range pools {
		for _, tone := range []Tone{ToneDraw, ToneAIWon, ToneAILost} {
			pool := p.pool(tone)
			require.NotEmpty(t, pool, "locale %s tone %d", locale, tone)
			for _, s := range pool {
				assert.NotEmpty(t, s)
			}
		}
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"zh":    LocaleZh,
		"en":    LocaleEn,
		"EN-us": LocaleEn,
		"en_GB": LocaleEn,
		"zh-CN": LocaleZh,
		"fr":    LocaleZh,
		"":      LocaleZh,
		"eng":   LocaleZh,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLocale(in), "locale %q", in)
	}
}
