package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpsarena/internal/database"
	"rpsarena/internal/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations("../../migrations"))
	return db
}

func seededOpponent(t *testing.T, db *database.DB, name string) *models.Opponent {
	t.Helper()
	o, err := NewOpponentRepository(db).GetByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

func TestOpponentRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewOpponentRepository(db)
	ctx := context.Background()

	t.Run("seeded list is ordered by sort order", func(t *testing.T) {
		list, err := repo.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "terminator", list[0].Name)
		assert.Equal(t, "chaos-monkey", list[1].Name)
		assert.Equal(t, models.DifficultyChaos, list[1].Difficulty)
		assert.Nil(t, list[0].Model)
	})

	t.Run("create, update and delete", func(t *testing.T) {
		o := &models.Opponent{
			Name:        "gpt-bot",
			DisplayName: "GPT Bot",
			Difficulty:  models.DifficultyNormal,
			Enabled:     false,
			SortOrder:   5,
			Model: &models.ExternalModelConfig{
				Provider: models.ProviderAzure,
				Endpoint: "https://example.openai.azure.com",
				APIKey:   "secret-key-1234",
				Model:    "gpt-4o",
			},
		}
		id, err := repo.Create(ctx, o)
		require.NoError(t, err)
		require.NotZero(t, id)

		got, err := repo.GetOpponent(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "GPT Bot", got.DisplayName)
		assert.False(t, got.Enabled)
		require.NotNil(t, got.Model)
		assert.Equal(t, models.ProviderAzure, got.Model.Provider)
		assert.Equal(t, "gpt-4o", got.Model.Model)

		enabled, err := repo.List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, enabled, 2)
		all, err := repo.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		got.Enabled = true
		got.Model = nil
		require.NoError(t, repo.Update(ctx, got))
		got, err = repo.GetOpponent(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Enabled)
		assert.Nil(t, got.Model)

		require.NoError(t, repo.Delete(ctx, id))
		got, err = repo.GetOpponent(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate name", func(t *testing.T) {
		dup := &models.Opponent{Name: "terminator", DisplayName: "Again", Difficulty: models.DifficultyNormal}
		_, err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicateName)

		chaos := seededOpponent(t, db, "chaos-monkey")
		chaos.Name = "terminator"
		assert.ErrorIs(t, repo.Update(ctx, chaos), ErrDuplicateName)
	})

	t.Run("unknown difficulty is a configuration error", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "INSERT INTO ai_opponents (name, display_name, difficulty) VALUES (?, ?, ?)", "broken", "Broken", "impossible")
		require.NoError(t, err)

		_, err = repo.GetByName(ctx, "broken")
		assert.ErrorIs(t, err, ErrOpponentConfig)
	})
}

func TestGameRepository(t *testing.T) {
	db := openTestDB(t)
	games := NewGameRepository(db)
	ctx := context.Background()
	opponent := seededOpponent(t, db, "terminator")

	session := &models.GameSession{ID: "a1b2c3d4", OpponentID: opponent.ID, PlayerName: "Alice", TotalRounds: 2}
	require.NoError(t, games.CreateSession(ctx, session))

	missing, err := games.GetSession(ctx, "ffffffff")
	require.NoError(t, err)
	assert.Nil(t, missing)

	closing := "gg"
	require.NoError(t, games.AppendRound(ctx, session.ID, models.RoundRecord{
		Number: 1, PlayerMove: models.Rock, AIMove: models.Scissors, Outcome: models.PlayerWin,
	}, nil))

	t.Run("intermediate round keeps the session playing", func(t *testing.T) {
		got, err := games.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1, got.PlayerWins)
		assert.Equal(t, models.StatusPlaying, got.Status)
		assert.Nil(t, got.FinishedAt)
	})

	t.Run("duplicate round number is stale", func(t *testing.T) {
		err := games.AppendRound(ctx, session.ID, models.RoundRecord{
			Number: 1, PlayerMove: models.Rock, AIMove: models.Paper, Outcome: models.AIWin,
		}, nil)
		assert.ErrorIs(t, err, ErrStaleSession)
	})

	require.NoError(t, games.AppendRound(ctx, session.ID, models.RoundRecord{
		Number: 2, PlayerMove: models.Paper, AIMove: models.Paper, Outcome: models.Draw, WasTimeout: true,
	}, &closing))

	t.Run("final round finishes the session with its tallies", func(t *testing.T) {
		got, err := games.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1, got.PlayerWins)
		assert.Equal(t, 0, got.AIWins)
		assert.Equal(t, 1, got.Draws)
		assert.Equal(t, models.StatusFinished, got.Status)
		assert.Equal(t, "gg", got.AIComment)
		assert.NotNil(t, got.FinishedAt)

		history, err := games.GetHistory(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, models.PlayerWin, history[0].Outcome)
		assert.True(t, history[1].WasTimeout)
	})

	t.Run("finished session rejects rounds", func(t *testing.T) {
		again := "again"
		err := games.AppendRound(ctx, session.ID, models.RoundRecord{
			Number: 3, PlayerMove: models.Rock, AIMove: models.Paper, Outcome: models.AIWin,
		}, &again)
		assert.ErrorIs(t, err, ErrStaleSession)

		got, err := games.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, "gg", got.AIComment)
		assert.Zero(t, got.AIWins)
	})

	t.Run("failed final insert leaves the session playing", func(t *testing.T) {
		other := &models.GameSession{ID: "0badf00d", OpponentID: opponent.ID, PlayerName: "Bob", TotalRounds: 1}
		require.NoError(t, games.CreateSession(ctx, other))

		_, err := db.ExecContext(ctx,
			"INSERT INTO game_rounds (session_id, round_number, player_choice, ai_choice, result) VALUES (?, ?, ?, ?, ?)",
			other.ID, 1, "rock", "rock", "draw")
		require.NoError(t, err)

		err = games.AppendRound(ctx, other.ID, models.RoundRecord{
			Number: 1, PlayerMove: models.Paper, AIMove: models.Rock, Outcome: models.PlayerWin,
		}, &closing)
		require.Error(t, err)

		got, err := games.GetSession(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPlaying, got.Status)
		assert.Zero(t, got.PlayerWins)
		assert.Empty(t, got.AIComment)
		assert.Nil(t, got.FinishedAt)
	})

	t.Run("opponent in use", func(t *testing.T) {
		n, err := NewOpponentRepository(db).CountSessions(ctx, opponent.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestStatsRepository(t *testing.T) {
	db := openTestDB(t)
	games := NewGameRepository(db)
	stats := NewStatsRepository(db)
	ctx := context.Background()
	terminator := seededOpponent(t, db, "terminator")

	// play stores the outcomes of a three-round session; fewer leaves it unfinished.
	play := func(id string, outcomes ...models.Outcome) {
		require.NoError(t, games.CreateSession(ctx, &models.GameSession{
			ID: id, OpponentID: terminator.ID, PlayerName: "p", TotalRounds: 3,
		}))
		for i, o := range outcomes {
			var closing *string
			if i == 2 {
				closing = new(string)
			}
			require.NoError(t, games.AppendRound(ctx, id, models.RoundRecord{
				Number: i + 1, PlayerMove: models.Rock, AIMove: models.Rock, Outcome: o,
			}, closing))
		}
	}
	play("00000001", models.PlayerWin, models.PlayerWin, models.AIWin)
	play("00000002", models.AIWin, models.Draw, models.Draw)
	play("00000003", models.PlayerWin, models.Draw, models.AIWin)
	play("00000004", models.PlayerWin)

	totals, err := stats.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TotalStats{TotalPlayerWins: 3, TotalAIWins: 3, TotalDraws: 3, TotalGames: 3}, *totals)

	byAI, err := stats.ByOpponent(ctx)
	require.NoError(t, err)
	require.Len(t, byAI, 2)

	assert.Equal(t, terminator.ID, byAI[0].ID)
	assert.Equal(t, 3, byAI[0].GamesPlayed)
	assert.Equal(t, 3, byAI[0].PlayerWins)
	assert.Equal(t, 33.3, byAI[0].PlayerWinRate)

	assert.Equal(t, "Chaos Monkey", byAI[1].NameEn)
	assert.Equal(t, 0, byAI[1].GamesPlayed)
	assert.Equal(t, 0.0, byAI[1].PlayerWinRate)
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		wins, games int
		want        float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 5, 100},
		{1, 8, 12.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WinRate(tt.wins, tt.games), "WinRate(%d, %d)", tt.wins, tt.games)
	}
}
