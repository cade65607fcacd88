package game

import "rpsarena/internal/models"

// beats maps each move to the move it defeats
var beats = map[models.Move]models.Move{
	models.Rock:     models.Scissors,
	models.Scissors: models.Paper,
	models.Paper:    models.Rock,
}

// counters maps each move to the move that defeats it
var counters = map[models.Move]models.Move{
	models.Rock:     models.Paper,
	models.Paper:    models.Scissors,
	models.Scissors: models.Rock,
}

// Resolve returns the outcome of a round from the player's perspective
func Resolve(player, ai models.Move) models.Outcome {
	if player == ai {
		return models.Draw
	}
	if beats[player] == ai {
		return models.PlayerWin
	}
	return models.AIWin
}

// Counter returns the move that defeats m
func Counter(m models.Move) models.Move {
	return counters[m]
}
