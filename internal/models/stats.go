package models

// TotalStats aggregates all finished sessions
type TotalStats struct {
	TotalPlayerWins int `json:"total_player_wins"`
	TotalAIWins     int `json:"total_ai_wins"`
	TotalDraws      int `json:"total_draws"`
	TotalGames      int `json:"total_games"`
}

// OpponentStats aggregates finished sessions for one enabled opponent
type OpponentStats struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	NameEn        string     `json:"name_en,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	Difficulty    Difficulty `json:"difficulty"`
	GamesPlayed   int        `json:"games_played"`
	PlayerWins    int        `json:"player_wins"`
	AIWins        int        `json:"ai_wins"`
	Draws         int        `json:"draws"`
	PlayerWinRate float64    `json:"player_win_rate"`
}

// Stats is the payload of the public statistics endpoint
type Stats struct {
	Total TotalStats      `json:"total"`
	ByAI  []OpponentStats `json:"byAI"`
}
