package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/game"
	"rpsarena/internal/llm"
	"rpsarena/internal/lock"
	"rpsarena/internal/models"
	"rpsarena/internal/repository"
	"rpsarena/internal/validation"
)

var (
	ErrSessionNotFound        = errors.New("game session not found")
	ErrSessionAlreadyFinished = errors.New("game session already finished")
	ErrRoundCountExceeded     = errors.New("all rounds have been played")
	ErrRoundConflict          = errors.New("round was already recorded")
	ErrInvalidMove            = errors.New("invalid move")
	ErrOpponentUnavailable    = errors.New("opponent not found or disabled")
)

// persistTimeout bounds the write of a round once its moves are decided.
const persistTimeout = 10 * time.Second

// Default player names by locale
const (
	DefaultPlayerNameZh = "玩家"
	DefaultPlayerNameEn = "Player"
)

// SessionStore persists game sessions and their rounds
type SessionStore interface {
	CreateSession(ctx context.Context, s *models.GameSession) error
	GetSession(ctx context.Context, id string) (*models.GameSession, error)
	GetHistory(ctx context.Context, sessionID string) ([]models.RoundRecord, error)
	// AppendRound stores the round and increments its tally atomically. A non-nil
	// closing comment finalizes the session in the same transaction.
	// It returns repository.ErrStaleSession when the session moved on.
	AppendRound(ctx context.Context, sessionID string, round models.RoundRecord, closing *string) error
}

// OpponentRegistry looks up opponent profiles
type OpponentRegistry interface {
	GetOpponent(ctx context.Context, id int64) (*models.Opponent, error)
}

// NameFilter screens player names
type NameFilter interface {
	ContainsBadWord(ctx context.Context, text string) (bool, error)
}

// PlayRequest is one submitted round. Exactly one of Move and Timeout must be set.
type PlayRequest struct {
	SessionID string
	Move      *models.Move
	Timeout   bool
	Locale    string
}

// PlayResult is the outcome of a played round
type PlayResult struct {
	Round    models.RoundRecord  `json:"round"`
	Session  *models.GameSession `json:"session"`
	Finished bool                `json:"gameFinished"`
	Comment  string              `json:"aiComment,omitempty"`
}

// CreateSessionRequest starts a match against an opponent
type CreateSessionRequest struct {
	OpponentID int64
	PlayerName string
	Locale     string
}

// SessionDetail is a session with its opponent and rounds
type SessionDetail struct {
	Session  *models.GameSession     `json:"session"`
	Opponent *models.OpponentSummary `json:"ai,omitempty"`
	Rounds   []models.RoundRecord    `json:"rounds"`
}

// GameService runs matches: it picks the AI's move, records rounds and closes sessions
type GameService struct {
	sessions    SessionStore
	opponents   OpponentRegistry
	adapter     *llm.Adapter
	engine      *game.Engine
	commentator *game.Commentator
	locker      lock.Locker
	names       NameFilter
	totalRounds int
}

// NewGameService creates a new game service
func NewGameService(sessions SessionStore, opponents OpponentRegistry, adapter *llm.Adapter, engine *game.Engine,
	commentator *game.Commentator, locker lock.Locker, totalRounds int) *GameService {
	if totalRounds <= 0 {
		totalRounds = models.DefaultTotalRounds
	}
	return &GameService{
		sessions:    sessions,
		opponents:   opponents,
		adapter:     adapter,
		engine:      engine,
		commentator: commentator,
		locker:      locker,
		totalRounds: totalRounds,
	}
}

// SetNameFilter enables screening of player names on session creation
func (s *GameService) SetNameFilter(f NameFilter) {
	s.names = f
}

func newSessionID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func defaultPlayerName(locale string) string {
	if game.NormalizeLocale(locale) == game.LocaleEn {
		return DefaultPlayerNameEn
	}
	return DefaultPlayerNameZh
}

// CreateSession starts a new match against an enabled opponent
func (s *GameService) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionDetail, error) {
	opponent, err := s.opponents.GetOpponent(ctx, req.OpponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load opponent: %w", err)
	}
	if opponent == nil || !opponent.Enabled {
		return nil, ErrOpponentUnavailable
	}

	name := strings.TrimSpace(req.PlayerName)
	if err := validation.ValidatePlayerName(name); err != nil {
		return nil, err
	}
	if name == "" {
		name = defaultPlayerName(req.Locale)
	} else if s.names != nil {
		bad, err := s.names.ContainsBadWord(ctx, name)
		if err != nil {
			log.WithError(err).Warn("Player name check failed")
		} else if bad {
			name = defaultPlayerName(req.Locale)
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	session := &models.GameSession{
		ID:          id,
		OpponentID:  opponent.ID,
		PlayerName:  name,
		TotalRounds: s.totalRounds,
		Status:      models.StatusPlaying,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	created, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if created == nil {
		created = session
	}

	log.WithFields(log.Fields{"session_id": id, "opponent_id": opponent.ID}).Info("Game session created")

	summary := opponent.Summary()
	return &SessionDetail{Session: created, Opponent: &summary, Rounds: []models.RoundRecord{}}, nil
}

// GetSession returns a session with its opponent and rounds in play order
func (s *GameService) GetSession(ctx context.Context, id string) (*SessionDetail, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	rounds, err := s.sessions.GetHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}
	if rounds == nil {
		rounds = []models.RoundRecord{}
	}

	detail := &SessionDetail{Session: session, Rounds: rounds}
	opponent, err := s.opponents.GetOpponent(ctx, session.OpponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load opponent: %w", err)
	}
	if opponent != nil {
		summary := opponent.Summary()
		detail.Opponent = &summary
	}
	return detail, nil
}

// PlayRound plays the next round of a session. Rounds of one session are serialized;
// a guard failure leaves the session untouched.
func (s *GameService) PlayRound(ctx context.Context, req PlayRequest) (*PlayResult, error) {
	if req.Timeout == (req.Move != nil) {
		return nil, ErrInvalidMove
	}
	if req.Move != nil && !req.Move.Valid() {
		return nil, ErrInvalidMove
	}

	release, err := s.locker.Acquire(ctx, "session:"+req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	defer release()

	session, err := s.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.IsFinished() {
		return nil, ErrSessionAlreadyFinished
	}

	roundNumber := session.RoundsPlayed() + 1
	if roundNumber > session.TotalRounds {
		return nil, ErrRoundCountExceeded
	}

	logger := log.WithFields(log.Fields{"session_id": session.ID, "round": roundNumber})

	opponent, err := s.opponents.GetOpponent(ctx, session.OpponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load opponent: %w", err)
	}
	if opponent == nil {
		logger.Warn("Opponent missing, playing with the local engine")
		opponent = &models.Opponent{ID: session.OpponentID, Difficulty: models.DifficultyNormal}
	}

	history, err := s.sessions.GetHistory(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var playerMove models.Move
	if req.Timeout {
		playerMove = s.engine.RandomMove()
	} else {
		playerMove = *req.Move
	}

	aiMove := s.decide(ctx, logger, opponent, history)
	round := models.RoundRecord{
		Number:     roundNumber,
		PlayerMove: playerMove,
		AIMove:     aiMove,
		Outcome:    game.Resolve(playerMove, aiMove),
		WasTimeout: req.Timeout,
		CreatedAt:  time.Now(),
	}

	switch round.Outcome {
	case models.PlayerWin:
		session.PlayerWins++
	case models.AIWin:
		session.AIWins++
	case models.Draw:
		session.Draws++
	}

	// The closing comment is produced before anything is written so the final
	// round and the finish land together.
	final := roundNumber == session.TotalRounds
	var closing *string
	if final {
		comment := s.comment(ctx, logger, opponent, session.PlayerWins, session.AIWins, req.Locale)
		closing = &comment
	}

	// A client that disconnects after the move was decided must not leave a half-played round.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.sessions.AppendRound(persistCtx, session.ID, round, closing); err != nil {
		if errors.Is(err, repository.ErrStaleSession) {
			return nil, ErrRoundConflict
		}
		return nil, fmt.Errorf("failed to record round: %w", err)
	}

	result := &PlayResult{Round: round, Session: session}
	if !final {
		return result, nil
	}

	finished, err := s.sessions.GetSession(persistCtx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if finished != nil {
		result.Session = finished
	} else {
		session.Status = models.StatusFinished
		session.AIComment = *closing
	}
	result.Finished = true
	result.Comment = *closing

	logger.WithFields(log.Fields{
		"player_wins": session.PlayerWins,
		"ai_wins":     session.AIWins,
		"draws":       session.Draws,
	}).Info("Game session finished")

	return result, nil
}

func (s *GameService) decide(ctx context.Context, logger *log.Entry, opponent *models.Opponent, history []models.RoundRecord) models.Move {
	if !opponent.UsesExternalModel() {
		return s.engine.Decide(history, opponent.Difficulty)
	}

	move, err := s.adapter.DecideMove(ctx, opponent.Model, history, opponent.Difficulty)
	if err != nil {
		logger.WithError(err).WithField("opponent_id", opponent.ID).Error("Opponent model configuration is invalid, using the local engine")
		return s.engine.Decide(history, opponent.Difficulty)
	}
	return move
}

func (s *GameService) comment(ctx context.Context, logger *log.Entry, opponent *models.Opponent, playerWins, aiWins int, locale string) string {
	if !opponent.UsesExternalModel() {
		return s.commentator.Comment(playerWins, aiWins, locale)
	}

	text, err := s.adapter.Comment(ctx, opponent.Model, playerWins, aiWins, locale)
	if err != nil {
		logger.WithError(err).WithField("opponent_id", opponent.ID).Error("Opponent model configuration is invalid, using local commentary")
		return s.commentator.Comment(playerWins, aiWins, locale)
	}
	return text
}
