package service

import (
	"context"
	"errors"
	"sync"

	"rpsarena/internal/models"
	"rpsarena/internal/repository"
)

type fakeSessionStore struct {
	mu            sync.Mutex
	sessions      map[string]*models.GameSession
	rounds        map[string][]models.RoundRecord
	appendErr     error
	appendCalls   int
	finalizeCalls int
}

func newFakeSessionStore(sessions ...*models.GameSession) *fakeSessionStore {
	f := &fakeSessionStore{
		sessions: make(map[string]*models.GameSession),
		rounds:   make(map[string][]models.RoundRecord),
	}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, s *models.GameSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.sessions[s.ID]; exists {
		return errors.New("duplicate id")
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) GetSession(ctx context.Context, id string) (*models.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) GetHistory(ctx context.Context, sessionID string) ([]models.RoundRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.RoundRecord(nil), f.rounds[sessionID]...), nil
}

func (f *fakeSessionStore) AppendRound(ctx context.Context, sessionID string, round models.RoundRecord, closing *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.appendErr != nil {
		return f.appendErr
	}

	s, ok := f.sessions[sessionID]
	if !ok || s.Status != models.StatusPlaying || s.RoundsPlayed() != round.Number-1 {
		return repository.ErrStaleSession
	}
	switch round.Outcome {
	case models.PlayerWin:
		s.PlayerWins++
	case models.AIWin:
		s.AIWins++
	case models.Draw:
		s.Draws++
	}
	f.rounds[sessionID] = append(f.rounds[sessionID], round)

	if closing != nil {
		f.finalizeCalls++
		s.Status = models.StatusFinished
		s.AIComment = *closing
	}
	return nil
}

type fakeOpponents map[int64]*models.Opponent

func (f fakeOpponents) GetOpponent(ctx context.Context, id int64) (*models.Opponent, error) {
	o, ok := f[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

type fakeGateway struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	// onCall runs with the 1-based call number before the reply is chosen.
	onCall func(n int)
}

func (g *fakeGateway) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.onCall != nil {
		g.onCall(g.calls)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.err != nil {
		return "", g.err
	}
	reply := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return reply, nil
}

type fakeNameFilter struct {
	bad map[string]bool
}

func (f fakeNameFilter) ContainsBadWord(ctx context.Context, text string) (bool, error) {
	return f.bad[text], nil
}
