package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/game"
	"rpsarena/internal/models"
)

// DefaultTimeout bounds a single completion request
const DefaultTimeout = 20 * time.Second

// Adapter drives an external model for move decisions and closing remarks.
// Gameplay calls never surface upstream failures: they fall back to the local engine.
type Adapter struct {
	newGateway  GatewayFactory
	engine      *game.Engine
	commentator *game.Commentator
	timeout     time.Duration
}

// NewAdapter creates an adapter. A nil factory uses NewOpenAIGateway.
func NewAdapter(factory GatewayFactory, engine *game.Engine, commentator *game.Commentator, timeout time.Duration) *Adapter {
	if factory == nil {
		factory = NewOpenAIGateway
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{
		newGateway:  factory,
		engine:      engine,
		commentator: commentator,
		timeout:     timeout,
	}
}

// ConnectionResult reports a successful connectivity check
type ConnectionResult struct {
	Model string `json:"model"`
	Reply string `json:"reply"`
}

func (a *Adapter) gateway(cfg models.ExternalModelConfig) (Gateway, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	gw, err := a.newGateway(cfg)
	if err != nil {
		if errors.Is(err, ErrConfigInvalid) {
			return nil, err
		}
		return nil, configInvalid(err.Error())
	}
	return gw, nil
}

func (a *Adapter) complete(ctx context.Context, gw Gateway, op, system, user string, temperature float32, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := gw.Complete(ctx, system, user, temperature, maxTokens)
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			return "", err
		}
		return "", upstream(op, err)
	}
	return text, nil
}

// DecideMove asks the model for the AI's next move. The only error it returns is
// ErrConfigInvalid; upstream failures and unrecognised answers fall back to the local engine.
func (a *Adapter) DecideMove(ctx context.Context, cfg *models.ExternalModelConfig, history []models.RoundRecord, difficulty models.Difficulty) (models.Move, error) {
	if cfg == nil {
		return "", configInvalid("no model configured")
	}
	c := cfg.WithDefaults()
	gw, err := a.gateway(c)
	if err != nil {
		return "", err
	}

	logger := log.WithFields(log.Fields{
		"provider": c.Provider,
		"model":    c.Model,
		"round":    len(history) + 1,
	})

	text, err := a.complete(ctx, gw, "decide move",
		buildDecisionSystemPrompt(difficulty),
		buildDecisionUserPrompt(history),
		decisionTemperature(difficulty),
		decisionMaxTokens,
	)
	if err != nil {
		logger.WithError(err).Warn("Model decision failed, using local engine")
		return a.engine.Decide(history, difficulty), nil
	}

	move, ok := ParseMove(text)
	if !ok {
		logger.WithField("completion", text).Warn("No move found in model answer, using local engine")
		return a.engine.Decide(history, difficulty), nil
	}

	logger.WithField("move", move).Debug("Model decided move")
	return move, nil
}

// Comment asks the model for a closing remark. Failures and blank answers fall back to a canned remark.
func (a *Adapter) Comment(ctx context.Context, cfg *models.ExternalModelConfig, playerWins, aiWins int, locale string) (string, error) {
	if cfg == nil {
		return "", configInvalid("no model configured")
	}
	c := cfg.WithDefaults()
	gw, err := a.gateway(c)
	if err != nil {
		return "", err
	}

	system, user := buildCommentPrompts(playerWins, aiWins, locale)
	text, err := a.complete(ctx, gw, "comment", system, user, commentTemperature, commentMaxTokens)
	if err != nil {
		log.WithFields(log.Fields{"provider": c.Provider, "model": c.Model}).
			WithError(err).Warn("Model comment failed, using canned remark")
		return a.commentator.Comment(playerWins, aiWins, locale), nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return a.commentator.Comment(playerWins, aiWins, locale), nil
	}
	return text, nil
}

// TestConnection sends a trivial prompt to confirm the configuration works.
// Upstream failures are returned to the caller.
func (a *Adapter) TestConnection(ctx context.Context, cfg models.ExternalModelConfig) (*ConnectionResult, error) {
	gw, err := a.gateway(cfg)
	if err != nil {
		return nil, err
	}

	text, err := a.complete(ctx, gw, "test connection", "", testPrompt, 0, testMaxTokens)
	if err != nil {
		return nil, err
	}
	return &ConnectionResult{Model: cfg.Model, Reply: text}, nil
}

// GenerateProfile has the model invent a display name and description for itself
func (a *Adapter) GenerateProfile(ctx context.Context, cfg models.ExternalModelConfig) (*GeneratedProfile, error) {
	gw, err := a.gateway(cfg)
	if err != nil {
		return nil, err
	}

	text, err := a.complete(ctx, gw, "generate profile", profileSystemPrompt, buildProfileUserPrompt(cfg.Model), profileTemperature, profileMaxTokens)
	if err != nil {
		return nil, err
	}

	profile, err := parseProfile(text)
	if err != nil {
		return nil, upstream("generate profile", err)
	}
	return &profile, nil
}
