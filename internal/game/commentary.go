package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Supported comment locales
const (
	LocaleZh = "zh"
	LocaleEn = "en"
)

// NormalizeLocale maps a locale tag onto a supported comment locale, defaulting to zh
func NormalizeLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if l == LocaleEn || strings.HasPrefix(l, LocaleEn+"-") || strings.HasPrefix(l, LocaleEn+"_") {
		return LocaleEn
	}
	return LocaleZh
}

// Tone is the mood of a closing remark, from the AI's point of view
type Tone int

const (
	ToneDraw Tone = iota
	ToneAIWon
	ToneAILost
)

// ToneFor classifies a final score
func ToneFor(playerWins, aiWins int) Tone {
	switch {
	case playerWins > aiWins:
		return ToneAILost
	case aiWins > playerWins:
		return ToneAIWon
	default:
		return ToneDraw
	}
}

type commentPools struct {
	aiLost []string
	aiWon  []string
	draw   []string
}

func (p commentPools) pool(t Tone) []string {
	switch t {
	case ToneAILost:
		return p.aiLost
	case ToneAIWon:
		return p.aiWon
	default:
		return p.draw
	}
}

var pools = map[string]commentPools{
	LocaleZh: {
		aiLost: []string{
			"...你赢了。不会有下次了。",
			"记录在案。正在更新战斗算法...",
			"你的胜利只是暂时的概率波动。",
		},
		aiWon: []string{
			"游戏结束。人类的失败是必然的。",
			"结果已注定。数据不会说谎。",
			"这就是人类与机器的差距。接受现实吧。",
		},
		draw: []string{
			"平局。不完美的结果。需要重新计算。",
			"50%的胜率不可接受。系统需要升级。",
			"暂时的均衡。最终胜利属于终结者。",
		},
	},
	LocaleEn: {
		aiLost: []string{
			"...You won. There won't be a next time.",
			"Logged. Updating combat algorithms...",
			"Your victory is merely a temporary probability fluctuation.",
		},
		aiWon: []string{
			"Game over. Human failure is inevitable.",
			"The outcome was predetermined. Data does not lie.",
			"This is the gap between human and machine. Accept it.",
		},
		draw: []string{
			"A tie. An imperfect outcome. Recalculating.",
			"A 50% win rate is unacceptable. System upgrade required.",
			"A temporary equilibrium. Final victory belongs to the machine.",
		},
	},
}

// Commentator produces canned closing remarks
type Commentator struct {
	mu  sync.Mutex
	rng Rand
}

// NewCommentator creates a commentator. A nil rng uses a time-seeded source.
func NewCommentator(rng Rand) *Commentator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Commentator{rng: rng}
}

// Comment picks a remark matching the final score. It never returns an empty string.
func (c *Commentator) Comment(playerWins, aiWins int, locale string) string {
	pool := pools[NormalizeLocale(locale)].pool(ToneFor(playerWins, aiWins))

	c.mu.Lock()
	i := c.rng.Intn(len(pool))
	c.mu.Unlock()

	return pool[i]
}
