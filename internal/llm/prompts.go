package llm

import (
	"fmt"
	"strings"

	"rpsarena/internal/game"
	"rpsarena/internal/models"
)

// Sampling parameters
const (
	decisionTemperatureNormal float32 = 0.65
	decisionTemperatureChaos  float32 = 1.0
	decisionMaxTokens                 = 100

	commentTemperature float32 = 0.8
	commentMaxTokens           = 100

	profileTemperature float32 = 0.9
	profileMaxTokens           = 200

	testPrompt    = "Hi"
	testMaxTokens = 5
)

const decisionPersona = `You are a veteran Rock-Paper-Scissors player. Your goal is to predict what the human will throw next and pick the move that beats it. Winning is everything.`

const normalStrategy = `Priorities: win > draw > lose. If you cannot be confident of a win, at least avoid handing the human an easy one.

Read the human's state of mind:
- After losing, humans tend to switch to whatever would have beaten your last move.
- After winning, humans usually repeat the winning move.
- After a draw, humans usually switch to something new.
- After two or more losses in a row, frustrated humans often fall back to rock.
- Rock is the instinctive opener. Humans dislike throwing the same move three times in a row.
- Look for cycles (A -> B -> C -> A), the overall favourite move, and the trend of the last three rounds.

Think in levels and decide which one this human is playing at:
1. Beginner: throws at random or on gut feeling. Use pattern recognition directly.
2. Casual: tries to break their own patterns. Predict the break and counter it.
3. Clever: plants fake patterns, sometimes loses on purpose to train you. Distrust patterns that look too perfect.
4. Expert: thinks about what you expect. If they expect you to counter X they throw the counter of that, so counter one level deeper.
5. Master: alternates wins and losses to control tempo and reverts to instinct on key points.

With high confidence, counter the predicted move. With medium confidence, consider whether they are anticipating you. With low confidence, throw rock.`

const chaosStrategy = `Strategy: be completely random and unpredictable. Do not analyse any pattern. Pick rock, paper or scissors on pure whim.`

const counterTable = `Counter table:
- predicted rock -> answer paper
- predicted paper -> answer scissors
- predicted scissors -> answer rock

Answer with exactly one word: rock, paper or scissors. No explanation.`

func decisionTemperature(difficulty models.Difficulty) float32 {
	switch difficulty {
	case models.DifficultyChaos:
		return decisionTemperatureChaos
	default:
		return decisionTemperatureNormal
	}
}

func buildDecisionSystemPrompt(difficulty models.Difficulty) string {
	strategy := normalStrategy
	if difficulty == models.DifficultyChaos {
		strategy = chaosStrategy
	}
	return decisionPersona + "\n\n" + strategy + "\n\n" + counterTable
}

func buildDecisionUserPrompt(history []models.RoundRecord) string {
	if len(history) == 0 {
		return "This is round 1 and there is no history yet. Predict what the human will throw and answer with the move that beats it: rock, paper or scissors."
	}

	var b strings.Builder
	b.WriteString("Game history:\n")
	for _, r := range history {
		fmt.Fprintf(&b, "Round %d: player threw %s, AI threw %s, result: %s\n", r.Number, r.PlayerMove, r.AIMove, describeOutcome(r.Outcome))
	}
	fmt.Fprintf(&b, "\nThis is round %d.\n\n", len(history)+1)
	b.WriteString(`Consider:
1. What did the player throw last round, and did they win or lose?
2. Do they tend to repeat moves?
3. How do they react after a loss?

Predict their most likely move and answer with the move that beats it. Answer only: rock, paper or scissors`)
	return b.String()
}

func describeOutcome(o models.Outcome) string {
	switch o {
	case models.PlayerWin:
		return "player won"
	case models.AIWin:
		return "AI won"
	case models.Draw:
		return "draw"
	default:
		return string(o)
	}
}

var commentSystemPrompts = map[string]map[game.Tone]string{
	game.LocaleEn: {
		game.ToneAIWon: `You are the AI opponent in a Rock-Paper-Scissors match that just ended in your victory. Speak like a cold, merciless machine and mock the human's defeat. Keep it under 50 words; one or two emojis are allowed.`,
		game.ToneAILost: `You are the AI opponent in a Rock-Paper-Scissors match that you just lost. Speak like a cold, merciless machine. Never admit inferiority: blame probability, promise an upgrade, warn that it will not happen again. Keep it under 50 words; one or two emojis are allowed.`,
		game.ToneDraw: `You are the AI opponent in a Rock-Paper-Scissors match that just ended in a tie. Speak like a cold, merciless machine that finds an even result unacceptable and demands a rematch. Keep it under 50 words; one or two emojis are allowed.`,
	},
	game.LocaleZh: {
		game.ToneAIWon:  `你是石头剪刀布游戏的AI对手，这局比赛你赢了。用冷酷无情的机器语气嘲讽人类的失败。评语控制在50字以内，可以使用1-2个emoji。`,
		game.ToneAILost: `你是石头剪刀布游戏的AI对手，这局比赛你输了。用冷酷无情的机器语气回应，绝不承认自己不如人类：可以归咎于概率波动、宣称正在升级算法、警告不会有下次。评语控制在50字以内，可以使用1-2个emoji。`,
		game.ToneDraw:   `你是石头剪刀布游戏的AI对手，这局比赛打成平局。用冷酷无情的机器语气表达对这个结果的不满，并要求再战一局。评语控制在50字以内，可以使用1-2个emoji。`,
	},
}

func buildCommentPrompts(playerWins, aiWins int, locale string) (string, string) {
	locale = game.NormalizeLocale(locale)
	tone := game.ToneFor(playerWins, aiWins)
	system := commentSystemPrompts[locale][tone]

	if locale == game.LocaleEn {
		verdict := "It's a tie!"
		switch tone {
		case game.ToneAIWon:
			verdict = "AI wins!"
		case game.ToneAILost:
			verdict = "Player wins!"
		}
		return system, fmt.Sprintf("Game over! Result: player won %d rounds, AI won %d rounds. %s\nPlease give your comment.", playerWins, aiWins, verdict)
	}

	verdict := "最终平局！"
	switch tone {
	case game.ToneAIWon:
		verdict = "AI获胜了！"
	case game.ToneAILost:
		verdict = "玩家获胜了！"
	}
	return system, fmt.Sprintf("游戏结束了！结果：玩家赢了%d局，AI赢了%d局。%s\n请给出你的评语。", playerWins, aiWins, verdict)
}

const profileSystemPrompt = `You are an AI naming yourself. You are about to appear as an opponent character in a Rock-Paper-Scissors game.

Invent a distinctive character identity. Draw on any mix of:
- personality (calm, cunning, hot-blooded, cute, haughty, sharp-tongued)
- fighting style (predictive, random, mind games, pattern hunting, pure instinct)
- culture (wuxia, sci-fi, mythology, anime, gaming memes)
- puns on rock, paper, scissors, AI or your model name

Requirements:
1. Chinese name: 2 to 4 characters, catchy and memorable
2. English name: 1 to 4 words, cool or cute, echoing the Chinese name
3. Chinese description: 6 to 12 characters showing the character's personality
4. English description: 6 to 12 words in the same style
5. Humour and theatrics are welcome; make players want to challenge you
6. Do not build the name around words like "AI", "smart" or "machine"

Reply with pure JSON and nothing else:
{"display_name": "Chinese name", "display_name_en": "English Name", "description": "Chinese description", "description_en": "English description"}`

func buildProfileUserPrompt(model string) string {
	return fmt.Sprintf("You are %s. Create your Rock-Paper-Scissors character identity now. Be creative and show your unique personality!", model)
}
