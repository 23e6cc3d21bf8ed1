// Package rps implements the rock paper scissors reaction game and its
// outcome rules.
package rps

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Choice is a hand. The numeric values matter: Resolve depends on them.
type Choice int

const (
	Rock Choice = iota + 1
	Paper
	Scissors
)

// Outcome is the result of a round from the first party's side.
type Outcome int

const (
	Tie Outcome = iota
	PlayerWins
	BotWins
)

// Emoji affordances attached to the prompt, in attach order.
const (
	RockEmoji     = "🪨"
	PaperEmoji    = "📰"
	ScissorsEmoji = "✂"
)

var emojiChoices = map[string]Choice{
	RockEmoji:     Rock,
	PaperEmoji:    Paper,
	ScissorsEmoji: Scissors,
	"✂️":          Scissors,
}

// Affordances lists the reaction emoji in the order they are attached.
var Affordances = []string{RockEmoji, PaperEmoji, ScissorsEmoji}

func (c Choice) String() string {
	switch c {
	case Rock:
		return "Rock"
	case Paper:
		return "Paper"
	case Scissors:
		return "Scissors"
	default:
		return fmt.Sprintf("Choice(%d)", int(c))
	}
}

// Emoji returns the reaction that selects c.
func (c Choice) Emoji() string {
	switch c {
	case Rock:
		return RockEmoji
	case Paper:
		return PaperEmoji
	case Scissors:
		return ScissorsEmoji
	default:
		return ""
	}
}

// Valid reports whether c is one of the three hands.
func (c Choice) Valid() bool {
	return c >= Rock && c <= Scissors
}

func (o Outcome) String() string {
	switch o {
	case Tie:
		return "tie"
	case PlayerWins:
		return "player_wins"
	case BotWins:
		return "bot_wins"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Resolve decides a round. With Rock=1, Paper=2, Scissors=3, (a-b) mod 3 is 1
// exactly when a beats b and 2 exactly when b beats a.
func Resolve(player, bot Choice) Outcome {
	if player == bot {
		return Tie
	}
	switch ((int(player)-int(bot))%3 + 3) % 3 {
	case 1:
		return PlayerWins
	default:
		return BotWins
	}
}

// ChoiceForEmoji maps a reaction to a hand.
func ChoiceForEmoji(emoji string) (Choice, bool) {
	c, ok := emojiChoices[emoji]
	return c, ok
}

// ParseChoice accepts a hand name, its initial, its number or its emoji.
func ParseChoice(s string) (Choice, error) {
	s = strings.TrimSpace(s)
	if c, ok := emojiChoices[s]; ok {
		return c, nil
	}

	switch strings.ToLower(s) {
	case "rock", "r", "1":
		return Rock, nil
	case "paper", "p", "2":
		return Paper, nil
	case "scissors", "s", "3":
		return Scissors, nil
	}
	return 0, fmt.Errorf("unknown choice %q", s)
}

// RandomChoice draws a hand uniformly.
func RandomChoice() Choice {
	return Choice(rand.IntN(3) + 1)
}
