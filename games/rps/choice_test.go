package rps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResolveNonTiePairs(t *testing.T) {
	cases := []struct {
		player, bot Choice
		want        Outcome
	}{
		{Rock, Scissors, PlayerWins},
		{Paper, Rock, PlayerWins},
		{Scissors, Paper, PlayerWins},
		{Scissors, Rock, BotWins},
		{Rock, Paper, BotWins},
		{Paper, Scissors, BotWins},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Resolve(tc.player, tc.bot), "%s vs %s", tc.player, tc.bot)
	}
}

func TestResolveTies(t *testing.T) {
	for _, c := range []Choice{Rock, Paper, Scissors} {
		assert.Equal(t, Tie, Resolve(c, c))
	}
}

func TestResolveAntisymmetricProperty(t *testing.T) {
	choice := rapid.Custom(func(t *rapid.T) Choice {
		return Choice(rapid.IntRange(1, 3).Draw(t, "choice"))
	})

	rapid.Check(t, func(t *rapid.T) {
		a := choice.Draw(t, "a")
		b := choice.Draw(t, "b")

		ab, ba := Resolve(a, b), Resolve(b, a)
		switch ab {
		case Tie:
			if ba != Tie || a != b {
				t.Fatalf("%s vs %s: tie not symmetric", a, b)
			}
		case PlayerWins:
			if ba != BotWins {
				t.Fatalf("%s vs %s: got %s then %s", a, b, ab, ba)
			}
		case BotWins:
			if ba != PlayerWins {
				t.Fatalf("%s vs %s: got %s then %s", a, b, ab, ba)
			}
		}
	})
}

func TestParseChoice(t *testing.T) {
	valid := map[string]Choice{
		"rock":     Rock,
		"ROCK":     Rock,
		" r ":      Rock,
		"1":        Rock,
		"Paper":    Paper,
		"p":        Paper,
		"2":        Paper,
		"scissors": Scissors,
		"s":        Scissors,
		"3":        Scissors,
		"🪨":        Rock,
		"📰":        Paper,
		"✂":        Scissors,
	}
	for in, want := range valid {
		got, err := ParseChoice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "lizard", "4", "0", "🍪"} {
		_, err := ParseChoice(in)
		assert.Error(t, err, in)
	}
}

func TestChoiceEmojiRoundTrip(t *testing.T) {
	for _, c := range []Choice{Rock, Paper, Scissors} {
		got, ok := ChoiceForEmoji(c.Emoji())
		require.True(t, ok)
		assert.Equal(t, c, got)
		assert.True(t, c.Valid())
	}
	assert.False(t, Choice(0).Valid())
	assert.Equal(t, "Choice(9)", Choice(9).String())
}
