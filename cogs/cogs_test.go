package cogs

import (
	"regexp"
	"testing"
	"time"

	"travis-bott/config"
	"travis-bott/utils"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commandName = regexp.MustCompile(`^[-_\p{Ll}\p{N}]{1,32}$`)

func TestHelpGolden(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, "help", []byte(utils.HelpText(helpEntries())))
}

func TestCommandDefinitions(t *testing.T) {
	defs := Commands()
	require.Len(t, defs, len(registry))

	seen := make(map[string]bool)
	for _, def := range defs {
		assert.Regexp(t, commandName, def.Name)
		assert.NotEmpty(t, def.Description, def.Name)
		assert.LessOrEqual(t, len(def.Description), 100, def.Name)
		assert.False(t, seen[def.Name], "duplicate command %s", def.Name)
		seen[def.Name] = true

		cmd, ok := byName[def.Name]
		require.True(t, ok)
		assert.NotNil(t, cmd.run, def.Name)
	}
}

func TestChatbotEmotionChoices(t *testing.T) {
	def := byName["chatbot"].def
	require.Len(t, def.Options, 1)

	var names []string
	for _, c := range def.Options[0].Choices {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "neutral")
	assert.Contains(t, names, "happy")
}

func TestCooldownFor(t *testing.T) {
	t.Cleanup(func() { deps = nil })

	deps = nil
	assert.Zero(t, cooldownFor(standardCooldown))

	deps = &Deps{Config: &config.Config{Games: config.GamesConfig{
		CommandCooldown: 3 * time.Second,
		CookieCooldown:  time.Minute,
	}}}
	assert.Equal(t, 3*time.Second, cooldownFor(standardCooldown))
	assert.Equal(t, time.Minute, cooldownFor(cookieCooldown))
	assert.Zero(t, cooldownFor(noCooldown))

	assert.Equal(t, cookieCooldown, byName["cookieclick"].cooldown)
	assert.Equal(t, noCooldown, byName["cookieclick-leaderboard"].cooldown)
}
