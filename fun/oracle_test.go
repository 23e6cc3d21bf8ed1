package fun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	assert.Len(t, c.EightBall, 20)
	assert.Contains(t, c.EightBall, "It is certain")
	assert.Contains(t, c.EightBall, "Yes")
	assert.Contains(t, c.ChatbotEmotions, "neutral")
}

func TestOracleAnswersFromCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)
	o := NewOracle(c.EightBall)

	for i := 0; i < 50; i++ {
		answer, err := o.Answer("will it work?")
		require.NoError(t, err)
		assert.Contains(t, c.EightBall, answer)
	}
}

func TestOracleRejectsEmptyQuestion(t *testing.T) {
	o := NewOracle([]string{"Yes"})

	_, err := o.Answer("   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestOracleUsesPick(t *testing.T) {
	o := NewOracle([]string{"a", "b", "c"})
	o.pick = func(n int) int { return n - 1 }

	answer, err := o.Answer("?")
	require.NoError(t, err)
	assert.Equal(t, "c", answer)
}
