package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownsPerMemberPerCommand(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewCooldowns()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Use("kanye", "u1", 3*time.Second))
	require.NoError(t, c.Use("kanye", "u2", 3*time.Second))
	require.NoError(t, c.Use("fact", "u1", 3*time.Second))

	now = now.Add(time.Second)
	err := c.Use("kanye", "u1", 3*time.Second)
	var cd *CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, 2*time.Second, cd.RetryAfter)
	assert.Equal(t, "You are on cooldown. Try again in 2.00s", cd.Error())

	now = now.Add(2 * time.Second)
	assert.NoError(t, c.Use("kanye", "u1", 3*time.Second))
}

func TestCooldownsResetAndPrune(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewCooldowns()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Use("cookieclick", "u1", time.Minute))
	c.Reset("cookieclick", "u1")
	assert.NoError(t, c.Use("cookieclick", "u1", time.Minute))

	assert.NoError(t, c.Use("help", "u1", 0))

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, c.Prune(time.Hour))
}
