package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNameCacheExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	nc := NewNameCache(time.Minute)
	nc.now = func() time.Time { return now }

	nc.Set(1, "kal")
	name, ok := nc.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "kal", name)

	now = now.Add(2 * time.Minute)
	_, ok = nc.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, nc.Size())
}

func TestNameCacheResolve(t *testing.T) {
	nc := NewNameCache(time.Minute)
	calls := 0
	fetch := func(id int64) (string, error) {
		calls++
		if id == 2 {
			return "", errors.New("unknown user")
		}
		return "travis", nil
	}

	assert.Equal(t, "travis", nc.Resolve(1, fetch))
	assert.Equal(t, "travis", nc.Resolve(1, fetch))
	assert.Equal(t, 1, calls)

	assert.Equal(t, "Unknown user (2)", nc.Resolve(2, fetch))
	assert.Equal(t, 1, nc.Size())
}

func TestNameCacheCleanup(t *testing.T) {
	now := time.Unix(1000, 0)
	nc := NewNameCache(time.Minute)
	nc.now = func() time.Time { return now }

	nc.Set(1, "a")
	now = now.Add(30 * time.Second)
	nc.Set(2, "b")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, nc.cleanup())
	assert.Equal(t, 1, nc.Size())

	nc.Close()
	nc.Close()
}
