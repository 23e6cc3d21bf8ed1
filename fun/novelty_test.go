package fun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRateIsStable(t *testing.T) {
	r := NewRater()

	first := r.Rate("671777334906454026")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Rate("671777334906454026"))
	}

	// A fresh rater must agree, nothing is seeded per instance.
	assert.Equal(t, first, NewRater().Rate("671777334906454026"))
}

func TestRateOwnerIsMaximal(t *testing.T) {
	r := NewRater("200301688056315911")

	assert.Equal(t, MaxRating, r.Rate("200301688056315911"))
	r.Rate("someone-else")
	assert.Equal(t, MaxRating, r.Rate("200301688056315911"))
	assert.True(t, r.IsOwner("200301688056315911"))
	assert.False(t, r.IsOwner("someone-else"))
}

func TestRateRangeProperty(t *testing.T) {
	r := NewRater()
	rapid.Check(t, func(t *rapid.T) {
		id := rapid.String().Draw(t, "id")
		got := r.Rate(id)
		if got < 0 || got > MaxRating {
			t.Fatalf("rating %d out of range for %q", got, id)
		}
		if again := r.Rate(id); again != got {
			t.Fatalf("rating not stable for %q: %d then %d", id, got, again)
		}
	})
}
