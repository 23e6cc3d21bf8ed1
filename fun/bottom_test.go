package fun

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeKnownValues(t *testing.T) {
	assert.Equal(t, "", Encode(""))
	assert.Equal(t, "💖✨✨✨✨🥺,,👉👈", Encode("a"))
	assert.Equal(t, "❤️👉👈", Encode("\x00"))
	assert.Equal(t, "🫂✨✨✨✨👉👈", Encode("\xf0"))
}

func TestDecodeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"a",
		"aaaa",
		"Hello, World!",
		"MiXeD cAsE",
		"emoji 🍪 and ünïcödé",
		"with\x00nul",
		"  padded  ",
	}

	for _, tc := range cases {
		t.Run(tc, func(t *testing.T) {
			decoded, err := Decode(Encode(tc))
			require.NoError(t, err)
			assert.Equal(t, tc, decoded)
		})
	}
}

func TestDecodeRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")

		decoded, err := Decode(Encode(s))
		if err != nil {
			t.Fatalf("decode failed for %q: %v", s, err)
		}
		if decoded != s {
			t.Fatalf("round trip mismatch: got %q want %q", decoded, s)
		}
	})
}

func TestDecodeToleratesMissingTrailingSeparator(t *testing.T) {
	encoded := strings.TrimSuffix(Encode("hi"), sectionSeparator)

	decoded, err := Decode("  " + encoded + "\n")
	require.NoError(t, err)
	assert.Equal(t, "hi", decoded)
}

func TestDecodeRejectsForeignSymbols(t *testing.T) {
	cases := map[string]string{
		"letter":         "💖✨x👉👈",
		"foreign emoji":  "🍪👉👈",
		"empty section":  "💖👉👈👉👈💖👉👈",
		"overflow":       "🫂🫂👉👈",
		"half separator": "💖👉",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			decoded, err := Decode(input)
			require.Error(t, err)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Empty(t, decoded)
			assert.Contains(t, err.Error(), "Invalid bottom text")
		})
	}
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	_, err := Decode(Encode("\xff"))

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 0, decodeErr.Section)
}

func TestDecodeNeverPartialProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringN(1, 20, -1).Draw(t, "s")
		encoded := Encode(s)
		cut := rapid.IntRange(0, len(encoded)).Draw(t, "cut")

		corrupted := encoded[:cut] + "x" + encoded[cut:]
		decoded, err := Decode(corrupted)
		if err == nil {
			t.Fatalf("expected error for %q", corrupted)
		}
		if decoded != "" {
			t.Fatalf("partial result %q returned with error", decoded)
		}
	})
}
