// Package fun holds the pure text and number transforms used by the fun cog:
// the bottom cipher, seeded novelty ratings, the 8-ball oracle and friends.
package fun

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	sectionSeparator = "👉👈"
	zeroSymbol       = "❤️"
)

type symbol struct {
	value byte
	glyph string
}

// Ordered largest first, encoding is greedy.
var bottomSymbols = []symbol{
	{200, "🫂"},
	{50, "💖"},
	{10, "✨"},
	{5, "🥺"},
	{1, ","},
}

// decodeTokens is checked in order, so the two-rune heart must come before the bare one.
var decodeTokens = []symbol{
	{0, zeroSymbol},
	{0, "❤"},
	{200, "🫂"},
	{50, "💖"},
	{10, "✨"},
	{5, "🥺"},
	{1, ","},
}

// DecodeError is returned when text is not valid bottom.
type DecodeError struct {
	Section int
	Reason  string
}

func (e *DecodeError) Error() string {
	if e.Section > 0 {
		return fmt.Sprintf("Invalid bottom text: %s (section %d)", e.Reason, e.Section)
	}
	return "Invalid bottom text: " + e.Reason
}

// Encode turns text into bottom, one separator-terminated section per UTF-8 byte.
func Encode(text string) string {
	var b strings.Builder
	b.Grow(len(text) * 12)

	for i := 0; i < len(text); i++ {
		value := text[i]
		if value == 0 {
			b.WriteString(zeroSymbol)
		}
		for value > 0 {
			for _, s := range bottomSymbols {
				if value >= s.value {
					b.WriteString(s.glyph)
					value -= s.value
					break
				}
			}
		}
		b.WriteString(sectionSeparator)
	}

	return b.String()
}

// Decode reverses Encode. It never returns partial output: any bad section
// fails the whole decode with a *DecodeError.
func Decode(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	text = strings.TrimSuffix(text, sectionSeparator)

	sections := strings.Split(text, sectionSeparator)
	out := make([]byte, 0, len(sections))
	for i, section := range sections {
		value, err := decodeSection(section)
		if err != nil {
			err.Section = i + 1
			return "", err
		}
		out = append(out, value)
	}

	if !utf8.Valid(out) {
		return "", &DecodeError{Reason: "decoded bytes are not valid UTF-8"}
	}
	return string(out), nil
}

func decodeSection(section string) (byte, *DecodeError) {
	if section == "" {
		return 0, &DecodeError{Reason: "empty section"}
	}

	sum := 0
	for section != "" {
		matched := false
		for _, t := range decodeTokens {
			if strings.HasPrefix(section, t.glyph) {
				sum += int(t.value)
				section = section[len(t.glyph):]
				matched = true
				break
			}
		}
		if !matched {
			r, _ := utf8.DecodeRuneInString(section)
			return 0, &DecodeError{Reason: fmt.Sprintf("unknown symbol %q", r)}
		}
		if sum > 255 {
			return 0, &DecodeError{Reason: "section value exceeds one byte"}
		}
	}

	return byte(sum), nil
}
