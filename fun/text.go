package fun

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Owoify applies the usual owo substitutions: "love" becomes "wuv",
// r and l become w, and n before a vowel gains a y.
func Owoify(text string) string {
	text = strings.ReplaceAll(text, "ove", "uv")
	text = strings.ReplaceAll(text, "OVE", "UV")

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)

	for i, r := range runes {
		switch r {
		case 'r', 'l':
			b.WriteRune('w')
		case 'R', 'L':
			b.WriteRune('W')
		default:
			b.WriteRune(r)
		}

		if (r == 'n' || r == 'N') && i+1 < len(runes) && isVowel(runes[i+1]) {
			if isUpper(runes[i+1]) {
				b.WriteRune('Y')
			} else {
				b.WriteRune('y')
			}
		}
	}

	return b.String()
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiouAEIOU", r)
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// FormatSeconds renders d as seconds with two decimals, rounding half up.
// Integer arithmetic keeps 2.345s at "2.35" where float formatting would not.
func FormatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	centis := (d + 5*time.Millisecond) / (10 * time.Millisecond)
	whole := int64(centis / 100)
	frac := int64(centis % 100)
	return printer.Sprintf("%d", whole) + fmt.Sprintf(".%02d", frac)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}
