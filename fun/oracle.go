package fun

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed responses.yaml
var responsesYAML []byte

// Catalog is the set of canned responses shipped with the bot.
type Catalog struct {
	EightBall       []string `yaml:"eight_ball"`
	ChatbotEmotions []string `yaml:"chatbot_emotions"`
}

// ErrEmptyQuestion is returned when the oracle is asked nothing.
var ErrEmptyQuestion = errors.New("you need to ask the 8ball a question")

// LoadCatalog parses the embedded response catalog.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(responsesYAML, &c); err != nil {
		return nil, fmt.Errorf("failed to parse response catalog: %w", err)
	}
	if len(c.EightBall) == 0 {
		return nil, errors.New("response catalog has no 8ball answers")
	}
	return &c, nil
}

// Oracle answers questions with one of a fixed set of replies.
type Oracle struct {
	answers []string
	pick    func(n int) int
}

// NewOracle returns an Oracle drawing uniformly from answers.
func NewOracle(answers []string) *Oracle {
	return &Oracle{answers: answers, pick: rand.IntN}
}

// Answer ignores the content of the question beyond requiring one.
func (o *Oracle) Answer(question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	return o.answers[o.pick(len(o.answers))], nil
}

// Answers returns the oracle's reply set.
func (o *Oracle) Answers() []string {
	return o.answers
}
