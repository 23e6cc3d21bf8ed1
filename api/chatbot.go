package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxHistory bounds the conversation context sent with each question.
const maxHistory = 6

// ErrNoChatbotKey is returned when the chat relay is not configured.
var ErrNoChatbotKey = errors.New("chatbot api key is not configured")

// Chatbot relays messages to the travitia cleverbot API.
type Chatbot struct {
	http     *http.Client
	endpoint string
	key      string
}

// NewChatbot builds a Chatbot against endpoint with key.
func NewChatbot(timeout time.Duration, endpoint, key string) *Chatbot {
	return &Chatbot{
		http:     &http.Client{Timeout: timeout},
		endpoint: endpoint,
		key:      key,
	}
}

// Enabled reports whether a key is configured.
func (c *Chatbot) Enabled() bool {
	return c.key != ""
}

// Conversation is one relay session; it keeps the recent exchange as context.
type Conversation struct {
	bot     *Chatbot
	emotion string
	history []string
}

// Start opens a conversation with the given emotion.
func (c *Chatbot) Start(emotion string) *Conversation {
	if emotion == "" {
		emotion = "neutral"
	}
	return &Conversation{bot: c, emotion: strings.ToLower(emotion)}
}

// Emotion is the mood the conversation was started with.
func (cv *Conversation) Emotion() string {
	return cv.emotion
}

type askRequest struct {
	Text    string   `json:"text"`
	Context []string `json:"context"`
	Emotion string   `json:"emotion"`
}

type askResponse struct {
	Response string `json:"response"`
}

// Ask sends text and returns the bot's reply.
func (cv *Conversation) Ask(ctx context.Context, text string) (string, error) {
	if !cv.bot.Enabled() {
		return "", ErrNoChatbotKey
	}

	payload, err := json.Marshal(askRequest{Text: text, Context: cv.history, Emotion: cv.emotion})
	if err != nil {
		return "", fmt.Errorf("failed to encode chatbot request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cv.bot.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chatbot request: %w", err)
	}
	req.Header.Set("Authorization", cv.bot.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := cv.bot.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chatbot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode}
	}

	var body askResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode chatbot response: %w", err)
	}

	cv.history = append(cv.history, text, body.Response)
	if len(cv.history) > maxHistory {
		cv.history = cv.history[len(cv.history)-maxHistory:]
	}
	return body.Response, nil
}
