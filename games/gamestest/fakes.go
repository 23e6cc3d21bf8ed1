// Package gamestest provides in-memory collaborators for driving games in
// tests without a Discord connection.
package gamestest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"travis-bott/games"
)

// Epoch is the fake clock's starting instant.
var Epoch = time.Date(2021, time.March, 14, 12, 0, 0, 0, time.UTC)

// Clock is a manual clock. Sleep advances it instantly.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	Sleeps []time.Duration
}

// NewClock returns a Clock at Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return games.ErrCancelled
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.Sleeps = append(c.Sleeps, d)
	return nil
}

// Set moves the clock to t if t is later than now.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t
	}
}

// Op is one call recorded by Messenger.
type Op struct {
	Kind    string
	Message games.Message
	Text    string
}

// Messenger records every call and keeps the latest content and reactions
// per message.
type Messenger struct {
	mu        sync.Mutex
	next      int
	Ops       []Op
	Content   map[string]string
	Reactions map[string][]string

	SendErr  error
	EditErr  error
	ReactErr error
	ClearErr error
}

// NewMessenger returns an empty Messenger. Sent messages get IDs msg-1, msg-2...
func NewMessenger() *Messenger {
	return &Messenger{
		Content:   make(map[string]string),
		Reactions: make(map[string][]string),
	}
}

func (m *Messenger) Send(_ context.Context, channelID, content string) (games.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return games.Message{}, m.SendErr
	}
	m.next++
	msg := games.Message{ChannelID: channelID, ID: fmt.Sprintf("msg-%d", m.next)}
	m.Content[msg.ID] = content
	m.Ops = append(m.Ops, Op{Kind: "send", Message: msg, Text: content})
	return msg, nil
}

func (m *Messenger) Edit(_ context.Context, msg games.Message, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ops = append(m.Ops, Op{Kind: "edit", Message: msg, Text: content})
	if m.EditErr != nil {
		return m.EditErr
	}
	m.Content[msg.ID] = content
	return nil
}

func (m *Messenger) AddReaction(_ context.Context, msg games.Message, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ops = append(m.Ops, Op{Kind: "react", Message: msg, Text: emoji})
	if m.ReactErr != nil {
		return m.ReactErr
	}
	m.Reactions[msg.ID] = append(m.Reactions[msg.ID], emoji)
	return nil
}

func (m *Messenger) ClearReactions(_ context.Context, msg games.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ops = append(m.Ops, Op{Kind: "clear", Message: msg})
	if m.ClearErr != nil {
		return m.ClearErr
	}
	delete(m.Reactions, msg.ID)
	return nil
}

// Texts returns the text of every send and edit, in order.
func (m *Messenger) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, op := range m.Ops {
		if op.Kind == "send" || op.Kind == "edit" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Count returns how many ops of kind were recorded.
func (m *Messenger) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, op := range m.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reaction is a scripted reaction delivered After the waiter's first call.
type Reaction struct {
	After time.Duration
	Event games.ReactionEvent
}

// ChatMessage is a scripted message delivered After the waiter's first call.
type ChatMessage struct {
	After time.Duration
	Event games.MessageEvent
}

// Waiter replays scripted events against the fake clock. Events that do not
// match the current wait are dropped, as a live dispatcher would.
type Waiter struct {
	mu        sync.Mutex
	clock     *Clock
	armed     bool
	armedAt   time.Time
	Reactions []Reaction
	Messages  []ChatMessage
	Err       error
}

// NewWaiter returns a Waiter driven by clock.
func NewWaiter(clock *Clock) *Waiter {
	return &Waiter{clock: clock}
}

func (w *Waiter) arm() {
	if !w.armed {
		w.armed = true
		w.armedAt = w.clock.Now()
	}
}

func (w *Waiter) AwaitReaction(ctx context.Context, match games.ReactionMatch, timeout time.Duration) (games.ReactionEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return games.ReactionEvent{}, w.Err
	}
	if ctx.Err() != nil {
		return games.ReactionEvent{}, games.ErrCancelled
	}
	w.arm()

	deadline := w.clock.Now().Add(timeout)
	for len(w.Reactions) > 0 {
		r := w.Reactions[0]
		at := w.armedAt.Add(r.After)
		if at.After(deadline) {
			break
		}
		w.Reactions = w.Reactions[1:]
		r.Event.At = at
		if match(r.Event) {
			w.clock.Set(at)
			return r.Event, nil
		}
	}
	w.clock.Set(deadline)
	return games.ReactionEvent{}, games.ErrTimedOut
}

func (w *Waiter) AwaitMessage(ctx context.Context, match games.MessageMatch, timeout time.Duration) (games.MessageEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return games.MessageEvent{}, w.Err
	}
	if ctx.Err() != nil {
		return games.MessageEvent{}, games.ErrCancelled
	}
	w.arm()

	deadline := w.clock.Now().Add(timeout)
	for len(w.Messages) > 0 {
		m := w.Messages[0]
		at := w.armedAt.Add(m.After)
		if at.After(deadline) {
			break
		}
		w.Messages = w.Messages[1:]
		m.Event.At = at
		if match(m.Event) {
			w.clock.Set(at)
			return m.Event, nil
		}
	}
	w.clock.Set(deadline)
	return games.MessageEvent{}, games.ErrTimedOut
}

// Scores is an in-memory ScoreKeeper.
type Scores struct {
	mu     sync.Mutex
	Counts map[int64]int64
	Err    error
}

// NewScores returns an empty Scores.
func NewScores() *Scores {
	return &Scores{Counts: make(map[int64]int64)}
}

func (s *Scores) Increment(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	s.Counts[userID]++
	return s.Counts[userID], nil
}
