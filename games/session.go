// Package games holds the collaborator contracts shared by the interactive
// mini-games. Each game owns its message and listener for its whole life and
// talks to Discord only through these interfaces.
package games

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimedOut is returned by a Waiter when no matching event arrived in time.
	ErrTimedOut = errors.New("timed out waiting for event")
	// ErrCancelled is returned by a Waiter when the bot is shutting down.
	ErrCancelled = errors.New("wait cancelled")
)

// Message identifies a message a game posted.
type Message struct {
	ChannelID string
	ID        string
}

// ReactionEvent is a reaction added to a message.
type ReactionEvent struct {
	MessageID string
	ChannelID string
	UserID    string
	Emoji     string
	IsBot     bool
	At        time.Time
}

// MessageEvent is a message posted to a channel.
type MessageEvent struct {
	MessageID string
	ChannelID string
	UserID    string
	Content   string
	IsBot     bool
	At        time.Time
}

// ReactionMatch selects the reaction a waiter resolves on.
type ReactionMatch func(ReactionEvent) bool

// MessageMatch selects the message a waiter resolves on.
type MessageMatch func(MessageEvent) bool

// Messenger posts and mutates game messages.
type Messenger interface {
	Send(ctx context.Context, channelID, content string) (Message, error)
	Edit(ctx context.Context, msg Message, content string) error
	AddReaction(ctx context.Context, msg Message, emoji string) error
	ClearReactions(ctx context.Context, msg Message) error
}

// Waiter suspends until the first matching event, the timeout, or shutdown.
type Waiter interface {
	AwaitReaction(ctx context.Context, match ReactionMatch, timeout time.Duration) (ReactionEvent, error)
	AwaitMessage(ctx context.Context, match MessageMatch, timeout time.Duration) (MessageEvent, error)
}

// Clock abstracts time for the countdowns.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// ScoreKeeper records race wins.
type ScoreKeeper interface {
	Increment(ctx context.Context, userID int64) (int64, error)
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ErrCancelled
	}
}

// Detached returns a context for terminal cleanup that survives cancellation
// of the session context but is still bounded.
func Detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
}
