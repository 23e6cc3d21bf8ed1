// Package cookieclick runs the "first to click the cookie" race.
package cookieclick

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"travis-bott/fun"
	"travis-bott/games"
	"travis-bott/utils"

	"github.com/rs/zerolog"
)

// Phase is the lifecycle position of a Race.
type Phase int

const (
	Announcing Phase = iota
	Countdown
	Open
	Resolved
	Expired
)

func (p Phase) String() string {
	switch p {
	case Announcing:
		return "announcing"
	case Countdown:
		return "countdown"
	case Open:
		return "open"
	case Resolved:
		return "resolved"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Outcome is how a race ended.
type Outcome int

const (
	Pending Outcome = iota
	Won
	NoWinner
	Disqualified
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Won:
		return "won"
	case NoWinner:
		return "expired"
	case Disqualified:
		return "disqualified"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// CookieEmoji is the only reaction that counts.
const CookieEmoji = "🍪"

const (
	AnnounceText = "First person to click wins..."
	OpenText     = "CLICK CLICK CLICK"
	CheatText    = "smh no cheating *tut* *tut* *tut*"
	ExpiredText  = "Damn, no one wanted the cookie..."
	CancelText   = "The cookie race was cancelled."
)

// Config holds the race timings.
type Config struct {
	AnnounceDelay time.Duration
	Ticks         int
	TickInterval  time.Duration
	Settle        time.Duration
	Window        time.Duration
	MinReaction   time.Duration
}

// DefaultConfig returns the standard race timings.
func DefaultConfig() Config {
	return Config{
		AnnounceDelay: 3 * time.Second,
		Ticks:         3,
		TickInterval:  time.Second,
		Settle:        100 * time.Millisecond,
		Window:        10 * time.Second,
		MinReaction:   100 * time.Millisecond,
	}
}

// Race is one cookie race in a channel.
type Race struct {
	ChannelID string
	BotUserID string
	Config    Config

	Messenger games.Messenger
	Waiter    games.Waiter
	Clock     games.Clock
	Scores    games.ScoreKeeper
	Logger    zerolog.Logger

	Phase    Phase
	Outcome  Outcome
	Message  games.Message
	OpenedAt time.Time
	Winner   string
	Cheater  string
	Elapsed  time.Duration
	Count    int64
}

// NewRace prepares a race with the default timings.
func NewRace(channelID, botUserID string, m games.Messenger, w games.Waiter, clock games.Clock, scores games.ScoreKeeper, logger zerolog.Logger) *Race {
	return &Race{
		ChannelID: channelID,
		BotUserID: botUserID,
		Config:    DefaultConfig(),
		Messenger: m,
		Waiter:    w,
		Clock:     clock,
		Scores:    scores,
		Logger:    logger,
		Phase:     Announcing,
	}
}

// CountdownText is the message shown n seconds before opening.
func CountdownText(n int) string {
	return "Starting in " + strconv.Itoa(n) + " seconds..."
}

// CheatTextFor is the final message of a race ended by a too fast click.
func CheatTextFor(userID string) string {
	return "<@" + userID + "> " + CheatText
}

// WinText announces the winner and their time.
func WinText(userID string, elapsed time.Duration) string {
	return fmt.Sprintf("<@%s> got it first in `%s` seconds 👀", userID, fun.FormatSeconds(elapsed))
}

// Run drives the race to a terminal phase. Expiry, disqualification and
// shutdown are normal endings; collaborator failures are returned.
func (r *Race) Run(ctx context.Context) error {
	msg, err := r.Messenger.Send(ctx, r.ChannelID, AnnounceText)
	if err != nil {
		return fmt.Errorf("failed to announce cookie race: %w", err)
	}
	r.Message = msg

	if err := r.Clock.Sleep(ctx, r.Config.AnnounceDelay); err != nil {
		return r.cancel(ctx)
	}

	r.Phase = Countdown
	for n := r.Config.Ticks; n > 0; n-- {
		r.bestEffortEdit(ctx, CountdownText(n))
		if err := r.Clock.Sleep(ctx, r.Config.TickInterval); err != nil {
			return r.cancel(ctx)
		}
	}

	r.bestEffortEdit(ctx, OpenText)
	if err := r.Clock.Sleep(ctx, r.Config.Settle); err != nil {
		return r.cancel(ctx)
	}
	r.clearReactions(ctx)

	// OpenedAt must be stamped before the cookie is attached.
	r.OpenedAt = r.Clock.Now()
	r.Phase = Open
	if err := r.Messenger.AddReaction(ctx, msg, CookieEmoji); err != nil {
		return fmt.Errorf("failed to attach cookie: %w", err)
	}

	remaining := r.OpenedAt.Add(r.Config.Window).Sub(r.Clock.Now())
	if remaining <= 0 {
		return r.expire(ctx)
	}

	event, err := r.Waiter.AwaitReaction(ctx, r.matches, remaining)
	switch {
	case errors.Is(err, games.ErrTimedOut):
		return r.expire(ctx)
	case errors.Is(err, games.ErrCancelled), errors.Is(err, context.Canceled):
		return r.cancel(ctx)
	case err != nil:
		return fmt.Errorf("failed waiting for cookie click: %w", err)
	}

	elapsed := event.At.Sub(r.OpenedAt)
	if elapsed < r.Config.MinReaction {
		return r.disqualify(ctx, event.UserID, elapsed)
	}
	return r.win(ctx, event.UserID, elapsed)
}

func (r *Race) matches(e games.ReactionEvent) bool {
	if e.MessageID != r.Message.ID || e.Emoji != CookieEmoji {
		return false
	}
	return !e.IsBot && e.UserID != r.BotUserID
}

// disqualify ends the race without a winner. No score is written.
func (r *Race) disqualify(ctx context.Context, userID string, elapsed time.Duration) error {
	r.Phase = Resolved
	r.Outcome = Disqualified
	r.Cheater = userID
	r.Elapsed = elapsed
	r.Logger.Info().
		Str("user_id", userID).
		Dur("elapsed", elapsed).
		Msg("cookie click rejected as too fast")

	ctx, cancel := games.Detached(ctx)
	defer cancel()

	r.clearReactions(ctx)
	if err := r.Messenger.Edit(ctx, r.Message, CheatTextFor(userID)); err != nil {
		return fmt.Errorf("failed to edit disqualified cookie race: %w", err)
	}
	return nil
}

func (r *Race) win(ctx context.Context, userID string, elapsed time.Duration) error {
	r.Phase = Resolved
	r.Outcome = Won
	r.Winner = userID
	r.Elapsed = elapsed

	ctx, cancel := games.Detached(ctx)
	defer cancel()

	if err := r.Messenger.Edit(ctx, r.Message, WinText(userID, elapsed)); err != nil {
		r.clearReactions(ctx)
		return fmt.Errorf("failed to announce cookie winner: %w", err)
	}
	r.clearReactions(ctx)

	id, err := utils.ParseUserID(userID)
	if err != nil {
		return fmt.Errorf("invalid winner id %q: %w", userID, err)
	}
	count, err := r.Scores.Increment(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to record cookie for %s: %w", userID, err)
	}
	r.Count = count
	return nil
}

func (r *Race) expire(ctx context.Context) error {
	r.Phase = Expired
	r.Outcome = NoWinner

	ctx, cancel := games.Detached(ctx)
	defer cancel()

	r.clearReactions(ctx)
	if err := r.Messenger.Edit(ctx, r.Message, ExpiredText); err != nil {
		return fmt.Errorf("failed to edit expired cookie race: %w", err)
	}
	return nil
}

func (r *Race) cancel(ctx context.Context) error {
	r.Phase = Expired
	r.Outcome = Cancelled

	ctx, cancel := games.Detached(ctx)
	defer cancel()

	r.clearReactions(ctx)
	r.bestEffortEdit(ctx, CancelText)
	return nil
}

func (r *Race) bestEffortEdit(ctx context.Context, text string) {
	if err := r.Messenger.Edit(ctx, r.Message, text); err != nil {
		r.Logger.Warn().Err(err).Str("text", text).Msg("failed to edit cookie race")
	}
}

func (r *Race) clearReactions(ctx context.Context) {
	if err := r.Messenger.ClearReactions(ctx, r.Message); err != nil {
		r.Logger.Warn().Err(err).Str("message_id", r.Message.ID).Msg("failed to clear cookie reactions")
	}
}
