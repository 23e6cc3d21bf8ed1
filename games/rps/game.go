package rps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travis-bott/games"

	"github.com/rs/zerolog"
)

// State is the lifecycle position of a Game.
type State int

const (
	AwaitingChoice State = iota
	Resolved
	TimedOut
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingChoice:
		return "awaiting_choice"
	case Resolved:
		return "resolved"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultTimeout bounds how long a prompt waits for the player.
const DefaultTimeout = 180 * time.Second

const (
	PromptText    = "Click on Rock, Paper or Scissors and let the council decide your fate."
	TieText       = "We appeared to have tied... maybe I'll win next time. 🤔"
	PlayerWinText = "Congratulations, I guess - you won! I better get you next time."
	BotWinText    = "Congratulations... to me! I win haha!"
	TimeoutText   = "You took too long to pick, the council has dismissed you."
	CancelledText = "The game was cancelled."
)

// Game is one rock/paper/scissors round against the bot, played with
// reactions on a single prompt message.
type Game struct {
	ChannelID string
	UserID    string
	Timeout   time.Duration

	Messenger games.Messenger
	Waiter    games.Waiter
	Choose    func() Choice
	Logger    zerolog.Logger

	State        State
	PlayerChoice Choice
	BotChoice    Choice
	Outcome      Outcome
	Message      games.Message
}

// NewGame prepares a round for userID in channelID.
func NewGame(channelID, userID string, m games.Messenger, w games.Waiter, logger zerolog.Logger) *Game {
	return &Game{
		ChannelID: channelID,
		UserID:    userID,
		Timeout:   DefaultTimeout,
		Messenger: m,
		Waiter:    w,
		Choose:    RandomChoice,
		Logger:    logger,
		State:     AwaitingChoice,
	}
}

// Play runs the round to a terminal state. Timeouts and shutdown end the
// game normally; only collaborator failures are returned.
func (g *Game) Play(ctx context.Context) error {
	msg, err := g.Messenger.Send(ctx, g.ChannelID, PromptText)
	if err != nil {
		return fmt.Errorf("failed to send rps prompt: %w", err)
	}
	g.Message = msg
	defer g.clearReactions(ctx)

	for _, emoji := range Affordances {
		if err := g.Messenger.AddReaction(ctx, msg, emoji); err != nil {
			return fmt.Errorf("failed to attach %s: %w", emoji, err)
		}
	}

	event, err := g.Waiter.AwaitReaction(ctx, g.matches, g.Timeout)
	switch {
	case errors.Is(err, games.ErrTimedOut):
		g.State = TimedOut
		return g.finish(ctx, TimeoutText)
	case errors.Is(err, games.ErrCancelled), errors.Is(err, context.Canceled):
		g.State = Cancelled
		return g.finish(ctx, CancelledText)
	case err != nil:
		return fmt.Errorf("failed waiting for rps choice: %w", err)
	}

	choice, _ := ChoiceForEmoji(event.Emoji)
	g.resolve(choice)
	return g.finish(ctx, OutcomeText(g.Outcome))
}

// PlayChoice resolves the round for a hand picked with the command itself.
// No prompt or reactions are involved: the result is sent as one message.
func (g *Game) PlayChoice(ctx context.Context, choice Choice) error {
	g.resolve(choice)

	msg, err := g.Messenger.Send(ctx, g.ChannelID, OutcomeText(g.Outcome))
	if err != nil {
		return fmt.Errorf("failed to send rps result: %w", err)
	}
	g.Message = msg
	return nil
}

func (g *Game) resolve(choice Choice) {
	g.PlayerChoice = choice
	g.BotChoice = g.Choose()
	g.Outcome = Resolve(g.PlayerChoice, g.BotChoice)
	g.State = Resolved

	g.Logger.Debug().
		Stringer("player", g.PlayerChoice).
		Stringer("bot", g.BotChoice).
		Stringer("outcome", g.Outcome).
		Msg("rps round resolved")
}

// OutcomeText is the terminal message for a resolved round.
func OutcomeText(o Outcome) string {
	switch o {
	case PlayerWins:
		return PlayerWinText
	case BotWins:
		return BotWinText
	default:
		return TieText
	}
}

func (g *Game) matches(e games.ReactionEvent) bool {
	if e.MessageID != g.Message.ID || e.UserID != g.UserID {
		return false
	}
	_, ok := ChoiceForEmoji(e.Emoji)
	return ok
}

func (g *Game) finish(ctx context.Context, text string) error {
	ctx, cancel := games.Detached(ctx)
	defer cancel()

	if err := g.Messenger.Edit(ctx, g.Message, text); err != nil {
		return fmt.Errorf("failed to edit rps prompt: %w", err)
	}
	return nil
}

func (g *Game) clearReactions(ctx context.Context) {
	ctx, cancel := games.Detached(ctx)
	defer cancel()

	if err := g.Messenger.ClearReactions(ctx, g.Message); err != nil {
		g.Logger.Warn().Err(err).Str("message_id", g.Message.ID).Msg("failed to clear rps reactions")
	}
}
