package cogs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"travis-bott/games"
	"travis-bott/games/cookieclick"
	"travis-bott/games/rps"
	"travis-bott/gateway"
	"travis-bott/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var errNoSessions = errors.New("session manager is not initialized")

// startSession registers an interactive command with the session manager
// so shutdown can cancel it
func startSession(inv *invocation, kind string, exclusive bool) (*utils.Session, context.Context, error) {
	if utils.Sessions == nil {
		return nil, nil, errNoSessions
	}
	session, ctx, err := utils.Sessions.Start(context.Background(), kind, inv.i.ChannelID, inv.user.ID, exclusive)
	if err != nil {
		return nil, nil, err
	}
	inv.logger = inv.logger.With().Str("session", session.ID).Logger()
	return session, ctx, nil
}

func rpsCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "rps",
		Description: "Play rock paper scissors with the bot!",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "choice",
				Description: "Rock, paper or scissors. Leave empty to pick with reactions",
			},
		},
	}
}

// rpsChoice reads the optional "choice" option
func rpsChoice(inv *invocation) (rps.Choice, bool, error) {
	opt, ok := optionMap(inv.i.ApplicationCommandData().Options)["choice"]
	if !ok {
		return 0, false, nil
	}
	choice, err := rps.ParseChoice(opt.StringValue())
	if err != nil {
		return 0, false, userError("Pick rock, paper or scissors.")
	}
	return choice, true, nil
}

func handleRPS(inv *invocation) error {
	choice, picked, err := rpsChoice(inv)
	if err != nil {
		return err
	}

	session, ctx, err := startSession(inv, "rps", false)
	if err != nil {
		return err
	}
	defer utils.Sessions.Finish(session)

	messenger := gateway.NewInteractionMessenger(inv.s, inv.i, "Rock Paper Scissors")
	game := rps.NewGame(inv.i.ChannelID, inv.user.ID, messenger, deps.Dispatcher, inv.logger)
	if timeout := deps.Config.Games.RPSTimeout; timeout > 0 {
		game.Timeout = timeout
	}

	play := game.Play
	if picked {
		play = func(ctx context.Context) error { return game.PlayChoice(ctx, choice) }
	}
	if err := play(ctx); err != nil {
		return err
	}
	inv.logger.Info().
		Str("state", game.State.String()).
		Str("outcome", game.Outcome.String()).
		Msg("rps finished")
	return nil
}

func handleCookieClick(inv *invocation) error {
	if deps.Store == nil {
		return userError("Cookie scores are not available right now.")
	}

	session, ctx, err := startSession(inv, "cookieclick", true)
	if err != nil {
		return err
	}
	defer utils.Sessions.Finish(session)

	messenger := gateway.NewInteractionMessenger(inv.s, inv.i, "")
	race := cookieclick.NewRace(inv.i.ChannelID, inv.s.State.User.ID, messenger, deps.Dispatcher, games.SystemClock{}, deps.Store, inv.logger)
	race.Config = raceConfig(deps.Config.Games.CookieAnnounceDelay, deps.Config.Games.CookieTicks, deps.Config.Games.CookieWindow, deps.Config.Games.CookieMinReaction)

	if err := race.Run(ctx); err != nil {
		return err
	}
	inv.logger.Info().
		Str("outcome", race.Outcome.String()).
		Str("winner", race.Winner).
		Dur("elapsed", race.Elapsed).
		Str("cheater", race.Cheater).
		Msg("cookie race finished")
	return nil
}

// raceConfig overlays configured timings on the defaults
func raceConfig(announce time.Duration, ticks int, window, minReaction time.Duration) cookieclick.Config {
	cfg := cookieclick.DefaultConfig()
	if announce > 0 {
		cfg.AnnounceDelay = announce
	}
	if ticks > 0 {
		cfg.Ticks = ticks
	}
	if window > 0 {
		cfg.Window = window
	}
	if minReaction > 0 {
		cfg.MinReaction = minReaction
	}
	return cfg
}

func handleLeaderboard(inv *invocation) error {
	if deps.Store == nil {
		return userError("Cookie scores are not available right now.")
	}
	g := deps.Config.Games

	ctx, cancel := apiContext()
	records, err := deps.Store.Top(ctx, g.LeaderboardSize)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}

	lines := utils.LeaderboardLines(records, func(userID int64) string {
		return resolveName(inv.s, userID)
	})
	if err := utils.SendInteractionResponse(inv.s, inv.i, utils.LeaderboardEmbed(lines, 0, g.LeaderboardPageSize), nil, false); err != nil {
		return err
	}

	pages := utils.PageCount(len(lines), g.LeaderboardPageSize)
	if pages < 2 {
		return nil
	}

	original, err := utils.GetOriginalResponseMessage(inv.s, inv.i)
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard message: %w", err)
	}

	session, sessionCtx, err := startSession(inv, "leaderboard", false)
	if err != nil {
		return err
	}
	defer utils.Sessions.Finish(session)

	msg := games.Message{ChannelID: original.ChannelID, ID: original.ID}
	for _, emoji := range []string{utils.PrevPageEmoji, utils.NextPageEmoji} {
		if err := inv.s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			return fmt.Errorf("failed to add pagination reaction: %w", err)
		}
	}

	p := &paginator{
		message: msg,
		userID:  inv.user.ID,
		pages:   pages,
		idle:    g.LeaderboardIdle,
		waiter:  deps.Dispatcher,
		logger:  inv.logger,
		render: func(ctx context.Context, page int) error {
			embed := utils.OptimizeEmbedPayload(utils.LeaderboardEmbed(lines, page, g.LeaderboardPageSize))
			_, err := inv.s.ChannelMessageEditEmbed(msg.ChannelID, msg.ID, embed, discordgo.WithContext(ctx))
			return err
		},
		unreact: func(ctx context.Context, e games.ReactionEvent) error {
			return inv.s.MessageReactionRemove(msg.ChannelID, msg.ID, e.Emoji, e.UserID, discordgo.WithContext(ctx))
		},
		clear: func(ctx context.Context) error {
			return inv.s.MessageReactionsRemoveAll(msg.ChannelID, msg.ID, discordgo.WithContext(ctx))
		},
	}
	return p.run(sessionCtx)
}

// resolveName looks a user up through the name cache
func resolveName(s *discordgo.Session, userID int64) string {
	fetch := func(id int64) (string, error) {
		u, err := s.User(strconv.FormatInt(id, 10))
		if err != nil {
			return "", err
		}
		return u.String(), nil
	}
	if utils.Names == nil {
		name, err := fetch(userID)
		if err != nil {
			return fmt.Sprintf("Unknown user (%d)", userID)
		}
		return name
	}
	return utils.Names.Resolve(userID, fetch)
}

// paginator flips a message between pages as its owner reacts with the
// page arrows, until the owner goes idle
type paginator struct {
	message games.Message
	userID  string
	pages   int
	page    int
	idle    time.Duration
	waiter  games.Waiter
	logger  zerolog.Logger

	render  func(ctx context.Context, page int) error
	unreact func(ctx context.Context, e games.ReactionEvent) error
	clear   func(ctx context.Context) error
}

func (p *paginator) matches(e games.ReactionEvent) bool {
	return e.MessageID == p.message.ID &&
		e.UserID == p.userID &&
		(e.Emoji == utils.PrevPageEmoji || e.Emoji == utils.NextPageEmoji)
}

func (p *paginator) run(ctx context.Context) error {
	defer p.cleanup(ctx)

	for {
		event, err := p.waiter.AwaitReaction(ctx, p.matches, p.idle)
		switch {
		case errors.Is(err, games.ErrTimedOut), errors.Is(err, games.ErrCancelled), errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			return fmt.Errorf("failed waiting for page reaction: %w", err)
		}

		if p.unreact != nil {
			if err := p.unreact(ctx, event); err != nil {
				p.logger.Debug().Err(err).Msg("failed to remove page reaction")
			}
		}

		next := p.page
		if event.Emoji == utils.PrevPageEmoji {
			next--
		} else {
			next++
		}
		if next < 0 || next >= p.pages {
			continue
		}

		if err := p.render(ctx, next); err != nil {
			return fmt.Errorf("failed to render page %d: %w", next+1, err)
		}
		p.page = next
	}
}

func (p *paginator) cleanup(ctx context.Context) {
	if p.clear == nil {
		return
	}
	cctx, cancel := games.Detached(ctx)
	defer cancel()
	if err := p.clear(cctx); err != nil {
		p.logger.Warn().Err(err).Msg("failed to clear page reactions")
	}
}
