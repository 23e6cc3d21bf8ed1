package cogs

import (
	"context"
	"fmt"
	"time"

	"travis-bott/api"
	"travis-bott/config"
	"travis-bott/fun"
	"travis-bott/gateway"
	"travis-bott/store"
	"travis-bott/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators shared by every command handler
type Deps struct {
	Config     *config.Config
	Store      store.Store
	API        *api.Client
	Chatbot    *api.Chatbot
	Dispatcher *gateway.Dispatcher
	Rater      *fun.Rater
	Oracle     *fun.Oracle
	Catalog    *fun.Catalog
}

var deps *Deps

// Setup installs the handler dependencies. It must be called before the
// session is opened.
func Setup(d *Deps) {
	deps = d
}

type cooldownKind int

const (
	noCooldown cooldownKind = iota
	standardCooldown
	cookieCooldown
)

// invocation is a single slash command being handled
type invocation struct {
	s        *discordgo.Session
	i        *discordgo.InteractionCreate
	name     string
	user     *discordgo.User
	logger   zerolog.Logger
	deferred bool
}

type command struct {
	def      *discordgo.ApplicationCommand
	usage    string
	cooldown cooldownKind
	run      func(inv *invocation) error
}

var (
	registry []command
	byName   map[string]*command
)

func init() {
	registry = []command{
		{def: bottomCommand(), usage: "encode|decode <text>", cooldown: standardCooldown, run: handleBottom},
		{def: textCommand("owo-text", "Owoifies a given piece of text"), usage: "<text>", cooldown: standardCooldown, run: handleOwoText},
		{def: userCommand("chimprate", "Rates someone's chimpness 🐒"), usage: "[user]", cooldown: standardCooldown, run: handleChimprate},
		{def: userCommand("pp", "Gives you your pp size"), usage: "[user]", cooldown: standardCooldown, run: handlePP},
		{def: eightBallCommand(), usage: "<question>", cooldown: standardCooldown, run: handleEightBall},
		{def: fakebanCommand(), usage: "<member> [reason]", cooldown: standardCooldown, run: handleFakeban},
		{def: rpsCommand(), usage: "[choice]", cooldown: standardCooldown, run: handleRPS},
		{def: plainCommand("cookieclick", "First person to click on the cookie wins!"), cooldown: cookieCooldown, run: handleCookieClick},
		{def: plainCommand("cookieclick-leaderboard", "Gives the leaderboard of all cookie clickers"), run: handleLeaderboard},
		{def: plainCommand("kanye", "Gives a random quote of Kanye West himself"), cooldown: standardCooldown, run: handleKanye},
		{def: plainCommand("fact", "Gives you a cool random fact"), cooldown: standardCooldown, run: handleFact},
		{def: plainCommand("floof", "Get a random image of a cat or dog"), cooldown: standardCooldown, run: handleFloof},
		{def: redditCommand(), usage: "<subreddit>", cooldown: standardCooldown, run: handleReddit},
		{def: plainCommand("nickme", "Gives you a random cool nickname"), cooldown: standardCooldown, run: handleNickme},
		{def: ejectCommand(), usage: "<text> <colour> [confirm]", cooldown: standardCooldown, run: handleEject},
		{def: chatbotCommand(), usage: "[emotion]", run: handleChatbot},
		{def: plainCommand("help", "Shows every command"), run: handleHelp},
		{def: plainCommand("ping", "Check bot latency"), run: handlePing},
	}

	byName = make(map[string]*command, len(registry))
	for idx := range registry {
		byName[registry[idx].def.Name] = &registry[idx]
	}
}

// Commands returns every slash command definition
func Commands() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0, len(registry))
	for _, c := range registry {
		defs = append(defs, c.def)
	}
	return defs
}

// RegisterCommands creates the slash commands, in one guild when guildID is
// set and globally otherwise
func RegisterCommands(s *discordgo.Session, guildID string) error {
	for _, cmd := range Commands() {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd); err != nil {
			return fmt.Errorf("failed to create command %s: %w", cmd.Name, err)
		}
	}
	return nil
}

// HandleCommand routes a slash command to its handler
func HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := byName[name]
	if !ok {
		log.Warn().Str("command", name).Msg("unknown command")
		return
	}

	user := utils.InteractionUser(i)
	if user == nil {
		return
	}

	inv := &invocation{
		s:    s,
		i:    i,
		name: name,
		user: user,
		logger: log.With().
			Str("invocation", uuid.NewString()).
			Str("command", name).
			Str("channel_id", i.ChannelID).
			Str("user_id", user.ID).
			Logger(),
	}

	defer func() {
		if r := recover(); r != nil {
			inv.logger.Error().Interface("panic", r).Msg("command panicked")
			respondError(inv, utils.GenericErrorMessage)
		}
	}()

	if err := utils.CommandCooldowns.Use(name, user.ID, cooldownFor(cmd.cooldown)); err != nil {
		handleError(inv, err)
		return
	}

	start := time.Now()
	if err := cmd.run(inv); err != nil {
		handleError(inv, err)
		return
	}
	inv.logger.Debug().Dur("took", time.Since(start)).Msg("command completed")
}

func cooldownFor(kind cooldownKind) time.Duration {
	if deps == nil || deps.Config == nil {
		return 0
	}
	switch kind {
	case standardCooldown:
		return deps.Config.Games.CommandCooldown
	case cookieCooldown:
		return deps.Config.Games.CookieCooldown
	}
	return 0
}

// helpEntries lists every command for the help embed
func helpEntries() []utils.CommandHelp {
	entries := make([]utils.CommandHelp, 0, len(registry))
	for _, c := range registry {
		entries = append(entries, utils.CommandHelp{
			Name:        c.def.Name,
			Usage:       c.usage,
			Description: c.def.Description,
		})
	}
	return entries
}

// apiContext bounds one call to a third-party API
func apiContext() (context.Context, context.CancelFunc) {
	timeout := 10 * time.Second
	if deps != nil && deps.Config != nil && deps.Config.API.Timeout > 0 {
		timeout = deps.Config.API.Timeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func plainCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: name, Description: description}
}

func textCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "The text to transform",
				Required:    true,
			},
		},
	}
}

func userCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Who to rate, defaults to you",
			},
		},
	}
}

// optionMap indexes the top level options of a command or subcommand
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// targetUser returns the "user" option or the invoker
func targetUser(inv *invocation) *discordgo.User {
	opts := optionMap(inv.i.ApplicationCommandData().Options)
	if opt, ok := opts["user"]; ok {
		if u := opt.UserValue(inv.s); u != nil {
			return u
		}
	}
	return inv.user
}
