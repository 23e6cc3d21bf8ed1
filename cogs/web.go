package cogs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travis-bott/api"
	"travis-bott/fun"
	"travis-bott/games"
	"travis-bott/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

func redditCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "reddit",
		Description: "Gives a random submission from your favourite subreddit",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "subreddit",
				Description: "The subreddit to browse",
				Required:    true,
			},
		},
	}
}

func chatbotCommand() *discordgo.ApplicationCommand {
	emotion := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "emotion",
		Description: "The mood of the bot",
	}
	if catalog, err := fun.LoadCatalog(); err == nil {
		for _, e := range catalog.ChatbotEmotions {
			emotion.Choices = append(emotion.Choices, &discordgo.ApplicationCommandOptionChoice{Name: e, Value: e})
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        "chatbot",
		Description: "Starts an interactive session with the chat bot",
		Options:     []*discordgo.ApplicationCommandOption{emotion},
	}
}

// deferred acknowledges the interaction before a slow API call
func deferred(inv *invocation) error {
	if err := utils.DeferInteraction(inv.s, inv.i); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}
	inv.deferred = true
	return nil
}

func handleKanye(inv *invocation) error {
	if err := deferred(inv); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()

	quote, err := deps.API.KanyeQuote(ctx)
	if err != nil {
		return err
	}
	return utils.EditOriginalInteraction(inv.s, inv.i, utils.CreateBrandedEmbed(kanyeTitle(quote), "", utils.BotColor))
}

func handleFact(inv *invocation) error {
	if err := deferred(inv); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()

	fact, err := deps.API.RandomFact(ctx)
	if err != nil {
		return err
	}
	return utils.EditOriginalInteraction(inv.s, inv.i, utils.CreateBrandedEmbed("", fact, utils.BotColor))
}

func handleFloof(inv *invocation) error {
	if err := deferred(inv); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()

	link, err := deps.API.Floof(ctx)
	if err != nil {
		return err
	}
	return utils.EditOriginalInteraction(inv.s, inv.i, utils.ImageEmbed("", link))
}

func handleReddit(inv *invocation) error {
	subreddit := optionMap(inv.i.ApplicationCommandData().Options)["subreddit"].StringValue()
	if err := deferred(inv); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()

	post, err := deps.API.RandomSubmission(ctx, subreddit)
	if err != nil {
		return err
	}
	if post.Over18 && !channelIsNSFW(inv.s, inv.i.ChannelID) {
		return userError(utils.NSFWMessage)
	}

	embed := utils.SubmissionEmbed(post.Title, post.Link(), post.URL, post.Author,
		post.Ups, post.Downs, post.Score, post.Subscribers, post.CreatedAt())
	return utils.EditOriginalInteraction(inv.s, inv.i, embed)
}

func channelIsNSFW(s *discordgo.Session, channelID string) bool {
	ch, err := s.State.Channel(channelID)
	if err != nil {
		if ch, err = s.Channel(channelID); err != nil {
			return false
		}
	}
	return ch.NSFW
}

func handleNickme(inv *invocation) error {
	if err := deferred(inv); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()

	name, err := deps.API.RandomFirstName(ctx)
	if err != nil {
		return err
	}

	changed := false
	if inv.i.GuildID != "" {
		err := inv.s.GuildMemberNickname(inv.i.GuildID, inv.user.ID, name, discordgo.WithContext(ctx))
		if err != nil {
			inv.logger.Debug().Err(err).Msg("failed to change nickname")
		}
		changed = err == nil
	}
	return utils.EditOriginalContent(inv.s, inv.i, nickmeText(name, changed))
}

func ejectCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "eject",
		Description: "Ejects someone from the game",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Who gets ejected",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "colour",
				Description: "Crewmate colour, e.g. red or darkgreen",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "confirm",
				Description: "Whether they were the impostor (default true)",
			},
		},
	}
}

// ejectOptions reads the eject options, confirm defaulting to true
func ejectOptions(inv *invocation) (text, colour string, impostor bool) {
	opts := optionMap(inv.i.ApplicationCommandData().Options)
	text = opts["text"].StringValue()
	colour = opts["colour"].StringValue()
	impostor = true
	if opt, ok := opts["confirm"]; ok {
		impostor = opt.BoolValue()
	}
	return text, colour, impostor
}

func ejectColoursText() string {
	return "List of available colours: " + strings.Join(api.EjectColours, ", ")
}

func handleEject(inv *invocation) error {
	text, colour, impostor := ejectOptions(inv)
	if !api.ValidColour(colour) {
		return api.ErrBadColour
	}

	if err := deferred(inv); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()

	image, err := deps.API.Ejected(ctx, text, colour, impostor)
	if err != nil {
		return err
	}
	return utils.EditOriginalFile(inv.s, inv.i, "ejected.png", "image/png", image)
}

func handleChatbot(inv *invocation) error {
	if !deps.Chatbot.Enabled() {
		return userError("The chat bot isn't set up on this bot.")
	}

	emotion := ""
	if opt, ok := optionMap(inv.i.ApplicationCommandData().Options)["emotion"]; ok {
		emotion = opt.StringValue()
	}

	session, ctx, err := startSession(inv, "chatbot", true)
	if err != nil {
		return err
	}
	defer utils.Sessions.Finish(session)

	if err := utils.SendContentResponse(inv.s, inv.i, utils.ChatbotStartMessage, false); err != nil {
		return err
	}

	conversation := deps.Chatbot.Start(emotion)
	channelID := inv.i.ChannelID
	relay := &chatRelay{
		channelID: channelID,
		userID:    inv.user.ID,
		idle:      deps.Config.Games.ChatbotIdle,
		waiter:    deps.Dispatcher,
		logger:    inv.logger,
		ask:       conversation.Ask,
		typing: func() {
			_ = inv.s.ChannelTyping(channelID)
		},
		say: func(ctx context.Context, text string) error {
			_, err := inv.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
				Content:         text,
				AllowedMentions: &discordgo.MessageAllowedMentions{},
			}, discordgo.WithContext(ctx))
			return err
		},
		reply: func(ctx context.Context, messageID, text string) error {
			_, err := inv.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
				Content:         text,
				Reference:       &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID},
				AllowedMentions: &discordgo.MessageAllowedMentions{},
			}, discordgo.WithContext(ctx))
			return err
		},
	}
	return relay.run(ctx)
}

// chatRelay forwards one member's messages in a channel to the chat bot
// until they say cancel or go idle
type chatRelay struct {
	channelID string
	userID    string
	idle      time.Duration
	waiter    games.Waiter
	logger    zerolog.Logger

	ask    func(ctx context.Context, text string) (string, error)
	say    func(ctx context.Context, text string) error
	reply  func(ctx context.Context, messageID, text string) error
	typing func()
}

func (c *chatRelay) matches(e games.MessageEvent) bool {
	return e.ChannelID == c.channelID && e.UserID == c.userID && !e.IsBot
}

func (c *chatRelay) run(ctx context.Context) error {
	for {
		msg, err := c.waiter.AwaitMessage(ctx, c.matches, c.idle)
		switch {
		case errors.Is(err, games.ErrTimedOut):
			return c.say(ctx, utils.ChatbotTimeoutMessage)
		case errors.Is(err, games.ErrCancelled), errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			return fmt.Errorf("failed waiting for chat message: %w", err)
		}

		if strings.EqualFold(strings.TrimSpace(msg.Content), utils.ChatbotCancelWord) {
			return c.say(ctx, utils.ChatbotGoodbyeMessage)
		}

		if c.typing != nil {
			c.typing()
		}
		answer, err := c.ask(ctx, msg.Content)
		if err != nil {
			return fmt.Errorf("chatbot failed to answer: %w", err)
		}
		if err := c.reply(ctx, msg.MessageID, answer); err != nil {
			return fmt.Errorf("failed to send chatbot answer: %w", err)
		}
		c.logger.Debug().Msg("relayed chat message")
	}
}

func kanyeTitle(quote string) string {
	return "\"" + quote + "\" - Kanye West"
}

func nickmeText(name string, changed bool) string {
	if changed {
		return fmt.Sprintf("oo lala, %s is such a beautiful name for you 😍", name)
	}
	return fmt.Sprintf("Uhh I couldn't change your name but I chose %s for you anyways 😅", name)
}
