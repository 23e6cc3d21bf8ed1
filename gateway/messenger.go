package gateway

import (
	"context"
	"fmt"
	"sync"

	"travis-bott/games"
	"travis-bott/utils"

	"github.com/bwmarrin/discordgo"
)

// InteractionMessenger renders game text as branded embeds. The first Send
// answers the slash command; later sends go to the channel.
type InteractionMessenger struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Title       string
	Color       int

	mu        sync.Mutex
	responded bool
}

// NewInteractionMessenger binds a messenger to a slash command invocation.
func NewInteractionMessenger(s *discordgo.Session, i *discordgo.InteractionCreate, title string) *InteractionMessenger {
	return &InteractionMessenger{Session: s, Interaction: i, Title: title, Color: utils.BotColor}
}

func (m *InteractionMessenger) embed(content string) *discordgo.MessageEmbed {
	return utils.CreateBrandedEmbed(m.Title, content, m.Color)
}

func (m *InteractionMessenger) Send(ctx context.Context, channelID, content string) (games.Message, error) {
	m.mu.Lock()
	first := !m.responded
	m.responded = true
	m.mu.Unlock()

	if first && m.Interaction != nil {
		if err := utils.SendInteractionResponse(m.Session, m.Interaction, m.embed(content), nil, false); err != nil {
			return games.Message{}, fmt.Errorf("failed to respond to interaction: %w", err)
		}
		msg, err := utils.GetOriginalResponseMessage(m.Session, m.Interaction)
		if err != nil {
			return games.Message{}, fmt.Errorf("failed to fetch interaction response: %w", err)
		}
		return games.Message{ChannelID: msg.ChannelID, ID: msg.ID}, nil
	}

	msg, err := m.Session.ChannelMessageSendEmbed(channelID, m.embed(content), discordgo.WithContext(ctx))
	if err != nil {
		return games.Message{}, fmt.Errorf("failed to send message: %w", err)
	}
	return games.Message{ChannelID: msg.ChannelID, ID: msg.ID}, nil
}

func (m *InteractionMessenger) Edit(ctx context.Context, msg games.Message, content string) error {
	_, err := m.Session.ChannelMessageEditEmbed(msg.ChannelID, msg.ID, m.embed(content), discordgo.WithContext(ctx))
	return err
}

func (m *InteractionMessenger) AddReaction(ctx context.Context, msg games.Message, emoji string) error {
	return m.Session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji, discordgo.WithContext(ctx))
}

func (m *InteractionMessenger) ClearReactions(ctx context.Context, msg games.Message) error {
	return m.Session.MessageReactionsRemoveAll(msg.ChannelID, msg.ID, discordgo.WithContext(ctx))
}
