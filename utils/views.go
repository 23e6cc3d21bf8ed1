package utils

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// responseTimeout bounds the initial interaction response; Discord drops
// the interaction after three seconds.
const responseTimeout = 2500 * time.Millisecond

// SendInteractionResponse sends an interaction response with an embed
func SendInteractionResponse(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{OptimizeEmbedPayload(embed)},
		Components: components,
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return respond(s, i, data)
}

// SendContentResponse sends a plain text interaction response. Mentions in
// content never ping.
func SendContentResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return respond(s, i, data)
}

// SendFileResponse answers with a short message and a text attachment
func SendFileResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content, filename, body string) error {
	data := &discordgo.InteractionResponseData{
		Content: content,
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: "text/plain; charset=utf-8",
			Reader:      strings.NewReader(body),
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	return respond(s, i, data)
}

// SendLongText sends text inline when it fits, otherwise as a file
func SendLongText(s *discordgo.Session, i *discordgo.InteractionCreate, prefix, text, filename string) error {
	if len(text) > MaxInlineText {
		return SendFileResponse(s, i, "That was a little too large for discord to handle, so here's a file.", filename, text)
	}
	return SendContentResponse(s, i, prefix+Codeblock(text), false)
}

// Codeblock wraps text in a fenced code block
func Codeblock(text string) string {
	return "```\n" + strings.ReplaceAll(text, "```", "`​``") + "\n```"
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) error {
	ctx, cancel := context.WithTimeout(context.Background(), responseTimeout)
	defer cancel()

	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}

	err := s.InteractionRespond(i.Interaction, response, discordgo.WithContext(ctx))
	if err == nil {
		return nil
	}

	log.Warn().Err(err).Str("interaction_id", i.ID).Msg("interaction response failed")
	if isNonRetryableError(err) {
		return tryInteractionResponseFallback(s, i, data, err)
	}
	return err
}

// isNonRetryableError checks if an error should not be retried
func isNonRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unknown Webhook") ||
		strings.Contains(msg, "\"code\": 10015") ||
		strings.Contains(msg, "Unknown interaction") ||
		strings.Contains(msg, "400")
}

// tryInteractionResponseFallback attempts fallback methods when the primary interaction response fails
func tryInteractionResponseFallback(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData, originalErr error) error {
	if !isWebhookExpiredError(originalErr) {
		params := &discordgo.WebhookParams{
			Content:         data.Content,
			Embeds:          data.Embeds,
			Components:      data.Components,
			Files:           data.Files,
			AllowedMentions: data.AllowedMentions,
		}
		if _, err := s.FollowupMessageCreate(i.Interaction, true, params); err == nil {
			log.Debug().Msg("used followup message as fallback")
			return nil
		}
	}

	if i.ChannelID != "" {
		message := &discordgo.MessageSend{
			Content:         data.Content,
			Embeds:          data.Embeds,
			Components:      data.Components,
			Files:           data.Files,
			AllowedMentions: data.AllowedMentions,
		}
		if _, err := s.ChannelMessageSendComplex(i.ChannelID, message); err == nil {
			log.Debug().Msg("used direct channel message as fallback")
			return nil
		}
	}

	return fmt.Errorf("interaction response failed with all fallbacks: %w", originalErr)
}

// isWebhookExpiredError checks if the error indicates an expired webhook
func isWebhookExpiredError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unknown Webhook") ||
		strings.Contains(msg, "\"code\": 10015") ||
		strings.Contains(msg, "404") ||
		strings.Contains(msg, "Unknown interaction")
}

// SendFollowupMessage sends a followup message
func SendFollowupMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) (*discordgo.Message, error) {
	params := &discordgo.WebhookParams{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.FollowupMessageCreate(i.Interaction, true, params)
}

// TryEphemeralFollowup attempts to send a small ephemeral notice after the
// interaction was already answered.
func TryEphemeralFollowup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := SendFollowupMessage(s, i, content, true)
	return err
}

// EditOriginalInteraction edits the original interaction response
func EditOriginalInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{OptimizeEmbedPayload(embed)}
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds})
	return err
}

// DeferInteraction acknowledges the interaction so a slow handler can
// answer later with EditOriginalInteraction or EditOriginalContent.
func DeferInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx, cancel := context.WithTimeout(context.Background(), responseTimeout)
	defer cancel()

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
}

// EditOriginalContent replaces the original interaction response with text
func EditOriginalContent(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	embeds := []*discordgo.MessageEmbed{}
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:         &content,
		Embeds:          &embeds,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	return err
}

// EditOriginalFile replaces the original interaction response with a
// single attachment
func EditOriginalFile(s *discordgo.Session, i *discordgo.InteractionCreate, filename, contentType string, body []byte) error {
	embeds := []*discordgo.MessageEmbed{}
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &embeds,
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: contentType,
			Reader:      bytes.NewReader(body),
		}},
	})
	return err
}

// GetOriginalResponseMessage fetches the original interaction response message.
// It performs a no-op edit to retrieve the message object without changing content.
func GetOriginalResponseMessage(s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.Message, error) {
	return s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{})
}

// InteractionUser returns the invoking user in guilds and DMs alike
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(id string) (int64, error) { return strconv.ParseInt(id, 10, 64) }

// OptimizeEmbedPayload trims whitespace and drops empty parts of an embed
func OptimizeEmbedPayload(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	if embed == nil {
		return embed
	}

	optimized := &discordgo.MessageEmbed{
		Title:       strings.TrimSpace(embed.Title),
		Description: strings.TrimSpace(embed.Description),
		URL:         embed.URL,
		Color:       embed.Color,
		Timestamp:   embed.Timestamp,
	}

	if embed.Footer != nil && strings.TrimSpace(embed.Footer.Text) != "" {
		optimized.Footer = &discordgo.MessageEmbedFooter{
			Text:    strings.TrimSpace(embed.Footer.Text),
			IconURL: embed.Footer.IconURL,
		}
	}

	if embed.Author != nil && strings.TrimSpace(embed.Author.Name) != "" {
		optimized.Author = embed.Author
	}

	if embed.Thumbnail != nil && embed.Thumbnail.URL != "" {
		optimized.Thumbnail = embed.Thumbnail
	}

	if embed.Image != nil && embed.Image.URL != "" {
		optimized.Image = embed.Image
	}

	for _, field := range embed.Fields {
		if field != nil && strings.TrimSpace(field.Name) != "" && strings.TrimSpace(field.Value) != "" {
			optimized.Fields = append(optimized.Fields, &discordgo.MessageEmbedField{
				Name:   strings.TrimSpace(field.Name),
				Value:  strings.TrimSpace(field.Value),
				Inline: field.Inline,
			})
		}
	}

	return optimized
}
