package cogs

import (
	"errors"
	"fmt"

	"travis-bott/api"
	"travis-bott/fun"
	"travis-bott/utils"

	"github.com/bwmarrin/discordgo"
)

// UserError is shown to the invoker verbatim and is not logged as a failure
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func userError(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// userMessage maps err to the reply shown to the invoker. expected is false
// for errors that should be logged.
func userMessage(err error) (msg string, expected bool) {
	var (
		ue       *UserError
		cooldown *utils.CooldownError
		decode   *fun.DecodeError
		status   *api.StatusError
	)

	switch {
	case errors.As(err, &ue):
		return ue.Message, true
	case errors.As(err, &cooldown):
		return cooldown.Error(), true
	case errors.Is(err, utils.ErrChannelBusy):
		return utils.ConcurrencyMessage, true
	case errors.Is(err, utils.ErrShuttingDown):
		return "I'm restarting right now, try again in a minute.", true
	case errors.As(err, &decode):
		return decode.Error(), true
	case errors.Is(err, fun.ErrEmptyQuestion):
		return "You need to ask the 8ball a question.", true
	case errors.Is(err, api.ErrSubredditNotFound):
		return utils.SubredditMissingMessage, true
	case errors.Is(err, api.ErrBadColour):
		return ejectColoursText(), true
	case errors.Is(err, api.ErrNoChatbotKey):
		return "The chat bot isn't set up on this bot.", true
	case errors.As(err, &status):
		return fmt.Sprintf(utils.APIStatusMessage, status.Code), true
	}
	return utils.GenericErrorMessage, false
}

// handleError is the error boundary for every command
func handleError(inv *invocation, err error) {
	msg, expected := userMessage(err)
	if expected {
		inv.logger.Debug().Err(err).Msg("command refused")
	} else {
		inv.logger.Error().Err(err).Msg("command failed")
	}
	respondError(inv, msg)
}

// respondError sends an error response
func respondError(inv *invocation, message string) {
	if inv.deferred {
		if err := utils.EditOriginalInteraction(inv.s, inv.i, utils.ErrorEmbed(message)); err != nil {
			inv.logger.Warn().Err(err).Msg("failed to edit deferred response with error")
		}
		return
	}

	err := inv.s.InteractionRespond(inv.i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         "❌ " + message,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	if err == nil {
		return
	}

	// The command already answered, so fall back to a followup.
	if err := utils.TryEphemeralFollowup(inv.s, inv.i, "❌ "+message); err != nil {
		inv.logger.Warn().Err(err).Msg("failed to report error to user")
	}
}
