package cogs

import (
	"fmt"
	"strings"

	"travis-bott/fun"
	"travis-bott/utils"

	"github.com/bwmarrin/discordgo"
)

const defaultBanReason = "No Reason Provided."

func bottomCommand() *discordgo.ApplicationCommand {
	textOption := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "text",
			Description: "The text to convert",
			Required:    true,
		},
	}
	return &discordgo.ApplicationCommand{
		Name:        "bottom",
		Description: "Bottom translation commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "encode",
				Description: "Encodes text into bottom",
				Options:     textOption,
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "decode",
				Description: "Decodes bottom into text",
				Options:     textOption,
			},
		},
	}
}

func eightBallCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "8ball",
		Description: "Ask the oh so magic 8ball a question",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "question",
				Description: "What do you want to know?",
				Required:    true,
			},
		},
	}
}

func fakebanCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "fakeban",
		Description: "Fakes banning someone because that's funny, I think",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Who to ban",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Why they were banned",
			},
		},
	}
}

func handleBottom(inv *invocation) error {
	data := inv.i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return userError("Pick `encode` or `decode`.")
	}
	sub := data.Options[0]
	text := optionMap(sub.Options)["text"].StringValue()

	switch sub.Name {
	case "encode":
		return utils.SendLongText(inv.s, inv.i, "", fun.Encode(text), "bottom.txt")
	case "decode":
		decoded, err := fun.Decode(text)
		if err != nil {
			return err
		}
		return utils.SendLongText(inv.s, inv.i, "", decoded, "decoded.txt")
	}
	return userError("Pick `encode` or `decode`.")
}

func handleOwoText(inv *invocation) error {
	text := optionMap(inv.i.ApplicationCommandData().Options)["text"].StringValue()
	return utils.SendContentResponse(inv.s, inv.i, fun.Owoify(text), false)
}

func handleChimprate(inv *invocation) error {
	user := targetUser(inv)
	return utils.SendContentResponse(inv.s, inv.i, chimprateText(user.Username, deps.Rater.Rate(user.ID)), false)
}

func handlePP(inv *invocation) error {
	user := targetUser(inv)
	size := deps.Rater.Rate(user.ID)
	if deps.Rater.IsOwner(user.ID) {
		size = utils.DefaultPPOwnerLength
	}
	return utils.SendContentResponse(inv.s, inv.i, ppText(size), false)
}

func handleEightBall(inv *invocation) error {
	question := optionMap(inv.i.ApplicationCommandData().Options)["question"].StringValue()
	answer, err := deps.Oracle.Answer(question)
	if err != nil {
		return err
	}
	return utils.SendContentResponse(inv.s, inv.i, eightBallText(inv.user.ID, answer), false)
}

func handleFakeban(inv *invocation) error {
	opts := optionMap(inv.i.ApplicationCommandData().Options)
	member := opts["member"].UserValue(inv.s)

	reason := defaultBanReason
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}
	return utils.SendContentResponse(inv.s, inv.i, fakebanText(member.ID, inv.user.String(), reason), false)
}

func chimprateText(name string, rating int) string {
	return fmt.Sprintf("%s's chimping levels is %d%% 🐒", name, rating)
}

func ppText(size int) string {
	return "eh, that's alright: 8" + strings.Repeat("=", size) + "D"
}

func eightBallText(userID, answer string) string {
	return fmt.Sprintf("🎱 <@%s>, %s", userID, answer)
}

func fakebanText(memberID, author, reason string) string {
	if strings.TrimSpace(reason) == "" {
		reason = defaultBanReason
	}
	return fmt.Sprintf("<@%s> has been banned by %s for: **%s**", memberID, author, reason)
}
