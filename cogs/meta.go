package cogs

import (
	"fmt"
	"time"

	"travis-bott/utils"

	"github.com/bwmarrin/discordgo"
)

func handleHelp(inv *invocation) error {
	return utils.SendInteractionResponse(inv.s, inv.i, utils.HelpEmbed(helpEntries()), nil, true)
}

func handlePing(inv *invocation) error {
	startTime := time.Now()
	latency := inv.s.HeartbeatLatency()

	embed := utils.CreateBrandedEmbed("🏓 Pong!", "", utils.BotColor)
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Latency",
			Value:  fmt.Sprintf("%dms", latency.Milliseconds()),
			Inline: true,
		},
		{
			Name:   "Status",
			Value:  "✅ Online",
			Inline: true,
		},
		{
			Name:   "Response Time",
			Value:  fmt.Sprintf("%dms", time.Since(startTime).Milliseconds()),
			Inline: true,
		},
	}
	return utils.SendInteractionResponse(inv.s, inv.i, embed, nil, false)
}
