package utils

import (
	"fmt"
	"strings"
	"time"

	"travis-bott/fun"
	"travis-bott/models"

	"github.com/bwmarrin/discordgo"
)

// CreateBrandedEmbed creates a basic embed with bot branding
func CreateBrandedEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    FooterText,
			IconURL: FooterIcon,
		},
	}
}

// ErrorEmbed creates the embed shown when a command fails
func ErrorEmbed(message string) *discordgo.MessageEmbed {
	return CreateBrandedEmbed("", message, ErrorColor)
}

// FormatNumber formats a number with thousands separators
func FormatNumber(num int64) string {
	return fun.FormatCount(num)
}

// LeaderboardLines renders one line per ranked score. name resolves a
// user id to a display name.
func LeaderboardLines(records []models.ScoreRecord, name func(int64) string) []string {
	lines := make([]string, 0, len(records))
	for _, r := range models.Rank(records) {
		unit := "cookies"
		if r.Count == 1 {
			unit = "cookie"
		}
		lines = append(lines, fmt.Sprintf("**%d.** %s - %s %s", r.Rank, name(r.UserID), FormatNumber(r.Count), unit))
	}
	return lines
}

// PageCount returns how many pages of size per are needed for n lines.
func PageCount(n, per int) int {
	if n == 0 || per <= 0 {
		return 1
	}
	return (n + per - 1) / per
}

// Page returns the lines on the zero-based page.
func Page(lines []string, page, per int) []string {
	start := page * per
	if start >= len(lines) || start < 0 {
		return nil
	}
	end := start + per
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start:end]
}

// LeaderboardEmbed renders one page of the cookie leaderboard
func LeaderboardEmbed(lines []string, page, per int) *discordgo.MessageEmbed {
	pages := PageCount(len(lines), per)
	description := EmptyLeaderboardMessage
	if len(lines) > 0 {
		description = strings.Join(Page(lines, page, per), "\n")
	}

	embed := CreateBrandedEmbed("🍪 Cookie Leaderboard", description, BotColor)
	embed.Footer.Text = fmt.Sprintf("Page %d/%d • %s", page+1, pages, FooterText)
	return embed
}

// CommandHelp is one entry of the help listing.
type CommandHelp struct {
	Name        string
	Usage       string
	Description string
}

// HelpText renders the help listing.
func HelpText(commands []CommandHelp) string {
	var b strings.Builder
	for i, c := range commands {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("`/")
		b.WriteString(c.Name)
		if c.Usage != "" {
			b.WriteString(" ")
			b.WriteString(c.Usage)
		}
		b.WriteString("` - ")
		b.WriteString(c.Description)
	}
	return b.String()
}

// HelpEmbed creates the help embed
func HelpEmbed(commands []CommandHelp) *discordgo.MessageEmbed {
	return CreateBrandedEmbed("Commands", HelpText(commands), BotColor)
}

// SubmissionEmbed renders a reddit post
func SubmissionEmbed(title, link, image, author string, ups, downs, score, subscribers int, posted time.Time) *discordgo.MessageEmbed {
	embed := CreateBrandedEmbed(title, "", BotColor)
	embed.URL = link
	embed.Author = &discordgo.MessageEmbedAuthor{Name: "Poster: " + author}
	embed.Image = &discordgo.MessageEmbedImage{URL: image}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "⬆", Value: FormatNumber(int64(ups)), Inline: true},
		{Name: "⬇", Value: FormatNumber(int64(downs)), Inline: true},
	}
	embed.Footer.Text = fmt.Sprintf("Subreddit Subs: %s | Post score: %s | Posted at",
		FormatNumber(int64(subscribers)), FormatNumber(int64(score)))
	embed.Timestamp = posted.Format(time.RFC3339)
	return embed
}

// ImageEmbed creates an embed that shows a single image
func ImageEmbed(title, imageURL string) *discordgo.MessageEmbed {
	embed := CreateBrandedEmbed(title, "", BotColor)
	embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	return embed
}
