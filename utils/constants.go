package utils

// General Configuration
const (
	BotName      = "travis-bott"
	BotColor     = 0x5865F2
	ErrorColor   = 0xE74C3C
	SuccessColor = 0x2ECC71
	FooterText   = "travis-bott"
	FooterIcon   = "https://cdn.discordapp.com/embed/avatars/0.png"
)

// Output limits
const (
	// MaxInlineText is the longest output sent inline; longer output is
	// attached as a file.
	MaxInlineText = 1500
	// DefaultPPOwnerLength is the pp length reserved for bot owners.
	DefaultPPOwnerLength = 500
)

// Leaderboard pagination
const (
	PrevPageEmoji = "◀"
	NextPageEmoji = "▶"
)

// UI Messages
const (
	GenericErrorMessage     = "An error occurred, I've logged it to my owner."
	APIStatusMessage        = "The API returned a %d status."
	SubredditMissingMessage = "That subreddit doesn't exist or something severely wrong just happened."
	NSFWMessage             = "Bonk! Go to horny jail."
	CooldownMessage         = "You are on cooldown. Try again in %ss"
	ConcurrencyMessage      = "Too many people using this command. It can only be used 1 time per channel concurrently."
	EmptyLeaderboardMessage = "Nobody has clicked a cookie yet."

	ChatbotStartMessage   = "I have started a chat bot session for you, type away! Type `cancel` to end the session."
	ChatbotTimeoutMessage = "You took a very long time to talk to the bot, so I ended the session."
	ChatbotGoodbyeMessage = "Good bye! 🙂"
	ChatbotCancelWord     = "cancel"
)
