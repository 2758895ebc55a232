package domain

// Webhook is a channel-scoped posting identity the bot can drive to publish
// content under an arbitrary display name and avatar. A webhook without a
// token cannot be executed.
type Webhook struct {
	ID        string
	Token     string
	ChannelID string
}
