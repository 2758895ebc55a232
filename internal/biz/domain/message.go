package domain

// Author is the slice of a message author's identity the pipeline needs to
// impersonate them through a webhook.
type Author struct {
	ID        string
	Name      string
	Nick      string
	Bot       bool
	AvatarURL string
}

// DisplayName returns the guild nickname when set, falling back to the
// account name.
func (a Author) DisplayName() string {
	if a.Nick != "" {
		return a.Nick
	}
	return a.Name
}

// Message is an inbound platform message. It is observed, never mutated;
// a rewrite produces new content and reposts it.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	Author    Author
	Content   string
}

// Channel carries what a rewrite needs to know about a message's channel:
// whether it is a thread and which channel owns the webhooks that post
// into it.
type Channel struct {
	ID       string
	ParentID string
	IsThread bool
}

// Reaction is a reaction-add event as delivered by the gateway.
type Reaction struct {
	MessageID string
	ChannelID string
	UserID    string
	Emoji     string
}
