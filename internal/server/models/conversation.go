package models

import "time"

type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
}

type Message struct {
	ID             string
	ConversationID string
	Role           string
	Text           string
	CreatedAt      time.Time
}

// Asset is a generated or uploaded piece of content attached to a message.
type Asset struct {
	ID        string
	MessageID string
	Type      string
	URL       string
	// PromptUsed is the final prompt after taste-history enrichment.
	PromptUsed string
	ModelUsed  string
	CreatedAt  time.Time
}
