package models

import "time"

// MemoryItem is one entry of a user's taste history: the text of a prompt
// they sent, kept so later generations can match their style.
type MemoryItem struct {
	ID        string
	UserID    string
	Content   string
	CreatedAt time.Time
}
