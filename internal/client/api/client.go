// Package api contains the client-side gateway to the Vizzy backend:
// a stateless wrapper with one method per backend capability.
//
// Every authenticated call reads the current credential from a TokenSource
// at call time, so a token saved or cleared by the session controller is
// visible to the very next request. Failures are normalized to the shared
// taxonomy: common.ErrUnauthorized, *common.ValidationError (with the
// server-provided reason), or an error wrapping common.ErrUnavailable for
// transport-level problems.
package api

import (
	"context"
	"io"
	"time"
)

// Conversation is a sidebar summary entry. The backend owns the ordering.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Asset is a piece of generated or attached content embedded in a message.
// Immutable once attached.
type Asset struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one entry in a conversation thread.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text,omitempty"`
	Assets    []Asset   `json:"assets"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationDetail is the full thread of the currently open conversation.
type ConversationDetail struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// SendRequest is the payload of a chat send. Empty fields are omitted on the
// wire; ConversationID is empty for the first message of a new conversation.
type SendRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Text           string `json:"text,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	UsePreferences bool   `json:"use_preferences"`
}

// SendResult is the backend's answer to a send: the conversation the
// exchange landed in (possibly freshly created) and both persisted messages.
type SendResult struct {
	ConversationID   string  `json:"conversation_id"`
	UserMessage      Message `json:"user_message"`
	AssistantMessage Message `json:"assistant_message"`
}

// TokenSource supplies the current bearer credential. Implementations must
// return the freshest value on every call; the gateway never caches it.
// An empty token means "unauthenticated".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the gateway interface the session controller depends on.
type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, email, password string) error
	ListConversations(ctx context.Context) ([]Conversation, error)
	GetConversation(ctx context.Context, id string) (*ConversationDetail, error)
	SendChat(ctx context.Context, req SendRequest) (*SendResult, error)
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
	DeleteConversation(ctx context.Context, id string) error
	ResetMemory(ctx context.Context) error
}
