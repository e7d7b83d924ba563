// Package session holds the client's in-memory conversation state and the
// controller that drives the send pipeline.
//
// The Cache is the single resident copy of backend conversation data: the
// sidebar list plus at most one fully loaded conversation. The server stays
// authoritative; the cache is refreshed wholesale rather than patched, except
// for the one optimistic append after a successful send.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/vizzyhq/vizzy/internal/client/api"
)

// ErrSuperseded reports that a conversation load finished after a newer
// open (or a close) had already taken over, so its result was discarded.
var ErrSuperseded = errors.New("conversation load superseded")

// Cache is the resident conversation state. All methods are safe for
// concurrent use.
type Cache struct {
	mu  sync.Mutex
	api api.Client

	list      []api.Conversation
	detail    *api.ConversationDetail
	currentID string

	// openGen invalidates in-flight loads: only the newest open may
	// install its result.
	openGen uint64
}

func NewCache(client api.Client) *Cache {
	return &Cache{api: client}
}

// RefreshList replaces the sidebar list with the server's current view.
// The previous list stays in place if the fetch fails.
func (c *Cache) RefreshList(ctx context.Context) error {
	list, err := c.api.ListConversations(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.list = list
	c.mu.Unlock()
	return nil
}

// Open loads the full thread of the conversation id and makes it current.
// When several opens race, only the most recently requested one wins; the
// losers return ErrSuperseded and leave the cache untouched.
func (c *Cache) Open(ctx context.Context, id string) (*api.ConversationDetail, error) {
	c.mu.Lock()
	c.openGen++
	gen := c.openGen
	c.mu.Unlock()

	detail, err := c.api.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.openGen {
		return nil, ErrSuperseded
	}
	c.detail = detail
	c.currentID = detail.ID
	return detail, nil
}

// ApplySendResult folds a successful send into the resident state. If the
// open conversation is the one the exchange landed in, both messages are
// appended; otherwise (first message of a new conversation) a fresh detail
// becomes current. Any in-flight open is invalidated either way.
func (c *Cache) ApplySendResult(res *api.SendResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.openGen++

	if c.detail != nil && c.detail.ID == res.ConversationID {
		c.detail.Messages = append(c.detail.Messages, res.UserMessage, res.AssistantMessage)
	} else {
		c.detail = &api.ConversationDetail{
			ID:       res.ConversationID,
			Messages: []api.Message{res.UserMessage, res.AssistantMessage},
		}
	}
	c.currentID = res.ConversationID
}

// CloseCurrent drops the open conversation without touching the list. The
// next send will start a new conversation.
func (c *Cache) CloseCurrent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openGen++
	c.detail = nil
	c.currentID = ""
}

// CloseAll drops everything resident. Used on logout.
func (c *Cache) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openGen++
	c.list = nil
	c.detail = nil
	c.currentID = ""
}

// List returns a copy of the sidebar entries.
func (c *Cache) List() []api.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Conversation, len(c.list))
	copy(out, c.list)
	return out
}

// Detail returns a snapshot of the open conversation, or nil when none is
// open.
func (c *Cache) Detail() *api.ConversationDetail {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil {
		return nil
	}
	snap := *c.detail
	snap.Messages = make([]api.Message, len(c.detail.Messages))
	copy(snap.Messages, c.detail.Messages)
	return &snap
}

// CurrentID returns the id of the open conversation, or "" for a new chat.
func (c *Cache) CurrentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}
