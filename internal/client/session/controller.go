package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/vizzyhq/vizzy/internal/client/api"
	"github.com/vizzyhq/vizzy/internal/client/creds"
	"github.com/vizzyhq/vizzy/internal/common"
	"github.com/vizzyhq/vizzy/internal/logging"
)

// Phase is where the send pipeline currently is. Phases are reported through
// the Notifier so the presentation layer can show progress.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseValidating  Phase = "validating"
	PhaseSending     Phase = "sending"
	PhaseReconciling Phase = "reconciling"
	PhaseFailed      Phase = "failed"
)

// Notifier receives pipeline phase changes. msg is non-empty only for
// PhaseFailed, where it carries a message safe to show the user verbatim.
// Notifiers are invoked outside the controller's lock and may call back in.
type Notifier func(phase Phase, msg string)

// Controller owns the session: the saved credential, the conversation cache,
// the draft composer state and the send pipeline. One send runs at a time;
// a second Send while one is in flight is rejected with common.ErrBusy.
type Controller struct {
	api    api.Client
	creds  creds.Store
	cache  *Cache
	binder *Binder
	log    logging.Logger
	notify Notifier

	mu       sync.Mutex
	draft    string
	usePrefs bool
	sending  bool
	authed   bool
}

// NewController wires the session controller. notify may be nil.
func NewController(client api.Client, store creds.Store, cache *Cache, binder *Binder, log logging.Logger, notify Notifier) *Controller {
	if notify == nil {
		notify = func(Phase, string) {}
	}
	return &Controller{
		api:    client,
		creds:  store,
		cache:  cache,
		binder: binder,
		log:    log,
		notify: notify,
	}
}

// Restore checks for a credential saved by a previous run and, if one exists,
// resumes the session by loading the conversation list. A stale credential is
// cleared silently; the client simply starts logged out.
func (c *Controller) Restore(ctx context.Context) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if err := c.cache.RefreshList(ctx); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return c.logoutLocked(ctx)
		}
		return err
	}

	c.mu.Lock()
	c.authed = true
	c.mu.Unlock()
	return nil
}

// Login authenticates, persists the returned token and loads the sidebar
// list. The composer starts on a new chat.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	token, err := c.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := c.creds.Save(ctx, token); err != nil {
		return err
	}

	c.mu.Lock()
	c.authed = true
	c.mu.Unlock()

	c.cache.CloseCurrent()
	return c.cache.RefreshList(ctx)
}

// Signup registers a new account. It does not log in; the caller is expected
// to follow up with Login.
func (c *Controller) Signup(ctx context.Context, email, password string) error {
	return c.api.Signup(ctx, email, password)
}

// Logout clears the saved credential and all session state.
func (c *Controller) Logout(ctx context.Context) error {
	return c.logoutLocked(ctx)
}

func (c *Controller) logoutLocked(ctx context.Context) error {
	err := c.creds.Clear(ctx)

	c.cache.CloseAll()
	c.binder.Clear()

	c.mu.Lock()
	c.authed = false
	c.draft = ""
	c.mu.Unlock()

	return err
}

// forceLogout handles a credential the server no longer accepts: local state
// is dropped exactly as in Logout, and the caller gets a message fit for the
// user instead of the raw error.
func (c *Controller) forceLogout(ctx context.Context) {
	if err := c.logoutLocked(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear rejected credential", "error", err)
	}
}

// Send runs the pipeline for the current draft and attachment.
//
// A draft that trims to nothing with no attachment fails fast with
// common.ErrEmptyMessage and never reaches the network. A send started while
// another is in flight fails with common.ErrBusy. On success the exchange is
// folded into the cache, the sidebar list is refreshed, and the draft is
// cleared; the attachment stays bound for follow-up prompts.
func (c *Controller) Send(ctx context.Context) (*api.SendResult, error) {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil, common.ErrBusy
	}

	text := strings.TrimSpace(c.draft)
	image := c.binder.Current()
	if text == "" && image == "" {
		c.mu.Unlock()
		return nil, common.ErrEmptyMessage
	}

	c.sending = true
	usePrefs := c.usePrefs
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	c.notify(PhaseValidating, "")

	req := api.SendRequest{
		ConversationID: c.cache.CurrentID(),
		Text:           text,
		ImageURL:       image,
		UsePreferences: usePrefs,
	}

	c.notify(PhaseSending, "")
	res, err := c.api.SendChat(ctx, req)
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	c.cache.ApplySendResult(res)

	c.notify(PhaseReconciling, "")
	if err := c.cache.RefreshList(ctx); err != nil {
		// The exchange is already persisted server-side; a stale sidebar
		// is tolerable, a rejected credential is not.
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, c.fail(ctx, err)
		}
		c.log.Warn(ctx, "conversation list refresh failed after send", "error", err)
	}

	c.mu.Lock()
	c.draft = ""
	c.mu.Unlock()

	c.notify(PhaseIdle, "")
	return res, nil
}

// fail normalizes a pipeline error: a rejected credential forces a logout,
// and the notifier gets a user-facing message instead of the raw error.
func (c *Controller) fail(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrUnauthorized) {
		c.forceLogout(ctx)
	}
	c.notify(PhaseFailed, UserMessage(err))
	return err
}

// UserMessage maps a pipeline error to a message safe to show verbatim. Raw
// transport detail never reaches the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case common.IsValidation(err):
		return common.ValidationReason(err)
	case errors.Is(err, common.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, common.ErrEmptyMessage):
		return "Type a message or attach an image first."
	case errors.Is(err, common.ErrBusy):
		return "Still sending the previous message."
	case errors.Is(err, common.ErrUnavailable):
		return "The server is unavailable. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// RefreshConversations reloads the sidebar list from the server.
func (c *Controller) RefreshConversations(ctx context.Context) error {
	err := c.cache.RefreshList(ctx)
	if err != nil && errors.Is(err, common.ErrUnauthorized) {
		c.forceLogout(ctx)
	}
	return err
}

// Open makes the conversation id current, loading its full thread.
func (c *Controller) Open(ctx context.Context, id string) (*api.ConversationDetail, error) {
	detail, err := c.cache.Open(ctx, id)
	if err != nil && errors.Is(err, common.ErrUnauthorized) {
		c.forceLogout(ctx)
	}
	return detail, err
}

// NewChat closes the current conversation; the next send creates a new one.
func (c *Controller) NewChat() {
	c.cache.CloseCurrent()
}

// Delete removes a conversation server-side. Deleting the open conversation
// switches the composer to a new chat.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteConversation(ctx, id); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			c.forceLogout(ctx)
		}
		return err
	}

	if c.cache.CurrentID() == id {
		c.cache.CloseCurrent()
	}
	return c.cache.RefreshList(ctx)
}

// ResetMemory wipes the server-side taste history.
func (c *Controller) ResetMemory(ctx context.Context) error {
	err := c.api.ResetMemory(ctx)
	if err != nil && errors.Is(err, common.ErrUnauthorized) {
		c.forceLogout(ctx)
	}
	return err
}

// Upload sends the image to the backend and binds the stored copy as the
// pending attachment, replacing any previous one.
func (c *Controller) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	url, err := c.api.UploadImage(ctx, filename, r)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			c.forceLogout(ctx)
		}
		return "", err
	}
	c.binder.Set(url)
	return url, nil
}

// RemoveAttachment drops the pending attachment.
func (c *Controller) RemoveAttachment() {
	c.binder.Clear()
}

// Attachment returns the pending attachment URL, or "".
func (c *Controller) Attachment() string {
	return c.binder.Current()
}

// SetDraft replaces the composer text.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// AppendDraft adds text to the composer, separating it from existing content
// with a space. Used by voice input so a transcript lands next to typed text.
func (c *Controller) AppendDraft(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.mu.Lock()
	if c.draft != "" {
		c.draft += " "
	}
	c.draft += text
	c.mu.Unlock()
}

// Draft returns the composer text.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetUsePreferences toggles whether sends consult the taste history.
func (c *Controller) SetUsePreferences(v bool) {
	c.mu.Lock()
	c.usePrefs = v
	c.mu.Unlock()
}

// UsePreferences reports the current toggle state.
func (c *Controller) UsePreferences() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usePrefs
}

// CurrentConversation returns the id of the open conversation, or "" when
// the composer targets a new chat.
func (c *Controller) CurrentConversation() string {
	return c.cache.CurrentID()
}

// Conversations returns the cached sidebar entries.
func (c *Controller) Conversations() []api.Conversation {
	return c.cache.List()
}

// CurrentDetail returns a snapshot of the open conversation, or nil.
func (c *Controller) CurrentDetail() *api.ConversationDetail {
	return c.cache.Detail()
}

// Authenticated reports whether a session is active.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authed
}

// Sending reports whether a send is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}
