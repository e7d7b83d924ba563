package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/vizzyhq/vizzy/internal/client/api"
	"github.com/vizzyhq/vizzy/internal/client/session"
	"github.com/vizzyhq/vizzy/internal/common"
)

// List prints the conversation sidebar, newest first (server ordering).
func (a *App) List(ctx context.Context) error {
	if err := a.ctrl.RefreshConversations(ctx); err != nil {
		printlnFn("Could not load conversations:", session.UserMessage(err))
		return err
	}

	list := a.ctrl.Conversations()
	if len(list) == 0 {
		printlnFn("No conversations yet.")
		return nil
	}
	for _, conv := range list {
		printlnFn(fmt.Sprintf("%s  %s  %s", conv.ID, conv.CreatedAt.Format("2006-01-02 15:04"), conv.Title))
	}
	return nil
}

// Open loads a conversation and prints its thread.
func (a *App) Open(ctx context.Context, id string) error {
	detail, err := a.ctrl.Open(ctx, id)
	if err != nil {
		printlnFn("Could not open conversation:", session.UserMessage(err))
		return err
	}

	printlnFn("--", detail.Title, "--")
	for _, msg := range detail.Messages {
		printMessage(msg)
	}
	return nil
}

// NewChat switches the composer to a fresh conversation.
func (a *App) NewChat(ctx context.Context) error {
	a.ctrl.NewChat()
	printlnFn("Started a new chat.")
	return nil
}

// Send submits the draft. Non-empty inline text replaces the draft first;
// an empty argument sends whatever was composed via say or a previous send
// attempt, falling back to a multi-line prompt when there is nothing yet.
func (a *App) Send(ctx context.Context, text string) error {
	if text != "" {
		a.ctrl.SetDraft(text)
	}

	if a.ctrl.Draft() == "" && a.ctrl.Attachment() == "" {
		composed, err := GetMultiline(a.reader, "Enter prompt", os.Stdout)
		if err != nil {
			return err
		}
		a.ctrl.SetDraft(composed)
	}

	res, err := a.ctrl.Send(ctx)
	if err != nil {
		// The notifier already reported pipeline failures; only the local
		// preconditions need a message here.
		if err == common.ErrEmptyMessage || err == common.ErrBusy {
			printlnFn(session.UserMessage(err))
		}
		return err
	}

	printMessage(res.UserMessage)
	printMessage(res.AssistantMessage)
	return nil
}

// Delete removes a conversation server-side.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.ctrl.Delete(ctx, id); err != nil {
		printlnFn("Could not delete conversation:", session.UserMessage(err))
		return err
	}
	printlnFn("Deleted.")
	return nil
}

// ResetMemory wipes the server-side taste history.
func (a *App) ResetMemory(ctx context.Context) error {
	if err := a.ctrl.ResetMemory(ctx); err != nil {
		printlnFn("Could not reset memory:", session.UserMessage(err))
		return err
	}
	printlnFn("Memory cleared.")
	return nil
}

// Prefs toggles whether sends consult the taste history.
func (a *App) Prefs(ctx context.Context, arg string) error {
	switch arg {
	case "on":
		a.ctrl.SetUsePreferences(true)
		printlnFn("Taste history enabled for sends.")
	case "off":
		a.ctrl.SetUsePreferences(false)
		printlnFn("Taste history disabled for sends.")
	default:
		printlnFn("Usage: prefs on|off")
	}
	return nil
}

func printMessage(msg api.Message) {
	role := msg.Role
	if role == "" {
		role = "?"
	}
	if msg.Text != "" {
		printlnFn(fmt.Sprintf("[%s] %s", role, msg.Text))
	}
	for _, asset := range msg.Assets {
		printlnFn(fmt.Sprintf("[%s] <%s> %s", role, asset.Type, asset.URL))
	}
}
