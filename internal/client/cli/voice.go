package cli

import (
	"context"

	"github.com/vizzyhq/vizzy/internal/client/voice"
)

// Say starts transcribing the recorded audio file into the draft. The final
// transcript is appended to the draft when it arrives; use send to submit.
func (a *App) Say(ctx context.Context, audioPath string) error {
	if a.voice == nil {
		printlnFn("Voice input is disabled. Set openai_api_key in the config to enable it.")
		return nil
	}

	if err := a.voice.Start(ctx, audioPath); err != nil {
		if err == voice.ErrListening {
			printlnFn("Already transcribing. Use cancelsay to abort.")
		} else {
			printlnFn("Could not start transcription:", err.Error())
		}
		return err
	}

	printlnFn("Transcribing", audioPath, "...")
	return nil
}

// CancelSay aborts a running transcription without touching the draft.
func (a *App) CancelSay(ctx context.Context) error {
	if a.voice == nil || !a.voice.Listening() {
		printlnFn("Nothing to cancel.")
		return nil
	}
	a.voice.Cancel()
	printlnFn("Dictation cancelled.")
	return nil
}
