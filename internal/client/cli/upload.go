package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vizzyhq/vizzy/internal/client/session"
)

// Upload sends an image file to the backend and binds the stored copy as the
// pending attachment, replacing any previous one.
func (a *App) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		printlnFn("Could not read file:", err.Error())
		return err
	}
	defer func() { _ = f.Close() }()

	url, err := a.ctrl.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		printlnFn("Upload failed:", session.UserMessage(err))
		return err
	}

	printlnFn("Image attached:", url)
	return nil
}

// RemoveImage drops the pending attachment.
func (a *App) RemoveImage(ctx context.Context) error {
	if a.ctrl.Attachment() == "" {
		printlnFn("No image attached.")
		return nil
	}
	a.ctrl.RemoveAttachment()
	printlnFn("Image removed.")
	return nil
}
