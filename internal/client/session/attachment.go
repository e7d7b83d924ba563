package session

import "sync"

// Binder holds at most one pending image attachment, identified by the URL
// the upload endpoint returned. The attachment survives a successful send so
// follow-up prompts can keep transforming the same image; it is dropped only
// by an explicit Clear or by replacing it with a new upload.
type Binder struct {
	mu  sync.Mutex
	url string
}

func NewBinder() *Binder {
	return &Binder{}
}

// Set replaces the pending attachment.
func (b *Binder) Set(url string) {
	b.mu.Lock()
	b.url = url
	b.mu.Unlock()
}

// Clear drops the pending attachment.
func (b *Binder) Clear() {
	b.mu.Lock()
	b.url = ""
	b.mu.Unlock()
}

// Current returns the pending attachment URL, or "" when none is set.
func (b *Binder) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}
