package voice

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/vizzyhq/vizzy/internal/logging"
)

// ErrListening reports an attempt to start a capture while one is running.
var ErrListening = errors.New("a voice capture is already running")

// Recognizer runs voice capture sessions against an Engine. sink receives
// the final transcript; onErr receives transcription failures. Both are
// invoked from the capture goroutine, outside any lock.
type Recognizer struct {
	engine Engine
	log    logging.Logger
	sink   func(text string)
	onErr  func(err error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRecognizer(engine Engine, log logging.Logger, sink func(string), onErr func(error)) *Recognizer {
	if onErr == nil {
		onErr = func(error) {}
	}
	return &Recognizer{
		engine: engine,
		log:    log,
		sink:   sink,
		onErr:  onErr,
	}
}

// Start begins transcribing the recorded audio at audioPath. Only one
// session runs at a time; a second Start fails with ErrListening. The final
// transcript is delivered to the sink exactly once; a cancelled session and
// an empty transcript deliver nothing.
func (r *Recognizer) Start(ctx context.Context, audioPath string) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return ErrListening
	}

	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		text, err := r.engine.Transcribe(cctx, audioPath)

		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()

		if err != nil {
			if errors.Is(err, context.Canceled) {
				r.log.Debug(cctx, "voice capture cancelled", "audio", audioPath)
				return
			}
			r.onErr(err)
			return
		}

		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		r.sink(text)
	}()
	return nil
}

// Cancel aborts the running session without delivering a transcript.
// Cancelling while idle is a no-op.
func (r *Recognizer) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Listening reports whether a capture session is running.
func (r *Recognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}
