package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/vizzyhq/vizzy/internal/client/api"
	"github.com/vizzyhq/vizzy/internal/client/config"
	"github.com/vizzyhq/vizzy/internal/client/creds"
	"github.com/vizzyhq/vizzy/internal/client/session"
	"github.com/vizzyhq/vizzy/internal/client/voice"
	"github.com/vizzyhq/vizzy/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the Vizzy CLI: configuration, credential store, backend gateway,
// session controller and optional voice input.
type App struct {
	config *config.Config
	ctrl   *session.Controller
	voice  *voice.Recognizer
	reader *bufio.Reader
	log    logging.Logger
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := creds.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store := creds.NewSQLiteStore(db)
	gateway := api.NewHTTPClient(c.ServerBaseURL, store, &http.Client{Timeout: c.RequestTimeout})

	cache := session.NewCache(gateway)
	binder := session.NewBinder()
	ctrl := session.NewController(gateway, store, cache, binder, log, notifyPhase)

	app := &App{config: c, ctrl: ctrl, reader: bufio.NewReader(os.Stdin), log: log}

	if c.OpenAIAPIKey != "" {
		engine := voice.NewWhisperEngine(c.OpenAIAPIKey, c.VoiceModel, c.VoiceLanguage)
		app.voice = voice.NewRecognizer(engine, log,
			func(text string) {
				ctrl.AppendDraft(text)
				printlnFn("Heard:", text)
				printlnFn("Draft:", ctrl.Draft())
			},
			func(err error) {
				printlnFn("Transcription failed:", session.UserMessage(err))
			})
	}

	return app, nil
}

// notifyPhase reports send-pipeline progress. Only failures carry a message.
func notifyPhase(phase session.Phase, msg string) {
	switch phase {
	case session.PhaseSending:
		printlnFn("Sending...")
	case session.PhaseFailed:
		printlnFn("Send failed:", msg)
	}
}

// Run restores any saved session and enters the REPL. It blocks until the
// user exits.
func (a *App) Run(ctx context.Context) {
	printlnFn("Vizzy CLI (type 'help' for commands)")

	if err := a.ctrl.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	if a.ctrl.Authenticated() {
		printlnFn("Resumed previous session.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.Authenticated()
}

func (a *App) getStatus() string {
	s := ""
	if a.ctrl.Authenticated() {
		if id := a.ctrl.CurrentConversation(); id != "" {
			s = "chat " + shortID(id)
		} else {
			s = "new chat"
		}
		if a.ctrl.Attachment() != "" {
			s += " +img"
		}
		if a.ctrl.UsePreferences() {
			s += " +prefs"
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
