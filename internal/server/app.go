// Package server initializes and runs the Vizzy backend: database and
// migrations, asset storage, the AI providers and the public HTTP endpoint,
// with graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vizzyhq/vizzy/internal/logging"
	"github.com/vizzyhq/vizzy/internal/server/config"
	"github.com/vizzyhq/vizzy/internal/server/httpapi"
	"github.com/vizzyhq/vizzy/internal/server/repositories/repomanager"
	"github.com/vizzyhq/vizzy/internal/server/services"
	"github.com/vizzyhq/vizzy/internal/server/storage"
)

// shutdownTimeout bounds how long in-flight requests may finish on shutdown.
const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	rm := repomanager.NewPostgresRepositoryManager()

	db, err := repomanager.OpenDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, localDir, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	var classifier services.Classifier
	var generator services.Generator
	if cfg.OpenAIAPIKey != "" {
		classifier = services.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.IntentModel)
		generator = services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.ImageModel)
	} else {
		logger.Warn(ctx, "no OpenAI API key configured, using mockup providers")
		classifier = services.NewRuleClassifier()
		generator = services.NewMockupGenerator()
	}

	userService := services.NewUserService(db, rm, cfg)
	conversationService := services.NewConversationService(db, rm)
	memoryService := services.NewMemoryService(db, rm)
	chatService := services.NewChatService(db, rm, classifier, generator, store, memoryService, logger)

	handler := httpapi.NewServer(userService, conversationService, chatService,
		memoryService, store, localDir, logger)

	return &App{config: cfg, logger: logger, handler: handler}, nil
}

// newStore selects the asset storage backend. The second return value is the
// local directory to serve under /storage/, empty for remote backends.
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, string, error) {
	switch cfg.StorageBackend {
	case "s3":
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	case "local":
		s, err := storage.NewLocalStore(cfg.LocalStoragePath, cfg.BaseURL)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: app.handler}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
