package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaibs3/newsboard/internal/auth"
	"github.com/shaibs3/newsboard/internal/checker"
	"github.com/shaibs3/newsboard/internal/config"
	"github.com/shaibs3/newsboard/internal/fixtures"
	"github.com/shaibs3/newsboard/internal/handlers"
	"github.com/shaibs3/newsboard/internal/router"
	"github.com/shaibs3/newsboard/internal/store"
	"github.com/shaibs3/newsboard/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 30 * time.Second

// App represents the main application
type App struct {
	config    *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
	db        store.DbProvider
	server    *http.Server
}

func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	tel, err := telemetry.NewTelemetry(logger)
	if err != nil {
		return nil, err
	}

	factory := store.NewDbProviderFactory(logger, tel)
	dbProvider, err := factory.CreateProvider(cfg.DBConfig)
	if err != nil {
		return nil, err
	}

	issuer := auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
	hasher := auth.NewHasher(cfg.BcryptCost)

	if cfg.SeedSample {
		if err := seedSample(context.Background(), dbProvider, hasher, logger); err != nil {
			_ = dbProvider.Close()
			return nil, err
		}
	}
	chk := checker.New(dbProvider)

	limiter := rate.NewLimiter(rate.Limit(cfg.RPSLimit), cfg.RPSBurst)

	handlerList := []router.Handler{
		handlers.NewAPIHandler(),
		handlers.NewTopicHandler(dbProvider, chk),
		handlers.NewArticleHandler(dbProvider, chk, issuer),
		handlers.NewCommentHandler(dbProvider, chk, issuer),
		handlers.NewUserHandler(dbProvider, chk, issuer, hasher),
	}

	appRouter := router.NewRouter(limiter, tel, logger, handlerList)
	server := appRouter.CreateServer(":" + cfg.Port)

	return &App{
		config:    cfg,
		logger:    logger,
		telemetry: tel,
		db:        dbProvider,
		server:    server,
	}, nil
}

// seedSample loads the built-in fixtures into a provider that supports it.
func seedSample(ctx context.Context, db store.DbProvider, hasher auth.Hasher, logger *zap.Logger) error {
	seeder, ok := db.(store.Seeder)
	if !ok {
		return store.ErrSeedUnsupported
	}
	f, err := fixtures.Sample()
	if err != nil {
		return err
	}
	data, err := f.Dataset(hasher.HashPassword)
	if err != nil {
		return err
	}
	if err := seeder.Seed(ctx, data); err != nil {
		return fmt.Errorf("failed to seed sample data: %w", err)
	}
	logger.Info("seeded sample data",
		zap.Int("topics", len(data.Topics)),
		zap.Int("users", len(data.Users)),
		zap.Int("articles", len(data.Articles)),
		zap.Int("comments", len(data.Comments)),
	)
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *App) Handler() http.Handler {
	return app.server.Handler
}

// start starts the application server
func (app *App) start() {
	app.logger.Info("starting server", zap.String("port", app.config.Port))

	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("server failed to start", zap.Error(err))
		}
	}()
}

// stop gracefully shuts down the application
func (app *App) stop() error {
	app.logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	serverErr := app.server.Shutdown(shutdownCtx)
	if serverErr != nil {
		app.logger.Error("server forced to shutdown", zap.Error(serverErr))
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database provider", zap.Error(err))
	}
	if err := app.telemetry.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("failed to shut down telemetry", zap.Error(err))
	}
	if serverErr != nil {
		return serverErr
	}

	app.logger.Info("server exited gracefully")
	return nil
}

// Run starts the application and waits for shutdown signals
func (app *App) Run() error {
	app.start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	return app.stop()
}
