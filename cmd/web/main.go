package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/triage/internal/ai"
	"github.com/myrjola/triage/internal/envstruct"
	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/logging"
	"github.com/myrjola/triage/internal/pprofserver"
	"github.com/myrjola/triage/internal/repositories"
	"github.com/myrjola/triage/internal/session"
	"github.com/myrjola/triage/internal/sqlite"
	"log/slog"
	"os"
	"time"
)

type config struct {
	Addr                 string `env:"TRIAGE_ADDR"                   envDefault:"localhost:4000"`
	PprofPort            string `env:"TRIAGE_PPROF_PORT"             envDefault:""`
	SQLiteURL            string `env:"TRIAGE_SQLITE_URL"             envDefault:"./triage.sqlite"`
	OpenAIAPIKey         string `env:"OPENAI_API_KEY"                envDefault:""`
	SessionLifetimeHours int    `env:"TRIAGE_SESSION_LIFETIME_HOURS" envDefault:"12"`
}

// caseGenerator produces a raw case payload for the given topic and
// difficulty. Satisfied by [ai.Client] and by the offline sample generator.
type caseGenerator interface {
	GenerateCase(ctx context.Context, topic, difficulty string) ([]byte, error)
}

type application struct {
	logger         *slog.Logger
	cases          *repositories.CaseRepository
	generator      caseGenerator
	sessionManager *scs.SessionManager
	sessions       *session.Registry
	htmx           *htmx.HTMX
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	if cfg.PprofPort != "" {
		pprofserver.Launch(cfg.PprofPort, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to database", slog.String("url", cfg.SQLiteURL))

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = time.Duration(cfg.SessionLifetimeHours) * time.Hour

	var generator caseGenerator = ai.NewClient(cfg.OpenAIAPIKey)
	if cfg.OpenAIAPIKey == "" {
		logger.LogAttrs(ctx, slog.LevelWarn, "OPENAI_API_KEY not set, serving built-in sample cases")
		generator = sampleGenerator{}
	}

	app := application{
		logger:         logger,
		cases:          repositories.NewCaseRepository(db, logger),
		generator:      generator,
		sessionManager: sessionManager,
		sessions:       session.NewRegistry(),
		htmx:           htmx.New(),
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	// A missing .env file is fine, the environment may be set by other means.
	if err := godotenv.Load(); err != nil {
		logger.LogAttrs(ctx, slog.LevelDebug, "no .env file loaded")
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server error", errors.SlogError(err))
		os.Exit(1)
	}
}
