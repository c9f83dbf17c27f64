package main

import (
	"context"
	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/sqlite"
	"github.com/myrjola/triage/internal/testhelpers"
	"log/slog"
	"os"
	"time"
)

// migratetest opens the production database file, which applies the schema,
// and checks that the case file is readable. Run it against a copy of the
// database before deploying a schema change.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("TRIAGE_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "TRIAGE_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// Fetch the number of cases from the database and print it out as a simple smoke test.
	row := db.ReadOnly.QueryRowContext(ctx, `SELECT COUNT(*) FROM cases`)
	var count int
	if err = row.Scan(&count); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching case count", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "case count", slog.Int("count", count))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
