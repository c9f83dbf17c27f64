package main

import (
	"context"
	"github.com/myrjola/triage/internal/e2etest"
	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/logging"
	"log/slog"
	"os"
	"time"
)

// testFrontPage checks that a deployment serves the waiting room with a
// working case generation form.
func testFrontPage(ctx context.Context, client *e2etest.Client) error {
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for ready")
	}
	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return errors.Wrap(err, "get front page")
	}
	form := doc.Find("form[action='/cases']")
	if form.Length() != 1 {
		return errors.New("case generation form not found", slog.Int("forms", form.Length()))
	}
	if form.Find("input[name=csrf_token]").Length() != 1 {
		return errors.New("csrf token missing from case generation form")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = testFrontPage(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing front page", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
