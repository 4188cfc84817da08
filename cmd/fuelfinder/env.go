package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rubiojr/fuelfinder/internal/fuelfinder"
	"github.com/urfave/cli/v2"
)

// env bundles what every command needs: logging, storage and the saved
// preferences.
type env struct {
	log     *slog.Logger
	storage *fuelfinder.Storage
	prefs   *fuelfinder.Preferences
	history *fuelfinder.History
}

func newLogger(debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func openEnv(ctx context.Context, c *cli.Context) (*env, error) {
	logger := newLogger(c.Bool("debug"))

	storage, err := fuelfinder.NewStorage(ctx, c.String("db"), logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}

	history := fuelfinder.NewHistory(storage, logger)
	history.Load(ctx)

	return &env{
		log:     logger,
		storage: storage,
		prefs:   fuelfinder.NewPreferences(storage, logger),
		history: history,
	}, nil
}

func (e *env) Close() error {
	return e.storage.Close()
}

// profile returns the profile for the --country flag when set, or the saved
// preference otherwise.
func (e *env) profile(ctx context.Context, c *cli.Context) fuelfinder.Profile {
	if code := c.String("country"); code != "" {
		return fuelfinder.ProfileFor(code)
	}
	return e.prefs.Load(ctx)
}

func countryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "country",
		Aliases: []string{"c"},
		Usage:   "Country code for units and postal code lookups (defaults to the saved preference)",
	}
}
