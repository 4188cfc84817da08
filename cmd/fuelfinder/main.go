package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fuelfinder",
		Usage: "Find nearby fuel stations and estimate trip fuel costs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Database file",
				EnvVars: []string{"FUELFINDER_DB"},
				Value:   "fuelfinder.db",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Log debug information to stderr",
				EnvVars: []string{"FUELFINDER_DEBUG"},
			},
		},
		Commands: []*cli.Command{
			nearbyCommand(),
			costCommand(),
			budgetCommand(),
			historyCommand(),
			countryCommand(),
			popularCommand(),
		},
	}
}
