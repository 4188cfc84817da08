package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func popularCommand() *cli.Command {
	return &cli.Command{
		Name:  "popular",
		Usage: "List the most searched areas",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of areas to list",
				Value:   10,
			},
		},
		Action: popularAction,
	}
}

func popularAction(c *cli.Context) error {
	e, err := openEnv(c.Context, c)
	if err != nil {
		return err
	}
	defer e.Close()

	popular, err := e.storage.PopularLocations(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("error fetching popular locations: %w", err)
	}

	for i, p := range popular {
		fmt.Printf("%d. %.4f, %.4f\n", i+1, p.Location.Latitude, p.Location.Longitude)
		fmt.Printf("   Searches: %d\n", p.SearchCount)
		fmt.Printf("   Radius: %.1f km\n\n", p.Radius/1000)
	}
	fmt.Printf("Found %d popular areas\n", len(popular))
	return nil
}
