package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rubiojr/fuelfinder/internal/fuelfinder"
	"github.com/urfave/cli/v2"
)

func countryCommand() *cli.Command {
	return &cli.Command{
		Name:  "country",
		Usage: "Show or change the country used for units and lookups",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Show the saved country",
				Action: countryGetAction,
			},
			{
				Name:      "set",
				Usage:     "Save CODE as the country",
				ArgsUsage: "CODE",
				Action:    countrySetAction,
			},
			{
				Name:   "list",
				Usage:  "List the supported countries",
				Action: countryListAction,
			},
		},
	}
}

func countryGetAction(c *cli.Context) error {
	e, err := openEnv(c.Context, c)
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Println(formatProfile(e.prefs.Load(c.Context)))
	return nil
}

func countrySetAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("a country code is required")
	}

	e, err := openEnv(c.Context, c)
	if err != nil {
		return err
	}
	defer e.Close()

	profile, err := e.prefs.Save(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(formatProfile(profile))
	return nil
}

func countryListAction(*cli.Context) error {
	codes := fuelfinder.CountryCodes()
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Println(formatProfile(fuelfinder.ProfileFor(code)))
	}
	return nil
}

func formatProfile(p fuelfinder.Profile) string {
	u := p.Units
	return fmt.Sprintf("%s  %-15s %s, %s, %s, %s", p.Country, u.Name, u.DistanceUnit, u.VolumeUnit, u.CurrencySymbol, u.MileageUnit)
}
