package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rubiojr/fuelfinder/internal/fuelfinder"
	"github.com/urfave/cli/v2"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Manage saved trip calculations",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved calculations, most recent first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the history as JSON",
					},
				},
				Action: historyListAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete the calculation saved at TIMESTAMP",
				ArgsUsage: "TIMESTAMP",
				Action:    historyDeleteAction,
			},
			{
				Name:   "clear",
				Usage:  "Delete every saved calculation",
				Action: historyClearAction,
			},
			{
				Name:   "weekly",
				Usage:  "Show distance and spending totals per weekday",
				Action: historyWeeklyAction,
			},
		},
	}
}

func historyListAction(c *cli.Context) error {
	e, err := openEnv(c.Context, c)
	if err != nil {
		return err
	}
	defer e.Close()

	calcs := e.history.List()
	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(calcs)
	}

	if len(calcs) == 0 {
		fmt.Println("No saved calculations")
		return nil
	}
	for _, calc := range calcs {
		fmt.Println(formatCalculation(calc))
	}
	return nil
}

func historyDeleteAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("a calculation timestamp is required")
	}

	e, err := openEnv(c.Context, c)
	if err != nil {
		return err
	}
	defer e.Close()

	return e.history.Remove(c.Context, c.Args().First())
}

func historyClearAction(c *cli.Context) error {
	e, err := openEnv(c.Context, c)
	if err != nil {
		return err
	}
	defer e.Close()

	return e.history.Clear(c.Context)
}

func historyWeeklyAction(c *cli.Context) error {
	e, err := openEnv(c.Context, c)
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Println("Distance per weekday:")
	for _, day := range e.history.WeeklyDistance() {
		fmt.Printf("   %-9s %.2f\n", day.Day, day.Total)
	}

	fmt.Println("Spending per weekday:")
	budget := e.history.WeeklyBudget()
	if len(budget) == 0 {
		fmt.Println("   none")
	}
	for _, day := range budget {
		fmt.Printf("   %-9s %.2f\n", day.Day, day.Total)
	}
	return nil
}

func formatCalculation(calc fuelfinder.TripCalculation) string {
	units := fuelfinder.ProfileFor(calc.Inputs.CountryCode).Units
	switch calc.Type {
	case fuelfinder.BudgetToDistanceCalc:
		return fmt.Sprintf("%s  budget  %s%.2f -> %.2f %s (%.2f %s)",
			calc.Timestamp, units.CurrencySymbol, calc.Inputs.Budget,
			calc.Outputs.Distance, units.DistanceUnit,
			calc.Outputs.FuelAffordable, units.VolumeUnit)
	default:
		return fmt.Sprintf("%s  cost    %.2f %s -> %s%.2f (%.2f %s)",
			calc.Timestamp, calc.Inputs.Distance, units.DistanceUnit,
			units.CurrencySymbol, calc.Outputs.TotalCost,
			calc.Outputs.FuelNeeded, units.VolumeUnit)
	}
}
