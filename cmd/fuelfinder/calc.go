package main

import (
	"errors"
	"fmt"

	"github.com/rubiojr/fuelfinder/internal/fuelfinder"
	"github.com/urfave/cli/v2"
)

var errInvalidInputs = errors.New("all values must be positive numbers")

func calcFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "mileage",
			Aliases:  []string{"m"},
			Usage:    "Vehicle mileage in the country's mileage unit",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "rate",
			Usage:    "Fuel price per volume unit",
			Required: true,
		},
		countryFlag(),
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save the calculation to the history",
		},
	}
}

func costCommand() *cli.Command {
	return &cli.Command{
		Name:  "cost",
		Usage: "Estimate the fuel needed and the cost of a trip",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "distance",
				Aliases:  []string{"d"},
				Usage:    "Trip distance in the country's distance unit",
				Required: true,
			},
		}, calcFlags()...),
		Action: costAction,
	}
}

func costAction(c *cli.Context) error {
	ctx := c.Context

	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.Close()

	profile := e.profile(ctx, c)
	distance := fuelfinder.ParseDecimal(c.String("distance"))
	mileage := fuelfinder.ParseDecimal(c.String("mileage"))
	rate := fuelfinder.ParseDecimal(c.String("rate"))

	est, ok := fuelfinder.DistanceToCostValues(distance, mileage, rate)
	if !ok {
		return errInvalidInputs
	}

	units := profile.Units
	fmt.Printf("Fuel needed: %.2f %s\n", est.FuelNeeded, units.VolumeUnit)
	fmt.Printf("Total cost: %s%.2f\n", units.CurrencySymbol, est.TotalCost)

	if !c.Bool("save") {
		return nil
	}

	calc, err := e.history.Record(ctx, fuelfinder.DistanceToCostCalc,
		fuelfinder.CalculationInputs{
			Distance:    distance,
			Mileage:     mileage,
			FuelRate:    rate,
			CountryCode: profile.Country,
		},
		fuelfinder.CalculationOutputs{
			FuelNeeded: est.FuelNeeded,
			TotalCost:  est.TotalCost,
		})
	if err != nil {
		return err
	}
	fmt.Println("Saved as", calc.Timestamp)
	return nil
}

func budgetCommand() *cli.Command {
	return &cli.Command{
		Name:  "budget",
		Usage: "Estimate how far a fuel budget goes",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "amount",
				Aliases:  []string{"a"},
				Usage:    "Budget to spend on fuel",
				Required: true,
			},
		}, calcFlags()...),
		Action: budgetAction,
	}
}

func budgetAction(c *cli.Context) error {
	ctx := c.Context

	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.Close()

	profile := e.profile(ctx, c)
	budget := fuelfinder.ParseDecimal(c.String("amount"))
	mileage := fuelfinder.ParseDecimal(c.String("mileage"))
	rate := fuelfinder.ParseDecimal(c.String("rate"))

	est, ok := fuelfinder.BudgetToDistanceValues(budget, mileage, rate)
	if !ok {
		return errInvalidInputs
	}

	units := profile.Units
	fmt.Printf("Fuel affordable: %.2f %s\n", est.FuelAffordable, units.VolumeUnit)
	fmt.Printf("Distance: %.2f %s\n", est.Distance, units.DistanceUnit)

	if !c.Bool("save") {
		return nil
	}

	calc, err := e.history.Record(ctx, fuelfinder.BudgetToDistanceCalc,
		fuelfinder.CalculationInputs{
			Budget:      budget,
			Mileage:     mileage,
			FuelRate:    rate,
			CountryCode: profile.Country,
		},
		fuelfinder.CalculationOutputs{
			FuelAffordable: est.FuelAffordable,
			Distance:       est.Distance,
		})
	if err != nil {
		return err
	}
	fmt.Println("Saved as", calc.Timestamp)
	return nil
}
