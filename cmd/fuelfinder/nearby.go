package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rubiojr/fuelfinder/internal/fuelfinder"
	"github.com/rubiojr/fuelfinder/pkg/api"
	"github.com/urfave/cli/v2"
)

const defaultRadius = 10.0

func nearbyCommand() *cli.Command {
	return &cli.Command{
		Name:  "nearby",
		Usage: "List fuel stations around a postal code, place or position",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "zip",
				Aliases: []string{"z"},
				Usage:   "Postal code to search around",
			},
			&cli.StringFlag{
				Name:  "location",
				Usage: "Place name to search around",
			},
			&cli.Float64Flag{
				Name:  "lat",
				Usage: "Latitude of the location",
			},
			&cli.Float64Flag{
				Name:  "long",
				Usage: "Longitude of the location",
			},
			&cli.Float64Flag{
				Name:    "radius",
				Aliases: []string{"r"},
				Usage:   "Search radius in the country's distance unit",
				Value:   defaultRadius,
			},
			&cli.StringFlag{
				Name:    "brand",
				Aliases: []string{"b"},
				Usage:   "Only list stations of this brand",
				Value:   fuelfinder.AllBrands,
			},
			countryFlag(),
			&cli.StringFlag{
				Name:  "gpx",
				Usage: "Write the results as GPX waypoints to this file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the results as JSON",
			},
			&cli.StringFlag{
				Name:    "overpass-url",
				Usage:   "Overpass API endpoint",
				EnvVars: []string{"FUELFINDER_OVERPASS_URL"},
				Value:   api.DefaultOverpassURL,
			},
			&cli.StringFlag{
				Name:    "nominatim-url",
				Usage:   "Nominatim API base URL",
				EnvVars: []string{"FUELFINDER_NOMINATIM_URL"},
				Value:   api.DefaultNominatimURL,
			},
		},
		Action: nearbyAction,
	}
}

func nearbyAction(c *cli.Context) error {
	ctx := c.Context

	if err := checkLocationFlags(c); err != nil {
		return err
	}

	radius := c.Float64("radius")
	if !(radius > 0) {
		return fmt.Errorf("radius must be a positive number, got %g", radius)
	}

	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.Close()

	profile := e.profile(ctx, c)
	geocoder := fuelfinder.NewCachedGeocoder(api.NewNominatimAPI(c.String("nominatim-url")))

	opts := fuelfinder.FinderOptions{SearchLog: e.storage}
	if c.IsSet("lat") || c.IsSet("long") {
		opts.Locator = fuelfinder.StaticLocator{Position: fuelfinder.Coordinate{
			Latitude:  c.Float64("lat"),
			Longitude: c.Float64("long"),
		}}
	}

	finder := fuelfinder.NewFinder(
		fuelfinder.NewResolver(geocoder, e.log),
		fuelfinder.NewSearcher(api.NewOverpassAPI(c.String("overpass-url")), e.log),
		opts,
		e.log,
	)

	switch {
	case c.String("zip") != "":
		finder.SetPostalCode(c.String("zip"))
	case c.String("location") != "":
		pos, name, err := fuelfinder.NewPlaceResolver(placeServer(c.String("nominatim-url"))).Resolve(c.String("location"))
		if err != nil {
			return errors.New(fuelfinder.UserMessage(err))
		}
		fmt.Println("Location found:", name)
		finder.SetPosition(pos)
	case opts.Locator != nil:
		if _, err := finder.UseDeviceLocation(ctx); err != nil {
			return errors.New(fuelfinder.UserMessage(err))
		}
	}

	stations, err := finder.Search(ctx, fuelfinder.Query{
		RadiusMeters: fuelfinder.RadiusMeters(radius, profile.Units.DistanceUnit),
		Brand:        c.String("brand"),
		Profile:      profile,
	})
	if err != nil {
		return errors.New(fuelfinder.UserMessage(err))
	}

	if path := c.String("gpx"); path != "" {
		center, _ := finder.Results()
		if err := writeGPX(path, center, stations); err != nil {
			return err
		}
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stations)
	}

	printStations(stations, radius, profile)
	return nil
}

// checkLocationFlags rejects ambiguous or incomplete location input.
func checkLocationFlags(c *cli.Context) error {
	given := 0
	if c.String("zip") != "" {
		given++
	}
	if c.String("location") != "" {
		given++
	}
	if c.IsSet("lat") || c.IsSet("long") {
		if !c.IsSet("lat") || !c.IsSet("long") {
			return errors.New("both --lat and --long are required")
		}
		given++
	}

	switch given {
	case 0:
		return errors.New(fuelfinder.UserMessage(fuelfinder.ErrNoLocationProvided))
	case 1:
		return nil
	default:
		return errors.New("--zip, --location and --lat/--long are mutually exclusive")
	}
}

func writeGPX(path string, center fuelfinder.Coordinate, stations []fuelfinder.Station) error {
	data, err := fuelfinder.ExportGPX(center, stations)
	if err != nil {
		return fmt.Errorf("error exporting GPX: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing GPX file: %w", err)
	}
	return nil
}

func printStations(stations []fuelfinder.Station, radius float64, profile fuelfinder.Profile) {
	unit := profile.Units.DistanceUnit
	for i, station := range stations {
		fmt.Printf("%d. %s (%s)\n", i+1, station.Name, station.Brand)
		fmt.Printf("   Distance: %.2f %s\n", station.Distance, unit)
		fmt.Printf("   Coordinates: %.6f, %.6f\n", station.Location.Latitude, station.Location.Longitude)
		fmt.Printf("   %s\n\n", formatExtras(station))
	}

	fmt.Printf("Found %d stations within %g %s radius\n", len(stations), radius, unit)
}

func formatExtras(station fuelfinder.Station) string {
	rating := "Rating: n/a"
	if station.Rating != nil {
		rating = fmt.Sprintf("Rating: %.1f", *station.Rating)
	}

	status := "Hours: unknown"
	if station.Open != nil {
		status = "Closed"
		if *station.Open {
			status = "Open"
		}
	}
	return rating + " | " + status
}

// placeServer turns the postal code search endpoint into the base URL
// gominatim expects.
func placeServer(searchURL string) string {
	return strings.TrimSuffix(strings.TrimSuffix(searchURL, "/"), "search")
}
