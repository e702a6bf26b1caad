// Command horizons prints the heliocentric state of the catalog bodies for
// a date, using the same provider stack as the viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/echoflaresat/spaceview/body"
	"github.com/echoflaresat/spaceview/config"
	"github.com/echoflaresat/spaceview/ephemeris"
	"github.com/echoflaresat/spaceview/logging"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

type row struct {
	Name     string     `json:"name"`
	ID       int        `json:"id"`
	Position [3]float64 `json:"position_km"`
	Distance float64    `json:"distance_au"`
	Radius   float64    `json:"radius_km"`
	Color    string     `json:"color"`
}

func main() {
	fs := config.Flags()
	bodies := fs.StringSlice("body", nil, "bodies to print (default all)")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, os.Stderr, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rows, err := collect(ctx, cfg, *bodies, log)
	if err != nil {
		log.Fatal().Err(err).Msg("lookup failed")
	}
	if *asJSON {
		err = writeJSON(os.Stdout, rows)
	} else {
		err = writeTable(os.Stdout, rows)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("write failed")
	}
}

func collect(ctx context.Context, cfg config.Config, names []string, log zerolog.Logger) ([]row, error) {
	mode, err := ephemeris.ParseMode(cfg.Ephemeris.Source)
	if err != nil {
		return nil, err
	}
	h := cfg.Ephemeris.Horizons
	provider, err := ephemeris.NewProvider(ephemeris.Options{
		Mode:     mode,
		Endpoint: h.URL,
		Horizons: []ephemeris.HorizonsOption{
			ephemeris.WithCenter(h.Center),
			ephemeris.WithTimeout(h.Timeout),
			ephemeris.WithRetry(h.RetryMax, h.RetryWaitMin, h.RetryWaitMax),
			ephemeris.WithHorizonsLogger(log),
		},
		Logger: log,
	})
	if err != nil {
		return nil, err
	}

	catalog, err := body.WithColors(body.DefaultCatalog(), cfg.Colors)
	if err != nil {
		return nil, err
	}
	catalog, err = pick(catalog, names)
	if err != nil {
		return nil, err
	}

	reg, err := body.NewRegistry(ctx, provider, catalog, cfg.Date,
		body.WithLogger(log),
		body.WithConcurrency(cfg.Ephemeris.Concurrency),
	)
	if err != nil {
		return nil, err
	}

	var rows []row
	for _, b := range reg.Bodies() {
		rows = append(rows, row{
			Name:     b.Name,
			ID:       b.Index,
			Position: [3]float64{b.Position.X, b.Position.Y, b.Position.Z},
			Distance: b.Position.Norm() / ephemeris.AU,
			Radius:   b.Radius,
			Color:    b.Color.Hex(),
		})
	}
	return rows, nil
}

// pick keeps the named specs, in the order given. No names keeps all.
func pick(catalog []body.Spec, names []string) ([]body.Spec, error) {
	if len(names) == 0 {
		return catalog, nil
	}
	out := make([]body.Spec, 0, len(names))
	for _, name := range names {
		found := false
		for _, s := range catalog {
			if strings.EqualFold(s.Name, name) {
				out = append(out, s)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", body.ErrBodyNotFound, name)
		}
	}
	return out, nil
}

func writeTable(w io.Writer, rows []row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "body\tid\tx (km)\ty (km)\tz (km)\tr (AU)\tradius (km)\tcolor\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.1f\t%.1f\t%.6f\t%.2f\t%s\t\n",
			r.Name, r.ID, r.Position[0], r.Position[1], r.Position[2], r.Distance, r.Radius, r.Color)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, rows []row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
