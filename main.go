package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/echoflaresat/spaceview/body"
	"github.com/echoflaresat/spaceview/config"
	"github.com/echoflaresat/spaceview/ephemeris"
	"github.com/echoflaresat/spaceview/logging"
	"github.com/echoflaresat/spaceview/preview"
	"github.com/echoflaresat/spaceview/render"
	"github.com/echoflaresat/spaceview/vectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func printHelp(fs *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `Spaceview - solar system camera driver

Usage:
  %[1]s [options]

`, os.Args[0])

		printGroup(fs, "Scene", []string{"date", "source", "anchor"})
		printGroup(fs, "Run", []string{"frames", "snapshot", "sky"})
		printGroup(fs, "Misc", []string{"config", "log-level"})
	}
}

func printGroup(fs *pflag.FlagSet, title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := fs.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  --%-10s %s\n", f.Name, f.Usage)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func main() {
	fs := config.Flags()
	fs.Usage = printHelp(fs)
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

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("spaceview failed")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	provider, err := newProvider(cfg, log)
	if err != nil {
		return err
	}

	catalog, err := body.WithColors(body.DefaultCatalog(), cfg.Colors)
	if err != nil {
		return err
	}

	started := time.Now()
	reg, err := body.NewRegistry(ctx, provider, catalog, cfg.Date,
		body.WithLogger(log),
		body.WithConcurrency(cfg.Ephemeris.Concurrency),
	)
	if err != nil {
		return err
	}
	log.Info().
		Str("provider", provider.Name()).
		Int("bodies", len(reg.Names())).
		Dur("took", time.Since(started)).
		Msg("registry ready")

	opts := []render.Option{
		render.WithLogger(log),
		render.WithViewport(cfg.Viewport.Width, cfg.Viewport.Height),
	}
	if cfg.Camera.Anchor != "" {
		opts = append(opts, render.WithAnchor(cfg.Camera.Anchor))
	} else {
		opts = append(opts, render.WithPosition(vectors.FromSlice(cfg.Camera.Position)))
	}
	ctrl, err := render.NewController(cfg.Camera.Config, reg, opts...)
	if err != nil {
		return err
	}

	names := cfg.Tour.Bodies
	if len(names) == 0 {
		names = reg.Names()
	}
	tour := render.NewTour(names, cfg.Tour.Interval)

	if err := loop(ctx, cfg, ctrl, tour, log); err != nil {
		return err
	}
	if cfg.Snapshot.Path == "" {
		return nil
	}
	if ctrl.Target() == "" {
		log.Warn().Msg("no frame to snapshot")
		return nil
	}
	return snapshot(ctx, cfg, ctrl.Frame(), reg.Bodies(), log)
}

func newProvider(cfg config.Config, log zerolog.Logger) (ephemeris.Provider, error) {
	mode, err := ephemeris.ParseMode(cfg.Ephemeris.Source)
	if err != nil {
		return nil, err
	}
	h := cfg.Ephemeris.Horizons
	return ephemeris.NewProvider(ephemeris.Options{
		Mode:     mode,
		Endpoint: h.URL,
		Horizons: []ephemeris.HorizonsOption{
			ephemeris.WithCenter(h.Center),
			ephemeris.WithTimeout(h.Timeout),
			ephemeris.WithRetry(h.RetryMax, h.RetryWaitMin, h.RetryWaitMax),
			ephemeris.WithHorizonsLogger(log),
		},
		CacheSize: cfg.Ephemeris.CacheSize,
		Logger:    log,
	})
}

// loop drives the controller for Frames ticks at the configured frame rate
// or until ctx ends.
func loop(ctx context.Context, cfg config.Config, ctrl *render.Controller, tour *render.Tour, log zerolog.Logger) error {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.FPS))
	defer ticker.Stop()

	frames := 0
	for tick := 0; tick < cfg.Frames; tick++ {
		var now time.Time
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now = <-ticker.C:
		}

		if name, ok := tour.Next(now); ok {
			if _, err := ctrl.Retarget(name); err != nil {
				log.Warn().Err(err).Str("target", name).Msg("retarget failed")
				tour.Skip()
			}
		}
		if ctrl.Target() == "" {
			continue
		}

		f, err := ctrl.Update()
		if err != nil {
			log.Error().Err(err).Msg("frame update failed")
			continue
		}
		frames++
		log.Debug().
			Int("frame", frames).
			Str("target", f.Target).
			Float64("yaw", f.Yaw).
			Float64("pitch", f.Pitch).
			Float64("fov", f.FOV).
			Float64("near", f.Near).
			Float64("far", f.Far).
			Strs("visible", f.Visible).
			Msg("frame")
	}
	log.Info().Int("frames", frames).Int("ticks", cfg.Frames).Str("target", ctrl.Target()).Msg("run complete")
	return nil
}

func snapshot(ctx context.Context, cfg config.Config, f render.Frame, bodies []body.Body, log zerolog.Logger) error {
	opts := preview.Options{
		Width:     cfg.Viewport.Width,
		Height:    cfg.Viewport.Height,
		MinRadius: cfg.Snapshot.MinRadius,
		Glow:      cfg.Snapshot.Glow,
	}
	if cfg.Snapshot.Sky != "" {
		sky, err := preview.LoadSky(cfg.Snapshot.Sky)
		if err != nil {
			return err
		}
		opts.Sky = sky
	}

	img, err := preview.Render(ctx, f, bodies, opts)
	if err != nil {
		return err
	}
	if err := preview.WritePNG(cfg.Snapshot.Path, img); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}
	log.Info().Str("path", cfg.Snapshot.Path).Str("target", f.Target).Msg("snapshot written")
	return nil
}
