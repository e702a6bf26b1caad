package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/echoflaresat/spaceview/render"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SPACEVIEW_EPHEMERIS_SOURCE.
const EnvPrefix = "SPACEVIEW"

// Viewport is the output surface size in pixels.
type Viewport struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Camera places the camera and tunes the camera core.
type Camera struct {
	render.Config `mapstructure:",squash"`

	Position []float64 `mapstructure:"position"`
	Anchor   string    `mapstructure:"anchor"`
}

// Horizons configures the JPL Horizons client.
type Horizons struct {
	URL          string        `mapstructure:"url"`
	Center       string        `mapstructure:"center"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryMax     int           `mapstructure:"retryMax"`
	RetryWaitMin time.Duration `mapstructure:"retryWaitMin"`
	RetryWaitMax time.Duration `mapstructure:"retryWaitMax"`
}

// Ephemeris configures the position source.
type Ephemeris struct {
	Source      string   `mapstructure:"source"`
	CacheSize   int      `mapstructure:"cacheSize"`
	Concurrency int      `mapstructure:"concurrency"`
	Horizons    Horizons `mapstructure:"horizons"`
}

// Tour configures the timer-driven retarget cycle.
type Tour struct {
	Bodies   []string      `mapstructure:"bodies"`
	Interval time.Duration `mapstructure:"interval"`
}

// Snapshot configures the optional PNG preview of the last frame.
type Snapshot struct {
	Path      string  `mapstructure:"path"`
	Sky       string  `mapstructure:"sky"`
	MinRadius float64 `mapstructure:"minRadius"`
	Glow      float64 `mapstructure:"glow"`
}

// Config is the full viewer configuration.
type Config struct {
	LogLevel  string            `mapstructure:"logLevel"`
	LogPretty bool              `mapstructure:"logPretty"`
	Date      string            `mapstructure:"date"`
	Frames    int               `mapstructure:"frames"`
	FPS       float64           `mapstructure:"fps"`
	Viewport  Viewport          `mapstructure:"viewport"`
	Camera    Camera            `mapstructure:"camera"`
	Ephemeris Ephemeris         `mapstructure:"ephemeris"`
	Tour      Tour              `mapstructure:"tour"`
	Snapshot  Snapshot          `mapstructure:"snapshot"`
	Colors    map[string]string `mapstructure:"colors"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", true)
	v.SetDefault("date", time.Now().UTC().Format("2006-01-02"))
	v.SetDefault("frames", 600)
	v.SetDefault("fps", 60.0)

	v.SetDefault("viewport.width", 700)
	v.SetDefault("viewport.height", 700)

	d := render.DefaultConfig()
	v.SetDefault("camera.minFov", d.MinFOV)
	v.SetDefault("camera.maxFov", d.MaxFOV)
	v.SetDefault("camera.framingMargin", d.FramingMargin)
	v.SetDefault("camera.targetPadding", d.TargetPadding)
	v.SetDefault("camera.nearPadding", d.NearPadding)
	v.SetDefault("camera.farPadding", d.FarPadding)
	v.SetDefault("camera.pitchClamp", d.PitchClamp)
	v.SetDefault("camera.sensitivity", d.Sensitivity)
	v.SetDefault("camera.scrollStep", d.ScrollStep)
	v.SetDefault("camera.nearFloor", d.NearFloor)
	v.SetDefault("camera.position", []float64{0, 0, 0})
	v.SetDefault("camera.anchor", "JWST")

	v.SetDefault("ephemeris.source", "auto")
	v.SetDefault("ephemeris.cacheSize", 256)
	v.SetDefault("ephemeris.concurrency", 4)
	v.SetDefault("ephemeris.horizons.url", "https://ssd.jpl.nasa.gov/api/horizons.api")
	v.SetDefault("ephemeris.horizons.center", "500@10")
	v.SetDefault("ephemeris.horizons.timeout", "30s")
	v.SetDefault("ephemeris.horizons.retryMax", 3)
	v.SetDefault("ephemeris.horizons.retryWaitMin", "1s")
	v.SetDefault("ephemeris.horizons.retryWaitMax", "10s")

	v.SetDefault("tour.bodies", []string{"Sun", "Earth", "Moon", "Mars", "Jupiter", "Saturn"})
	v.SetDefault("tour.interval", "5s")

	v.SetDefault("snapshot.path", "")
	v.SetDefault("snapshot.sky", "")
	v.SetDefault("snapshot.minRadius", 1.5)
	v.SetDefault("snapshot.glow", 0.15)
}

// Flags returns the command-line flags that override config keys.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("spaceview", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (json, yaml or toml)")
	fs.String("date", "", "ephemeris date, e.g. 2023-03-08 or 2023-03-08_12:00")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("source", "", "ephemeris source (horizons, meeus, auto)")
	fs.Int("frames", 0, "number of frames to run")
	fs.String("anchor", "", "body the camera rides on")
	fs.String("snapshot", "", "write a PNG preview of the last frame to this path")
	fs.String("sky", "", "equirectangular star map (TIFF, PNG or JPEG) behind the preview")
	return fs
}

var flagKeys = map[string]string{
	"date":      "date",
	"log-level": "logLevel",
	"source":    "ephemeris.source",
	"frames":    "frames",
	"anchor":    "camera.anchor",
	"snapshot":  "snapshot.path",
	"sky":       "snapshot.sky",
}

// Load builds the configuration from defaults, an optional file, the
// environment and the parsed flags, in increasing precedence.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no safe fallback.
func (c Config) Validate() error {
	var errs []error
	if err := c.Camera.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Camera.Position) != 0 && len(c.Camera.Position) != 3 {
		errs = append(errs, fmt.Errorf("camera.position needs 3 components, got %d", len(c.Camera.Position)))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %g", c.FPS))
	}
	if c.Snapshot.Glow < 0 || c.Snapshot.Glow > 1 {
		errs = append(errs, fmt.Errorf("snapshot.glow must be in [0, 1], got %g", c.Snapshot.Glow))
	}
	if c.Tour.Interval < 0 {
		errs = append(errs, fmt.Errorf("tour.interval must not be negative"))
	}
	return errors.Join(errs...)
}
