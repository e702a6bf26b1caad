// Package ephemeris supplies heliocentric body positions for a date.
package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/echoflaresat/spaceview/vectors"
	"github.com/soniakeys/meeus/v3/julian"
)

var (
	// ErrUnavailable wraps transport and server failures.
	ErrUnavailable = errors.New("ephemeris unavailable")
	// ErrMalformed is returned when a response cannot be parsed.
	ErrMalformed = errors.New("malformed ephemeris data")
	// ErrUnknownBody is returned by providers that cannot model a body.
	ErrUnknownBody = errors.New("unknown body")
)

// AU is the astronomical unit in km.
const AU = 149597870.7

// State is a body's position (km, heliocentric ecliptic) and mean radius
// (km, zero when unknown).
type State struct {
	Position vectors.Vec3
	Radius   float64
}

// Provider looks up body states by NAIF id.
type Provider interface {
	Name() string
	State(ctx context.Context, id int, date Date) (State, error)
}

// Date is a UTC instant together with its Julian day.
type Date struct {
	Time time.Time
	JD   float64
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02_15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseDate accepts "2006-01-02", "2006-01-02_15:04" or RFC3339.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// DateOf converts t to a Date.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return Date{Time: t, JD: julian.TimeToJD(t)}
}

func (d Date) String() string {
	return d.Time.Format("2006-01-02_15:04")
}

// Mode selects which provider backs the registry.
type Mode int

const (
	ModeHorizons Mode = iota // JPL Horizons only
	ModeMeeus                // offline series only
	ModeAuto                 // Horizons, falling back to meeus
)

func (m Mode) String() string {
	switch m {
	case ModeHorizons:
		return "horizons"
	case ModeMeeus:
		return "meeus"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizons":
		return ModeHorizons, nil
	case "meeus", "offline":
		return ModeMeeus, nil
	case "auto", "":
		return ModeAuto, nil
	default:
		return ModeAuto, fmt.Errorf("unknown ephemeris source %q", s)
	}
}
