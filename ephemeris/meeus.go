package ephemeris

import (
	"context"
	"fmt"
	"math"

	"github.com/echoflaresat/spaceview/vectors"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/planetelements"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// NAIF ids understood by the offline provider.
const (
	IDSun     = 10
	IDMercury = 199
	IDVenus   = 299
	IDEarth   = 399
	IDMoon    = 301
	IDMars    = 499
	IDJupiter = 599
	IDSaturn  = 699
	IDUranus  = 799
	IDNeptune = 899
	IDJWST    = -170
)

// l2Factor scales Earth's heliocentric vector out to the Sun-Earth L2 point,
// about 1.5 million km beyond Earth.
const l2Factor = 1.01

var planetByID = map[int]int{
	1: planetelements.Mercury, IDMercury: planetelements.Mercury,
	2: planetelements.Venus, IDVenus: planetelements.Venus,
	4: planetelements.Mars, IDMars: planetelements.Mars,
	5: planetelements.Jupiter, IDJupiter: planetelements.Jupiter,
	6: planetelements.Saturn, IDSaturn: planetelements.Saturn,
	7: planetelements.Uranus, IDUranus: planetelements.Uranus,
	8: planetelements.Neptune, IDNeptune: planetelements.Neptune,
}

// meanRadius in km, keyed by NAIF id.
var meanRadius = map[int]float64{
	IDSun:     695700,
	IDMercury: 2439.4,
	IDVenus:   6051.8,
	IDEarth:   6371.0,
	IDMoon:    1737.4,
	IDMars:    3389.5,
	IDJupiter: 69911,
	IDSaturn:  58232,
	IDUranus:  25362,
	IDNeptune: 24622,
}

// Meeus computes low-precision positions offline from the series in
// Meeus' Astronomical Algorithms. Positions are heliocentric, referred to
// the ecliptic and equinox of date. Planets come from mean orbital
// elements, so expect errors up to a few tenths of a degree.
type Meeus struct{}

// NewMeeus returns the offline provider.
func NewMeeus() *Meeus { return &Meeus{} }

func (m *Meeus) Name() string { return "meeus" }

// State returns the position of id at date. ctx is only checked for
// cancellation; nothing here blocks.
func (m *Meeus) State(ctx context.Context, id int, date Date) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	jde := date.JD

	var pos vectors.Vec3
	switch id {
	case IDSun:
		pos = vectors.Zero()
	case 3, IDEarth:
		pos = earthPosition(jde)
	case IDMoon:
		pos = earthPosition(jde).Add(moonOffset(jde))
	case IDJWST:
		pos = earthPosition(jde).Scale(l2Factor)
	default:
		p, ok := planetByID[id]
		if !ok {
			return State{}, fmt.Errorf("%w: meeus has no model for %d", ErrUnknownBody, id)
		}
		var err error
		if pos, err = planetPosition(p, jde); err != nil {
			return State{}, err
		}
	}
	return State{Position: pos, Radius: radiusFor(id)}, nil
}

func radiusFor(id int) float64 {
	if r, ok := meanRadius[id]; ok {
		return r
	}
	if p, ok := planetByID[id]; ok {
		for naif, q := range planetByID {
			if q == p && naif >= 100 {
				return meanRadius[naif]
			}
		}
	}
	return 0
}

// earthPosition is the reversed geocentric solar vector.
func earthPosition(jde float64) vectors.Vec3 {
	T := base.J2000Century(jde)
	s, _ := solar.True(T)
	r := solar.Radius(T) * AU
	return vectors.New(-r*s.Cos(), -r*s.Sin(), 0)
}

// moonOffset is the geocentric lunar vector in km.
func moonOffset(jde float64) vectors.Vec3 {
	lon, lat, dist := moonposition.Position(jde)
	return vectors.New(
		dist*lat.Cos()*lon.Cos(),
		dist*lat.Cos()*lon.Sin(),
		dist*lat.Sin(),
	)
}

// planetPosition solves Kepler's equation for the mean elements of date.
func planetPosition(p int, jde float64) (vectors.Vec3, error) {
	var e planetelements.Elements
	planetelements.Mean(p, jde, &e)

	M := unit.Angle(math.Mod((e.Lon - e.Peri).Rad(), 2*math.Pi))
	E, err := kepler.Kepler2(e.Ecc, M, 12)
	if err != nil {
		return vectors.Vec3{}, fmt.Errorf("kepler for planet %d: %w", p, err)
	}

	nu := 2 * math.Atan2(math.Sqrt(1+e.Ecc)*math.Sin(E.Rad()/2), math.Sqrt(1-e.Ecc)*math.Cos(E.Rad()/2))
	r := e.Axis * (1 - e.Ecc*math.Cos(E.Rad())) * AU
	u := nu + (e.Peri - e.Node).Rad()

	sinNode, cosNode := math.Sincos(e.Node.Rad())
	sinU, cosU := math.Sincos(u)
	sinI, cosI := math.Sincos(e.Inc.Rad())
	return vectors.New(
		r*(cosNode*cosU-sinNode*sinU*cosI),
		r*(sinNode*cosU+cosNode*sinU*cosI),
		r*sinU*sinI,
	), nil
}
