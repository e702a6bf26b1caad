package ephemeris

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/echoflaresat/spaceview/vectors"
)

const (
	startOfEphemeris = "$$SOE"
	endOfEphemeris   = "$$EOE"
)

var (
	vectorRe = regexp.MustCompile(`(?:^|\s)X\s*=\s*(\S+)\s+Y\s*=\s*(\S+)\s+Z\s*=\s*(\S+)`)

	// Tried in order; the header lists several radii for some bodies and
	// the mean one is preferred.
	radiusRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)mean\s+radius[^=\n]*=\s*([0-9]+(?:\.[0-9]*)?)`),
		regexp.MustCompile(`(?i)radius[^=\n]*=\s*([0-9]+(?:\.[0-9]*)?)`),
	}
)

// ParseVectors extracts the first position record and the body radius from
// the text of a Horizons VECTORS ephemeris.
func ParseVectors(result string) (State, error) {
	start := strings.Index(result, startOfEphemeris)
	if start < 0 {
		return State{}, fmt.Errorf("%w: no %s marker", ErrMalformed, startOfEphemeris)
	}
	header := result[:start]
	table := result[start+len(startOfEphemeris):]
	if end := strings.Index(table, endOfEphemeris); end >= 0 {
		table = table[:end]
	}

	m := vectorRe.FindStringSubmatch(table)
	if m == nil {
		return State{}, fmt.Errorf("%w: no X/Y/Z record", ErrMalformed)
	}
	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return State{}, fmt.Errorf("%w: component %q: %v", ErrMalformed, m[i+1], err)
		}
		xyz[i] = v
	}

	return State{
		Position: vectors.New(xyz[0], xyz[1], xyz[2]),
		Radius:   parseRadius(header),
	}, nil
}

// parseRadius returns 0 when the header carries no usable radius, which is
// the case for spacecraft and barycenters.
func parseRadius(header string) float64 {
	for _, re := range radiusRes {
		m := re.FindStringSubmatch(header)
		if m == nil {
			continue
		}
		if r, err := strconv.ParseFloat(m[1], 64); err == nil && r > 0 {
			return r
		}
	}
	return 0
}
