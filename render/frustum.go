package render

import (
	"math"

	"github.com/echoflaresat/spaceview/body"
	"github.com/echoflaresat/spaceview/vectors"
)

// DesiredFOV sizes the view cone so the target always spans the same share
// of the screen: atan2(margin*radius, distance), clamped to the config range.
func (c Config) DesiredFOV(target body.Body, camera vectors.Vec3) float64 {
	d := vectors.Distance(camera, target.Position)
	fov := math.Atan2(c.FramingMargin*target.Radius, d) * rad2deg
	return c.ClampFOV(fov)
}

// FitFrustum brackets the target between the clip planes and widens the
// range so every other visible body lies inside it, padded by its radius.
// The returned planes satisfy 0 < near < far.
func (c Config) FitFrustum(target body.Body, camera vectors.Vec3, visible []AngularBody) (near, far float64) {
	d := vectors.Distance(camera, target.Position)
	near = d - c.TargetPadding*target.Radius
	far = d + c.TargetPadding*target.Radius

	for _, ab := range visible {
		if ab.Body.Name == target.Name {
			continue
		}
		if n := ab.Projected - c.NearPadding*ab.Body.Radius; n < near {
			near = n
		}
		if f := ab.Projected + c.FarPadding*ab.Body.Radius; f > far {
			far = f
		}
	}

	if near <= c.NearFloor {
		near = c.NearFloor
	}
	if far <= near {
		far = near + c.NearFloor
	}
	return near, far
}
