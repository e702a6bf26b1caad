package render

import (
	"math"

	"github.com/echoflaresat/spaceview/vectors"
	"github.com/go-gl/mathgl/mgl64"
)

// WorldUp is the up vector handed to the look-at construction.
var WorldUp = vectors.Vec3{X: 0, Y: 1, Z: 0}

// BuildView returns the right-handed world-to-eye transform for a camera at
// eye looking at center. When up is parallel to the view direction a
// perpendicular fallback is used so the basis stays finite.
func BuildView(eye, center, up vectors.Vec3) (mgl64.Mat4, error) {
	fwd := center.Sub(eye)
	if fwd.IsZero() {
		return mgl64.Ident4(), ErrDegenerateDirection
	}
	fwd = fwd.Normalize()

	if up.Cross(fwd).Norm() < 1e-9 {
		up = fwd.Orthogonal()
	}
	return mgl64.LookAtV(eye.Mgl(), center.Mgl(), up.Mgl()), nil
}

// BuildProjection returns a standard perspective matrix; fovDeg is the
// vertical field of view.
func BuildProjection(fovDeg, aspect, near, far float64) mgl64.Mat4 {
	if aspect <= 0 || math.IsNaN(aspect) {
		aspect = 1
	}
	return mgl64.Perspective(fovDeg*deg2rad, aspect, near, far)
}
