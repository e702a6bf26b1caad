package render

import (
	"math"

	"github.com/echoflaresat/spaceview/body"
	"github.com/echoflaresat/spaceview/vectors"
)

// AngularBody is a body that passed the cone test.
type AngularBody struct {
	Body body.Body
	// Angle between the view axis and the direction to the body, degrees.
	Angle float64
	// Projected is the signed distance of the body along the view axis.
	Projected float64
}

// Visibility is the result of the cone test for one frame.
type Visibility struct {
	Names  []string
	Bodies []AngularBody
}

// AngleBetween returns the angle in degrees between two unit vectors. The
// dot product is clamped to the cosine domain so rounding never yields NaN.
func AngleBetween(a, b vectors.Vec3) float64 {
	return math.Acos(Clamp(a.Dot(b), -1, 1)) * rad2deg
}

// ComputeVisible runs the angular cone test. The cone has its apex at camera,
// its axis towards target and a full opening angle of fovDeg. A body whose
// position equals target is at angle 0; bodies at the camera position are
// skipped.
func ComputeVisible(camera, target vectors.Vec3, fovDeg float64, bodies []body.Body) (Visibility, error) {
	axis := target.Sub(camera)
	if axis.IsZero() {
		return Visibility{}, ErrDegenerateDirection
	}
	axis = axis.Normalize()
	half := fovDeg / 2

	var vis Visibility
	for _, b := range bodies {
		toBody := b.Position.Sub(camera)
		if toBody.IsZero() {
			continue
		}

		angle := 0.0
		if b.Position != target {
			angle = AngleBetween(axis, toBody.Normalize())
		}
		if angle >= half {
			continue
		}

		vis.Names = append(vis.Names, b.Name)
		vis.Bodies = append(vis.Bodies, AngularBody{
			Body:      b,
			Angle:     angle,
			Projected: toBody.Dot(axis),
		})
	}
	return vis, nil
}
