package render

import (
	"math"

	"github.com/echoflaresat/spaceview/vectors"
)

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// Orientation is the camera heading as yaw/pitch in degrees. Yaw is measured
// in the XZ plane from +X towards +Z, pitch from that plane towards +Y.
type Orientation struct {
	Yaw   float64
	Pitch float64

	pitchClamp float64
}

// NewOrientation returns an orientation looking down +X whose pitch is kept
// inside ±pitchClamp degrees.
func NewOrientation(pitchClamp float64) Orientation {
	return Orientation{pitchClamp: pitchClamp}
}

// DirectionFromYawPitch reconstructs the unit look vector.
func DirectionFromYawPitch(yawDeg, pitchDeg float64) vectors.Vec3 {
	yaw := yawDeg * deg2rad
	pitch := pitchDeg * deg2rad
	return vectors.Vec3{
		X: math.Cos(yaw) * math.Cos(pitch),
		Y: math.Sin(pitch),
		Z: math.Sin(yaw) * math.Cos(pitch),
	}.Normalize()
}

// YawPitchFromDirection is the inverse of DirectionFromYawPitch. The input
// need not be normalized. Pitch is returned unclamped.
func YawPitchFromDirection(dir vectors.Vec3) (yaw, pitch float64, err error) {
	if dir.Norm() == 0 || math.IsNaN(dir.Norm()) {
		return 0, 0, ErrDegenerateDirection
	}
	d := dir.Normalize()
	pitch = math.Asin(Clamp(d.Y, -1, 1)) * rad2deg
	yaw = math.Atan2(d.Z, d.X) * rad2deg
	return yaw, pitch, nil
}

// SetFromDirection points the orientation along dir. The orientation is left
// untouched when dir has zero length.
func (o *Orientation) SetFromDirection(dir vectors.Vec3) (yaw, pitch float64, err error) {
	yaw, pitch, err = YawPitchFromDirection(dir)
	if err != nil {
		return o.Yaw, o.Pitch, err
	}
	o.Yaw = yaw
	o.Pitch = o.clampPitch(pitch)
	return o.Yaw, o.Pitch, nil
}

// Apply turns the camera by a pointer delta in pixels. Screen y grows
// downward, so a positive dy lowers the pitch.
func (o *Orientation) Apply(dx, dy, sensitivity float64) vectors.Vec3 {
	o.Yaw = wrapDegrees(o.Yaw + dx*sensitivity)
	o.Pitch = o.clampPitch(o.Pitch - dy*sensitivity)
	return o.Direction()
}

// Direction returns the current unit look vector.
func (o Orientation) Direction() vectors.Vec3 {
	return DirectionFromYawPitch(o.Yaw, o.Pitch)
}

func (o Orientation) clampPitch(p float64) float64 {
	return Clamp(p, -o.pitchClamp, o.pitchClamp)
}

// wrapDegrees folds an angle into (-180, 180].
func wrapDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}
