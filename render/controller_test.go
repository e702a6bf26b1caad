package render

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/echoflaresat/spaceview/body"
	"github.com/echoflaresat/spaceview/vectors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBodies struct {
	order  []string
	bodies map[string]body.Body
}

func newFakeBodies(bodies ...body.Body) *fakeBodies {
	f := &fakeBodies{bodies: map[string]body.Body{}}
	for _, b := range bodies {
		f.order = append(f.order, b.Name)
		f.bodies[b.Name] = b
	}
	return f
}

func (f *fakeBodies) Get(name string) (body.Body, error) {
	b, ok := f.bodies[name]
	if !ok {
		return body.Body{}, fmt.Errorf("%w: %q", body.ErrBodyNotFound, name)
	}
	return b, nil
}

func (f *fakeBodies) Bodies() []body.Body {
	out := make([]body.Body, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.bodies[name])
	}
	return out
}

func (f *fakeBodies) move(name string, p vectors.Vec3) {
	b := f.bodies[name]
	b.Position = p
	f.bodies[name] = b
}

// Sun at the origin, Earth on +X and the camera 1.5 million km beyond
// Earth, so the Sun sits right behind Earth.
var cameraPos = vectors.New(1.515e8, 0, 0)

func solarSystem() *fakeBodies {
	return newFakeBodies(
		body.Body{Name: "Sun", Position: vectors.Zero(), Radius: 695700},
		body.Body{Name: "Earth", Position: vectors.New(1.5e8, 0, 0), Radius: 6371},
		body.Body{Name: "Mars", Position: vectors.New(0, 2.2e8, 0), Radius: 3389.5},
		body.Body{Name: "JWST", Position: cameraPos, Radius: 0.02},
	)
}

func newTestController(t *testing.T, src BodySource, opts ...Option) *Controller {
	t.Helper()
	c, err := NewController(DefaultConfig(), src, opts...)
	require.NoError(t, err)
	return c
}

func TestNewControllerDefaults(t *testing.T) {
	c := newTestController(t, solarSystem())
	assert.Equal(t, Initial, c.State())
	assert.Equal(t, 45.0, c.FOV())
	assert.Empty(t, c.Target())

	_, err := c.Update()
	assert.ErrorIs(t, err, ErrNoTarget)

	bad := DefaultConfig()
	bad.MinFOV = 50
	_, err = NewController(bad, solarSystem())
	assert.Error(t, err)
}

func TestRetargetFramesEarth(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(cameraPos), WithViewport(1600, 900))

	f, err := c.Retarget("Earth")
	require.NoError(t, err)
	assert.Equal(t, Tracking, c.State())
	assert.Equal(t, "Earth", c.Target())

	assert.InDelta(t, 180, f.Yaw, 1e-9)
	assert.InDelta(t, 0, f.Pitch, 1e-9)
	assert.InDelta(t, -1, f.Direction.X, 1e-12)

	// atan2(4*6371, 1.5e6) is just under a degree.
	assert.Equal(t, 1.0, f.FOV)

	assert.Equal(t, []string{"Sun", "Earth"}, f.Visible)
	assert.InDelta(t, 1.5e6-2*6371, f.Near, 1e-6)
	assert.InDelta(t, 1.515e8+3*695700, f.Far, 1e-6)
	assert.Less(t, f.Near, f.Far)

	assert.Equal(t, BuildProjection(f.FOV, 1600.0/900.0, f.Near, f.Far), f.Projection)
	view, err := BuildView(cameraPos, vectors.New(1.5e8, 0, 0), WorldUp)
	require.NoError(t, err)
	assert.Equal(t, view, f.View)
	assert.Equal(t, f, c.Frame())
}

func TestRetargetIsIdempotent(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(cameraPos))

	first, err := c.Retarget("Mars")
	require.NoError(t, err)
	second, err := c.Retarget("Mars")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRetargetUnknownBodyLeavesState(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(cameraPos))
	_, err := c.Retarget("Earth")
	require.NoError(t, err)
	before := c.Frame()
	orient := c.Orientation()

	f, err := c.Retarget("Pluto")
	assert.ErrorIs(t, err, ErrBodyNotFound)
	assert.Equal(t, before, f)
	assert.Equal(t, before, c.Frame())
	assert.Equal(t, orient, c.Orientation())
	assert.Equal(t, "Earth", c.Target())
	assert.Equal(t, Tracking, c.State())
}

func TestRetargetUnknownBodyFromInitial(t *testing.T) {
	c := newTestController(t, solarSystem())
	_, err := c.Retarget("Vulcan")
	assert.ErrorIs(t, err, ErrBodyNotFound)
	assert.Equal(t, Initial, c.State())
	assert.Equal(t, 45.0, c.FOV())
}

func TestRetargetFromInsideTarget(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(vectors.New(1.5e8, 0, 0)))
	_, err := c.Retarget("Earth")
	assert.ErrorIs(t, err, ErrDegenerateDirection)
	assert.Equal(t, Initial, c.State())
}

func TestRetargetWithAnchor(t *testing.T) {
	src := solarSystem()
	c := newTestController(t, src, WithAnchor("JWST"))

	f, err := c.Retarget("Earth")
	require.NoError(t, err)
	assert.Equal(t, cameraPos, f.Position)
	assert.NotContains(t, f.Visible, "JWST")

	// The camera follows its anchor.
	src.move("JWST", vectors.New(1.515e8, 0, 1e5))
	f, err = c.Update()
	require.NoError(t, err)
	assert.Equal(t, vectors.New(1.515e8, 0, 1e5), f.Position)

	c.SetAnchor("Titan")
	_, err = c.Update()
	assert.ErrorIs(t, err, ErrBodyNotFound)

	c.SetAnchor("")
	c.SetPosition(cameraPos)
	_, err = c.Update()
	require.NoError(t, err)
}

func TestRetargetLogs(t *testing.T) {
	var buf bytes.Buffer
	c := newTestController(t, solarSystem(), WithPosition(cameraPos), WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	_, err := c.Retarget("Earth")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"target":"Earth"`)
	assert.Contains(t, buf.String(), "retargeted")
}

func TestUpdateKeepsAimWhileTargetMoves(t *testing.T) {
	src := solarSystem()
	c := newTestController(t, src, WithPosition(cameraPos))
	_, err := c.Retarget("Earth")
	require.NoError(t, err)

	src.move("Earth", vectors.New(1.5e8, 3e4, 0))
	f, err := c.Update()
	require.NoError(t, err)

	want := vectors.New(1.5e8, 3e4, 0).Sub(cameraPos).Normalize()
	assert.InDelta(t, want.X, f.Direction.X, 1e-12)
	assert.InDelta(t, want.Y, f.Direction.Y, 1e-12)
	assert.Greater(t, f.Pitch, 0.0)
	assert.Contains(t, f.Visible, "Earth")
	// Scrolling and retargets own the FOV, Update does not recompute it.
	assert.Equal(t, 1.0, f.FOV)
}

func TestPointerPrimesThenTurns(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(cameraPos))
	_, err := c.Retarget("Earth")
	require.NoError(t, err)

	c.Pointer(400, 300)
	assert.InDelta(t, 180, c.Orientation().Yaw, 1e-9, "first sample only primes")

	c.Pointer(410, 320)
	o := c.Orientation()
	assert.InDelta(t, -179, o.Yaw, 1e-9)
	assert.InDelta(t, -2, o.Pitch, 1e-9)

	f, err := c.Update()
	require.NoError(t, err)
	assert.InDelta(t, -179, f.Yaw, 1e-9)
	assert.InDelta(t, -2, f.Pitch, 1e-9)
	assert.InDelta(t, 1, f.Direction.Norm(), 1e-12)
	assert.Less(t, f.Near, f.Far)
}

func TestPointerIgnoredWhileInactive(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(cameraPos))
	c.Deactivate()
	c.Pointer(0, 0)
	c.Pointer(500, 500)
	assert.Equal(t, 0.0, c.Orientation().Yaw)
	assert.Equal(t, Initial, c.State())

	c.Activate()
	c.Pointer(500, 500)
	assert.Equal(t, 0.0, c.Orientation().Yaw, "reactivation primes again")
	c.Pointer(510, 500)
	assert.InDelta(t, 1, c.Orientation().Yaw, 1e-12)
	assert.Equal(t, Oriented, c.State())
}

func TestPointerPitchNeverReachesPole(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(cameraPos))
	_, err := c.Retarget("Earth")
	require.NoError(t, err)

	c.Pointer(0, 0)
	c.Pointer(0, -1e7)
	f, err := c.Update()
	require.NoError(t, err)
	assert.Equal(t, 89.0, f.Pitch)
	for i := 0; i < 16; i++ {
		assert.False(t, math.IsNaN(f.View[i]))
		assert.False(t, math.IsNaN(f.Projection[i]))
	}
}

func TestLookAlong(t *testing.T) {
	c := newTestController(t, solarSystem())
	require.NoError(t, c.LookAlong(vectors.New(0, 0, 1)))
	assert.Equal(t, Oriented, c.State())
	assert.InDelta(t, 90, c.Orientation().Yaw, 1e-12)

	assert.ErrorIs(t, c.LookAlong(vectors.Zero()), ErrDegenerateDirection)
	assert.InDelta(t, 90, c.Orientation().Yaw, 1e-12)
}

func TestScrollClampsFOV(t *testing.T) {
	c := newTestController(t, solarSystem())
	c.Scroll(10)
	assert.Equal(t, 35.0, c.FOV())
	c.Scroll(1000)
	assert.Equal(t, 1.0, c.FOV())
	c.Scroll(-1000)
	assert.Equal(t, 45.0, c.FOV())
}

func TestScrollAppliesOnUpdate(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(cameraPos))
	_, err := c.Retarget("Earth")
	require.NoError(t, err)

	c.Scroll(-20)
	f, err := c.Update()
	require.NoError(t, err)
	assert.Equal(t, 21.0, f.FOV)
}

func TestViewportIgnoresEmptySizes(t *testing.T) {
	c := newTestController(t, solarSystem(), WithPosition(cameraPos), WithViewport(800, 400))
	c.SetViewport(0, 600)
	f, err := c.Retarget("Earth")
	require.NoError(t, err)
	assert.Equal(t, BuildProjection(f.FOV, 2, f.Near, f.Far), f.Projection)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "initial", Initial.String())
	assert.Equal(t, "oriented", Oriented.String())
	assert.Equal(t, "tracking", Tracking.String())
	assert.Equal(t, "unknown", State(9).String())
}
