package render

import (
	"errors"
	"fmt"

	"github.com/echoflaresat/spaceview/body"
	"github.com/echoflaresat/spaceview/vectors"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// ErrNoTarget is returned by Update before the first successful Retarget.
var ErrNoTarget = errors.New("no target selected")

// BodySource is the read-only view of the body registry the camera needs.
type BodySource interface {
	Get(name string) (body.Body, error)
	Bodies() []body.Body
}

// State is the controller lifecycle stage.
type State int

const (
	Initial State = iota
	Oriented
	Tracking
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Oriented:
		return "oriented"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Frame is everything the renderer needs for one frame.
type Frame struct {
	Target     string
	Position   vectors.Vec3
	Direction  vectors.Vec3
	Yaw        float64
	Pitch      float64
	FOV        float64
	Near       float64
	Far        float64
	View       mgl64.Mat4
	Projection mgl64.Mat4
	Visible    []string
}

// Controller owns the camera state and turns input and body positions into
// frames. It is meant to be driven from the render loop goroutine only.
type Controller struct {
	cfg    Config
	bodies BodySource
	log    zerolog.Logger

	state    State
	position vectors.Vec3
	anchor   string
	orient   Orientation
	fov      float64
	aspect   float64

	target string
	// aimed is true while the camera follows the target; pointer input
	// releases it until the next retarget.
	aimed bool

	active       bool
	primed       bool
	lastX, lastY float64

	frame Frame
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithPosition places the camera at a fixed world position.
func WithPosition(p vectors.Vec3) Option {
	return func(c *Controller) { c.position = p }
}

// WithAnchor makes the camera ride on the named body.
func WithAnchor(name string) Option {
	return func(c *Controller) { c.anchor = name }
}

// WithViewport sets the aspect ratio from a viewport size in pixels.
func WithViewport(width, height int) Option {
	return func(c *Controller) { c.SetViewport(width, height) }
}

// NewController returns a controller in the Initial state with the widest
// allowed FOV.
func NewController(cfg Config, bodies BodySource, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera config: %w", err)
	}
	c := &Controller{
		cfg:    cfg,
		bodies: bodies,
		log:    zerolog.Nop(),
		orient: NewOrientation(cfg.PitchClamp),
		fov:    cfg.MaxFOV,
		aspect: 1,
		active: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) State() State   { return c.state }
func (c *Controller) Target() string { return c.target }
func (c *Controller) FOV() float64   { return c.fov }

// Frame returns the last committed frame.
func (c *Controller) Frame() Frame { return c.frame }

// Orientation returns a copy of the current orientation.
func (c *Controller) Orientation() Orientation { return c.orient }

// SetPosition moves the camera. It has no effect while anchored.
func (c *Controller) SetPosition(p vectors.Vec3) { c.position = p }

// SetAnchor attaches the camera to a body; an empty name detaches it.
func (c *Controller) SetAnchor(name string) { c.anchor = name }

// SetViewport updates the aspect ratio. Non-positive sizes are ignored.
func (c *Controller) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		c.aspect = float64(width) / float64(height)
	}
}

// LookAlong sets the initial view direction without choosing a target.
func (c *Controller) LookAlong(dir vectors.Vec3) error {
	if _, _, err := c.orient.SetFromDirection(dir); err != nil {
		return err
	}
	if c.state == Initial {
		c.state = Oriented
	}
	return nil
}

// Activate starts pointer capture. The next pointer sample only sets the
// reference position.
func (c *Controller) Activate() {
	c.active = true
	c.primed = false
}

// Deactivate stops pointer capture.
func (c *Controller) Deactivate() {
	c.active = false
}

// Pointer feeds an absolute pointer position in pixels.
func (c *Controller) Pointer(x, y float64) {
	if !c.active {
		return
	}
	if !c.primed {
		c.lastX, c.lastY = x, y
		c.primed = true
		return
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	if dx == 0 && dy == 0 {
		return
	}
	c.orient.Apply(dx, dy, c.cfg.Sensitivity)
	c.aimed = false
	if c.state == Initial {
		c.state = Oriented
	}
}

// Scroll zooms by changing the FOV; positive dy narrows it.
func (c *Controller) Scroll(dy float64) {
	c.fov = c.cfg.ClampFOV(c.fov - dy*c.cfg.ScrollStep)
}

// Retarget points the camera at the named body, re-derives the FOV and clip
// planes and commits the new frame. On error nothing changes.
func (c *Controller) Retarget(name string) (Frame, error) {
	tgt, err := c.bodies.Get(name)
	if err != nil {
		return c.frame, fmt.Errorf("retarget %q: %w", name, err)
	}
	pos, err := c.cameraPosition()
	if err != nil {
		return c.frame, fmt.Errorf("retarget %q: %w", name, err)
	}

	orient := c.orient
	if _, _, err := orient.SetFromDirection(tgt.Position.Sub(pos)); err != nil {
		return c.frame, fmt.Errorf("retarget %q: %w", name, err)
	}
	fov := c.cfg.DesiredFOV(tgt, pos)

	f, err := c.compose(pos, tgt, orient, fov, true)
	if err != nil {
		return c.frame, fmt.Errorf("retarget %q: %w", name, err)
	}

	c.commit(f, orient, fov, true)
	c.log.Debug().
		Str("target", name).
		Float64("fov", f.FOV).
		Float64("near", f.Near).
		Float64("far", f.Far).
		Strs("visible", f.Visible).
		Msg("retargeted")
	return f, nil
}

// Update recomputes the frame from the current orientation, FOV and body
// positions. While aimed the camera keeps facing the target.
func (c *Controller) Update() (Frame, error) {
	if c.target == "" {
		return c.frame, ErrNoTarget
	}
	tgt, err := c.bodies.Get(c.target)
	if err != nil {
		return c.frame, fmt.Errorf("update %q: %w", c.target, err)
	}
	pos, err := c.cameraPosition()
	if err != nil {
		return c.frame, fmt.Errorf("update %q: %w", c.target, err)
	}

	orient := c.orient
	if c.aimed {
		if _, _, err := orient.SetFromDirection(tgt.Position.Sub(pos)); err != nil {
			return c.frame, fmt.Errorf("update %q: %w", c.target, err)
		}
	}

	f, err := c.compose(pos, tgt, orient, c.fov, c.aimed)
	if err != nil {
		return c.frame, fmt.Errorf("update %q: %w", c.target, err)
	}
	c.commit(f, orient, c.fov, c.aimed)
	return f, nil
}

func (c *Controller) cameraPosition() (vectors.Vec3, error) {
	if c.anchor == "" {
		return c.position, nil
	}
	b, err := c.bodies.Get(c.anchor)
	if err != nil {
		return vectors.Vec3{}, fmt.Errorf("camera anchor: %w", err)
	}
	return b.Position, nil
}

// compose runs the frame pipeline: visibility, frustum fit, view, projection.
func (c *Controller) compose(pos vectors.Vec3, tgt body.Body, orient Orientation, fov float64, aimed bool) (Frame, error) {
	dir := orient.Direction()
	focus := tgt.Position
	if !aimed {
		dist := vectors.Distance(pos, tgt.Position)
		if dist == 0 {
			dist = 1
		}
		focus = pos.Add(dir.Scale(dist))
	}

	vis, err := ComputeVisible(pos, focus, fov, c.bodies.Bodies())
	if err != nil {
		return Frame{}, err
	}
	near, far := c.cfg.FitFrustum(tgt, pos, vis.Bodies)

	view, err := BuildView(pos, focus, WorldUp)
	if err != nil {
		return Frame{}, err
	}

	return Frame{
		Target:     tgt.Name,
		Position:   pos,
		Direction:  dir,
		Yaw:        orient.Yaw,
		Pitch:      orient.Pitch,
		FOV:        fov,
		Near:       near,
		Far:        far,
		View:       view,
		Projection: BuildProjection(fov, c.aspect, near, far),
		Visible:    vis.Names,
	}, nil
}

func (c *Controller) commit(f Frame, orient Orientation, fov float64, aimed bool) {
	c.frame = f
	c.orient = orient
	c.fov = fov
	c.target = f.Target
	c.aimed = aimed
	c.state = Tracking
}
