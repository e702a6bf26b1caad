// Package preview rasterizes a camera frame into a still image: the sky
// behind the frustum and every visible body as a flat disc.
package preview

import (
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"runtime"
	"sort"

	"github.com/echoflaresat/spaceview/body"
	"github.com/echoflaresat/spaceview/colors"
	"github.com/echoflaresat/spaceview/render"
	"github.com/echoflaresat/spaceview/vectors"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/vector"
	"golang.org/x/sync/errgroup"
)

// kappa places cubic control points so four segments approximate a circle.
const kappa = 0.5522847498

// Options controls the output image.
type Options struct {
	Width, Height int
	// Sky is drawn behind the bodies; nil leaves the background black.
	Sky *Sky
	// MinRadius keeps distant bodies visible, in pixels.
	MinRadius float64
	// Glow mixes some white into body colors so dark bodies stand out on
	// a dark sky. 0 disables it.
	Glow float64
}

// Disc is a body as it lands on screen.
type Disc struct {
	Name   string
	X, Y   float64 // pixel center
	Radius float64 // pixels
	Depth  float64 // distance from the camera, km
	Color  colors.Color4
}

var errEmptyImage = errors.New("preview size must be positive")

// Render draws frame f. bodies supplies positions, radii and colors; only
// those named in f.Visible are drawn.
func Render(ctx context.Context, f render.Frame, bodies []body.Body, opts Options) (*image.NRGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errEmptyImage
	}
	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	if err := fillSky(ctx, img, f, opts.Sky); err != nil {
		return nil, err
	}

	z := vector.NewRasterizer(opts.Width, opts.Height)
	for _, d := range Project(f, bodies, opts) {
		c := d.Color
		if opts.Glow > 0 {
			c = c.Mix(colors.White(), opts.Glow)
		}
		z.Reset(opts.Width, opts.Height)
		circle(z, float32(d.X), float32(d.Y), float32(d.Radius))
		z.Draw(img, img.Bounds(), image.NewUniform(c.Clamp01().ToNRGBA()), image.Point{})
	}
	return img, nil
}

// Project returns the discs of the visible bodies that lie in front of the
// camera, farthest first.
func Project(f render.Frame, bodies []body.Body, opts Options) []Disc {
	visible := make(map[string]bool, len(f.Visible))
	for _, name := range f.Visible {
		visible[name] = true
	}
	pv := f.Projection.Mul4(f.View)
	halfH := float64(opts.Height) / 2
	halfW := float64(opts.Width) / 2
	tanHalf := math.Tan(f.FOV * math.Pi / 360)

	var discs []Disc
	for _, b := range bodies {
		if !visible[b.Name] {
			continue
		}
		clip := pv.Mul4x1(mgl64.Vec4{b.Position.X, b.Position.Y, b.Position.Z, 1})
		if clip.W() <= 0 {
			continue
		}
		dist := vectors.Distance(f.Position, b.Position)

		r := opts.MinRadius
		if dist > b.Radius {
			angular := b.Radius / math.Sqrt(dist*dist-b.Radius*b.Radius)
			r = math.Max(r, angular/tanHalf*halfH)
		} else {
			r = math.Max(r, halfH)
		}

		discs = append(discs, Disc{
			Name:   b.Name,
			X:      (clip.X()/clip.W() + 1) * halfW,
			Y:      (1 - clip.Y()/clip.W()) * halfH,
			Radius: r,
			Depth:  dist,
			Color:  b.Color,
		})
	}
	sort.SliceStable(discs, func(i, j int) bool { return discs[i].Depth > discs[j].Depth })
	return discs
}

// fillSky casts one ray per pixel through the camera basis. Rows are split
// into bands rendered concurrently.
func fillSky(ctx context.Context, img *image.NRGBA, f render.Frame, sky *Sky) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if sky == nil {
		black := colors.Black().ToNRGBA()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, black)
			}
		}
		return nil
	}

	// The rotation part of the view matrix maps world to eye space, so its
	// transpose maps eye-space rays back to world space.
	toWorld := f.View.Mat3().Transpose()
	tanHalf := math.Tan(f.FOV * math.Pi / 360)
	aspect := float64(w) / float64(h)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	band := max(1, h/(4*runtime.NumCPU()))
	for y0 := 0; y0 < h; y0 += band {
		y1 := min(h, y0+band)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				ny := 1 - 2*(float64(y)+0.5)/float64(h)
				for x := 0; x < w; x++ {
					nx := 2*(float64(x)+0.5)/float64(w) - 1
					eye := mgl64.Vec3{nx * tanHalf * aspect, ny * tanHalf, -1}
					dir := vectors.FromMgl(toWorld.Mul3x1(eye))
					img.SetNRGBA(x, y, sky.Sample(dir).Clamp01().ToNRGBA())
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func circle(z *vector.Rasterizer, cx, cy, r float32) {
	k := r * kappa
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}
