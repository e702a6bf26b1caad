package preview

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode
	"io"
	"math"
	"os"

	"github.com/echoflaresat/spaceview/colors"
	"github.com/echoflaresat/spaceview/vectors"
	"github.com/echoflaresat/tiff"
)

// Sky is an equirectangular star map sampled by world direction. Longitude
// runs along X from -180 at the left edge, latitude along Y from +90 at the
// top; both are ecliptic when the world frame is.
type Sky struct {
	Width  int
	Height int
	img    image.Image
}

// NewSky wraps an already decoded image.
func NewSky(img image.Image) *Sky {
	b := img.Bounds()
	return &Sky{Width: b.Dx(), Height: b.Dy(), img: img}
}

// LoadSky reads a TIFF star map, falling back to the registered image
// codecs for other formats.
func LoadSky(path string) (*Sky, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return nil, serr
		}
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode sky %s: %w", path, err)
	}
	return NewSky(img), nil
}

// Sample returns the color of the sky in direction dir.
func (s *Sky) Sample(dir vectors.Vec3) colors.Color4 {
	x, y := s.xy(dir)
	b := s.img.Bounds()
	return colors.FromStandard(s.img.At(b.Min.X+x, b.Min.Y+y))
}

func (s *Sky) xy(dir vectors.Vec3) (int, int) {
	lat := math.Atan2(dir.Z, math.Hypot(dir.X, dir.Y))
	lon := math.Atan2(dir.Y, dir.X)

	u := (lon/(2*math.Pi) + 0.5) * float64(s.Width)
	v := (0.5 - lat/math.Pi) * float64(s.Height)

	x := int(u)
	y := int(v)
	if x >= s.Width {
		x = s.Width - 1
	} else if x < 0 {
		x = 0
	}
	if y >= s.Height {
		y = s.Height - 1
	} else if y < 0 {
		y = 0
	}
	return x, y
}
