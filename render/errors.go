package render

import (
	"errors"

	"github.com/echoflaresat/spaceview/body"
)

var (
	// ErrDegenerateDirection is returned when a look direction has zero
	// length, e.g. the camera sits exactly on the point it should face.
	ErrDegenerateDirection = errors.New("degenerate look direction")

	// ErrBodyNotFound is the registry's lookup failure, re-exported so
	// callers of the camera core need not import the body package.
	ErrBodyNotFound = body.ErrBodyNotFound
)
