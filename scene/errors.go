package scene

import "errors"

var (
	// ErrNotReady drops a placement made before the assets arrived
	ErrNotReady = errors.New("scene assets not ready")
	// ErrNoValidSurface drops a placement that hit no placeable surface, or
	// hit an obstacle
	ErrNoValidSurface = errors.New("no valid surface under pointer")
	// ErrDragGesture drops a placement whose pointer moved too far
	ErrDragGesture = errors.New("pointer gesture is a drag")
	// ErrDegenerateGeometry is fatal: a template encloses no volume
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)
