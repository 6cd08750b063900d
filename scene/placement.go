package scene

import (
	"fmt"
	"math"

	"github.com/akmonengine/duckpond/config"
	"github.com/go-gl/mathgl/mgl64"
)

type Phase uint8

const (
	PhasePress Phase = iota
	PhaseMove
	PhaseRelease
)

func (p Phase) String() string {
	switch p {
	case PhasePress:
		return "press"
	case PhaseMove:
		return "move"
	case PhaseRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ParsePhase reads the wire name of a phase
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "press":
		return PhasePress, nil
	case "move":
		return PhaseMove, nil
	case "release":
		return PhaseRelease, nil
	default:
		return 0, fmt.Errorf("unknown pointer phase %q", s)
	}
}

// PointerEvent is a screen-space pointer sample. Viewport overrides the scene
// viewport for hosts that report their own surface size. Source identifies
// the pointer so gestures from several hosts do not mix.
type PointerEvent struct {
	X, Y     float64
	Phase    Phase
	Source   string
	Viewport *Viewport
}

// SurfaceHit is where a placement lands
type SurfaceHit struct {
	WorldPoint mgl64.Vec3
	Tag        string
	IsObstacle bool
}

// PlacementResolver turns a press/release pair into a surface hit
type PlacementResolver struct {
	Camera    *Camera
	Viewport  *Viewport
	Graph     *Graph
	Surfaces  *SurfaceRegistry
	Threshold config.TapThreshold
}

// IsTap compares two NDC points against the tap thresholds. Both axes must
// stay strictly under their threshold.
func (r *PlacementResolver) IsTap(start, end mgl64.Vec2) bool {
	dx := math.Abs(end.X() - start.X())
	dy := math.Abs(end.Y() - start.Y())

	return dx < r.Threshold.DX && dy < r.Threshold.DY
}

// Resolve casts a ray through the release point when the gesture is a tap.
// A rejected placement may still carry the obstacle that blocked it.
func (r *PlacementResolver) Resolve(press, release PointerEvent) (SurfaceHit, error) {
	viewport := *r.Viewport
	if release.Viewport != nil && release.Viewport.Valid() {
		viewport = *release.Viewport
	}
	if !viewport.Valid() {
		return SurfaceHit{}, ErrNoValidSurface
	}

	start := viewport.ToNDC(press.X, press.Y)
	end := viewport.ToNDC(release.X, release.Y)
	if !r.IsTap(start, end) {
		return SurfaceHit{}, ErrDragGesture
	}

	ray := r.Camera.Ray(end, viewport.Aspect())

	return SelectSurface(r.Graph.Raycast(ray), r.Surfaces)
}

// SelectSurface picks the placement from depth-sorted intersections. Any
// obstacle rejects the whole placement, whatever its depth, and is returned
// with IsObstacle set; otherwise the nearest placeable surface wins.
func SelectSurface(hits []Intersection, surfaces *SurfaceRegistry) (SurfaceHit, error) {
	var surface *Intersection

	for i := range hits {
		switch surfaces.Classify(hits[i].Tag) {
		case RoleObstacle:
			return SurfaceHit{WorldPoint: hits[i].Point, Tag: hits[i].Tag, IsObstacle: true}, ErrNoValidSurface
		case RolePlaceableSurface:
			if surface == nil {
				surface = &hits[i]
			}
		}
	}

	if surface == nil {
		return SurfaceHit{}, ErrNoValidSurface
	}

	return SurfaceHit{WorldPoint: surface.Point, Tag: surface.Tag}, nil
}
