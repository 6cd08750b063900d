// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK detects a collision to determine the contact normal,
// the penetration depth and a witness point on each body. The polytope grows
// from GJK's final tetrahedron toward the surface of the Minkowski difference
// until the face closest to the origin stops moving.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPAMaxIterations limits polytope expansion to prevent infinite loops.
	EPAMaxIterations = 32

	// EPAConvergenceTolerance is the distance gain under which the closest face
	// is accepted as the surface of the Minkowski difference.
	EPAConvergenceTolerance = 0.0001

	polytopeInitialCapacity = 16
)

var (
	ErrDegenerateSimplex = errors.New("simplex is not a tetrahedron")
	ErrNoConvergence     = errors.New("EPA failed to converge")
)

// Contact is the result of EPA. Normal points from A toward B and
// (PointA - PointB)·Normal == Depth.
type Contact struct {
	Normal mgl64.Vec3
	Depth  float64
	PointA mgl64.Vec3
	PointB mgl64.Vec3
}

// EPA computes penetration depth and witness points for overlapping convex shapes.
func EPA(a, b *actor.RigidBody, simplex *gjk.Simplex) (Contact, error) {
	if simplex.Count < 4 {
		return Contact{}, fmt.Errorf("%d points: %w", simplex.Count, ErrDegenerateSimplex)
	}

	polytope := polytopePool.Get().(*Polytope)
	defer polytopePool.Put(polytope)
	polytope.Reset()
	polytope.BuildFromSimplex(simplex)

	var closest Face
	for i := 0; i < EPAMaxIterations; i++ {
		closest = polytope.faces[polytope.ClosestFace()]
		if math.IsInf(closest.Distance, 1) {
			return Contact{}, fmt.Errorf("flat polytope: %w", ErrDegenerateSimplex)
		}

		support := gjk.MinkowskiSupport(a, b, closest.Normal)
		distance := support.Point.Dot(closest.Normal)

		if distance-closest.Distance < EPAConvergenceTolerance {
			return contactFromFace(polytope, closest), nil
		}

		polytope.Expand(support)
		if len(polytope.faces) == 0 {
			break
		}
	}

	if closest.Distance > 0 && !math.IsInf(closest.Distance, 1) {
		// Best estimate so far
		return contactFromFace(polytope, closest), nil
	}

	return Contact{}, fmt.Errorf("%w after %d iterations", ErrNoConvergence, EPAMaxIterations)
}

func contactFromFace(polytope *Polytope, face Face) Contact {
	pointA, pointB := polytope.Witness(face)

	return Contact{
		Normal: face.Normal,
		Depth:  face.Distance,
		PointA: pointA,
		PointB: pointB,
	}
}
