package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Size returns the full extents of the box
func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// Center returns the middle point of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Volume returns the enclosed volume, 0 for flat or inverted boxes
func (a AABB) Volume() float64 {
	size := a.Size()
	if size.X() <= 0 || size.Y() <= 0 || size.Z() <= 0 {
		return 0
	}

	return size.X() * size.Y() * size.Z()
}

// IntersectRay runs a slab test and returns the entry distance along dir.
// A ray starting inside the box reports 0. Flat boxes (zero thickness on one
// axis) are hit when the ray crosses their plane.
func (a AABB) IntersectRay(origin, dir mgl64.Vec3) (float64, bool) {
	tMin := 0.0
	tMax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < 1e-12 {
			if origin[axis] < a.Min[axis] || origin[axis] > a.Max[axis] {
				return 0, false
			}
			continue
		}

		inv := 1.0 / dir[axis]
		t1 := (a.Min[axis] - origin[axis]) * inv
		t2 := (a.Max[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	return tMin, true
}
