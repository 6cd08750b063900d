package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateBounds is returned when a shape is derived from a bounding box
// that encloses no volume.
var ErrDegenerateBounds = errors.New("bounding box has zero volume")

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypePlane ShapeType = iota
	ShapeTypeBox
	ShapeTypeCylinder
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypePlane:
		return "plane"
	case ShapeTypeBox:
		return "box"
	case ShapeTypeCylinder:
		return "cylinder"
	default:
		return fmt.Sprintf("ShapeType(%d)", int(t))
	}
}

// ShapeInterface is the interface that all collision shapes must implement
type ShapeInterface interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeMass calculates the mass of the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	// Support returns the furthest local point in the local direction
	Support(direction mgl64.Vec3) mgl64.Vec3
	// Vertices returns the local hull points used for analytic plane contacts.
	// Unbounded shapes return nil.
	Vertices() []mgl64.Vec3
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	aabb        AABB
	corners     []mgl64.Vec3
}

// BoxFromBounds derives a box whose half-extents match the bounding box.
func BoxFromBounds(bounds AABB) (*Box, error) {
	if bounds.Volume() <= 0 {
		return nil, fmt.Errorf("box from %v: %w", bounds, ErrDegenerateBounds)
	}

	return &Box{HalfExtents: bounds.Size().Mul(0.5)}, nil
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) ComputeAABB(transform Transform) {
	b.aabb = hullAABB(b.Vertices(), transform)
}

func (b *Box) GetAABB() AABB {
	return b.aabb
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0
	ix := factor * (y*y + z*z)
	iy := factor * (x*x + z*z)
	iz := factor * (x*x + y*y)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

func (b *Box) Vertices() []mgl64.Vec3 {
	if b.corners == nil {
		hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
		b.corners = []mgl64.Vec3{
			{-hx, -hy, -hz},
			{+hx, -hy, -hz},
			{-hx, +hy, -hz},
			{+hx, +hy, -hz},
			{-hx, -hy, +hz},
			{+hx, -hy, +hz},
			{-hx, +hy, +hz},
			{+hx, +hy, +hz},
		}
	}

	return b.corners
}

// Cylinder is a (possibly tapered) cylinder aligned with the local Y axis and
// centered on the body origin. Segments sets how many rim points are used for
// plane contacts.
type Cylinder struct {
	RadiusTop    float64
	RadiusBottom float64
	Height       float64
	Segments     int
	aabb         AABB
	rim          []mgl64.Vec3
}

// CylinderFromBounds derives an upright cylinder from a mesh bounding box:
// the radius is half the X extent and the height is the Y extent.
func CylinderFromBounds(bounds AABB, segments int) (*Cylinder, error) {
	if bounds.Volume() <= 0 {
		return nil, fmt.Errorf("cylinder from %v: %w", bounds, ErrDegenerateBounds)
	}
	if segments < 3 {
		segments = 3
	}

	size := bounds.Size()
	radius := size.X() / 2

	return &Cylinder{
		RadiusTop:    radius,
		RadiusBottom: radius,
		Height:       size.Y(),
		Segments:     segments,
	}, nil
}

func (c *Cylinder) Type() ShapeType { return ShapeTypeCylinder }

func (c *Cylinder) ComputeAABB(transform Transform) {
	c.aabb = hullAABB(c.Vertices(), transform)
}

func (c *Cylinder) GetAABB() AABB {
	return c.aabb
}

// ComputeMass uses the frustum volume π·h/3·(r1² + r1·r2 + r2²)
func (c *Cylinder) ComputeMass(density float64) float64 {
	r1, r2 := c.RadiusTop, c.RadiusBottom
	volume := math.Pi * c.Height / 3 * (r1*r1 + r1*r2 + r2*r2)

	return density * volume
}

// ComputeInertia approximates a tapered cylinder with the mean radius.
func (c *Cylinder) ComputeInertia(mass float64) mgl64.Mat3 {
	r := (c.RadiusTop + c.RadiusBottom) / 2
	h := c.Height

	side := mass * (3*r*r + h*h) / 12
	axial := mass * r * r / 2

	return mgl64.Mat3{
		side, 0, 0,
		0, axial, 0,
		0, 0, side,
	}
}

func (c *Cylinder) Support(direction mgl64.Vec3) mgl64.Vec3 {
	radial := mgl64.Vec3{direction.X(), 0, direction.Z()}
	if l := radial.Len(); l > 1e-12 {
		radial = radial.Mul(1 / l)
	} else {
		radial = mgl64.Vec3{}
	}

	half := c.Height / 2
	top := radial.Mul(c.RadiusTop).Add(mgl64.Vec3{0, half, 0})
	bottom := radial.Mul(c.RadiusBottom).Add(mgl64.Vec3{0, -half, 0})

	if top.Dot(direction) >= bottom.Dot(direction) {
		return top
	}

	return bottom
}

func (c *Cylinder) Vertices() []mgl64.Vec3 {
	if c.rim == nil {
		half := c.Height / 2
		c.rim = make([]mgl64.Vec3, 0, c.Segments*2)
		for i := 0; i < c.Segments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(c.Segments)
			sin, cos := math.Sincos(angle)
			c.rim = append(c.rim,
				mgl64.Vec3{cos * c.RadiusTop, half, sin * c.RadiusTop},
				mgl64.Vec3{cos * c.RadiusBottom, -half, sin * c.RadiusBottom},
			)
		}
	}

	return c.rim
}

// Plane represents an infinite plane collision shape passing through the body
// origin. Normal is expressed in local space and must be normalized; the body
// rotation orients it in the world.
type Plane struct {
	Normal mgl64.Vec3
	aabb   AABB
}

func (p *Plane) Type() ShapeType { return ShapeTypePlane }

// WorldPlane returns the world normal and the plane constant d so that
// n·x = d for every point x on the plane.
func (p *Plane) WorldPlane(transform Transform) (mgl64.Vec3, float64) {
	normal := transform.Rotation.Rotate(p.Normal).Normalize()

	return normal, normal.Dot(transform.Position)
}

func (p *Plane) ComputeAABB(transform Transform) {
	const thickness = 1.0 // detection depth below the surface
	const infinity = 1e10

	normal, _ := p.WorldPlane(transform)
	min := transform.Position.Sub(normal.Mul(thickness))
	max := transform.Position

	// Extend to infinity along every axis not aligned with the normal
	for axis := 0; axis < 3; axis++ {
		if math.Abs(normal[axis]) < 1.0 {
			min[axis] = -infinity
			max[axis] = infinity
		} else if min[axis] > max[axis] {
			min[axis], max[axis] = max[axis], min[axis]
		}
	}

	p.aabb = AABB{Min: min, Max: max}
}

func (p *Plane) GetAABB() AABB {
	return p.aabb
}

// ComputeMass returns +Inf: planes are always static
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// Support treats the plane as a wide slab below its surface.
func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	const halfWidth = 1000.0
	const depth = 0.5

	tangent1, tangent2 := getTangentBasis(p.Normal)
	point := mgl64.Vec3{}
	if direction.Dot(tangent1) < 0 {
		point = point.Sub(tangent1.Mul(halfWidth))
	} else {
		point = point.Add(tangent1.Mul(halfWidth))
	}
	if direction.Dot(tangent2) < 0 {
		point = point.Sub(tangent2.Mul(halfWidth))
	} else {
		point = point.Add(tangent2.Mul(halfWidth))
	}
	if direction.Dot(p.Normal) <= 0 {
		point = point.Sub(p.Normal.Mul(depth))
	}

	return point
}

func (p *Plane) Vertices() []mgl64.Vec3 {
	return nil
}

// hullAABB bounds a set of local points moved by the transform
func hullAABB(points []mgl64.Vec3, transform Transform) AABB {
	if len(points) == 0 {
		return AABB{Min: transform.Position, Max: transform.Position}
	}

	worldPoint := transform.ToWorld(points[0])
	min := worldPoint
	max := worldPoint

	for _, point := range points[1:] {
		worldPoint = transform.ToWorld(point)
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], worldPoint[axis])
			max[axis] = math.Max(max[axis], worldPoint[axis])
		}
	}

	return AABB{Min: min, Max: max}
}

// Helper to generate the tangent basis
func getTangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
