package actor

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBoxFromBounds(t *testing.T) {
	box, err := BoxFromBounds(AABB{Min: mgl64.Vec3{-0.1, 0, -0.3}, Max: mgl64.Vec3{0.1, 0.4, 0.3}})
	if err != nil {
		t.Fatalf("BoxFromBounds() error = %v", err)
	}
	if box.HalfExtents != (mgl64.Vec3{0.1, 0.2, 0.3}) {
		t.Errorf("HalfExtents = %v", box.HalfExtents)
	}

	_, err = BoxFromBounds(AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 0, 1}})
	if !errors.Is(err, ErrDegenerateBounds) {
		t.Errorf("BoxFromBounds(flat) error = %v, want ErrDegenerateBounds", err)
	}
}

func TestCylinderFromBounds(t *testing.T) {
	tests := []struct {
		name     string
		bounds   AABB
		segments int
		radius   float64
		height   float64
		err      error
	}{
		{"can", AABB{Min: mgl64.Vec3{-0.03, -0.05, -0.03}, Max: mgl64.Vec3{0.03, 0.05, 0.03}}, 12, 0.03, 0.1, nil},
		{"too few segments", AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 2, 1}}, 1, 0.5, 2, nil},
		{"zero volume", AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{0, 2, 1}}, 12, 0, 0, ErrDegenerateBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cylinder, err := CylinderFromBounds(tt.bounds, tt.segments)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("error = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if math.Abs(cylinder.RadiusTop-tt.radius) > 1e-12 || cylinder.RadiusTop != cylinder.RadiusBottom {
				t.Errorf("radius = %v/%v, want %v", cylinder.RadiusTop, cylinder.RadiusBottom, tt.radius)
			}
			if math.Abs(cylinder.Height-tt.height) > 1e-12 {
				t.Errorf("height = %v, want %v", cylinder.Height, tt.height)
			}
			if cylinder.Segments < 3 {
				t.Errorf("segments = %d, want >= 3", cylinder.Segments)
			}
			if len(cylinder.Vertices()) != cylinder.Segments*2 {
				t.Errorf("len(Vertices()) = %d, want %d", len(cylinder.Vertices()), cylinder.Segments*2)
			}
		})
	}
}

func TestCylinder_Support(t *testing.T) {
	cylinder := &Cylinder{RadiusTop: 1, RadiusBottom: 1, Height: 2, Segments: 12}

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"up right", mgl64.Vec3{1, 1, 0}, mgl64.Vec3{1, 1, 0}},
		{"down back", mgl64.Vec3{0, -1, -1}, mgl64.Vec3{0, -1, -1}},
		{"straight up", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cylinder.Support(tt.direction)
			if !got.ApproxEqualThreshold(tt.expected, 1e-9) {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, got, tt.expected)
			}
		})
	}
}

func TestBox_SupportAndAABB(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}

	if got := box.Support(mgl64.Vec3{-1, 1, -1}); got != (mgl64.Vec3{-1, 2, -3}) {
		t.Errorf("Support() = %v", got)
	}

	rotation := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	box.ComputeAABB(NewTransformAt(mgl64.Vec3{10, 0, 0}, rotation))
	aabb := box.GetAABB()
	// X and Z swap under a quarter turn about Y
	if !aabb.Min.ApproxEqualThreshold(mgl64.Vec3{7, -2, -1}, 1e-9) || !aabb.Max.ApproxEqualThreshold(mgl64.Vec3{13, 2, 1}, 1e-9) {
		t.Errorf("AABB = %v", aabb)
	}
}

func TestShape_Mass(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}
	if m := box.ComputeMass(2); math.Abs(m-2) > 1e-12 {
		t.Errorf("box mass = %v, want 2", m)
	}

	cylinder := &Cylinder{RadiusTop: 1, RadiusBottom: 1, Height: 1, Segments: 12}
	if m := cylinder.ComputeMass(1); math.Abs(m-math.Pi) > 1e-12 {
		t.Errorf("cylinder mass = %v, want pi", m)
	}

	if m := (&Plane{Normal: mgl64.Vec3{0, 1, 0}}).ComputeMass(1); !math.IsInf(m, 1) {
		t.Errorf("plane mass = %v, want +Inf", m)
	}
}

func TestPlane_WorldPlane(t *testing.T) {
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}}

	normal, d := plane.WorldPlane(NewTransformAt(mgl64.Vec3{3, -0.075, 1}, mgl64.QuatIdent()))
	if normal != (mgl64.Vec3{0, 1, 0}) || math.Abs(d+0.075) > 1e-12 {
		t.Errorf("WorldPlane() = %v, %v", normal, d)
	}
	if plane.Vertices() != nil {
		t.Error("plane has no hull vertices")
	}
}

func TestShapeType_String(t *testing.T) {
	tests := map[ShapeType]string{
		ShapeTypePlane:    "plane",
		ShapeTypeBox:      "box",
		ShapeTypeCylinder: "cylinder",
	}
	for shapeType, expected := range tests {
		if shapeType.String() != expected {
			t.Errorf("String() = %q, want %q", shapeType.String(), expected)
		}
	}
}
