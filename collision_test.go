package duckpond

import (
	"math"
	"testing"

	"github.com/akmonengine/duckpond/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestBroadPhase_PlanesOutsideGrid(t *testing.T) {
	ground := newGround(0)
	near := newBox(mgl64.Vec3{0, 0.04, 0}, mgl64.Vec3{0.05, 0.05, 0.05}, 1)
	far := newBox(mgl64.Vec3{100, 50, -100}, mgl64.Vec3{0.05, 0.05, 0.05}, 1)

	pairs := BroadPhase(NewSpatialGrid(1.0, 64), []*actor.RigidBody{ground, near, far})

	if len(pairs) != 2 {
		t.Fatalf("BroadPhase() = %d pairs, want 2 (plane against every body)", len(pairs))
	}
	for _, pair := range pairs {
		if pair.BodyA != ground {
			t.Errorf("plane should be body A, got %v", pair.BodyA.Shape.Type())
		}
	}
}

func TestNarrowPhase_PlaneContact(t *testing.T) {
	ground := newGround(0)
	box := newBox(mgl64.Vec3{0, 0.04, 0}, mgl64.Vec3{0.05, 0.05, 0.05}, 1)

	contacts := NarrowPhase([]Pair{{BodyA: ground, BodyB: box}}, nil)
	if len(contacts) != 1 {
		t.Fatalf("NarrowPhase() = %d contacts, want 1", len(contacts))
	}

	contact := contacts[0]
	if contact.Normal != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("Normal = %v, want up", contact.Normal)
	}
	// The four bottom corners are 1cm under the ground
	if len(contact.Points) != 4 {
		t.Fatalf("len(Points) = %d, want 4", len(contact.Points))
	}
	for _, p := range contact.Points {
		if math.Abs(p.Penetration-0.01) > 1e-9 {
			t.Errorf("Penetration = %v, want 0.01", p.Penetration)
		}
	}
}

func TestNarrowPhase_PlaneSeparated(t *testing.T) {
	ground := newGround(0)
	box := newBox(mgl64.Vec3{0, 0.2, 0}, mgl64.Vec3{0.05, 0.05, 0.05}, 1)

	if contacts := NarrowPhase([]Pair{{BodyA: ground, BodyB: box}}, nil); len(contacts) != 0 {
		t.Errorf("NarrowPhase() = %d contacts for a box above the plane, want 0", len(contacts))
	}
}

func TestNarrowPhase_PlaneAsBodyB(t *testing.T) {
	ground := newGround(0)
	box := newBox(mgl64.Vec3{0, 0.04, 0}, mgl64.Vec3{0.05, 0.05, 0.05}, 1)

	contacts := NarrowPhase([]Pair{{BodyA: box, BodyB: ground}}, nil)
	if len(contacts) != 1 {
		t.Fatalf("NarrowPhase() = %d contacts, want 1", len(contacts))
	}
	if contacts[0].BodyA != ground {
		t.Error("plane should be reordered as body A")
	}
}

func TestNarrowPhase_ConvexContact(t *testing.T) {
	a := newBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, 1)
	b := newBox(mgl64.Vec3{0.9, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, 1)

	contacts := NarrowPhase([]Pair{{BodyA: a, BodyB: b}}, nil)
	if len(contacts) != 1 {
		t.Fatalf("NarrowPhase() = %d contacts, want 1", len(contacts))
	}

	contact := contacts[0]
	if contact.Normal.X() < 0.99 {
		t.Errorf("Normal = %v, want +X", contact.Normal)
	}
	if len(contact.Points) != 1 || math.Abs(contact.Points[0].Penetration-0.1) > 1e-3 {
		t.Errorf("Points = %+v, want one point 0.1 deep", contact.Points)
	}
}

func TestNarrowPhase_MaterialProperties(t *testing.T) {
	materials := actor.NewMaterialTable()
	can := materials.Declare("object", 1)
	ground := materials.Declare("ground", 0)
	if err := materials.SetContact("object", "ground", 0.1, 0.7); err != nil {
		t.Fatal(err)
	}

	plane := newGround(0)
	plane.Material = ground
	box := newBox(mgl64.Vec3{0, 0.04, 0}, mgl64.Vec3{0.05, 0.05, 0.05}, 1)
	box.Material = can

	contacts := NarrowPhase([]Pair{{BodyA: box, BodyB: plane}}, materials)
	if len(contacts) != 1 {
		t.Fatalf("NarrowPhase() = %d contacts, want 1", len(contacts))
	}
	if contacts[0].Friction != 0.1 || contacts[0].Restitution != 0.7 {
		t.Errorf("contact = (%v, %v), want (0.1, 0.7)", contacts[0].Friction, contacts[0].Restitution)
	}
}
