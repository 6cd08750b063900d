package duckpond

import (
	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/constraint"
	"github.com/akmonengine/duckpond/epa"
	"github.com/akmonengine/duckpond/gjk"
)

// BroadPhase returns the pairs that might touch. Bounded bodies go through the
// spatial grid; planes are unbounded and are paired with every other body.
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.RigidBody) []Pair {
	bounded := make([]*actor.RigidBody, 0, len(bodies))
	var planes []*actor.RigidBody

	for _, body := range bodies {
		if _, isPlane := body.Shape.(*actor.Plane); isPlane {
			planes = append(planes, body)
			continue
		}
		bounded = append(bounded, body)
	}

	spatialGrid.Clear()
	for i, body := range bounded {
		spatialGrid.Insert(i, body)
	}
	spatialGrid.SortCells()

	pairs := spatialGrid.FindPairs(bounded)

	for _, plane := range planes {
		for _, body := range bounded {
			if needsContact(plane, body) {
				pairs = append(pairs, Pair{BodyA: plane, BodyB: body})
			}
		}
	}

	return pairs
}

// NarrowPhase turns touching pairs into contact constraints, with the friction
// and restitution of the pair's materials. Pairs run in order so the solver
// sees the same constraint sequence for the same scene.
func NarrowPhase(pairs []Pair, materials *actor.MaterialTable) []*constraint.ContactConstraint {
	contacts := make([]*constraint.ContactConstraint, 0, len(pairs))

	for _, pair := range pairs {
		var contact *constraint.ContactConstraint

		_, aIsPlane := pair.BodyA.Shape.(*actor.Plane)
		_, bIsPlane := pair.BodyB.Shape.(*actor.Plane)
		switch {
		case aIsPlane && bIsPlane:
			continue
		case aIsPlane:
			contact = collidePlane(pair.BodyA, pair.BodyB)
		case bIsPlane:
			contact = collidePlane(pair.BodyB, pair.BodyA)
		default:
			contact = collideConvex(pair.BodyA, pair.BodyB)
		}

		if contact == nil {
			continue
		}

		if materials != nil {
			properties, err := materials.Lookup(pair.BodyA.Material, pair.BodyB.Material)
			if err != nil {
				// AddBody rejects undeclared materials, so this only happens
				// when the table was edited after the world was built.
				continue
			}
			contact.Friction = properties.Friction
			contact.Restitution = properties.Restitution
		}

		contacts = append(contacts, contact)
	}

	return contacts
}

func collideConvex(bodyA, bodyB *actor.RigidBody) *constraint.ContactConstraint {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.GJK(bodyA, bodyB, simplex) {
		return nil
	}

	result, err := epa.EPA(bodyA, bodyB, simplex)
	if err != nil || result.Depth <= 0 {
		return nil
	}

	return &constraint.ContactConstraint{
		BodyA:  bodyA,
		BodyB:  bodyB,
		Normal: result.Normal,
		Points: []constraint.ContactPoint{
			constraint.NewContactPoint(bodyA, bodyB, result.PointA, result.PointB, result.Normal),
		},
	}
}

// collidePlane tests every hull vertex of the object against the plane. The
// plane is always body A so the normal points toward the object.
func collidePlane(planeBody, object *actor.RigidBody) *constraint.ContactConstraint {
	plane := planeBody.Shape.(*actor.Plane)
	normal, distance := plane.WorldPlane(planeBody.Transform)

	var points []constraint.ContactPoint
	for _, vertex := range object.Shape.Vertices() {
		pointB := object.Transform.ToWorld(vertex)
		depth := normal.Dot(pointB) - distance
		if depth >= 0 {
			continue
		}

		pointA := pointB.Sub(normal.Mul(depth))
		points = append(points, constraint.NewContactPoint(planeBody, object, pointA, pointB, normal))
	}

	if len(points) == 0 {
		return nil
	}

	return &constraint.ContactConstraint{
		BodyA:  planeBody,
		BodyB:  object,
		Normal: normal,
		Points: points,
	}
}
