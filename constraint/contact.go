package constraint

import (
	"math"

	"github.com/akmonengine/duckpond/actor"
	"github.com/go-gl/mathgl/mgl64"
)

var _ Constraint = (*ContactConstraint)(nil)

const (
	// DefaultCompliance controls soft constraint stiffness for contact resolution.
	// Lower values = stiffer contacts (less penetration, potential jitter)
	// Higher values = softer contacts (more penetration, smoother)
	DefaultCompliance = 1e-7
)

// ContactPoint is one touching point of a manifold. The anchors are stored in
// each body's local frame so the penetration can be measured again after every
// positional correction.
type ContactPoint struct {
	Position    mgl64.Vec3 // world point at detection time
	Penetration float64    // depth at detection time
	LocalA      mgl64.Vec3
	LocalB      mgl64.Vec3
}

// NewContactPoint builds a point from the deepest world point on each body.
func NewContactPoint(bodyA, bodyB *actor.RigidBody, pointA, pointB, normal mgl64.Vec3) ContactPoint {
	return ContactPoint{
		Position:    pointA.Add(pointB).Mul(0.5),
		Penetration: pointA.Sub(pointB).Dot(normal),
		LocalA:      bodyA.Transform.ToLocal(pointA),
		LocalB:      bodyB.Transform.ToLocal(pointB),
	}
}

// ContactConstraint resolves one manifold. Normal points from A toward B.
type ContactConstraint struct {
	BodyA       *actor.RigidBody
	BodyB       *actor.RigidBody
	Points      []ContactPoint
	Normal      mgl64.Vec3
	Friction    float64
	Restitution float64
	Compliance  float64
}

func (c *ContactConstraint) worldPoints(point ContactPoint) (mgl64.Vec3, mgl64.Vec3) {
	return c.BodyA.Transform.ToWorld(point.LocalA), c.BodyB.Transform.ToWorld(point.LocalB)
}

// SolvePosition pushes the bodies apart along the normal (XPBD, no lambda
// accumulation). It is safe to run several times per sub-step since the depth
// is measured from the current poses.
func (c *ContactConstraint) SolvePosition(dt float64) {
	if len(c.Points) == 0 {
		return
	}
	if !c.BodyA.IsMoving() && !c.BodyB.IsMoving() {
		return
	}

	bodyA := c.BodyA
	bodyB := c.BodyB

	invMassA := bodyA.InverseMass()
	invMassB := bodyB.InverseMass()

	compliance := c.Compliance
	if compliance == 0 {
		compliance = DefaultCompliance
	}
	alphaTilde := compliance / (dt * dt)

	// Every point is measured from the same pose; the manifold is corrected
	// once through the depth-weighted centroid of its penetrating points.
	var pA, pB mgl64.Vec3
	var totalDepth float64
	for _, point := range c.Points {
		worldA, worldB := c.worldPoints(point)
		depth := worldA.Sub(worldB).Dot(c.Normal)
		if depth <= 1e-8 {
			continue
		}

		pA = pA.Add(worldA.Mul(depth))
		pB = pB.Add(worldB.Mul(depth))
		totalDepth += depth
	}
	if totalDepth <= 1e-8 {
		return
	}
	pA = pA.Mul(1.0 / totalDepth)
	pB = pB.Mul(1.0 / totalDepth)
	penetration := pA.Sub(pB).Dot(c.Normal)

	IA_inv := bodyA.GetInverseInertiaWorld()
	IB_inv := bodyB.GetInverseInertiaWorld()

	rA := pA.Sub(bodyA.Transform.Position)
	rB := pB.Sub(bodyB.Transform.Position)
	rA_cross_n := rA.Cross(c.Normal)
	rB_cross_n := rB.Cross(c.Normal)

	wA := invMassA + IA_inv.Mul3x1(rA_cross_n).Dot(rA_cross_n)
	wB := invMassB + IB_inv.Mul3x1(rB_cross_n).Dot(rB_cross_n)
	if wA+wB <= 1e-12 {
		return
	}

	deltaLambda := -penetration / (wA + wB + alphaTilde)
	impulse := c.Normal.Mul(deltaLambda)

	// Body A receives +impulse (away from B), body B receives -impulse
	bodyA.Translate(impulse.Mul(invMassA))
	bodyB.Translate(impulse.Mul(-invMassB))
	bodyA.Rotate(IA_inv.Mul3x1(rA.Cross(impulse)))
	bodyB.Rotate(IB_inv.Mul3x1(rB.Cross(impulse.Mul(-1))))
}

// SolveVelocity applies restitution and Coulomb friction. Bounces slower than
// what gravity adds in two sub-steps are treated as resting contact. The
// manifold is resolved as one impulse through the centroid of its points, so
// a flat landing does not start spinning.
func (c *ContactConstraint) SolveVelocity(dt float64, gravity mgl64.Vec3) {
	if len(c.Points) == 0 {
		return
	}
	if !c.BodyA.IsMoving() && !c.BodyB.IsMoving() {
		return
	}

	bodyA := c.BodyA
	bodyB := c.BodyB

	invMassA := bodyA.InverseMass()
	invMassB := bodyB.InverseMass()
	IA_inv := bodyA.GetInverseInertiaWorld()
	IB_inv := bodyB.GetInverseInertiaWorld()

	var contact mgl64.Vec3
	for _, point := range c.Points {
		pA, pB := c.worldPoints(point)
		contact = contact.Add(pA.Add(pB).Mul(0.5))
	}
	contact = contact.Mul(1.0 / float64(len(c.Points)))

	rA := contact.Sub(bodyA.Transform.Position)
	rB := contact.Sub(bodyB.Transform.Position)

	vA := bodyA.Velocity.Add(bodyA.AngularVelocity.Cross(rA))
	vB := bodyB.Velocity.Add(bodyB.AngularVelocity.Cross(rB))
	relativeVel := vB.Sub(vA)
	normalVel := relativeVel.Dot(c.Normal)

	vAPrev := bodyA.PresolveVelocity.Add(bodyA.PresolveAngularVelocity.Cross(rA))
	vBPrev := bodyB.PresolveVelocity.Add(bodyB.PresolveAngularVelocity.Cross(rB))
	normalVelPrev := vBPrev.Sub(vAPrev).Dot(c.Normal)

	rA_cross_n := rA.Cross(c.Normal)
	rB_cross_n := rB.Cross(c.Normal)
	effectiveMassNormal := invMassA + invMassB +
		IA_inv.Mul3x1(rA_cross_n).Dot(rA_cross_n) +
		IB_inv.Mul3x1(rB_cross_n).Dot(rB_cross_n)
	if effectiveMassNormal < 1e-10 {
		return
	}

	restitution := c.Restitution
	if math.Abs(normalVelPrev) <= 2*gravity.Len()*dt {
		restitution = 0
	}

	targetVel := math.Max(-restitution*normalVelPrev, 0)
	lambdaNormal := (targetVel - normalVel) / effectiveMassNormal
	// Never pull the bodies together
	if lambdaNormal <= 0 {
		return
	}

	normalImpulse := c.Normal.Mul(lambdaNormal)
	applyImpulse(bodyA, normalImpulse.Mul(-1), rA, invMassA, IA_inv)
	applyImpulse(bodyB, normalImpulse, rB, invMassB, IB_inv)

	tangentVel := relativeVel.Sub(c.Normal.Mul(normalVel))
	tangentSpeed := tangentVel.Len()
	if tangentSpeed > 1e-6 {
		tangentDir := tangentVel.Mul(1.0 / tangentSpeed)

		rA_cross_t := rA.Cross(tangentDir)
		rB_cross_t := rB.Cross(tangentDir)
		effectiveMassTangent := invMassA + invMassB +
			IA_inv.Mul3x1(rA_cross_t).Dot(rA_cross_t) +
			IB_inv.Mul3x1(rB_cross_t).Dot(rB_cross_t)

		if effectiveMassTangent >= 1e-10 {
			// Coulomb: |friction| <= mu * |normal|
			lambdaTangent := math.Min(tangentSpeed/effectiveMassTangent, c.Friction*lambdaNormal)
			frictionImpulse := tangentDir.Mul(-lambdaTangent)

			applyImpulse(bodyA, frictionImpulse.Mul(-1), rA, invMassA, IA_inv)
			applyImpulse(bodyB, frictionImpulse, rB, invMassB, IB_inv)
		}
	}

	clampSmallVelocities(bodyA)
	clampSmallVelocities(bodyB)
}

func applyImpulse(body *actor.RigidBody, impulse, r mgl64.Vec3, invMass float64, invInertia mgl64.Mat3) {
	if body.BodyType != actor.BodyTypeDynamic {
		return
	}

	body.Velocity = body.Velocity.Add(impulse.Mul(invMass))
	body.AngularVelocity = body.AngularVelocity.Add(invInertia.Mul3x1(r.Cross(impulse)))
}
