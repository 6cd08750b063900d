package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies are moved by script only. They carry the same
	// infinite mass sentinel as static bodies, so contacts push dynamic bodies
	// away without ever moving the kinematic one.
	BodyTypeKinematic
)

const (
	DefaultSleepSpeedLimit = 0.1
	DefaultSleepTimeLimit  = 1.0
	DefaultLinearDamping   = 0.01
	DefaultAngularDamping  = 0.01
)

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion
	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3 // m/s

	// Angular motion
	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3 // rad/s
	InertiaLocal            mgl64.Mat3
	InverseInertiaLocal     mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64
	// SleepSpeedLimit is the combined linear/angular speed under which the
	// body starts counting toward sleep.
	SleepSpeedLimit float64
	// SleepTimeLimit is how long the body must stay slow before sleeping.
	SleepTimeLimit float64

	LinearDamping  float64 // per second, exponential
	AngularDamping float64

	// Physical properties
	Material *Material
	BodyType BodyType
	mass     float64

	// Collision shape
	Shape ShapeInterface
}

// NewRigidBody creates a body of the given mass. A mass of 0 makes the body
// static.
func NewRigidBody(transform Transform, shape ShapeInterface, material *Material, mass float64) *RigidBody {
	bodyType := BodyTypeDynamic
	if mass <= 0 {
		bodyType = BodyTypeStatic
	}

	return newBody(transform, shape, material, bodyType, mass)
}

// NewKinematicBody creates a body driven by SetKinematicPose.
func NewKinematicBody(transform Transform, shape ShapeInterface, material *Material) *RigidBody {
	return newBody(transform, shape, material, BodyTypeKinematic, math.Inf(1))
}

func newBody(transform Transform, shape ShapeInterface, material *Material, bodyType BodyType, mass float64) *RigidBody {
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform = NewTransformAt(transform.Position, transform.Rotation)

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		Material:          material,
		SleepSpeedLimit:   DefaultSleepSpeedLimit,
		SleepTimeLimit:    DefaultSleepTimeLimit,
		LinearDamping:     DefaultLinearDamping,
		AngularDamping:    DefaultAngularDamping,
	}

	if bodyType == BodyTypeDynamic {
		rb.mass = mass
		rb.InertiaLocal = shape.ComputeInertia(mass)
		rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
	} else {
		rb.mass = math.Inf(1)
	}

	rb.Shape.ComputeAABB(rb.Transform)

	return rb
}

func (rb *RigidBody) GetMass() float64 {
	return rb.mass
}

// InverseMass is 0 for static and kinematic bodies
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic {
		return 0
	}

	return 1.0 / rb.mass
}

// IsMoving reports whether the body can push others: awake dynamic bodies and
// kinematic bodies.
func (rb *RigidBody) IsMoving() bool {
	switch rb.BodyType {
	case BodyTypeKinematic:
		return true
	case BodyTypeDynamic:
		return !rb.IsSleeping
	default:
		return false
	}
}

func (rb *RigidBody) TrySleep(dt float64) {
	if rb.BodyType != BodyTypeDynamic || rb.IsSleeping {
		return
	}

	speedSquared := rb.Velocity.LenSqr() + rb.AngularVelocity.LenSqr()
	if speedSquared < rb.SleepSpeedLimit*rb.SleepSpeedLimit {
		rb.SleepTimer += dt
		if rb.SleepTimer >= rb.SleepTimeLimit {
			rb.Sleep()
		}
	} else {
		rb.SleepTimer = 0.0
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	if rb.IsSleeping {
		rb.PreviousTransform = rb.Transform
	}
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic || rb.IsSleeping {
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.Rotation = rb.Transform.Rotation

	// Linear
	acceleration := gravity.Add(rb.accumulatedForce.Mul(1.0 / rb.mass))
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	// Angular
	angularAccel := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.AngularDamping * dt))

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()

	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
}

// Update derives velocities from the corrected positions (XPBD)
func (rb *RigidBody) Update(dt float64) {
	if rb.BodyType != BodyTypeDynamic || rb.IsSleeping {
		return
	}

	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / dt)
	qDelta := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate())
	qDelta = qDelta.Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}

	rb.Shape.ComputeAABB(rb.Transform)
}

// SetKinematicPose moves a kinematic body. The velocities are what contacts
// see when resolving restitution and friction against the body.
func (rb *RigidBody) SetKinematicPose(position mgl64.Vec3, rotation mgl64.Quat, velocity, angularVelocity mgl64.Vec3) {
	if rb.BodyType != BodyTypeKinematic {
		return
	}

	rb.PreviousTransform = rb.Transform
	rb.Transform = NewTransformAt(position, rotation)
	rb.Velocity = velocity
	rb.AngularVelocity = angularVelocity
	rb.PresolveVelocity = velocity
	rb.PresolveAngularVelocity = angularVelocity

	rb.Shape.ComputeAABB(rb.Transform)
}

// Translate moves a dynamic body by a positional correction
func (rb *RigidBody) Translate(delta mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	rb.Transform.Position = rb.Transform.Position.Add(delta)
}

// Rotate applies a small rotation vector to a dynamic body
func (rb *RigidBody) Rotate(delta mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic || delta.Len() <= 1e-10 {
		return
	}

	qDelta := mgl64.Quat{W: 1.0, V: delta.Mul(0.5)}.Normalize()
	rb.Transform.Rotation = qDelta.Mul(rb.Transform.Rotation).Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
}

// AddForce accumulates a force (N) applied at the center of mass
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()

		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// AddTorque accumulates a torque (N⋅m)
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()

		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	localDirection := rb.Transform.InverseRotation.Rotate(direction)
	localSupport := rb.Shape.Support(localDirection)

	return rb.Transform.ToWorld(localSupport)
}

// GetInverseInertiaWorld returns R * I_local^-1 * R^T, zero for bodies that
// do not respond to contacts.
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != BodyTypeDynamic {
		return mgl64.Mat3{}
	}

	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}
