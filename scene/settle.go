package scene

import (
	"github.com/akmonengine/duckpond"
	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/internal/logging"
	"go.uber.org/zap"
)

// SettleCounter follows spawned objects through the world events. An object
// lands on its first contact with the ground and is settled while asleep.
type SettleCounter struct {
	world  *duckpond.World
	ground *actor.RigidBody
	logger *zap.Logger

	landed   map[*actor.RigidBody]struct{}
	asleep   map[*actor.RigidBody]struct{}
	landings int
}

// NewSettleCounter subscribes to the collision and sleep events of world
func NewSettleCounter(world *duckpond.World, ground *actor.RigidBody, logger *zap.Logger) *SettleCounter {
	c := &SettleCounter{
		world:  world,
		ground: ground,
		logger: logging.OrNop(logger),
		landed: make(map[*actor.RigidBody]struct{}),
		asleep: make(map[*actor.RigidBody]struct{}),
	}

	world.Events.Subscribe(duckpond.COLLISION_ENTER, c.onEnter)
	world.Events.Subscribe(duckpond.ON_SLEEP, c.onSleep)
	world.Events.Subscribe(duckpond.ON_WAKE, c.onWake)

	return c
}

func (c *SettleCounter) onEnter(event duckpond.Event) {
	enter, ok := event.(duckpond.CollisionEnterEvent)
	if !ok {
		return
	}

	var body *actor.RigidBody
	switch c.ground {
	case enter.BodyA:
		body = enter.BodyB
	case enter.BodyB:
		body = enter.BodyA
	default:
		return
	}
	if body.BodyType != actor.BodyTypeDynamic {
		return
	}

	// Bounces re-enter the ground pair; only the first touch is a landing
	if _, ok := c.landed[body]; ok {
		return
	}
	c.landed[body] = struct{}{}
	c.landings++

	position := body.Transform.Position
	c.logger.Debug("object landed", zap.Float64("x", position.X()), zap.Float64("z", position.Z()))
}

func (c *SettleCounter) onSleep(event duckpond.Event) {
	sleep, ok := event.(duckpond.SleepEvent)
	if !ok || sleep.Body.BodyType != actor.BodyTypeDynamic {
		return
	}

	c.asleep[sleep.Body] = struct{}{}
	c.logger.Debug("object settled", zap.Float64("y", sleep.Body.Transform.Position.Y()))
}

func (c *SettleCounter) onWake(event duckpond.Event) {
	wake, ok := event.(duckpond.WakeEvent)
	if !ok {
		return
	}

	if _, ok := c.asleep[wake.Body]; ok {
		delete(c.asleep, wake.Body)
		c.logger.Debug("object woke up")
	}
}

// TakeLanded returns the landings counted since the previous call
func (c *SettleCounter) TakeLanded() int {
	landings := c.landings
	c.landings = 0

	return landings
}

// Settled returns how many objects still in the world are asleep. Evicted
// bodies are forgotten here.
func (c *SettleCounter) Settled() int {
	for body := range c.landed {
		if !c.world.HasBody(body) {
			delete(c.landed, body)
		}
	}
	for body := range c.asleep {
		if !c.world.HasBody(body) {
			delete(c.asleep, body)
		}
	}

	return len(c.asleep)
}
