package scene

import (
	"fmt"

	"github.com/akmonengine/duckpond"
	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/config"
	"github.com/akmonengine/duckpond/internal/logging"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PoolEntry pairs a spawned body with its proxy. Seq is the 1-based spawn
// order.
type PoolEntry struct {
	ID    uuid.UUID
	Seq   uint64
	Proxy *RenderProxy
	Body  *actor.RigidBody
}

type SpawnSettings struct {
	DropHeight      float64
	Mass            float64
	SleepSpeedLimit float64
	SleepTimeLimit  float64
	Segments        int
}

func SpawnSettingsFromConfig(cfg config.Config) SpawnSettings {
	return SpawnSettings{
		DropHeight:      cfg.DropHeight,
		Mass:            cfg.SpawnMass,
		SleepSpeedLimit: cfg.SleepSpeedLimit,
		SleepTimeLimit:  cfg.SleepTimeLimit,
		Segments:        cfg.CylinderSegments,
	}
}

// ObjectPool is the capacity-bounded FIFO of spawned objects. Entries are
// kept in spawn order, the head being the oldest.
type ObjectPool struct {
	Capacity int
	Settings SpawnSettings
	Material *actor.Material

	world   *duckpond.World
	graph   *Graph
	logger  *zap.Logger
	entries []*PoolEntry
	seq     uint64
}

func NewObjectPool(capacity int, settings SpawnSettings, material *actor.Material, world *duckpond.World, graph *Graph, logger *zap.Logger) *ObjectPool {
	return &ObjectPool{
		Capacity: capacity,
		Settings: settings,
		Material: material,
		world:    world,
		graph:    graph,
		logger:   logging.OrNop(logger),
	}
}

// Spawn drops a new object above the hit point. The body and proxy are both
// registered or neither is. Eviction runs before Spawn returns.
func (p *ObjectPool) Spawn(hit SurfaceHit, template *Template) (*PoolEntry, error) {
	if template == nil {
		return nil, ErrNotReady
	}
	if hit.IsObstacle {
		return nil, fmt.Errorf("%q is an obstacle: %w", hit.Tag, ErrNoValidSurface)
	}

	shape, err := actor.CylinderFromBounds(template.Bounds, p.Settings.Segments)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w: %w", template.Name, ErrDegenerateGeometry, err)
	}

	position := mgl64.Vec3{hit.WorldPoint.X(), p.Settings.DropHeight, hit.WorldPoint.Z()}
	body := actor.NewRigidBody(actor.NewTransformAt(position, mgl64.QuatIdent()), shape, p.Material, p.Settings.Mass)
	if p.Settings.SleepSpeedLimit > 0 {
		body.SleepSpeedLimit = p.Settings.SleepSpeedLimit
	}
	if p.Settings.SleepTimeLimit > 0 {
		body.SleepTimeLimit = p.Settings.SleepTimeLimit
	}

	if err := p.world.AddBody(body); err != nil {
		return nil, err
	}

	proxy := template.Instance()
	proxy.Position = position
	p.graph.Add(proxy)

	p.seq++
	entry := &PoolEntry{
		ID:    uuid.New(),
		Seq:   p.seq,
		Proxy: proxy,
		Body:  body,
	}
	p.entries = append(p.entries, entry)

	p.logger.Debug("spawned object",
		zap.Uint64("seq", entry.Seq),
		zap.String("tag", hit.Tag),
		zap.Float64("x", position.X()),
		zap.Float64("z", position.Z()),
	)

	p.EvictIfOverCapacity()

	return entry, nil
}

// EvictIfOverCapacity releases the oldest entries until the pool fits its
// capacity and returns them in eviction order.
func (p *ObjectPool) EvictIfOverCapacity() []*PoolEntry {
	var evicted []*PoolEntry

	for len(p.entries) > p.Capacity && len(p.entries) > 0 {
		head := p.entries[0]
		p.entries[0] = nil
		p.entries = p.entries[1:]

		p.graph.Remove(head.Proxy)
		p.world.RemoveBody(head.Body)
		evicted = append(evicted, head)

		p.logger.Debug("evicted object", zap.Uint64("seq", head.Seq), zap.Int("size", len(p.entries)))
	}

	return evicted
}

// SyncAll copies every body pose onto its proxy
func (p *ObjectPool) SyncAll() {
	for _, entry := range p.entries {
		entry.Proxy.Position = entry.Body.Transform.Position
		entry.Proxy.Rotation = entry.Body.Transform.Rotation
	}
}

func (p *ObjectPool) Len() int {
	return len(p.entries)
}

// Entries returns the live entries, oldest first
func (p *ObjectPool) Entries() []*PoolEntry {
	return append([]*PoolEntry(nil), p.entries...)
}
