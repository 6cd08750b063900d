package scene

import (
	"fmt"

	"github.com/akmonengine/duckpond"
	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/config"
	"github.com/akmonengine/duckpond/internal/logging"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// SceneContext holds every piece of scene state. Components receive it, or
// the parts they need, explicitly.
type SceneContext struct {
	Config    config.Config
	World     *duckpond.World
	Materials *actor.MaterialTable
	Surfaces  *SurfaceRegistry
	Graph     *Graph
	Camera    *Camera
	Viewport  *Viewport
	Pool      *ObjectPool
	Resolver  *PlacementResolver
	Sync      *FrameSynchronizer
	Settle    *SettleCounter
	Ground    *actor.RigidBody
	Logger    *zap.Logger

	// Actor is set once the actor node has arrived
	Actor *ScriptedActor
}

// NewMaterialTable declares the configured materials and their contacts
func NewMaterialTable(cfg config.MaterialsConfig) (*actor.MaterialTable, error) {
	table := actor.NewMaterialTable()
	for _, m := range cfg.Declared {
		table.Declare(m.Name, m.Density)
	}

	for _, c := range cfg.Contacts {
		if err := table.SetContact(c.A, c.B, c.Friction, c.Restitution); err != nil {
			return nil, fmt.Errorf("contact %s/%s: %w", c.A, c.B, err)
		}
	}

	if cfg.Default != nil {
		if err := table.SetDefault(cfg.Default.Friction, cfg.Default.Restitution); err != nil {
			return nil, fmt.Errorf("default contact: %w", err)
		}
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}

// NewSceneContext assembles the world, the ground plane and the placement
// pipeline from cfg. Assets are not needed yet.
func NewSceneContext(cfg config.Config, logger *zap.Logger) (*SceneContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)

	materials, err := NewMaterialTable(cfg.Materials)
	if err != nil {
		return nil, err
	}

	world, err := duckpond.NewWorld(cfg.Gravity.Vec(), materials)
	if err != nil {
		return nil, err
	}
	world.Iterations = cfg.SolverIterations

	groundMaterial, err := materials.Get(cfg.Materials.Ground)
	if err != nil {
		return nil, fmt.Errorf("ground material: %w", err)
	}
	ground := actor.NewRigidBody(
		actor.NewTransformAt(mgl64.Vec3{0, cfg.GroundHeight, 0}, mgl64.QuatIdent()),
		&actor.Plane{Normal: up},
		groundMaterial,
		0,
	)
	if err := world.AddBody(ground); err != nil {
		return nil, err
	}

	objectMaterial, err := materials.Get(cfg.Materials.Object)
	if err != nil {
		return nil, fmt.Errorf("object material: %w", err)
	}

	surfaces, err := SurfaceRegistryFromConfig(cfg.Surfaces)
	if err != nil {
		return nil, err
	}

	camera := CameraFromConfig(cfg.Camera)
	viewport := ViewportFromConfig(cfg.Viewport)
	graph := NewGraph()
	pool := NewObjectPool(cfg.Capacity, SpawnSettingsFromConfig(cfg), objectMaterial, world, graph, logger.Named("pool"))

	ctx := &SceneContext{
		Config:    cfg,
		World:     world,
		Materials: materials,
		Surfaces:  surfaces,
		Graph:     graph,
		Camera:    &camera,
		Viewport:  &viewport,
		Pool:      pool,
		Resolver: &PlacementResolver{
			Camera:    &camera,
			Viewport:  &viewport,
			Graph:     graph,
			Surfaces:  surfaces,
			Threshold: cfg.PlacementTapThreshold,
		},
		Sync:   &FrameSynchronizer{Pool: pool},
		Settle: NewSettleCounter(world, ground, logger.Named("physics")),
		Ground: ground,
		Logger: logger,
	}

	return ctx, nil
}
