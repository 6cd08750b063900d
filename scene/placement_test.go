package scene

import (
	"testing"

	"github.com/akmonengine/duckpond/config"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTap(t *testing.T) {
	resolver := &PlacementResolver{Threshold: config.TapThreshold{DX: 0.04, DY: 0.03}}

	tests := []struct {
		name  string
		start mgl64.Vec2
		end   mgl64.Vec2
		tap   bool
	}{
		{"still", mgl64.Vec2{0, 0}, mgl64.Vec2{0, 0}, true},
		{"small move", mgl64.Vec2{0, 0}, mgl64.Vec2{0.03, 0.02}, true},
		{"negative small move", mgl64.Vec2{0.5, 0.5}, mgl64.Vec2{0.47, 0.48}, true},
		{"drag on x", mgl64.Vec2{0, 0}, mgl64.Vec2{0.05, 0.02}, false},
		{"drag on y", mgl64.Vec2{0, 0}, mgl64.Vec2{0, -0.031}, false},
		{"x threshold is exclusive", mgl64.Vec2{0, 0}, mgl64.Vec2{0.04, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tap, resolver.IsTap(tt.start, tt.end))
		})
	}
}

func TestSelectSurface(t *testing.T) {
	surfaces := NewSurfaceRegistry()
	surfaces.Register("water", RolePlaceableSurface)
	surfaces.Register("soil", RoleNonPlaceable)
	surfaces.Register("can", RoleObstacle)

	water := Intersection{Tag: "water", Point: mgl64.Vec3{1, 0, 2}, Distance: 1}
	soil := Intersection{Tag: "soil", Point: mgl64.Vec3{1, -0.2, 2}, Distance: 1.2}
	deepWater := Intersection{Tag: "water", Point: mgl64.Vec3{3, 0, 3}, Distance: 2}
	nearCan := Intersection{Tag: "can", Point: mgl64.Vec3{0.5, 0.05, 1}, Distance: 0.5}
	farCan := Intersection{Tag: "can", Point: mgl64.Vec3{4, 0.05, 4}, Distance: 3}
	unknown := Intersection{Tag: "reed", Distance: 0.2}

	tests := []struct {
		name     string
		hits     []Intersection
		point    mgl64.Vec3
		tag      string
		obstacle bool
		err      error
	}{
		{"no hits", nil, mgl64.Vec3{}, "", false, ErrNoValidSurface},
		{"water", []Intersection{water}, water.Point, "water", false, nil},
		{"first surface wins", []Intersection{unknown, water, deepWater}, water.Point, "water", false, nil},
		{"non placeable only", []Intersection{unknown, soil}, mgl64.Vec3{}, "", false, ErrNoValidSurface},
		{"obstacle in front", []Intersection{nearCan, water}, nearCan.Point, "can", true, ErrNoValidSurface},
		{"obstacle behind", []Intersection{water, soil, farCan}, farCan.Point, "can", true, ErrNoValidSurface},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, err := SelectSurface(tt.hits, surfaces)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.point, hit.WorldPoint)
			assert.Equal(t, tt.tag, hit.Tag)
			assert.Equal(t, tt.obstacle, hit.IsObstacle)
		})
	}
}

func TestPlacementResolver_Resolve(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.Graph.Add(&RenderProxy{Tag: "water", Bounds: flatBounds(5)})
	resolver := ctx.Resolver

	t.Run("center tap hits the water at the origin", func(t *testing.T) {
		press, release := tap(640, 360)
		hit, err := resolver.Resolve(press, release)
		require.NoError(t, err)

		assert.Equal(t, "water", hit.Tag)
		assert.InDelta(t, 0, hit.WorldPoint.X(), 1e-6)
		assert.InDelta(t, 0, hit.WorldPoint.Y(), 1e-6)
		assert.InDelta(t, 0, hit.WorldPoint.Z(), 1e-6)
	})

	t.Run("off center tap lands off center", func(t *testing.T) {
		press, release := tap(960, 360)
		hit, err := resolver.Resolve(press, release)
		require.NoError(t, err)

		assert.Greater(t, hit.WorldPoint.X(), 0.1)
		assert.InDelta(t, 0, hit.WorldPoint.Y(), 1e-6)
	})

	t.Run("drag", func(t *testing.T) {
		_, err := resolver.Resolve(
			PointerEvent{X: 640, Y: 360, Phase: PhasePress},
			PointerEvent{X: 640, Y: 400, Phase: PhaseRelease},
		)
		assert.ErrorIs(t, err, ErrDragGesture)
	})

	t.Run("event viewport overrides the scene viewport", func(t *testing.T) {
		small := &Viewport{Width: 200, Height: 100, PixelAspect: 1}
		hit, err := resolver.Resolve(
			PointerEvent{X: 100, Y: 50, Phase: PhasePress},
			PointerEvent{X: 100, Y: 50, Phase: PhaseRelease, Viewport: small},
		)
		require.NoError(t, err)
		assert.InDelta(t, 0, hit.WorldPoint.X(), 1e-6)
		assert.InDelta(t, 0, hit.WorldPoint.Z(), 1e-6)
	})
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "press", PhasePress.String())
	assert.Equal(t, "move", PhaseMove.String())
	assert.Equal(t, "release", PhaseRelease.String())
	assert.Equal(t, "unknown", Phase(9).String())

	for _, phase := range []Phase{PhasePress, PhaseMove, PhaseRelease} {
		parsed, err := ParsePhase(phase.String())
		require.NoError(t, err)
		assert.Equal(t, phase, parsed)
	}
	_, err := ParsePhase("hover")
	assert.Error(t, err)
}

func TestSurfaceRegistry(t *testing.T) {
	registry, err := SurfaceRegistryFromConfig(map[string]string{
		"water": config.RolePlaceableSurface,
		"can":   config.RoleObstacle,
	})
	require.NoError(t, err)

	assert.Equal(t, RolePlaceableSurface, registry.Classify("water"))
	assert.Equal(t, RoleObstacle, registry.Classify("can"))
	assert.Equal(t, RoleNonPlaceable, registry.Classify(""))
	assert.Equal(t, "obstacle", RoleObstacle.String())

	_, err = SurfaceRegistryFromConfig(map[string]string{"water": "floating"})
	assert.Error(t, err)
}
