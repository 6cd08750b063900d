package scene

import (
	"math"
	"testing"

	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/config"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatBounds(half float64) actor.AABB {
	return actor.AABB{Min: mgl64.Vec3{-half, 0, -half}, Max: mgl64.Vec3{half, 0, half}}
}

func cubeBounds(half float64) actor.AABB {
	return actor.AABB{Min: mgl64.Vec3{-half, -half, -half}, Max: mgl64.Vec3{half, half, half}}
}

func TestGraph_AddRemove(t *testing.T) {
	g := NewGraph()
	a := &RenderProxy{ID: "a"}
	b := &RenderProxy{ID: "b"}

	g.Add(a)
	g.Add(b)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, mgl64.QuatIdent(), a.Rotation)

	assert.True(t, g.Remove(a))
	assert.True(t, a.Disposed())
	assert.False(t, b.Disposed())
	assert.False(t, g.Remove(a))
	assert.Equal(t, []*RenderProxy{b}, g.Proxies())

	g.Add(a)
	assert.False(t, a.Disposed())
}

func TestGraph_Raycast(t *testing.T) {
	g := NewGraph()
	far := &RenderProxy{ID: "far", Tag: "far", Position: mgl64.Vec3{0, 0, -5}, Bounds: cubeBounds(0.5)}
	near := &RenderProxy{ID: "near", Tag: "near", Position: mgl64.Vec3{0, 0, -2}, Bounds: cubeBounds(0.5)}
	aside := &RenderProxy{ID: "aside", Tag: "aside", Position: mgl64.Vec3{3, 0, -2}, Bounds: cubeBounds(0.5)}
	g.Add(far)
	g.Add(near)
	g.Add(aside)

	hits := g.Raycast(Ray{Origin: mgl64.Vec3{}, Direction: mgl64.Vec3{0, 0, -1}})
	require.Len(t, hits, 2)
	assert.Same(t, near, hits[0].Proxy)
	assert.InDelta(t, 1.5, hits[0].Distance, 1e-9)
	assert.InDelta(t, -1.5, hits[0].Point.Z(), 1e-9)
	assert.Same(t, far, hits[1].Proxy)
	assert.InDelta(t, 4.5, hits[1].Distance, 1e-9)
}

func TestGraph_RaycastRotated(t *testing.T) {
	g := NewGraph()
	// A thin slab rotated a quarter turn about Y faces the ray
	slab := &RenderProxy{
		Tag:      "slab",
		Position: mgl64.Vec3{0, 0, -2},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}),
		Bounds:   actor.AABB{Min: mgl64.Vec3{-0.1, -1, -1}, Max: mgl64.Vec3{0.1, 1, 1}},
	}
	g.Add(slab)

	hits := g.Raycast(Ray{Origin: mgl64.Vec3{}, Direction: mgl64.Vec3{0, 0, -1}})
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.9, hits[0].Distance, 1e-9)

	hits = g.Raycast(Ray{Origin: mgl64.Vec3{0.5, 0, 0}, Direction: mgl64.Vec3{0, 0, -1}})
	assert.Len(t, hits, 1)
	hits = g.Raycast(Ray{Origin: mgl64.Vec3{1.5, 0, 0}, Direction: mgl64.Vec3{0, 0, -1}})
	assert.Empty(t, hits)
}

func TestGraph_Transforms(t *testing.T) {
	g := NewGraph()
	g.Add(&RenderProxy{ID: "a", Tag: "can", Position: mgl64.Vec3{1, 2, 3}})

	transforms := g.Transforms()
	require.Len(t, transforms, 1)
	assert.Equal(t, "a", transforms[0].ID)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, transforms[0].Position)
	assert.Equal(t, [4]float64{0, 0, 0, 1}, transforms[0].Rotation)
}

func TestRenderProxy_Matrix(t *testing.T) {
	p := &RenderProxy{Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()}

	point := p.Matrix().Mul4x1(mgl64.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 2, point.X(), 1e-12)
	assert.InDelta(t, 2, point.Y(), 1e-12)
	assert.InDelta(t, 3, point.Z(), 1e-12)
}

// ============================================================================
// Camera / Viewport
// ============================================================================

func TestViewport_ToNDC(t *testing.T) {
	v := Viewport{Width: 1280, Height: 720, PixelAspect: 1}

	tests := []struct {
		name string
		x, y float64
		ndc  mgl64.Vec2
	}{
		{"top left", 0, 0, mgl64.Vec2{-1, 1}},
		{"center", 640, 360, mgl64.Vec2{0, 0}},
		{"bottom right", 1280, 720, mgl64.Vec2{1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ndc := v.ToNDC(tt.x, tt.y)
			assert.InDelta(t, tt.ndc.X(), ndc.X(), 1e-12)
			assert.InDelta(t, tt.ndc.Y(), ndc.Y(), 1e-12)
		})
	}

	assert.InDelta(t, 16.0/9.0, v.Aspect(), 1e-12)
	assert.InDelta(t, 8.0/9.0, Viewport{Width: 1280, Height: 720, PixelAspect: 0.5}.Aspect(), 1e-12)
	assert.False(t, Viewport{}.Valid())
}

func TestCamera_Ray(t *testing.T) {
	camera := CameraFromConfig(config.Default().Camera)

	ray := camera.Ray(mgl64.Vec2{0, 0}, 16.0/9.0)
	assert.Equal(t, camera.Position, ray.Origin)

	expected := camera.Target.Sub(camera.Position).Normalize()
	assert.InDelta(t, expected.X(), ray.Direction.X(), 1e-9)
	assert.InDelta(t, expected.Y(), ray.Direction.Y(), 1e-9)
	assert.InDelta(t, expected.Z(), ray.Direction.Z(), 1e-9)
	assert.InDelta(t, 1, ray.Direction.Len(), 1e-12)

	// Right of the screen is +x, top is up
	right := camera.Ray(mgl64.Vec2{0.5, 0}, 16.0/9.0)
	assert.Greater(t, right.Direction.X(), 0.0)
	top := camera.Ray(mgl64.Vec2{0, 0.5}, 16.0/9.0)
	assert.Greater(t, top.Direction.Y(), ray.Direction.Y())
}

func TestCamera_Project(t *testing.T) {
	camera := CameraFromConfig(config.Default().Camera)

	ndc, ok := camera.Project(mgl64.Vec3{}, 16.0/9.0)
	require.True(t, ok)
	assert.InDelta(t, 0, ndc.X(), 1e-9)
	assert.InDelta(t, 0, ndc.Y(), 1e-9)

	// Round trip through Ray
	point := mgl64.Vec3{0.2, 0, -0.3}
	ndc, ok = camera.Project(point, 16.0/9.0)
	require.True(t, ok)
	ray := camera.Ray(mgl64.Vec2{ndc.X(), ndc.Y()}, 16.0/9.0)
	toPoint := point.Sub(camera.Position).Normalize()
	assert.InDelta(t, 1, ray.Direction.Dot(toPoint), 1e-9)

	_, ok = camera.Project(mgl64.Vec3{0, 0.4, 5}, 16.0/9.0)
	assert.False(t, ok)
}
