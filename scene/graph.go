package scene

import (
	"sort"

	"github.com/akmonengine/duckpond/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// RenderProxy is a drawable instance. The scene graph owns it; pool entries
// and the scripted actor only point to it.
type RenderProxy struct {
	ID       string
	Name     string
	Tag      string
	Position mgl64.Vec3
	Rotation mgl64.Quat
	// Bounds are local to the proxy and used for picking
	Bounds actor.AABB

	disposed bool
}

// Disposed reports whether the proxy was removed from its graph
func (p *RenderProxy) Disposed() bool {
	return p.disposed
}

// Matrix is the world matrix of the proxy
func (p *RenderProxy) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z()).Mul4(p.Rotation.Mat4())
}

// Intersection is one ray hit against a proxy
type Intersection struct {
	Proxy    *RenderProxy
	Tag      string
	Point    mgl64.Vec3
	Distance float64
}

// Graph is the render scene: the ordered set of live proxies
type Graph struct {
	proxies []*RenderProxy
}

func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) Add(proxy *RenderProxy) {
	if proxy.Rotation == (mgl64.Quat{}) {
		proxy.Rotation = mgl64.QuatIdent()
	}
	proxy.disposed = false
	g.proxies = append(g.proxies, proxy)
}

// Remove detaches the proxy and releases it. It reports false when the
// proxy was not in the graph.
func (g *Graph) Remove(proxy *RenderProxy) bool {
	for i, p := range g.proxies {
		if p == proxy {
			g.proxies = append(g.proxies[:i], g.proxies[i+1:]...)
			proxy.disposed = true
			return true
		}
	}

	return false
}

func (g *Graph) Len() int {
	return len(g.proxies)
}

// Proxies returns the live proxies in insertion order
func (g *Graph) Proxies() []*RenderProxy {
	return append([]*RenderProxy(nil), g.proxies...)
}

// Raycast returns every proxy crossed by the ray, nearest first
func (g *Graph) Raycast(ray Ray) []Intersection {
	var hits []Intersection

	for _, proxy := range g.proxies {
		rotation := proxy.Rotation
		if rotation == (mgl64.Quat{}) {
			rotation = mgl64.QuatIdent()
		}
		inverse := rotation.Inverse()

		origin := inverse.Rotate(ray.Origin.Sub(proxy.Position))
		direction := inverse.Rotate(ray.Direction)

		distance, ok := proxy.Bounds.IntersectRay(origin, direction)
		if !ok {
			continue
		}

		hits = append(hits, Intersection{
			Proxy:    proxy,
			Tag:      proxy.Tag,
			Point:    ray.At(distance),
			Distance: distance,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	return hits
}

// ProxyTransform is the per-frame view of one proxy handed to renderers
type ProxyTransform struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Tag      string     `json:"tag"`
	Position mgl64.Vec3 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // x, y, z, w
	Bounds   actor.AABB `json:"bounds"`
}

// Transforms lists the live proxies in insertion order
func (g *Graph) Transforms() []ProxyTransform {
	transforms := make([]ProxyTransform, 0, len(g.proxies))
	for _, p := range g.proxies {
		transforms = append(transforms, ProxyTransform{
			ID:       p.ID,
			Name:     p.Name,
			Tag:      p.Tag,
			Position: p.Position,
			Rotation: [4]float64{p.Rotation.X(), p.Rotation.Y(), p.Rotation.Z(), p.Rotation.W},
			Bounds:   p.Bounds,
		})
	}

	return transforms
}

// Proxy rebuilds a detached proxy, for renderers that pick against a frame
func (t ProxyTransform) Proxy() *RenderProxy {
	return &RenderProxy{
		ID:       t.ID,
		Name:     t.Name,
		Tag:      t.Tag,
		Position: t.Position,
		Rotation: mgl64.Quat{W: t.Rotation[3], V: mgl64.Vec3{t.Rotation[0], t.Rotation[1], t.Rotation[2]}},
		Bounds:   t.Bounds,
	}
}
