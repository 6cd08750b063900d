package epa

import (
	"math"
	"sync"

	"github.com/akmonengine/duckpond/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope, indexing into the vertex list.
type Face struct {
	Indices  [3]int
	Normal   mgl64.Vec3 // points away from the origin
	Distance float64    // distance from the origin to the face plane
}

// Edge is a directed edge between two vertex indices
type Edge struct {
	A, B int
}

// Polytope is the convex hull EPA grows toward the surface of the
// Minkowski difference.
type Polytope struct {
	vertices []gjk.Vertex
	faces    []Face
	edges    []Edge
}

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &Polytope{
			vertices: make([]gjk.Vertex, 0, polytopeInitialCapacity),
			faces:    make([]Face, 0, polytopeInitialCapacity),
			edges:    make([]Edge, 0, polytopeInitialCapacity),
		}
	},
}

func (p *Polytope) Reset() {
	p.vertices = p.vertices[:0]
	p.faces = p.faces[:0]
	p.edges = p.edges[:0]
}

// BuildFromSimplex seeds the polytope with the four GJK tetrahedron faces.
func (p *Polytope) BuildFromSimplex(simplex *gjk.Simplex) {
	for i := 0; i < 4; i++ {
		p.vertices = append(p.vertices, simplex.Points[i])
	}

	p.addFace(0, 1, 2)
	p.addFace(0, 3, 1)
	p.addFace(0, 2, 3)
	p.addFace(1, 3, 2)
}

// addFace appends the triangle (a, b, c), flipping its winding so the normal
// faces away from the origin.
func (p *Polytope) addFace(a, b, c int) {
	pa := p.vertices[a].Point
	pb := p.vertices[b].Point
	pc := p.vertices[c].Point

	normal := pb.Sub(pa).Cross(pc.Sub(pa))
	length := normal.Len()
	if length < 1e-12 {
		// Zero-area triangle: keep it with a far distance so it is never chosen
		p.faces = append(p.faces, Face{
			Indices:  [3]int{a, b, c},
			Normal:   mgl64.Vec3{0, 1, 0},
			Distance: math.Inf(1),
		})
		return
	}
	normal = normal.Mul(1 / length)

	distance := normal.Dot(pa)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
		b, c = c, b
	}

	p.faces = append(p.faces, Face{
		Indices:  [3]int{a, b, c},
		Normal:   normal,
		Distance: distance,
	})
}

// ClosestFace returns the index of the face nearest to the origin
func (p *Polytope) ClosestFace() int {
	closest := 0
	for i := 1; i < len(p.faces); i++ {
		if p.faces[i].Distance < p.faces[closest].Distance {
			closest = i
		}
	}

	return closest
}

// Expand adds the support vertex, removes every face that can see it, and
// stitches the horizon edges to the new vertex.
func (p *Polytope) Expand(support gjk.Vertex) {
	p.vertices = append(p.vertices, support)
	newIndex := len(p.vertices) - 1
	p.edges = p.edges[:0]

	kept := p.faces[:0]
	for _, face := range p.faces {
		anchor := p.vertices[face.Indices[0]].Point
		if !math.IsInf(face.Distance, 1) && face.Normal.Dot(support.Point.Sub(anchor)) > 0 {
			p.addHorizonEdge(face.Indices[0], face.Indices[1])
			p.addHorizonEdge(face.Indices[1], face.Indices[2])
			p.addHorizonEdge(face.Indices[2], face.Indices[0])
			continue
		}
		kept = append(kept, face)
	}
	p.faces = kept

	for _, edge := range p.edges {
		p.addFace(edge.A, edge.B, newIndex)
	}
}

// addHorizonEdge keeps edges seen once: an edge shared by two removed faces
// appears in both directions and cancels out.
func (p *Polytope) addHorizonEdge(a, b int) {
	for i, edge := range p.edges {
		if edge.A == b && edge.B == a {
			p.edges[i] = p.edges[len(p.edges)-1]
			p.edges = p.edges[:len(p.edges)-1]
			return
		}
	}

	p.edges = append(p.edges, Edge{A: a, B: b})
}

// Witness projects the origin onto the face and returns the matching points
// on body A and body B using barycentric coordinates.
func (p *Polytope) Witness(face Face) (mgl64.Vec3, mgl64.Vec3) {
	a := p.vertices[face.Indices[0]]
	b := p.vertices[face.Indices[1]]
	c := p.vertices[face.Indices[2]]

	u, v, w := barycentric(face.Normal.Mul(face.Distance), a.Point, b.Point, c.Point)

	pointA := a.SupportA.Mul(u).Add(b.SupportA.Mul(v)).Add(c.SupportA.Mul(w))
	pointB := a.SupportB.Mul(u).Add(b.SupportB.Mul(v)).Add(c.SupportB.Mul(w))

	return pointA, pointB
}

func barycentric(p, a, b, c mgl64.Vec3) (float64, float64, float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-14 {
		return 1, 0, 0
	}

	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom

	return 1 - v - w, v, w
}
