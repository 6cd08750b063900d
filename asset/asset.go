// Package asset loads the pond scene graph: named nodes with local bounds,
// delivered asynchronously through a Future.
package asset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/akmonengine/duckpond/actor"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrNodeNotFound = errors.New("node not found")

// Node is a named scene-graph node. Position is relative to the parent and
// Bounds are expressed around the node origin.
type Node struct {
	Name     string     `yaml:"name"`
	Tag      string     `yaml:"tag,omitempty"`
	Position mgl64.Vec3 `yaml:"position"`
	Bounds   actor.AABB `yaml:"bounds"`
	Children []*Node    `yaml:"children,omitempty"`

	world mgl64.Vec3
}

// WorldPosition is the position accumulated through the parents
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.world
}

type Graph struct {
	Nodes []*Node `yaml:"nodes"`
}

// Find searches the whole graph, depth first, for a node by name
func (g *Graph) Find(name string) (*Node, error) {
	var found *Node
	g.Walk(func(n *Node) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})

	if found == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrNodeNotFound)
	}

	return found, nil
}

// Walk visits nodes depth first until fn returns false
func (g *Graph) Walk(fn func(n *Node) bool) {
	var walk func(nodes []*Node) bool
	walk = func(nodes []*Node) bool {
		for _, n := range nodes {
			if !fn(n) || !walk(n.Children) {
				return false
			}
		}
		return true
	}
	walk(g.Nodes)
}

// resolve computes world positions from the parent chain
func (g *Graph) resolve() {
	var resolve func(nodes []*Node, parent mgl64.Vec3)
	resolve = func(nodes []*Node, parent mgl64.Vec3) {
		for _, n := range nodes {
			n.world = parent.Add(n.Position)
			resolve(n.Children, n.world)
		}
	}
	resolve(g.Nodes, mgl64.Vec3{})
}

func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode scene graph: %w", err)
	}
	g.resolve()

	return &g, nil
}

func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Builtin is the default pond: a water sheet over the soil, a can to spawn
// and a duck swimming on its path.
func Builtin() *Graph {
	g := &Graph{
		Nodes: []*Node{
			{
				Name: "Scene",
				Children: []*Node{
					{
						Name:   "Water",
						Tag:    "water",
						Bounds: actor.AABB{Min: mgl64.Vec3{-5, 0, -5}, Max: mgl64.Vec3{5, 0, 5}},
					},
					{
						Name:     "Soil",
						Tag:      "soil",
						Position: mgl64.Vec3{0, -0.2, 0},
						Bounds:   actor.AABB{Min: mgl64.Vec3{-5, 0, -5}, Max: mgl64.Vec3{5, 0, 5}},
					},
					{
						Name:     "can",
						Tag:      "can",
						Position: mgl64.Vec3{0, -10, 0},
						Bounds:   actor.AABB{Min: mgl64.Vec3{-0.033, -0.06, -0.033}, Max: mgl64.Vec3{0.033, 0.06, 0.033}},
					},
					{
						Name: "BezierCircle",
						Children: []*Node{
							{
								Name:   "duck001",
								Tag:    "duck",
								Bounds: actor.AABB{Min: mgl64.Vec3{-0.05, -0.045, -0.06}, Max: mgl64.Vec3{0.05, 0.045, 0.06}},
							},
						},
					},
				},
			},
		},
	}
	g.resolve()

	return g
}
