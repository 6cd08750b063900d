package scene

import (
	"fmt"

	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/asset"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Template is the prototype spawned objects are instanced from
type Template struct {
	Name   string
	Tag    string
	Bounds actor.AABB
}

// TemplateFromNode fails with ErrDegenerateGeometry on flat bounds
func TemplateFromNode(node *asset.Node) (*Template, error) {
	if node.Bounds.Volume() <= 0 {
		return nil, fmt.Errorf("node %q bounds %v: %w", node.Name, node.Bounds, ErrDegenerateGeometry)
	}

	return &Template{Name: node.Name, Tag: node.Tag, Bounds: node.Bounds}, nil
}

// Instance returns a new proxy owned by whoever adds it to a graph
func (t *Template) Instance() *RenderProxy {
	return &RenderProxy{
		ID:       uuid.NewString(),
		Name:     t.Name,
		Tag:      t.Tag,
		Rotation: mgl64.QuatIdent(),
		Bounds:   t.Bounds,
	}
}
