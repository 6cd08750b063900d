package scene

import (
	"errors"
	"fmt"

	"github.com/akmonengine/duckpond/asset"
	"go.uber.org/zap"
)

// Scene gates placement on asset readiness. Until the future resolves,
// releases are answered with ErrNotReady.
type Scene struct {
	*SceneContext

	future   *asset.Future
	template *Template
	ready    bool

	// open presses, by pointer source
	presses map[string]PointerEvent
}

func NewScene(ctx *SceneContext, future *asset.Future) *Scene {
	return &Scene{SceneContext: ctx, future: future, presses: make(map[string]PointerEvent)}
}

func (s *Scene) Ready() bool {
	return s.ready
}

// Template is nil until the scene is ready
func (s *Scene) Template() *Template {
	return s.template
}

// Poll installs the assets once the future has resolved. Loader errors and
// degenerate template or actor geometry are returned and are fatal.
func (s *Scene) Poll() error {
	if s.ready || !s.future.Ready() {
		return nil
	}

	graph, err := s.future.Result()
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}

	templateNode, err := graph.Find(s.Config.Assets.TemplateNode)
	if err != nil {
		return fmt.Errorf("template: %w", err)
	}
	template, err := TemplateFromNode(templateNode)
	if err != nil {
		return err
	}

	actorNode, err := graph.Find(s.Config.Assets.ActorNode)
	if err != nil {
		return fmt.Errorf("actor: %w", err)
	}
	actorMaterial, err := s.Materials.Get(s.Config.Materials.ScriptedActor)
	if err != nil {
		return fmt.Errorf("actor material: %w", err)
	}
	scripted, err := NewScriptedActor(actorNode, PathFromConfig(s.Config.Actor), actorMaterial)
	if err != nil {
		return err
	}
	if err := s.World.AddBody(scripted.Body); err != nil {
		return fmt.Errorf("actor body: %w", err)
	}

	graph.Walk(func(n *asset.Node) bool {
		if n.Tag == "" || n == templateNode || n == actorNode {
			return true
		}
		s.Graph.Add(&RenderProxy{
			ID:       n.Name,
			Name:     n.Name,
			Tag:      n.Tag,
			Position: n.WorldPosition(),
			Bounds:   n.Bounds,
		})
		return true
	})
	s.Graph.Add(scripted.Proxy)

	s.template = template
	s.Actor = scripted
	s.ready = true

	s.Logger.Info("scene ready",
		zap.String("template", template.Name),
		zap.String("actor", actorNode.Name),
		zap.Int("proxies", s.Graph.Len()),
	)

	return nil
}

// Pointer feeds one pointer sample. A release closes the gesture opened by
// the last press of the same source and spawns on success; a release
// without a press counts as a tap at the release point.
func (s *Scene) Pointer(ev PointerEvent) (*PoolEntry, error) {
	switch ev.Phase {
	case PhasePress:
		s.presses[ev.Source] = ev
		return nil, nil
	case PhaseMove:
		return nil, nil
	case PhaseRelease:
	default:
		return nil, fmt.Errorf("pointer phase %d: %w", ev.Phase, errors.ErrUnsupported)
	}

	press, ok := s.presses[ev.Source]
	if !ok {
		press = ev
	}
	delete(s.presses, ev.Source)

	if !s.ready {
		return nil, ErrNotReady
	}

	hit, err := s.Resolver.Resolve(press, ev)
	if err != nil {
		if hit.IsObstacle {
			s.Logger.Debug("placement blocked", zap.String("source", ev.Source), zap.String("tag", hit.Tag))
		}
		return nil, err
	}

	return s.Pool.Spawn(hit, s.template)
}

// IsDiscarded reports the placement outcomes that are normal control flow
func IsDiscarded(err error) bool {
	return errors.Is(err, ErrNotReady) || errors.Is(err, ErrNoValidSurface) || errors.Is(err, ErrDragGesture)
}
