package scene

import (
	"fmt"

	"github.com/akmonengine/duckpond/config"
)

// Role is what a tagged collider means to placement
type Role uint8

const (
	RoleNonPlaceable Role = iota
	RolePlaceableSurface
	RoleObstacle
)

func (r Role) String() string {
	switch r {
	case RolePlaceableSurface:
		return config.RolePlaceableSurface
	case RoleObstacle:
		return config.RoleObstacle
	default:
		return config.RoleNonPlaceable
	}
}

func ParseRole(s string) (Role, error) {
	switch s {
	case config.RoleNonPlaceable:
		return RoleNonPlaceable, nil
	case config.RolePlaceableSurface:
		return RolePlaceableSurface, nil
	case config.RoleObstacle:
		return RoleObstacle, nil
	default:
		return RoleNonPlaceable, fmt.Errorf("unknown surface role %q", s)
	}
}

// SurfaceRegistry maps scene tags to placement roles
type SurfaceRegistry struct {
	roles map[string]Role
}

func NewSurfaceRegistry() *SurfaceRegistry {
	return &SurfaceRegistry{roles: make(map[string]Role)}
}

// SurfaceRegistryFromConfig registers every tag -> role entry of the map
func SurfaceRegistryFromConfig(surfaces map[string]string) (*SurfaceRegistry, error) {
	registry := NewSurfaceRegistry()
	for tag, name := range surfaces {
		role, err := ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("surface %q: %w", tag, err)
		}
		registry.Register(tag, role)
	}

	return registry, nil
}

func (r *SurfaceRegistry) Register(tag string, role Role) {
	r.roles[tag] = role
}

// Classify returns RoleNonPlaceable for unknown tags
func (r *SurfaceRegistry) Classify(tag string) Role {
	return r.roles[tag]
}
