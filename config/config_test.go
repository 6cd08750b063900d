package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Capacity)
	assert.InDelta(t, 1.0/60.0, cfg.FixedTimestep, 1e-15)
	assert.Equal(t, 10, cfg.MaxSubSteps)
	assert.Equal(t, 10, cfg.SolverIterations)
	assert.Equal(t, mgl64.Vec3{0, -9.82, 0}, cfg.Gravity.Vec())
	assert.Equal(t, TapThreshold{DX: 0.04, DY: 0.03}, cfg.PlacementTapThreshold)
	assert.Equal(t, "can", cfg.Assets.TemplateNode)
	assert.Equal(t, "duck001", cfg.Assets.ActorNode)
	assert.Equal(t, RoleObstacle, cfg.Surfaces["can"])
	assert.Equal(t, RolePlaceableSurface, cfg.Surfaces["water"])
}

func TestDecode_Overlay(t *testing.T) {
	doc := `
capacity: 5
drop_height: 1.5
camera:
  fov: 60
surfaces:
  lily: obstacle
`
	cfg, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, 1.5, cfg.DropHeight)
	assert.Equal(t, 60.0, cfg.Camera.FOV)
	// Untouched keys keep their defaults
	assert.Equal(t, 0.1, cfg.Camera.Near)
	assert.Equal(t, 10, cfg.MaxSubSteps)
	assert.Equal(t, RoleObstacle, cfg.Surfaces["lily"])
	assert.Equal(t, RolePlaceableSurface, cfg.Surfaces["water"])
}

func TestDecode_Empty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default().Capacity, cfg.Capacity)
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("capacityy: 3\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }},
		{"negative timestep", func(c *Config) { c.FixedTimestep = -1 }},
		{"zero sub-steps", func(c *Config) { c.MaxSubSteps = 0 }},
		{"zero iterations", func(c *Config) { c.SolverIterations = 0 }},
		{"restitution above one", func(c *Config) { c.Materials.Contacts[0].Restitution = 1.2 }},
		{"negative friction", func(c *Config) { c.Materials.Contacts[0].Friction = -0.1 }},
		{"negative default friction", func(c *Config) { c.Materials.Default.Friction = -1 }},
		{"flat viewport", func(c *Config) { c.Viewport.Height = 0 }},
		{"bad camera", func(c *Config) { c.Camera.Far = c.Camera.Near }},
		{"unknown role", func(c *Config) { c.Surfaces["mud"] = "sticky" }},
		{"no template", func(c *Config) { c.Assets.TemplateNode = "" }},
		{"zero tap threshold", func(c *Config) { c.PlacementTapThreshold.DX = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pond.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity: 7\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Capacity)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
