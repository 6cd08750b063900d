// Package config holds the tunables of the pond scene and loads them from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Surface roles as written in configuration files
const (
	RoleNonPlaceable     = "non-placeable"
	RolePlaceableSurface = "placeable-surface"
	RoleObstacle         = "obstacle"
)

// Vec3 is a YAML sequence of three numbers
type Vec3 [3]float64

func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

type Config struct {
	Capacity         int     `yaml:"capacity"`
	FixedTimestep    float64 `yaml:"fixed_timestep"`
	MaxSubSteps      int     `yaml:"max_sub_steps"`
	SolverIterations int     `yaml:"solver_iterations"`
	Gravity          Vec3    `yaml:"gravity"`

	// DropHeight is the absolute height spawned objects are released from
	DropHeight       float64 `yaml:"drop_height"`
	SleepSpeedLimit  float64 `yaml:"sleep_speed_limit"`
	SleepTimeLimit   float64 `yaml:"sleep_time_limit"`
	SpawnMass        float64 `yaml:"spawn_mass"`
	CylinderSegments int     `yaml:"cylinder_segments"`
	GroundHeight     float64 `yaml:"ground_height"`

	PlacementTapThreshold TapThreshold `yaml:"placement_tap_threshold"`

	Actor     ActorConfig       `yaml:"actor"`
	Camera    CameraConfig      `yaml:"camera"`
	Viewport  ViewportConfig    `yaml:"viewport"`
	Materials MaterialsConfig   `yaml:"materials"`
	Surfaces  map[string]string `yaml:"surfaces"`
	Assets    AssetsConfig      `yaml:"assets"`
}

// TapThreshold bounds the NDC movement of a gesture still counted as a tap
type TapThreshold struct {
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`
}

type ActorConfig struct {
	AngularRate  float64 `yaml:"angular_rate"`
	Radius       float64 `yaml:"radius"`
	BobAmplitude float64 `yaml:"bob_amplitude"`
	BobFrequency float64 `yaml:"bob_frequency"`
	YOffset      float64 `yaml:"y_offset"`
}

type CameraConfig struct {
	FOV      float64 `yaml:"fov"` // vertical, degrees
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
	Position Vec3    `yaml:"position"`
	Target   Vec3    `yaml:"target"`
}

type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// PixelAspect is the width/height ratio of one pixel, 0.5 for terminal cells
	PixelAspect float64 `yaml:"pixel_aspect"`
}

type MaterialConfig struct {
	Name    string  `yaml:"name"`
	Density float64 `yaml:"density"`
}

type ContactConfig struct {
	A           string  `yaml:"a"`
	B           string  `yaml:"b"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

type ContactProperties struct {
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

type MaterialsConfig struct {
	// Names of the materials given to spawned objects, the actor and the ground
	Object        string `yaml:"object"`
	ScriptedActor string `yaml:"scripted_actor"`
	Ground        string `yaml:"ground"`

	Declared []MaterialConfig   `yaml:"declared"`
	Contacts []ContactConfig    `yaml:"contacts"`
	Default  *ContactProperties `yaml:"default"`
}

type AssetsConfig struct {
	// Path of a YAML scene graph; empty uses the built-in pond
	Path         string `yaml:"path"`
	TemplateNode string `yaml:"template_node"`
	ActorNode    string `yaml:"actor_node"`
}

func Default() Config {
	return Config{
		Capacity:         50,
		FixedTimestep:    1.0 / 60.0,
		MaxSubSteps:      10,
		SolverIterations: 10,
		Gravity:          Vec3{0, -9.82, 0},
		DropHeight:       0.5,
		SleepSpeedLimit:  1.0,
		SleepTimeLimit:   1.0,
		SpawnMass:        0.04,
		CylinderSegments: 12,
		GroundHeight:     -0.075,
		PlacementTapThreshold: TapThreshold{
			DX: 0.04,
			DY: 0.03,
		},
		Actor: ActorConfig{
			AngularRate:  0.3,
			Radius:       0.5,
			BobAmplitude: 0.005,
			BobFrequency: 4,
			YOffset:      0,
		},
		Camera: CameraConfig{
			FOV:      75,
			Near:     0.1,
			Far:      5,
			Position: Vec3{0, 0.4, 1.3},
			Target:   Vec3{0, 0, 0},
		},
		Viewport: ViewportConfig{
			Width:       1280,
			Height:      720,
			PixelAspect: 1,
		},
		Materials: MaterialsConfig{
			Object:        "object",
			ScriptedActor: "scripted-actor",
			Ground:        "ground",
			Declared: []MaterialConfig{
				{Name: "object", Density: 1},
				{Name: "scripted-actor", Density: 1},
				{Name: "ground", Density: 0},
			},
			Contacts: []ContactConfig{
				{A: "object", B: "ground", Friction: 0.1, Restitution: 0.7},
				{A: "ground", B: "scripted-actor", Friction: 0.7, Restitution: 0.1},
			},
			Default: &ContactProperties{Friction: 0.3, Restitution: 0},
		},
		Surfaces: map[string]string{
			"water": RolePlaceableSurface,
			"soil":  RoleNonPlaceable,
			"can":   RoleObstacle,
			"duck":  RoleNonPlaceable,
		},
		Assets: AssetsConfig{
			TemplateNode: "can",
			ActorNode:    "duck001",
		},
	}
}

// Load overlays the YAML file at path on the defaults and validates the result
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return Decode(f)
}

// Decode overlays a YAML document on the defaults and validates the result
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("capacity %d: %w", c.Capacity, ErrInvalidConfig)
	case c.FixedTimestep <= 0:
		return fmt.Errorf("fixed_timestep %v: %w", c.FixedTimestep, ErrInvalidConfig)
	case c.MaxSubSteps <= 0:
		return fmt.Errorf("max_sub_steps %d: %w", c.MaxSubSteps, ErrInvalidConfig)
	case c.SolverIterations <= 0:
		return fmt.Errorf("solver_iterations %d: %w", c.SolverIterations, ErrInvalidConfig)
	case c.SpawnMass <= 0:
		return fmt.Errorf("spawn_mass %v: %w", c.SpawnMass, ErrInvalidConfig)
	case c.SleepSpeedLimit < 0 || c.SleepTimeLimit < 0:
		return fmt.Errorf("sleep limits %v/%v: %w", c.SleepSpeedLimit, c.SleepTimeLimit, ErrInvalidConfig)
	case c.PlacementTapThreshold.DX <= 0 || c.PlacementTapThreshold.DY <= 0:
		return fmt.Errorf("placement_tap_threshold %+v: %w", c.PlacementTapThreshold, ErrInvalidConfig)
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0 || c.Viewport.PixelAspect <= 0:
		return fmt.Errorf("viewport %+v: %w", c.Viewport, ErrInvalidConfig)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180 || c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera %+v: %w", c.Camera, ErrInvalidConfig)
	case c.Assets.TemplateNode == "" || c.Assets.ActorNode == "":
		return fmt.Errorf("assets need a template and an actor node: %w", ErrInvalidConfig)
	}

	for _, contact := range c.Materials.Contacts {
		if err := validateContact(contact.Friction, contact.Restitution); err != nil {
			return fmt.Errorf("contact %s/%s: %w", contact.A, contact.B, err)
		}
	}
	if d := c.Materials.Default; d != nil {
		if err := validateContact(d.Friction, d.Restitution); err != nil {
			return fmt.Errorf("default contact: %w", err)
		}
	}

	for tag, role := range c.Surfaces {
		switch role {
		case RoleNonPlaceable, RolePlaceableSurface, RoleObstacle:
		default:
			return fmt.Errorf("surface %q has unknown role %q: %w", tag, role, ErrInvalidConfig)
		}
	}

	return nil
}

func validateContact(friction, restitution float64) error {
	if friction < 0 {
		return fmt.Errorf("friction %v: %w", friction, ErrInvalidConfig)
	}
	if restitution < 0 || restitution > 1 {
		return fmt.Errorf("restitution %v: %w", restitution, ErrInvalidConfig)
	}

	return nil
}
