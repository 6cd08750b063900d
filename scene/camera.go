package scene

import (
	"github.com/akmonengine/duckpond/config"
	"github.com/go-gl/mathgl/mgl64"
)

// Viewport is the size of the render surface in pixels
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// PixelAspect is the width/height ratio of one pixel
	PixelAspect float64 `json:"pixel_aspect"`
}

func ViewportFromConfig(cfg config.ViewportConfig) Viewport {
	return Viewport{Width: cfg.Width, Height: cfg.Height, PixelAspect: cfg.PixelAspect}
}

// ToNDC maps a screen point to normalized device coordinates. Screen y grows
// downward, NDC y grows upward.
func (v Viewport) ToNDC(x, y float64) mgl64.Vec2 {
	return mgl64.Vec2{
		x/float64(v.Width)*2 - 1,
		-(y/float64(v.Height)*2 - 1),
	}
}

// Aspect is the width/height ratio of the surface
func (v Viewport) Aspect() float64 {
	pixelAspect := v.PixelAspect
	if pixelAspect <= 0 {
		pixelAspect = 1
	}

	return float64(v.Width) * pixelAspect / float64(v.Height)
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

func (r Ray) At(distance float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(distance))
}

// Camera is a perspective camera looking at a target
type Camera struct {
	Position mgl64.Vec3 `json:"position"`
	Target   mgl64.Vec3 `json:"target"`
	Up       mgl64.Vec3 `json:"up"`
	FOV      float64    `json:"fov"` // vertical, degrees
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
}

func CameraFromConfig(cfg config.CameraConfig) Camera {
	return Camera{
		Position: cfg.Position.Vec(),
		Target:   cfg.Target.Vec(),
		Up:       mgl64.Vec3{0, 1, 0},
		FOV:      cfg.FOV,
		Near:     cfg.Near,
		Far:      cfg.Far,
	}
}

func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

func (c Camera) Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Ray returns the world ray from the camera through an NDC point
func (c Camera) Ray(ndc mgl64.Vec2, aspect float64) Ray {
	inverse := c.Projection(aspect).Mul4(c.View()).Inv()

	near := inverse.Mul4x1(mgl64.Vec4{ndc.X(), ndc.Y(), -1, 1})
	far := inverse.Mul4x1(mgl64.Vec4{ndc.X(), ndc.Y(), 1, 1})
	nearPoint := near.Vec3().Mul(1 / near.W())
	farPoint := far.Vec3().Mul(1 / far.W())

	return Ray{
		Origin:    c.Position,
		Direction: farPoint.Sub(nearPoint).Normalize(),
	}
}

// Project maps a world point to NDC. ok is false for points outside the
// near/far range.
func (c Camera) Project(point mgl64.Vec3, aspect float64) (mgl64.Vec3, bool) {
	clip := c.Projection(aspect).Mul4(c.View()).Mul4x1(point.Vec4(1))
	if clip.W() <= 0 {
		return mgl64.Vec3{}, false
	}

	ndc := clip.Vec3().Mul(1 / clip.W())

	return ndc, ndc.Z() >= -1 && ndc.Z() <= 1
}
