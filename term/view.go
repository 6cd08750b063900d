// Package term renders the pond in a terminal and turns mouse input into
// pointer events.
package term

import (
	"context"
	"errors"

	"github.com/akmonengine/duckpond/internal/logging"
	"github.com/akmonengine/duckpond/scene"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// CellAspect is the width/height ratio of a terminal cell
const CellAspect = 0.5

// PointerSource tags the pointer events of the terminal mouse
const PointerSource = "term"

var ErrQuit = errors.New("quit requested")

type glyph struct {
	r     rune
	style tcell.Style
}

var (
	sky   = glyph{' ', tcell.StyleDefault}
	other = glyph{'#', tcell.StyleDefault.Foreground(tcell.ColorGray)}

	glyphs = map[string]glyph{
		"water": {'~', tcell.StyleDefault.Foreground(tcell.ColorBlue)},
		"soil":  {'.', tcell.StyleDefault.Foreground(tcell.ColorOlive)},
		"can":   {'o', tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)},
		"duck":  {'D', tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)},
	}
)

// View is a scene.Renderer drawing one character per ray-cast cell
type View struct {
	screen    tcell.Screen
	submitter scene.Submitter
	logger    *zap.Logger

	pressed bool
}

func NewView(screen tcell.Screen, submitter scene.Submitter, logger *zap.Logger) *View {
	screen.EnableMouse()

	return &View{screen: screen, submitter: submitter, logger: logging.OrNop(logger)}
}

// Viewport is the screen in cells
func (v *View) Viewport() scene.Viewport {
	width, height := v.screen.Size()

	return scene.Viewport{Width: width, Height: height, PixelAspect: CellAspect}
}

func (v *View) Render(frame scene.Frame) error {
	viewport := v.Viewport()
	if !viewport.Valid() {
		return nil
	}

	graph := scene.NewGraph()
	for _, transform := range frame.Proxies {
		graph.Add(transform.Proxy())
	}

	aspect := viewport.Aspect()
	for y := 0; y < viewport.Height; y++ {
		for x := 0; x < viewport.Width; x++ {
			ndc := viewport.ToNDC(float64(x)+0.5, float64(y)+0.5)
			g := sky
			if hits := graph.Raycast(frame.Camera.Ray(ndc, aspect)); len(hits) > 0 {
				g = glyphFor(hits[0].Tag)
			}
			v.screen.SetContent(x, y, g.r, nil, g.style)
		}
	}

	// Solid proxies can be smaller than a cell; stamp their centers
	for _, transform := range frame.Proxies {
		if transform.Bounds.Volume() <= 0 {
			continue
		}
		if x, y, ok := v.Project(frame, transform.Position); ok {
			g := glyphFor(transform.Tag)
			v.screen.SetContent(x, y, g.r, nil, g.style)
		}
	}

	v.screen.Show()

	return nil
}

func glyphFor(tag string) glyph {
	if g, ok := glyphs[tag]; ok {
		return g
	}

	return other
}

// HandleEvent reports false when the user asked to quit
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
			return false
		}
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventMouse:
		v.mouse(ev)
	}

	return true
}

func (v *View) mouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	down := ev.Buttons()&tcell.Button1 != 0

	var phase scene.Phase
	switch {
	case down && !v.pressed:
		phase = scene.PhasePress
	case down:
		phase = scene.PhaseMove
	case v.pressed:
		phase = scene.PhaseRelease
	default:
		return
	}
	v.pressed = down

	viewport := v.Viewport()
	pointer := scene.PointerEvent{
		X:        float64(x) + 0.5,
		Y:        float64(y) + 0.5,
		Phase:    phase,
		Source:   PointerSource,
		Viewport: &viewport,
	}
	if !v.submitter.Submit(pointer) {
		v.logger.Warn("pointer inbox full, event dropped", zap.Stringer("phase", phase))
	}
}

// Run polls terminal events until the user quits or ctx is done
func (v *View) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok {
			return ctx.Err()
		}
		if !v.HandleEvent(ev) {
			return ErrQuit
		}
	}
}

// Project returns the cell a world point falls in
func (v *View) Project(frame scene.Frame, point mgl64.Vec3) (int, int, bool) {
	viewport := v.Viewport()
	ndc, ok := frame.Camera.Project(point, viewport.Aspect())
	if !ok || ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
		return 0, 0, false
	}

	x := int((ndc.X() + 1) / 2 * float64(viewport.Width))
	y := int((1 - ndc.Y()) / 2 * float64(viewport.Height))

	return min(x, viewport.Width-1), min(y, viewport.Height-1), true
}
