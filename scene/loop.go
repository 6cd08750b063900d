package scene

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const DefaultInboxSize = 64

// Renderer is the external render surface. It must not keep the frame past
// the call.
type Renderer interface {
	Render(frame Frame) error
}

// Submitter accepts pointer events from another goroutine without blocking
type Submitter interface {
	Submit(ev PointerEvent) bool
}

type Frame struct {
	Seq      uint64           `json:"seq"`
	SimTime  float64          `json:"sim_time"`
	Camera   Camera           `json:"camera"`
	Viewport Viewport         `json:"viewport"`
	Proxies  []ProxyTransform `json:"proxies"`
}

type FrameStats struct {
	Seq      uint64
	SubSteps int
	SimTime  float64
	PoolSize int
	Spawned  int
	Rejected int
	// Landed counts objects that touched the ground for the first time
	Landed int
	// Settled is the number of pooled objects currently asleep
	Settled int
}

// FrameLoop drives the scene one host tick at a time. Pointer events from
// other goroutines go through the inbox and are applied at the start of the
// next tick.
type FrameLoop struct {
	Scene    *Scene
	Renderer Renderer
	OnFrame  func(FrameStats)

	inbox chan PointerEvent
	seq   uint64
}

func NewFrameLoop(scene *Scene, renderer Renderer, inboxSize int) *FrameLoop {
	if inboxSize <= 0 {
		inboxSize = DefaultInboxSize
	}

	return &FrameLoop{
		Scene:    scene,
		Renderer: renderer,
		inbox:    make(chan PointerEvent, inboxSize),
	}
}

func (l *FrameLoop) Inbox() chan<- PointerEvent {
	return l.inbox
}

// Submit queues ev without blocking. It reports false when the inbox is full
// and the event was dropped.
func (l *FrameLoop) Submit(ev PointerEvent) bool {
	select {
	case l.inbox <- ev:
		return true
	default:
		return false
	}
}

// Tick runs one frame: pointer events, readiness, physics, actor, sync and
// render, in that order.
func (l *FrameLoop) Tick(wallDt float64) (FrameStats, error) {
	s := l.Scene
	l.seq++
	stats := FrameStats{Seq: l.seq}

	if err := l.drain(&stats); err != nil {
		return stats, err
	}

	if err := s.Poll(); err != nil {
		s.Logger.Error("scene construction failed", zap.Error(err))
		return stats, err
	}

	stats.SubSteps = s.World.Step(s.Config.FixedTimestep, wallDt, s.Config.MaxSubSteps)
	stats.SimTime = s.World.SimTime()

	if s.Actor != nil {
		s.Actor.Update(stats.SimTime)
	}
	s.Sync.Sync()
	stats.PoolSize = s.Pool.Len()
	stats.Landed = s.Settle.TakeLanded()
	stats.Settled = s.Settle.Settled()

	if l.Renderer != nil {
		frame := Frame{
			Seq:      l.seq,
			SimTime:  stats.SimTime,
			Camera:   *s.Camera,
			Viewport: *s.Viewport,
			Proxies:  s.Graph.Transforms(),
		}
		if err := l.Renderer.Render(frame); err != nil {
			s.Logger.Warn("render failed", zap.Uint64("seq", l.seq), zap.Error(err))
		}
	}

	if l.OnFrame != nil {
		l.OnFrame(stats)
	}

	return stats, nil
}

func (l *FrameLoop) drain(stats *FrameStats) error {
	for {
		select {
		case ev := <-l.inbox:
			entry, err := l.Scene.Pointer(ev)
			switch {
			case IsDiscarded(err):
				stats.Rejected++
				l.Scene.Logger.Debug("placement discarded", zap.Error(err))
			case err != nil:
				return err
			case entry != nil:
				stats.Spawned++
			}
		default:
			return nil
		}
	}
}

// Run ticks once per value received on ticks until ctx is done or a tick
// fails. The first tick only establishes the clock.
func (l *FrameLoop) Run(ctx context.Context, ticks <-chan time.Time) error {
	var last time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now, ok := <-ticks:
			if !ok {
				return nil
			}

			var wallDt float64
			if !last.IsZero() {
				wallDt = now.Sub(last).Seconds()
			}
			last = now

			if _, err := l.Tick(wallDt); err != nil {
				return err
			}
		}
	}
}
