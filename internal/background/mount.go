package background

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MountOption customises Mount.
type MountOption func(*Handle)

// WithObserver reports resource and frame counts, e.g. to metrics.
func WithObserver(o Observer) MountOption {
	return func(h *Handle) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithLogger sets the logger used for draw failures.
func WithLogger(l *zap.Logger) MountOption {
	return func(h *Handle) {
		if l != nil {
			h.logger = l
		}
	}
}

// Handle is a mounted background. Close releases everything it holds.
type Handle struct {
	ID string

	mu     sync.Mutex
	scene  *Scene
	width  int
	height int

	renderer Renderer
	surface  Resource
	interval time.Duration
	teardown Teardown
	frames   atomic.Uint64
	observer Observer
	logger   *zap.Logger
}

// Mount builds the scene, acquires every renderer resource, attaches the
// surface, subscribes to pointer and resize events and starts the frame loop.
// If any step fails, whatever was acquired so far is released before returning.
func Mount(ctx context.Context, r Renderer, opts Options, mopts ...MountOption) (*Handle, error) {
	opts = opts.withDefaults()
	h := &Handle{
		ID:       uuid.NewString(),
		scene:    NewScene(opts),
		width:    opts.Width,
		height:   opts.Height,
		renderer: r,
		interval: opts.FrameInterval,
		observer: nopObserver{},
		logger:   zap.NewNop(),
	}
	for _, opt := range mopts {
		opt(h)
	}
	if err := h.acquire(ctx); err != nil {
		h.teardown.Run()
		return nil, err
	}
	return h, nil
}

func (h *Handle) acquire(ctx context.Context) error {
	surface, err := h.renderer.NewSurface(h.width, h.height)
	if err != nil {
		return fmt.Errorf("background: create surface: %w", err)
	}
	h.track(surface)
	h.surface = surface

	kinds := append(append([]GeometryKind(nil), ShapeKinds...), Backdrop, Points)
	for _, kind := range kinds {
		geo, err := h.renderer.NewGeometry(kind)
		if err != nil {
			return fmt.Errorf("background: create geometry %s: %w", kind, err)
		}
		h.track(geo)
	}

	materials := make([]Material, 0, len(h.scene.Shapes)+2)
	for _, sh := range h.scene.Shapes {
		materials = append(materials, Material{Kind: "standard", Color: sh.Color, Opacity: 0.85})
	}
	materials = append(materials,
		Material{Kind: "gradient", Color: h.scene.Backdrop.Top, ColorBottom: h.scene.Backdrop.Bottom, Opacity: 1},
		Material{Kind: "points", Color: "#ffffff", Opacity: 0.6},
	)
	for i, m := range materials {
		mat, err := h.renderer.NewMaterial(m)
		if err != nil {
			return fmt.Errorf("background: create material %d (%s): %w", i, m.Kind, err)
		}
		h.track(mat)
	}

	detach, err := h.renderer.Attach(surface)
	if err != nil {
		return fmt.Errorf("background: attach surface: %w", err)
	}
	h.teardown.Add(detach)

	removeMove, err := h.renderer.Listen(EventPointerMove, h.onPointerMove)
	if err != nil {
		return fmt.Errorf("background: listen %s: %w", EventPointerMove, err)
	}
	h.teardown.Add(removeMove)

	removeResize, err := h.renderer.Listen(EventResize, h.onResize)
	if err != nil {
		return fmt.Errorf("background: listen %s: %w", EventResize, err)
	}
	h.teardown.Add(removeResize)

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go h.loop(loopCtx, done)
	h.teardown.Add(func() {
		cancel()
		<-done
	})
	return nil
}

func (h *Handle) track(res Resource) {
	h.observer.ResourceAllocated()
	h.teardown.Add(func() {
		res.Dispose()
		h.observer.ResourceDisposed()
	})
}

func (h *Handle) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.mu.Lock()
			h.scene.Step(now.Sub(last).Seconds())
			frame := Frame{Seq: h.frames.Add(1), Scene: h.scene.Snapshot()}
			h.mu.Unlock()
			last = now

			if err := h.renderer.Draw(h.surface, frame); err != nil {
				h.logger.Warn("background draw failed", zap.String("handle", h.ID), zap.Uint64("frame", frame.Seq), zap.Error(err))
				continue
			}
			h.observer.FrameRendered()
		}
	}
}

func (h *Handle) onPointerMove(in Input) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scene.Hover(in.X, in.Y, h.width, h.height)
}

func (h *Handle) onResize(in Input) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if in.Width > 0 && in.Height > 0 {
		h.width, h.height = in.Width, in.Height
		h.scene.Resize(in.Width, in.Height)
	}
}

// Close stops the frame loop and releases every acquisition exactly once.
// Calling Close again is a no-op.
func (h *Handle) Close() error {
	if h == nil {
		return nil
	}
	h.teardown.Run()
	return nil
}

// Closed reports whether Close has run.
func (h *Handle) Closed() bool { return h.teardown.Done() }

// Frames returns how many frames the loop has produced.
func (h *Handle) Frames() uint64 { return h.frames.Load() }

// Snapshot returns a copy of the current scene state.
func (h *Handle) Snapshot() Scene {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scene.Snapshot()
}
