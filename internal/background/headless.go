package background

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInjected is returned by HeadlessRenderer when a failure was requested.
var ErrInjected = errors.New("background: injected failure")

// Step names an acquisition step that HeadlessRenderer can be told to fail.
type Step string

const (
	StepSurface  Step = "surface"
	StepGeometry Step = "geometry"
	StepMaterial Step = "material"
	StepAttach   Step = "attach"
	StepListen   Step = "listen"
	StepDraw     Step = "draw"
)

// Ledger counts what a HeadlessRenderer handed out and got back.
type Ledger struct {
	Allocated       int
	Disposed        int
	DoubleDisposals int
	Attached        int
	Listeners       int
	Frames          int
}

// Balanced reports whether every allocation, attach and listener was released.
func (l Ledger) Balanced() bool {
	return l.Allocated == l.Disposed && l.DoubleDisposals == 0 && l.Attached == 0 && l.Listeners == 0
}

// HeadlessRenderer is an in-memory Renderer that records every acquisition.
// It backs the scene endpoint and tests.
type HeadlessRenderer struct {
	mu        sync.Mutex
	ledger    Ledger
	failAt    map[Step]int
	calls     map[Step]int
	listeners map[Event]map[int]func(Input)
	nextID    int
	last      *Frame
}

// NewHeadlessRenderer returns a renderer with an empty ledger.
func NewHeadlessRenderer() *HeadlessRenderer {
	return &HeadlessRenderer{
		failAt:    map[Step]int{},
		calls:     map[Step]int{},
		listeners: map[Event]map[int]func(Input){},
	}
}

// FailAt makes the n-th call (1-based) of step fail with ErrInjected.
func (r *HeadlessRenderer) FailAt(step Step, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAt[step] = n
}

// Ledger returns a copy of the current counts.
func (r *HeadlessRenderer) Ledger() Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger
}

// LastFrame returns the most recently drawn frame.
func (r *HeadlessRenderer) LastFrame() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Frame{}, false
	}
	return *r.last, true
}

// Emit delivers in to every listener subscribed to event.
func (r *HeadlessRenderer) Emit(event Event, in Input) {
	r.mu.Lock()
	fns := make([]func(Input), 0, len(r.listeners[event]))
	for _, fn := range r.listeners[event] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(in)
	}
}

// fail must be called with r.mu held.
func (r *HeadlessRenderer) fail(step Step) error {
	r.calls[step]++
	if n, ok := r.failAt[step]; ok && r.calls[step] == n {
		return fmt.Errorf("%s #%d: %w", step, n, ErrInjected)
	}
	return nil
}

func (r *HeadlessRenderer) alloc(step Step) (Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(step); err != nil {
		return nil, err
	}
	r.ledger.Allocated++
	return &headlessResource{owner: r}, nil
}

func (r *HeadlessRenderer) NewSurface(width, height int) (Resource, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	return r.alloc(StepSurface)
}

func (r *HeadlessRenderer) NewGeometry(GeometryKind) (Resource, error) {
	return r.alloc(StepGeometry)
}

func (r *HeadlessRenderer) NewMaterial(Material) (Resource, error) {
	return r.alloc(StepMaterial)
}

func (r *HeadlessRenderer) Attach(Resource) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(StepAttach); err != nil {
		return nil, err
	}
	r.ledger.Attached++
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.ledger.Attached--
			r.mu.Unlock()
		})
	}, nil
}

func (r *HeadlessRenderer) Listen(event Event, fn func(Input)) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(StepListen); err != nil {
		return nil, err
	}
	id := r.nextID
	r.nextID++
	if r.listeners[event] == nil {
		r.listeners[event] = map[int]func(Input){}
	}
	r.listeners[event][id] = fn
	r.ledger.Listeners++
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.listeners[event][id]; ok {
			delete(r.listeners[event], id)
			r.ledger.Listeners--
		}
	}, nil
}

func (r *HeadlessRenderer) Draw(_ Resource, frame Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(StepDraw); err != nil {
		return err
	}
	r.ledger.Frames++
	r.last = &frame
	return nil
}

type headlessResource struct {
	owner    *HeadlessRenderer
	disposed bool
}

func (h *headlessResource) Dispose() {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	if h.disposed {
		h.owner.ledger.DoubleDisposals++
		return
	}
	h.disposed = true
	h.owner.ledger.Disposed++
}
