package background

// Resource is anything a renderer allocates that must be released explicitly.
type Resource interface {
	Dispose()
}

// Event names a host event the background listens to.
type Event string

const (
	EventPointerMove Event = "pointermove"
	EventResize      Event = "resize"
)

// Input carries pointer coordinates or the new viewport size.
type Input struct {
	X      float64
	Y      float64
	Width  int
	Height int
}

// Material describes the look of one mesh.
type Material struct {
	Kind        string
	Color       string
	ColorBottom string
	Opacity     float64
}

// Frame is what the renderer draws on each tick.
type Frame struct {
	Seq   uint64
	Scene Scene
}

// Renderer is the drawing backend. Every Resource it returns, every attach
// and every listener must be released by the caller.
type Renderer interface {
	NewSurface(width, height int) (Resource, error)
	NewGeometry(kind GeometryKind) (Resource, error)
	NewMaterial(m Material) (Resource, error)
	// Attach puts the surface on screen and returns the detach function.
	Attach(surface Resource) (func(), error)
	// Listen subscribes fn to event and returns the unsubscribe function.
	Listen(event Event, fn func(Input)) (func(), error)
	Draw(surface Resource, frame Frame) error
}

// Observer is told about allocations, releases and frames.
type Observer interface {
	ResourceAllocated()
	ResourceDisposed()
	FrameRendered()
}

type nopObserver struct{}

func (nopObserver) ResourceAllocated() {}
func (nopObserver) ResourceDisposed()  {}
func (nopObserver) FrameRendered()     {}
