// Package background describes the decorative 3D scene behind the site and
// manages the lifetime of everything a renderer allocates for it.
package background

import (
	"math"
	"math/rand/v2"
	"time"
)

// GeometryKind names a mesh the renderer can build.
type GeometryKind string

const (
	Icosahedron GeometryKind = "icosahedron"
	Octahedron  GeometryKind = "octahedron"
	Tetrahedron GeometryKind = "tetrahedron"
	// Backdrop is the inward-facing gradient sphere.
	Backdrop GeometryKind = "backdrop"
	// Points is the particle cloud buffer.
	Points GeometryKind = "points"
)

// ShapeKinds are the polyhedra shapes are drawn from.
var ShapeKinds = []GeometryKind{Icosahedron, Octahedron, Tetrahedron}

// Defaults used when Options leave a field zero.
const (
	DefaultShapeCount    = 18
	DefaultParticleCount = 420
	DefaultBound         = 20.0
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultHoverScale    = 1.35
	DefaultWidth         = 1280
	DefaultHeight        = 720

	cameraFOV      = 60.0
	cameraZ        = 12.0
	backdropRadius = 60.0
	// scaleEase is the fraction per second a shape closes toward its target scale.
	scaleEase = 10.0
)

// Options configure scene generation and the frame loop.
type Options struct {
	Seed          int64
	ShapeCount    int
	ParticleCount int
	Bound         float64
	HoverScale    float64
	FrameInterval time.Duration
	Width         int
	Height        int
	Palette       []string
}

var defaultPalette = []string{"#7c3aed", "#06b6d4", "#f472b6", "#f59e0b", "#10b981"}

func (o Options) withDefaults() Options {
	if o.ShapeCount <= 0 {
		o.ShapeCount = DefaultShapeCount
	}
	if o.ParticleCount <= 0 {
		o.ParticleCount = DefaultParticleCount
	}
	if o.Bound <= 0 {
		o.Bound = DefaultBound
	}
	if o.HoverScale <= 0 {
		o.HoverScale = DefaultHoverScale
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = DefaultFrameInterval
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if len(o.Palette) == 0 {
		o.Palette = defaultPalette
	}
	return o
}

// Camera is a perspective camera looking down -Z.
type Camera struct {
	FOV      float64 `json:"fov"`
	Aspect   float64 `json:"aspect"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	Position Vec3    `json:"position"`
}

// Light is an ambient or point light.
type Light struct {
	Kind      string  `json:"kind"`
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity"`
	Position  *Vec3   `json:"position,omitempty"`
}

// BackdropSphere is the large gradient sphere viewed from inside.
type BackdropSphere struct {
	Radius float64 `json:"radius"`
	Top    string  `json:"top"`
	Bottom string  `json:"bottom"`
}

// Shape is one rotating polyhedron.
type Shape struct {
	ID        int          `json:"id"`
	Kind      GeometryKind `json:"kind"`
	Color     string       `json:"color"`
	Position  Vec3         `json:"position"`
	Rotation  Vec3         `json:"rotation"`
	Spin      Vec3         `json:"spin"`
	BaseScale float64      `json:"baseScale"`
	Scale     float64      `json:"scale"`
	Hovered   bool         `json:"hovered"`
}

// Particle drifts vertically and wraps at the scene bound.
type Particle struct {
	Position Vec3    `json:"position"`
	Speed    float64 `json:"speed"`
}

// Scene is the full mutable scene state. It is not safe for concurrent use;
// Handle serialises access.
type Scene struct {
	Seed       int64          `json:"seed"`
	Bound      float64        `json:"bound"`
	HoverScale float64        `json:"hoverScale"`
	Camera     Camera         `json:"camera"`
	Lights     []Light        `json:"lights"`
	Backdrop   BackdropSphere `json:"backdrop"`
	Shapes     []Shape        `json:"shapes"`
	Particles  []Particle     `json:"particles"`
	Elapsed    float64        `json:"elapsed"`
}

// NewScene builds a deterministic scene from opts.Seed.
func NewScene(opts Options) *Scene {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15))
	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	s := &Scene{
		Seed:       opts.Seed,
		Bound:      opts.Bound,
		HoverScale: opts.HoverScale,
		Camera: Camera{
			FOV:      cameraFOV,
			Aspect:   float64(opts.Width) / float64(opts.Height),
			Near:     0.1,
			Far:      200,
			Position: Vec3{Z: cameraZ},
		},
		Lights: []Light{
			{Kind: "ambient", Color: "#ffffff", Intensity: 0.6},
			{Kind: "point", Color: "#ffffff", Intensity: 1.2, Position: &Vec3{X: 10, Y: 10, Z: 10}},
		},
		Backdrop: BackdropSphere{Radius: backdropRadius, Top: "#1e1b4b", Bottom: "#0f172a"},
	}

	spread := opts.Bound * 0.6
	s.Shapes = make([]Shape, opts.ShapeCount)
	for i := range s.Shapes {
		base := between(0.5, 1.4)
		s.Shapes[i] = Shape{
			ID:    i,
			Kind:  ShapeKinds[i%len(ShapeKinds)],
			Color: opts.Palette[rng.IntN(len(opts.Palette))],
			Position: Vec3{
				X: between(-spread, spread),
				Y: between(-spread, spread),
				Z: between(-spread, spread*0.25),
			},
			Rotation:  Vec3{X: between(0, 2*math.Pi), Y: between(0, 2*math.Pi), Z: between(0, 2*math.Pi)},
			Spin:      Vec3{X: between(-0.6, 0.6), Y: between(-0.6, 0.6)},
			BaseScale: base,
			Scale:     base,
		}
	}

	s.Particles = make([]Particle, opts.ParticleCount)
	for i := range s.Particles {
		s.Particles[i] = Particle{
			Position: Vec3{
				X: between(-opts.Bound, opts.Bound),
				Y: between(-opts.Bound, opts.Bound),
				Z: between(-opts.Bound, opts.Bound),
			},
			Speed: between(0.2, 1.2),
		}
	}
	return s
}

// Step advances the animation by dt seconds.
func (s *Scene) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.Elapsed += dt
	ease := math.Min(1, scaleEase*dt)
	for i := range s.Shapes {
		sh := &s.Shapes[i]
		sh.Rotation = sh.Rotation.Add(sh.Spin.Scale(dt))
		target := sh.BaseScale
		if sh.Hovered {
			target = sh.BaseScale * s.HoverScale
		}
		sh.Scale += (target - sh.Scale) * ease
	}
	for i := range s.Particles {
		p := &s.Particles[i]
		p.Position.Y += p.Speed * dt
		p.Position.Y = wrap(p.Position.Y, s.Bound)
	}
}

// wrap moves y past one bound to the opposite bound.
func wrap(y, bound float64) float64 {
	switch {
	case y > bound:
		return -bound
	case y < -bound:
		return bound
	default:
		return y
	}
}

// PointerRay converts a pointer position in a width×height viewport to a camera ray.
func (s *Scene) PointerRay(x, y float64, width, height int) Ray {
	if width <= 0 || height <= 0 {
		return Ray{Origin: s.Camera.Position, Dir: Vec3{Z: -1}}
	}
	nx := 2*x/float64(width) - 1
	ny := 1 - 2*y/float64(height)
	half := math.Tan(s.Camera.FOV * math.Pi / 360)
	aspect := float64(width) / float64(height)
	dir := Vec3{X: nx * half * aspect, Y: ny * half, Z: -1}.Norm()
	return Ray{Origin: s.Camera.Position, Dir: dir}
}

// Pick returns the index of the nearest shape whose bounding sphere the ray hits.
func (s *Scene) Pick(r Ray) (int, bool) {
	best, bestT := -1, math.Inf(1)
	for i, sh := range s.Shapes {
		if t, ok := r.intersectSphere(sh.Position, sh.Scale); ok && t < bestT {
			best, bestT = i, t
		}
	}
	return best, best >= 0
}

// Hover marks the shape under the pointer as hovered and clears all others.
// It returns the hovered index or -1.
func (s *Scene) Hover(x, y float64, width, height int) int {
	idx, ok := s.Pick(s.PointerRay(x, y, width, height))
	if !ok {
		idx = -1
	}
	for i := range s.Shapes {
		s.Shapes[i].Hovered = i == idx
	}
	return idx
}

// Resize updates the camera aspect ratio.
func (s *Scene) Resize(width, height int) {
	if width > 0 && height > 0 {
		s.Camera.Aspect = float64(width) / float64(height)
	}
}

// Snapshot returns a deep copy safe to serialise or hand to a renderer.
func (s *Scene) Snapshot() Scene {
	cp := *s
	cp.Lights = append([]Light(nil), s.Lights...)
	for i, l := range cp.Lights {
		if l.Position != nil {
			pos := *l.Position
			cp.Lights[i].Position = &pos
		}
	}
	cp.Shapes = append([]Shape(nil), s.Shapes...)
	cp.Particles = append([]Particle(nil), s.Particles...)
	return cp
}
