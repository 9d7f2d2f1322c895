package background

import "sync"

type countingObserver struct {
	mu        sync.Mutex
	allocated int
	disposed  int
	frames    int
}

func (o *countingObserver) ResourceAllocated() {
	o.mu.Lock()
	o.allocated++
	o.mu.Unlock()
}

func (o *countingObserver) ResourceDisposed() {
	o.mu.Lock()
	o.disposed++
	o.mu.Unlock()
}

func (o *countingObserver) FrameRendered() {
	o.mu.Lock()
	o.frames++
	o.mu.Unlock()
}
