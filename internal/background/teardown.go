package background

import "sync"

// Teardown collects release steps and runs them once, last acquired first.
type Teardown struct {
	mu    sync.Mutex
	steps []func()
	done  bool
}

// Add registers a release step. Steps added after Run execute immediately.
func (t *Teardown) Add(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		fn()
		return
	}
	t.steps = append(t.steps, fn)
	t.mu.Unlock()
}

// Run releases everything in reverse order. Subsequent calls are no-ops.
func (t *Teardown) Run() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	steps := t.steps
	t.steps = nil
	t.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// Done reports whether Run has been called.
func (t *Teardown) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Pending reports how many release steps are registered and not yet run.
func (t *Teardown) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.steps)
}
