package engine

import "sync"

// Focus is the photo focus cursor used by the preview overlay. It cycles
// through n photos with wrap-around; no photo is focused initially.
type Focus struct {
	mu    sync.Mutex
	n     int
	index int
}

// NewFocus creates a cursor over n photos.
func NewFocus(n int) *Focus {
	return &Focus{n: max(0, n), index: -1}
}

// Len returns the number of photos.
func (f *Focus) Len() int { return f.n }

// Index returns the focused photo and whether any is focused.
func (f *Focus) Index() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index, f.index >= 0
}

// Next focuses the following photo, the first if none is focused.
func (f *Focus) Next() (int, bool) {
	return f.move(1)
}

// Prev focuses the preceding photo, the last if none is focused.
func (f *Focus) Prev() (int, bool) {
	return f.move(-1)
}

// Set focuses photo i. Out-of-range indices clear the focus.
func (f *Focus) Set(i int) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= f.n {
		f.index = -1
		return -1, false
	}
	f.index = i
	return i, true
}

// Clear removes the focus.
func (f *Focus) Clear() {
	f.mu.Lock()
	f.index = -1
	f.mu.Unlock()
}

func (f *Focus) move(step int) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		return -1, false
	}
	switch {
	case f.index < 0 && step > 0:
		f.index = 0
	case f.index < 0:
		f.index = f.n - 1
	default:
		f.index = ((f.index+step)%f.n + f.n) % f.n
	}
	return f.index, true
}
