package board

import "sync"

// fakeSurface records listener registration so tests can check for leaks and
// double registration.
type fakeSurface struct {
	mu       sync.Mutex
	attached bool
	width    float64
	height   float64

	next    int
	resize  map[int]func(w, h float64)
	keys    map[int]func(string)
	added   int
	removed int
}

func newFakeSurface(w, h float64) *fakeSurface {
	return &fakeSurface{
		attached: true,
		width:    w,
		height:   h,
		resize:   map[int]func(w, h float64){},
		keys:     map[int]func(string){},
	}
}

func (f *fakeSurface) Attached() bool { return f.attached }

func (f *fakeSurface) Dimensions() (float64, float64) { return f.width, f.height }

func (f *fakeSurface) OnResize(fn func(w, h float64)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.added++
	f.resize[id] = fn
	return f.canceler(func() { delete(f.resize, id) })
}

func (f *fakeSurface) OnKey(fn func(string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.added++
	f.keys[id] = fn
	return f.canceler(func() { delete(f.keys, id) })
}

func (f *fakeSurface) canceler(remove func()) func() {
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.removed++
		remove()
	}
}

func (f *fakeSurface) listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resize) + len(f.keys)
}

func (f *fakeSurface) fireResize(w, h float64) {
	f.mu.Lock()
	var fns []func(w, h float64)
	for _, fn := range f.resize {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(w, h)
	}
}

func (f *fakeSurface) fireKey(key string) {
	f.mu.Lock()
	var fns []func(string)
	for _, fn := range f.keys {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}
