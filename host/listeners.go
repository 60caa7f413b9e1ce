// Package host provides the environments a trail engine mounts into: a raylib
// overlay window, a terminal and a scripted headless pointer.
package host

import "sync"

// listenerSet is a registry of callbacks that can be removed individually.
type listenerSet[T any] struct {
	mu     sync.Mutex
	nextID uint64
	fns    map[uint64]func(T)
	buf    []func(T)
}

func (l *listenerSet[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[uint64]func(T))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// dispatch calls every listener outside the lock so listeners may remove themselves.
// Callers must not dispatch concurrently.
func (l *listenerSet[T]) dispatch(v T) {
	l.mu.Lock()
	l.buf = l.buf[:0]
	for _, fn := range l.fns {
		l.buf = append(l.buf, fn)
	}
	fns := l.buf
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (l *listenerSet[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

// size is a viewport size in pixels.
type size struct{ w, h int }
