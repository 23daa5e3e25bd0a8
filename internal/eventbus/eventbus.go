// Package eventbus is a minimal in-process pub/sub layer keyed by
// event type. Emitting code publishes plain structs; observers such as
// the tracing subscriber attach without the emitting code knowing.
package eventbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler processes events of type T.
type Handler[T any] func(context.Context, T)

// entry pairs a subscription id with its untyped handler. Ids make
// unsubscribe exact; closures created from the same literal share a
// code pointer and cannot be told apart.
type entry struct {
	id int64
	fn func(context.Context, any)
}

// Bus is an in-process event dispatcher.
type Bus struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[reflect.Type][]entry
}

// New creates a new Bus.
func New() *Bus { return &Bus{entries: make(map[reflect.Type][]entry)} }

func (b *Bus) subscribe(t reflect.Type, fn func(context.Context, any)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.entries[t] = append(b.entries[t], entry{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		es := b.entries[t]
		for i, e := range es {
			if e.id == id {
				es = append(es[:i], es[i+1:]...)
				break
			}
		}
		if len(es) == 0 {
			delete(b.entries, t)
		} else {
			b.entries[t] = es
		}
	}
}

// emit dispatches e to all handlers of its dynamic type, in
// subscription order, on the calling goroutine.
func (b *Bus) emit(ctx context.Context, e any) {
	if b == nil {
		return
	}
	t := reflect.TypeOf(e)
	b.mu.RLock()
	es := b.entries[t]
	if len(es) == 0 {
		b.mu.RUnlock()
		return
	}
	copied := append([]entry(nil), es...)
	b.mu.RUnlock()
	for _, en := range copied {
		en.fn(ctx, e)
	}
}

var global atomic.Pointer[Bus]

// Use sets the global bus. Passing nil disables event publishing.
func Use(b *Bus) { global.Store(b) }

// Subscribe registers h with the global bus for events of type T.
func Subscribe[T any](h Handler[T]) (unsubscribe func()) {
	b := global.Load()
	if b == nil {
		return func() {}
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	return b.subscribe(t, func(ctx context.Context, v any) { h(ctx, v.(T)) })
}

// Publish sends e through the global bus.
func Publish[T any](ctx context.Context, e T) {
	if b := global.Load(); b != nil {
		b.emit(ctx, e)
	}
}
