// Package eventbus provides a synchronous, in-process publish/subscribe primitive.
package eventbus

// Handler receives the value passed to Trigger.
type Handler[E any] func(e E)

type subscription[E any] struct {
	id      uint64
	handler Handler[E]
}

// Bus dispatches events by name to every handler registered for that name,
// in registration order. It is not safe for concurrent use; all calls are
// expected to come from the goroutine that owns the bus.
type Bus[E any] struct {
	handlers map[string][]subscription[E]
	nextID   uint64
}

// New creates an empty bus.
func New[E any]() *Bus[E] {
	return &Bus[E]{handlers: make(map[string][]subscription[E])}
}

// On registers handler for name. Registering the same function twice yields two
// independent subscriptions. The returned func removes this subscription only;
// calling it more than once is a no-op.
func (b *Bus[E]) On(name string, handler Handler[E]) (off func()) {
	b.nextID++
	id := b.nextID
	b.handlers[name] = append(b.handlers[name], subscription[E]{id: id, handler: handler})

	return func() {
		subs := b.handlers[name]
		for i, s := range subs {
			if s.id == id {
				b.handlers[name] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(b.handlers[name]) == 0 {
			delete(b.handlers, name)
		}
	}
}

// Trigger synchronously invokes every handler registered for name with e.
// Handlers may call Trigger again; nested dispatch runs to completion before
// the outer dispatch continues.
func (b *Bus[E]) Trigger(name string, e E) {
	subs := b.handlers[name]
	if len(subs) == 0 {
		return
	}
	// Snapshot so handlers that subscribe or unsubscribe during dispatch do not
	// affect the current round.
	snapshot := make([]subscription[E], len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		s.handler(e)
	}
}

// Len reports the number of handlers registered for name.
func (b *Bus[E]) Len(name string) int {
	return len(b.handlers[name])
}
