package event

import "reflect"

// topic is the type-erased face of a typedTopic.
type topic interface {
	swap()
	dispatch()
}

// typedTopic holds the two buffers and the handlers for one event type.
type typedTopic[T any] struct {
	front    []T
	back     []T
	handlers []func(T)
}

func (t *typedTopic[T]) swap() {
	t.front, t.back = t.back, t.front[:0]
}

func (t *typedTopic[T]) dispatch() {
	for _, ev := range t.front {
		for _, h := range t.handlers {
			h(ev)
		}
	}
}

// Bus is a double-buffered event bus. Events emitted during tick N become
// readable after the SwapBuffers that opens tick N+1.
//
// Game loop goroutine only. Topics dispatch in the order their event type
// was first seen, so delivery order is deterministic.
type Bus struct {
	topics map[reflect.Type]topic
	order  []topic
}

func NewBus() *Bus {
	return &Bus{topics: make(map[reflect.Type]topic)}
}

func topicFor[T any](b *Bus) *typedTopic[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if t, ok := b.topics[key]; ok {
		return t.(*typedTopic[T])
	}
	t := &typedTopic[T]{}
	b.topics[key] = t
	b.order = append(b.order, t)
	return t
}

// Emit queues an event for the next tick. A nil bus drops it, so world
// code can run without a listener.
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	t := topicFor[T](b)
	t.back = append(t.back, event)
}

// Subscribe registers fn for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := topicFor[T](b)
	t.handlers = append(t.handlers, fn)
}

// Pending returns a copy of the events of type T readable this tick.
func Pending[T any](b *Bus) []T {
	t := topicFor[T](b)
	return append([]T(nil), t.front...)
}

// Queued returns how many events of type T were emitted this tick.
func Queued[T any](b *Bus) int {
	return len(topicFor[T](b).back)
}

// SwapBuffers makes this tick's emissions readable and empties the queue.
func (b *Bus) SwapBuffers() {
	for _, t := range b.order {
		t.swap()
	}
}

// DispatchAll hands every readable event to its handlers.
func (b *Bus) DispatchAll() {
	for _, t := range b.order {
		t.dispatch()
	}
}
