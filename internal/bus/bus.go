package bus

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Handler reacts to a published payload. A returned error is logged and does not
// stop delivery to the remaining handlers.
type Handler[T any] func(payload T) error

// Topic binds an event name to its payload type so publishers and subscribers
// agree at compile time.
type Topic[T any] struct {
	name string
}

// NewTopic declares a typed topic.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

func (t Topic[T]) Name() string {
	return t.name
}

type subscription struct {
	id uint64
	fn func(payload any) error
}

// Bus is an in-process publish/subscribe channel. Delivery is synchronous and
// follows registration order.
type Bus struct {
	logger *zap.Logger

	mu       sync.RWMutex
	seq      uint64
	handlers map[string][]subscription
}

func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		logger:   logger,
		handlers: make(map[string][]subscription),
	}
}

// Subscribe registers handler on topic and returns a function that removes
// exactly this registration.
func Subscribe[T any](b *Bus, topic Topic[T], handler Handler[T]) (unsubscribe func()) {
	if b == nil || handler == nil {
		return func() {}
	}
	fn := func(payload any) error {
		typed, ok := payload.(T)
		if !ok {
			return fmt.Errorf("payload %T does not match topic %s", payload, topic.name)
		}
		return handler(typed)
	}

	b.mu.Lock()
	b.seq++
	id := b.seq
	b.handlers[topic.name] = append(b.handlers[topic.name], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic.name, id) })
	}
}

// Publish delivers payload to every handler currently registered on topic.
func Publish[T any](b *Bus, topic Topic[T], payload T) {
	if b == nil {
		return
	}
	b.dispatch(topic.name, payload)
}

// Off removes all handlers registered under name.
func (b *Bus) Off(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, name)
}

// HandlerCount returns how many handlers are registered under name.
func (b *Bus) HandlerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

func (b *Bus) dispatch(name string, payload any) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[name]))
	copy(subs, b.handlers[name])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.invoke(name, sub, payload)
	}
}

func (b *Bus) invoke(name string, sub subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event", name),
				zap.Uint64("handler", sub.id),
				zap.Any("panic", r))
		}
	}()
	if err := sub.fn(payload); err != nil {
		b.logger.Error("event handler failed",
			zap.String("event", name),
			zap.Uint64("handler", sub.id),
			zap.Error(err))
	}
}

func (b *Bus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[name]
	for i, sub := range subs {
		if sub.id != id {
			continue
		}
		rest := make([]subscription, 0, len(subs)-1)
		rest = append(rest, subs[:i]...)
		rest = append(rest, subs[i+1:]...)
		if len(rest) == 0 {
			delete(b.handlers, name)
		} else {
			b.handlers[name] = rest
		}
		return
	}
}
