// Package event provides a small in-process publish/subscribe broker with
// typed topics. It decouples the state store from the render pipeline and
// from any user interface collaborators.
//
// Example:
//
//	var Saved = event.NewTopic[string]("doc.saved")
//
//	b := event.NewBroker()
//	sub := event.Subscribe(b, Saved, func(name string) { fmt.Println(name) })
//	defer sub.Remove()
//	event.Publish(b, Saved, "card.png")
//
// Handlers run synchronously on the publishing goroutine, in subscription
// order. A handler removed with Subscription.Remove is never invoked after
// Remove returns, including by a publish that was already iterating.
package event

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
)

// Topic names a channel of payloads of type T.
type Topic[T any] struct {
	name string
}

// NewTopic returns a topic with the given name. Two topics with the same
// name and payload type are the same topic; topics sharing a name but not a
// payload type are distinct.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the topic name.
func (t Topic[T]) Name() string { return t.name }

func (t Topic[T]) key() topicKey {
	return topicKey{name: t.name, typ: reflect.TypeFor[T]()}
}

// topicKey identifies a topic by name and payload type.
type topicKey struct {
	name string
	typ  reflect.Type
}

// Broker routes published payloads to subscribed handlers.
// The zero value is not usable; call NewBroker.
type Broker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[topicKey][]*Subscription
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[topicKey][]*Subscription)}
}

// Subscription is a registered handler. Remove it to stop delivery.
type Subscription struct {
	id      uint64
	topic   topicKey
	broker  *Broker
	active  atomic.Bool
	deliver func(any)
}

// Subscribe registers handler for topic and returns its subscription.
func Subscribe[T any](b *Broker, topic Topic[T], handler func(T)) *Subscription {
	key := topic.key()
	s := &Subscription{
		topic:  key,
		broker: b,
		deliver: func(payload any) {
			if v, ok := payload.(T); ok {
				handler(v)
			}
		},
	}
	s.active.Store(true)

	b.mu.Lock()
	b.nextID++
	s.id = b.nextID
	b.subs[key] = append(b.subs[key], s)
	b.mu.Unlock()
	return s
}

// Publish delivers payload to every active handler of topic and returns the
// number of handlers invoked.
func Publish[T any](b *Broker, topic Topic[T], payload T) int {
	b.mu.RLock()
	subs := slices.Clone(b.subs[topic.key()])
	b.mu.RUnlock()

	n := 0
	for _, s := range subs {
		if s.invoke(payload) {
			n++
		}
	}
	return n
}

// Len reports how many handlers are subscribed to topics with the given
// name, whatever their payload type.
func (b *Broker) Len(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for k, subs := range b.subs {
		if k.name == topic {
			n += len(subs)
		}
	}
	return n
}

func (s *Subscription) invoke(payload any) bool {
	// Checked per delivery: the slice being iterated is a copy.
	if !s.active.Load() {
		return false
	}
	s.deliver(payload)
	return true
}

// Remove unsubscribes the handler. It is idempotent and may be called from
// inside a handler.
func (s *Subscription) Remove() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}

	b := s.broker
	b.mu.Lock()
	list := b.subs[s.topic]
	if i := slices.Index(list, s); i >= 0 {
		b.subs[s.topic] = slices.Delete(slices.Clone(list), i, i+1)
	}
	if len(b.subs[s.topic]) == 0 {
		delete(b.subs, s.topic)
	}
	b.mu.Unlock()
}
