package event

import (
	"sync"
	"testing"
)

var (
	numbers = NewTopic[int]("test.numbers")
	words   = NewTopic[string]("test.words")
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := NewBroker()
	var got []int
	Subscribe(b, numbers, func(v int) { got = append(got, v) })
	Subscribe(b, numbers, func(v int) { got = append(got, v*10) })

	if n := Publish(b, numbers, 3); n != 2 {
		t.Fatalf("Publish invoked %d handlers, want 2", n)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 30 {
		t.Errorf("got %v, want [3 30]", got)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	b := NewBroker()
	called := false
	Subscribe(b, words, func(string) { called = true })

	Publish(b, numbers, 1)
	if called {
		t.Error("handler for words invoked by numbers publish")
	}
}

func TestSameNameDifferentPayloadType(t *testing.T) {
	b := NewBroker()
	asInt := NewTopic[int]("test.shared")
	asString := NewTopic[string]("test.shared")

	var ints []int
	var strs []string
	Subscribe(b, asInt, func(v int) { ints = append(ints, v) })
	Subscribe(b, asString, func(v string) { strs = append(strs, v) })

	if n := Publish(b, asString, "hi"); n != 1 {
		t.Errorf("Publish(string) invoked %d handlers, want 1", n)
	}
	if n := Publish(b, asInt, 7); n != 1 {
		t.Errorf("Publish(int) invoked %d handlers, want 1", n)
	}
	if len(ints) != 1 || ints[0] != 7 {
		t.Errorf("int handler got %v, want [7]", ints)
	}
	if len(strs) != 1 || strs[0] != "hi" {
		t.Errorf("string handler got %v, want [hi]", strs)
	}
	if n := b.Len("test.shared"); n != 2 {
		t.Errorf("Len(test.shared) = %d, want 2", n)
	}
}

func TestRemoveStopsDelivery(t *testing.T) {
	b := NewBroker()
	count := 0
	sub := Subscribe(b, numbers, func(int) { count++ })

	Publish(b, numbers, 1)
	sub.Remove()
	sub.Remove() // idempotent
	Publish(b, numbers, 2)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if b.Len(numbers.Name()) != 0 {
		t.Errorf("Len = %d, want 0", b.Len(numbers.Name()))
	}
}

func TestRemoveDuringPublish(t *testing.T) {
	b := NewBroker()
	var second *Subscription
	secondCalls := 0

	Subscribe(b, numbers, func(int) { second.Remove() })
	second = Subscribe(b, numbers, func(int) { secondCalls++ })

	Publish(b, numbers, 1)
	if secondCalls != 0 {
		t.Errorf("removed handler invoked %d times during in-flight publish", secondCalls)
	}
}

func TestConcurrentSubscribePublish(t *testing.T) {
	b := NewBroker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := Subscribe(b, numbers, func(int) {})
			Publish(b, numbers, 1)
			sub.Remove()
		}()
	}
	wg.Wait()
	if b.Len(numbers.Name()) != 0 {
		t.Errorf("Len = %d after all removals", b.Len(numbers.Name()))
	}
}
