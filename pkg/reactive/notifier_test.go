package reactive

import (
	"reflect"
	"testing"
)

func TestNotifierOrder(t *testing.T) {
	n := NewNotifier[int]()
	var got []string
	n.Subscribe(func(int) { got = append(got, "a") })
	n.Subscribe(func(int) { got = append(got, "b") })
	n.Subscribe(func(int) { got = append(got, "c") })

	n.Emit(1)

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestNotifierUnsubscribe(t *testing.T) {
	n := NewNotifier[int]()
	calls := 0
	sub := n.Subscribe(func(int) { calls++ })

	if !sub.Active() {
		t.Fatal("new subscription should be active")
	}
	sub.Unsubscribe()
	sub.Unsubscribe()
	n.Emit(1)

	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
	if sub.Active() {
		t.Error("subscription should be inactive after Unsubscribe")
	}
	if n.Len() != 0 {
		t.Errorf("Len() = %d, want 0", n.Len())
	}

	var nilSub *Subscription
	nilSub.Unsubscribe()
}

func TestNotifierUnsubscribeKeepsOrder(t *testing.T) {
	n := NewNotifier[int]()
	var got []int
	subs := make([]*Subscription, 4)
	for i := range subs {
		i := i
		subs[i] = n.Subscribe(func(int) { got = append(got, i) })
	}
	subs[1].Unsubscribe()

	n.Emit(0)

	want := []int{0, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestNotifierSubscribeDuringEmit(t *testing.T) {
	n := NewNotifier[int]()
	late := 0
	added := false
	n.Subscribe(func(int) {
		if !added {
			added = true
			n.Subscribe(func(int) { late++ })
		}
	})

	n.Emit(1)
	if late != 0 {
		t.Fatalf("subscriber added during emit was called %d times, want 0", late)
	}

	n.Emit(2)
	if late != 1 {
		t.Errorf("subscriber added during emit: calls after next emit = %d, want 1", late)
	}
}

func TestNotifierUnsubscribeDuringEmit(t *testing.T) {
	n := NewNotifier[int]()
	var second *Subscription
	secondCalls := 0
	firstCalls := 0

	n.Subscribe(func(int) {
		firstCalls++
		second.Unsubscribe()
	})
	second = n.Subscribe(func(int) { secondCalls++ })

	n.Emit(1)
	n.Emit(2)

	if firstCalls != 2 {
		t.Errorf("first calls = %d, want 2", firstCalls)
	}
	if secondCalls != 0 {
		t.Errorf("removed subscriber calls = %d, want 0", secondCalls)
	}
}

func TestNotifierSelfUnsubscribe(t *testing.T) {
	n := NewNotifier[int]()
	calls := 0
	var sub *Subscription
	sub = n.Subscribe(func(int) {
		calls++
		sub.Unsubscribe()
	})
	after := 0
	n.Subscribe(func(int) { after++ })

	n.Emit(1)
	n.Emit(2)

	if calls != 1 {
		t.Errorf("self-removing subscriber calls = %d, want 1", calls)
	}
	if after != 2 {
		t.Errorf("following subscriber calls = %d, want 2", after)
	}
}

func TestNotifierReentrantEmit(t *testing.T) {
	n := NewNotifier[int]()
	var seen []int
	n.Subscribe(func(v int) {
		seen = append(seen, v)
		if v == 1 {
			n.Emit(2)
		}
	})

	n.Emit(1)

	want := []int{1, 2}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}

func TestSubscriptionIDsUnique(t *testing.T) {
	n := NewNotifier[int]()
	a := n.Subscribe(func(int) {})
	b := n.Subscribe(func(int) {})
	if a.ID() == b.ID() {
		t.Errorf("subscription IDs collide: %d", a.ID())
	}
}
