package session

import "testing"

func TestKeyBusAcquireRelease(t *testing.T) {
	bus := NewKeyBus()
	var got []string

	l := bus.Acquire(func(key string) { got = append(got, key) })
	bus.Press(KeyEscape)
	l.Release()
	l.Release()
	bus.Press(KeyEscape)

	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if bus.Active() != 0 {
		t.Fatalf("expected no active listeners, got %d", bus.Active())
	}

	var nilListener *KeyListener
	nilListener.Release()
}

func TestKeyBusReleaseDuringPress(t *testing.T) {
	bus := NewKeyBus()
	calls := 0

	var first *KeyListener
	first = bus.Acquire(func(string) {
		calls++
		first.Release()
	})
	bus.Acquire(func(string) { calls++ })

	bus.Press(KeyEscape)
	if calls != 2 {
		t.Fatalf("expected both listeners called, got %d", calls)
	}
	if bus.Active() != 1 {
		t.Fatalf("expected 1 active listener, got %d", bus.Active())
	}
}
