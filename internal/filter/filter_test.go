package filter

import (
	"errors"
	"testing"
)

func TestSetFilter(t *testing.T) {
	m := NewModel()
	var got []Type
	m.Subscribe(func(t Type) { got = append(got, t) })

	if m.Current() != Everything {
		t.Fatalf("expected default everything, got %s", m.Current())
	}
	if err := m.SetFilter(Future); err != nil {
		t.Fatalf("set future: %v", err)
	}
	if err := m.SetFilter(Future); err != nil {
		t.Fatalf("set future again: %v", err)
	}

	if m.Current() != Future {
		t.Fatalf("expected future, got %s", m.Current())
	}
	if len(got) != 2 {
		t.Fatalf("expected a notification per call, got %v", got)
	}
}

func TestSetFilterRejectsUnknown(t *testing.T) {
	m := NewModel()
	called := false
	m.Subscribe(func(Type) { called = true })

	err := m.SetFilter("past")
	if !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
	if called || m.Current() != Everything {
		t.Fatal("unknown filter must not change state")
	}
}
