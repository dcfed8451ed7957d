// Package filter holds the single active list filter.
package filter

import (
	"errors"
	"fmt"
	"sync"
)

// Type is a list filter.
type Type string

// Filter types
const (
	Everything Type = "everything"
	Future     Type = "future"
)

// Types lists the recognized filters in display order.
var Types = []Type{Everything, Future}

// ErrUnknownFilter is returned by SetFilter for unrecognized values.
var ErrUnknownFilter = errors.New("unknown filter")

// Parse converts a string into a filter type.
func Parse(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Observer receives the filter value after every SetFilter call.
type Observer func(Type)

// Model stores the current filter. The zero value is not usable; use NewModel.
type Model struct {
	mu        sync.RWMutex
	current   Type
	observers []Observer
}

// NewModel creates a filter model set to Everything.
func NewModel() *Model {
	return &Model{current: Everything}
}

// Current returns the active filter.
func (m *Model) Current() Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers an observer.
func (m *Model) Subscribe(fn Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// SetFilter stores the filter and notifies observers, even when the value
// is unchanged.
func (m *Model) SetFilter(t Type) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = t
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(t)
	}
	return nil
}
