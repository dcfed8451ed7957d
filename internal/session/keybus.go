package session

import "sync"

// KeyEscape is the key name that cancels an open edit session.
const KeyEscape = "Escape"

// KeyBus delivers global key presses to the sessions currently listening.
// Listening is a scoped resource: Acquire on entering an edit state and
// Release on every exit.
type KeyBus struct {
	mu        sync.Mutex
	listeners []*KeyListener
}

// KeyListener is a registration returned by KeyBus.Acquire.
type KeyListener struct {
	bus *KeyBus
	fn  func(key string)
}

// NewKeyBus creates an empty key bus.
func NewKeyBus() *KeyBus {
	return &KeyBus{}
}

// Acquire registers fn for key presses until the listener is released.
func (b *KeyBus) Acquire(fn func(key string)) *KeyListener {
	l := &KeyListener{bus: b, fn: fn}
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
	return l
}

// Release unregisters the listener. It is safe to call more than once and
// on a nil listener.
func (l *KeyListener) Release() {
	if l == nil {
		return
	}
	b := l.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, other := range b.listeners {
		if other == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Press delivers a key to every active listener in acquisition order.
// Listeners may release themselves while handling the key.
func (b *KeyBus) Press(key string) {
	b.mu.Lock()
	listeners := append([]*KeyListener(nil), b.listeners...)
	b.mu.Unlock()

	for _, l := range listeners {
		l.fn(key)
	}
}

// Active returns the number of registered listeners.
func (b *KeyBus) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
