package mcp23s17

import (
	"fmt"
	"sync"
)

// InterruptListener receives interrupt events, either for a single pin via
// PinView.AddListener or for all pins via MCP23S17.AddGlobalListener.
//
// Listeners are invoked synchronously on the goroutine watching the interrupt
// line, so they must not block or perform long-running work.
//
// Registration compares listeners by identity: adding the same listener value
// twice fails, as does removing one that was never added.
type InterruptListener interface {
	// OnInterrupt is called with the value captured on the pin at the moment
	// the interrupt occurred.
	OnInterrupt(capturedValue bool, pin Pin)
}

// ListenerFunc wraps a plain function into a registerable InterruptListener.
// Every call produces a distinct listener identity, so keep the returned
// value around if the listener is to be removed later.
func ListenerFunc(f func(capturedValue bool, pin Pin)) InterruptListener {
	return &listenerFunc{f}
}

type listenerFunc struct {
	f func(bool, Pin)
}

func (l *listenerFunc) OnInterrupt(capturedValue bool, pin Pin) {
	l.f(capturedValue, pin)
}

// listenerSet is a deduplicated collection of interrupt listeners. The lock
// also covers dispatch, so listeners cannot be added or removed while an
// interrupt is being relayed to the same set.
type listenerSet struct {
	mu        sync.Mutex
	listeners map[InterruptListener]struct{}
}

func (s *listenerSet) add(listener InterruptListener) error {
	if listener == nil {
		return fmt.Errorf("%w: cannot add nil listener", ErrInvalidListener)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listeners[listener]; ok {
		return fmt.Errorf("%w: listener already registered", ErrInvalidListener)
	}
	if s.listeners == nil {
		s.listeners = make(map[InterruptListener]struct{})
	}
	s.listeners[listener] = struct{}{}
	return nil
}

func (s *listenerSet) remove(listener InterruptListener) error {
	if listener == nil {
		return fmt.Errorf("%w: cannot remove nil listener", ErrInvalidListener)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listeners[listener]; !ok {
		return fmt.Errorf("%w: cannot remove unregistered listener", ErrInvalidListener)
	}
	delete(s.listeners, listener)
	return nil
}

func (s *listenerSet) dispatch(capturedValue bool, pin Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for listener := range s.listeners {
		listener.OnInterrupt(capturedValue, pin)
	}
}
