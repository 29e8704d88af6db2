package chat

import "sync/atomic"

// Signal is a coalescing one-bit notification. Any number of raises before
// the consumer looks collapse into one observation.
type Signal struct {
	set atomic.Bool
}

// Raise sets the flag.
func (s *Signal) Raise() {
	s.set.Store(true)
}

// IsSet reports the flag without consuming it.
func (s *Signal) IsSet() bool {
	return s.set.Load()
}

// Take clears the flag and reports whether it was set.
func (s *Signal) Take() bool {
	return s.set.Swap(false)
}

// Clear drops a pending notification.
func (s *Signal) Clear() {
	s.set.Store(false)
}
