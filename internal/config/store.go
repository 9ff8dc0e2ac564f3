package config

import "sync/atomic"

// Store publishes an immutable Render to any number of reader goroutines.
// Writers construct a complete new value and swap it in one atomic pointer
// store; readers take a cheap snapshot per frame. There is no lock anywhere
// on the frame path.
type Store struct {
	ptr atomic.Pointer[Render]
}

// NewStore publishes an initial configuration.
func NewStore(initial Render) *Store {
	s := &Store{}
	s.ptr.Store(&initial)
	return s
}

// Load returns the current published configuration. The pointee must be
// treated as read-only; use Update or Replace to change it.
func (s *Store) Load() *Render {
	return s.ptr.Load()
}

// Snapshot returns a private copy the caller may mutate (the per-frame
// effective config the mapping engine writes into).
func (s *Store) Snapshot() Render {
	cfg := *s.ptr.Load()
	// The mapping slice is shared by the snapshot; per-frame mutation only
	// touches scalar fields, so a shallow copy is sufficient and free.
	return cfg
}

// Replace publishes a whole new configuration.
func (s *Store) Replace(cfg Render) {
	s.ptr.Store(&cfg)
}

// Update clones the current config, applies mutate, and publishes the
// result. This is the single-writer path used by key handlers.
func (s *Store) Update(mutate func(*Render)) {
	next := *s.ptr.Load()
	mutate(&next)
	s.ptr.Store(&next)
}
