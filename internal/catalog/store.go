package catalog

import "sync/atomic"

// Store holds the current catalog and can be swapped while sessions read it.
type Store struct {
	p atomic.Pointer[Catalog]
}

func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.p.Store(c)
	return s
}

// Load returns the current catalog.
func (s *Store) Load() *Catalog {
	return s.p.Load()
}

// Swap replaces the current catalog and returns the previous one.
func (s *Store) Swap(c *Catalog) *Catalog {
	return s.p.Swap(c)
}
