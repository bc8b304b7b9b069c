// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"context"
	"slices"
	"strconv"
	"sync"

	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

// Store holds breakpoint records and assigns their ids.
type Store interface {
	// Insert assigns bp an id, stores it and returns the id.
	Insert(ctx context.Context, bp *Breakpoint) (int, error)

	// Get returns a copy of the breakpoint with id.
	Get(ctx context.Context, id int) (*Breakpoint, error)

	// List returns copies of all breakpoints ordered by id.
	List(ctx context.Context) ([]*Breakpoint, error)

	// SetEnabled updates the enabled flag of breakpoint id.
	SetEnabled(ctx context.Context, id int, enabled bool) error

	// Delete removes breakpoint id.
	Delete(ctx context.Context, id int) error

	// Close releases store resources.
	Close() error
}

func notFound(id int) error {
	return &breakerrors.NotFoundError{Resource: "breakpoint", ID: strconv.Itoa(id)}
}

// MemoryStore keeps breakpoints in a map.
type MemoryStore struct {
	mu          sync.RWMutex
	breakpoints map[int]*Breakpoint
	nextID      int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		breakpoints: make(map[int]*Breakpoint),
		nextID:      1,
	}
}

// Insert implements Store.
func (s *MemoryStore) Insert(ctx context.Context, bp *Breakpoint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	bp.ID = id
	s.breakpoints[id] = bp.clone()
	return id, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id int) (*Breakpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bp, ok := s.breakpoints[id]
	if !ok {
		return nil, notFound(id)
	}
	return bp.clone(), nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]*Breakpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Breakpoint, 0, len(s.breakpoints))
	for _, bp := range s.breakpoints {
		out = append(out, bp.clone())
	}
	slices.SortFunc(out, func(a, b *Breakpoint) int { return a.ID - b.ID })
	return out, nil
}

// SetEnabled implements Store.
func (s *MemoryStore) SetEnabled(ctx context.Context, id int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp, ok := s.breakpoints[id]
	if !ok {
		return notFound(id)
	}
	bp.Enabled = enabled
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.breakpoints[id]; !ok {
		return notFound(id)
	}
	delete(s.breakpoints, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
