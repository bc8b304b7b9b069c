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

// Package registry owns breakpoint records: it assigns ids, stores
// breakpoints, and answers stop-point queries for source files.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tombee/breakctl/internal/location"
	"github.com/tombee/breakctl/internal/log"
	"github.com/tombee/breakctl/internal/source"
	"github.com/tombee/breakctl/internal/stoppoint"
)

// Registry combines a Store with a stop-point Provider. Creation and
// enable/disable are serialized so id assignment stays ordered even when
// several goroutines resolve breakpoints at once.
type Registry struct {
	store Store
	stops stoppoint.Provider
	now   func() time.Time

	logger *slog.Logger

	// mu serializes writes
	mu sync.Mutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = log.WithComponent(logger, "registry")
	}
}

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates a registry.
func New(store Store, stops stoppoint.Provider, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		stops:  stops,
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddLine registers an enabled breakpoint at path:line.
func (r *Registry) AddLine(ctx context.Context, path string, line int, condition string) (*Breakpoint, error) {
	return r.add(ctx, &Breakpoint{
		Kind:      KindLine,
		Source:    path,
		Line:      line,
		Condition: condition,
	})
}

// AddMethod registers an enabled breakpoint on owner/member.
func (r *Registry) AddMethod(ctx context.Context, owner string, sep location.Separator, member, condition string) (*Breakpoint, error) {
	return r.add(ctx, &Breakpoint{
		Kind:      KindMethod,
		Source:    owner,
		Separator: sep,
		Member:    member,
		Condition: condition,
	})
}

func (r *Registry) add(ctx context.Context, bp *Breakpoint) (*Breakpoint, error) {
	bp.Enabled = true
	bp.CreatedAt = r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.store.Insert(ctx, bp); err != nil {
		return nil, err
	}

	r.logger.Debug("breakpoint registered",
		slog.Int(log.BreakpointIDKey, bp.ID),
		slog.String("location", bp.String()),
	)
	return bp.clone(), nil
}

// SetEnabled enables or disables breakpoint id.
func (r *Registry) SetEnabled(ctx context.Context, id int, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.SetEnabled(ctx, id, enabled)
}

// Get returns breakpoint id.
func (r *Registry) Get(ctx context.Context, id int) (*Breakpoint, error) {
	return r.store.Get(ctx, id)
}

// List returns all breakpoints ordered by id.
func (r *Registry) List(ctx context.Context) ([]*Breakpoint, error) {
	return r.store.List(ctx)
}

// Delete removes breakpoint id.
func (r *Registry) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(ctx, id)
}

// Close closes the underlying store.
func (r *Registry) Close() error {
	return r.store.Close()
}

// IsPotentialLine reports whether line is a stop point in path.
func (r *Registry) IsPotentialLine(path string, line int) (bool, error) {
	set, err := r.PotentialLines(path)
	if err != nil {
		return false, err
	}
	return set.Contains(line), nil
}

// PotentialLines returns every stop point in path.
func (r *Registry) PotentialLines(path string) (stoppoint.Set, error) {
	set, err := r.stops.StopPoints(path)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stop points for %s: %w", path, err)
	}
	return set, nil
}

// LineCount returns the number of lines in path.
func (r *Registry) LineCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &source.UnreadableError{Path: path, Cause: err}
	}
	defer f.Close()
	return source.CountLines(f)
}
