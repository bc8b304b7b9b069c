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

// Package symbols resolves owner names written in method locations to
// the types the debugged program has loaded.
package symbols

import (
	"sort"
	"strings"
	"sync"
)

// TypeHandle identifies a loaded type.
type TypeHandle struct {
	// Name is the fully qualified name, e.g. "Admin::User".
	Name string
}

// Table is an in-memory set of loaded type names plus aliases pointing
// at them. Hosts call Define as types are loaded.
type Table struct {
	mu      sync.RWMutex
	types   map[string]TypeHandle
	aliases map[string]string
}

// NewTable creates a table pre-populated with types.
func NewTable(types ...string) *Table {
	t := &Table{
		types:   make(map[string]TypeHandle),
		aliases: make(map[string]string),
	}
	for _, name := range types {
		t.Define(name)
	}
	return t
}

// Define records name as loaded.
func (t *Table) Define(name string) {
	name = normalize(name)
	if name == "" {
		return
	}
	t.mu.Lock()
	t.types[name] = TypeHandle{Name: name}
	t.mu.Unlock()
}

// Alias makes alias resolve to target. The target does not have to be
// defined yet.
func (t *Table) Alias(alias, target string) {
	t.mu.Lock()
	t.aliases[normalize(alias)] = normalize(target)
	t.mu.Unlock()
}

// ResolveType returns the handle for name. A leading "::" (top-level
// scope) is ignored and aliases are followed one level.
func (t *Table) ResolveType(name string) (TypeHandle, bool) {
	name = normalize(name)

	t.mu.RLock()
	defer t.mu.RUnlock()

	if target, ok := t.aliases[name]; ok {
		name = target
	}
	h, ok := t.types[name]
	return h, ok
}

// Names returns the defined type names in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.types))
	for n := range t.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "::")
}
