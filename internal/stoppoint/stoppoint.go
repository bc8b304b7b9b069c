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

// Package stoppoint answers which source lines are stop points: lines at
// which an execution engine can suspend.
//
// # Providers
//
// A Provider computes the stop-point Set for a file. Three are built in:
//
//   - GoProvider parses Go sources and marks every line a statement
//     starts on.
//   - TextProvider applies a line heuristic suited to scripting
//     languages: blank lines, comments and bare block closers are not
//     stop points.
//   - Static serves fixed sets, for tests and for hosts that export
//     their own instruction-boundary tables.
//
// # Routing and caching
//
// Router picks a provider per file using doublestar glob rules. Cache
// memoizes sets per path and drops entries when fsnotify reports that a
// file changed.
package stoppoint

import (
	"slices"
)

// Set is the set of stop-point line numbers for one file.
type Set map[int]struct{}

// NewSet builds a Set from line numbers.
func NewSet(lines ...int) Set {
	s := make(Set, len(lines))
	for _, l := range lines {
		s[l] = struct{}{}
	}
	return s
}

// Contains reports whether line is a stop point.
func (s Set) Contains(line int) bool {
	_, ok := s[line]
	return ok
}

// Add marks line as a stop point.
func (s Set) Add(line int) {
	s[line] = struct{}{}
}

// Sorted returns the stop-point lines in ascending order.
func (s Set) Sorted() []int {
	lines := make([]int, 0, len(s))
	for l := range s {
		lines = append(lines, l)
	}
	slices.Sort(lines)
	return lines
}

// Provider computes the stop points of a file. Path is expected to be
// canonical.
type Provider interface {
	StopPoints(path string) (Set, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(path string) (Set, error)

// StopPoints implements Provider.
func (f ProviderFunc) StopPoints(path string) (Set, error) {
	return f(path)
}
