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

package stoppoint

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Route sends files matching Pattern to Provider.
type Route struct {
	// Pattern is a doublestar glob matched against the slash-separated
	// path with any leading "/" removed, e.g. "**/*.go".
	Pattern string

	Provider Provider
}

// Router picks the first route whose pattern matches a path and falls
// back to a default provider otherwise.
type Router struct {
	routes   []Route
	fallback Provider
}

// NewRouter validates the route patterns and builds a Router.
func NewRouter(fallback Provider, routes ...Route) (*Router, error) {
	if fallback == nil {
		return nil, fmt.Errorf("fallback provider is required")
	}
	for _, r := range routes {
		if !doublestar.ValidatePattern(r.Pattern) {
			return nil, fmt.Errorf("invalid stop-point pattern %q", r.Pattern)
		}
		if r.Provider == nil {
			return nil, fmt.Errorf("route %q has no provider", r.Pattern)
		}
	}
	return &Router{routes: routes, fallback: fallback}, nil
}

// ProviderFor returns the provider responsible for path.
func (r *Router) ProviderFor(path string) Provider {
	// Canonical paths are absolute; patterns are written relative.
	normalized := strings.TrimPrefix(filepath.ToSlash(path[len(filepath.VolumeName(path)):]), "/")
	for _, route := range r.routes {
		// Patterns were validated in NewRouter, so Match cannot fail.
		if ok, _ := doublestar.Match(route.Pattern, normalized); ok {
			return route.Provider
		}
	}
	return r.fallback
}

// StopPoints implements Provider.
func (r *Router) StopPoints(path string) (Set, error) {
	return r.ProviderFor(path).StopPoints(path)
}
