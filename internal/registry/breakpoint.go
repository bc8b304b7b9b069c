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
	"strconv"
	"time"

	"github.com/tombee/breakctl/internal/location"
)

// Kind distinguishes line breakpoints from method breakpoints.
type Kind string

const (
	// KindLine is a breakpoint on a file and line.
	KindLine Kind = "line"

	// KindMethod is a breakpoint on an owner and member.
	KindMethod Kind = "method"
)

// Breakpoint is a registered breakpoint.
type Breakpoint struct {
	// ID is assigned by the registry. Ids start at 1 and are never reused.
	ID int

	Kind Kind

	// Source is the canonical file path for line breakpoints and the
	// owner name for method breakpoints.
	Source string

	// Line is set for line breakpoints.
	Line int

	// Separator and Member are set for method breakpoints.
	Separator location.Separator
	Member    string

	// Condition is the guard expression; empty means unconditional.
	Condition string

	Enabled   bool
	CreatedAt time.Time
}

// Position renders where in Source the breakpoint sits: the line number
// for line breakpoints, the separator and member for method breakpoints.
func (b *Breakpoint) Position() string {
	if b.Kind == KindMethod {
		return string(b.Separator) + b.Member
	}
	return strconv.Itoa(b.Line)
}

// String renders the breakpoint location, e.g. "/src/a.rb:3" or "User#save".
func (b *Breakpoint) String() string {
	if b.Kind == KindMethod {
		return b.Source + b.Position()
	}
	return b.Source + ":" + b.Position()
}

// clone returns a copy so stores never hand out their internal records.
func (b *Breakpoint) clone() *Breakpoint {
	c := *b
	return &c
}
