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

// Package location classifies raw breakpoint location text.
//
// A location is one of three shapes:
//
//	12              bare line in the active frame's file
//	app/user.rb:12  explicit file and line
//	User#save       instance member (User.find for a class member)
//
// Parse tries each shape in that order and returns the first match.
package location

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Separator distinguishes class-level members from instance members.
type Separator string

const (
	// SeparatorClass is written "." and targets a class/module-level member.
	SeparatorClass Separator = "."

	// SeparatorInstance is written "#" and targets an instance member.
	SeparatorInstance Separator = "#"
)

// String returns the separator as written in a location.
func (s Separator) String() string { return string(s) }

// Kind names the shape of a parsed location.
type Kind string

const (
	KindLine     Kind = "line"
	KindFileLine Kind = "file_line"
	KindMethod   Kind = "method"
)

// Location is the result of a successful Parse. It is one of LineOnly,
// FileLine or MethodRef.
type Location interface {
	Kind() Kind
	String() string
	isLocation()
}

// LineOnly is a line number in the currently active source context.
type LineOnly struct {
	Line int
}

// FileLine is an explicit file and line. File is used verbatim.
type FileLine struct {
	File string
	Line int
}

// MethodRef is an Owner.Member or Owner#Member reference.
type MethodRef struct {
	Owner     string
	Separator Separator
	Member    string
}

func (LineOnly) Kind() Kind  { return KindLine }
func (FileLine) Kind() Kind  { return KindFileLine }
func (MethodRef) Kind() Kind { return KindMethod }

func (l LineOnly) String() string  { return strconv.Itoa(l.Line) }
func (l FileLine) String() string  { return fmt.Sprintf("%s:%d", l.File, l.Line) }
func (m MethodRef) String() string { return m.Owner + string(m.Separator) + m.Member }

func (LineOnly) isLocation()  {}
func (FileLine) isLocation()  {}
func (MethodRef) isLocation() {}

var (
	lineOnlyPattern  = regexp.MustCompile(`^(\d+)$`)
	fileLinePattern  = regexp.MustCompile(`^([^:]+):(\d+)$`)
	methodRefPattern = regexp.MustCompile(`^([^.#]+)([.#])(.+)$`)
)

// matcher attempts one location shape.
type matcher func(raw string) (Location, bool)

// matchers are tried in order; the first structural match wins.
var matchers = []matcher{
	matchLineOnly,
	matchFileLine,
	matchMethodRef,
}

// Parse classifies raw. It returns false when raw matches none of the
// supported shapes; that is not an error, callers report it as an
// unparseable location.
func Parse(raw string) (Location, bool) {
	for _, m := range matchers {
		if loc, ok := m(raw); ok {
			return loc, true
		}
	}
	return nil, false
}

// IsLineShaped reports whether loc names a line (with or without a file).
func IsLineShaped(loc Location) bool {
	switch loc.(type) {
	case LineOnly, FileLine:
		return true
	default:
		return false
	}
}

func matchLineOnly(raw string) (Location, bool) {
	m := lineOnlyPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return LineOnly{Line: atoi(m[1])}, true
}

func matchFileLine(raw string) (Location, bool) {
	m := fileLinePattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return FileLine{File: m[1], Line: atoi(m[2])}, true
}

func matchMethodRef(raw string) (Location, bool) {
	m := methodRefPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return MethodRef{Owner: m[1], Separator: Separator(m[2]), Member: m[3]}, true
}

// atoi parses a digit string, saturating at math.MaxInt so oversized
// line numbers are reported as out of range rather than rejected.
func atoi(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt
	}
	return n
}
