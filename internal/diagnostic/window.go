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

// Package diagnostic renders the annotated source excerpt shown when a
// breakpoint is requested on a line that is not a stop point.
package diagnostic

import (
	"fmt"
	"strconv"
	"strings"
)

// Radius is the number of lines shown on each side of the target line.
const Radius = 5

// StopMarker prefixes lines that are stop points. Other lines get the
// same number of spaces.
const StopMarker = "[B]"

// SourceReader is the subset of source.Index the formatter needs.
type SourceReader interface {
	ReadLines(path string, from, to int) ([]string, error)
	IsStopPoint(path string, line int) (bool, error)
}

// Line is one line of a Window.
type Line struct {
	Number    int
	StopPoint bool
	Text      string
}

// Window is a clamped excerpt around a rejected target line.
type Window struct {
	// File is the path as the user wrote it.
	File string

	// Path is the canonical path the lines were read from.
	Path string

	// Target is the rejected line.
	Target int

	Lines []Line
}

// Bounds returns the clamped window [max(1,target-Radius), min(length,target+Radius)].
// When the result is empty, first is greater than last.
func Bounds(target, length int) (first, last int) {
	return max(1, target-Radius), min(length, target+Radius)
}

// Render reads the window around target from path and marks each line
// that is a stop point. Only lines inside the window are read.
func Render(r SourceReader, file, path string, target, length int) (*Window, error) {
	first, last := Bounds(target, length)

	w := &Window{File: file, Path: path, Target: target}
	if first > last {
		return w, nil
	}

	texts, err := r.ReadLines(path, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to read window %d-%d of %s: %w", first, last, path, err)
	}

	w.Lines = make([]Line, 0, len(texts))
	for i, text := range texts {
		n := first + i
		stop, err := r.IsStopPoint(path, n)
		if err != nil {
			return nil, fmt.Errorf("failed to check stop point %s:%d: %w", path, n, err)
		}
		w.Lines = append(w.Lines, Line{Number: n, StopPoint: stop, Text: text})
	}

	return w, nil
}

// Width is the number of digits of the largest line number in the window.
func (w *Window) Width() int {
	if len(w.Lines) == 0 {
		return 0
	}
	return len(strconv.Itoa(w.Lines[len(w.Lines)-1].Number))
}

// StopPoints returns the stop-point line numbers in the window.
func (w *Window) StopPoints() []int {
	var lines []int
	for _, l := range w.Lines {
		if l.StopPoint {
			lines = append(lines, l.Number)
		}
	}
	return lines
}

// String renders the window one line per source line, line numbers
// right-aligned to a common width:
//
//	[B] 1: x = 1
//	    2:
//	[B] 3: y = 2
func (w *Window) String() string {
	var b strings.Builder
	width := w.Width()
	blank := strings.Repeat(" ", len(StopMarker))
	for _, l := range w.Lines {
		marker := blank
		if l.StopPoint {
			marker = StopMarker
		}
		fmt.Fprintf(&b, "%s %*d: %s\n", marker, width, l.Number, l.Text)
	}
	return b.String()
}
