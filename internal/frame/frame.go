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

// Package frame tracks the execution frame the debugger is stopped in.
package frame

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoFrame is returned when no frame is active.
var ErrNoFrame = errors.New("no active frame")

// Frame is the position of a suspended execution context.
type Frame struct {
	File     string
	Line     int
	Function string
}

// String renders the frame as file:line.
func (f Frame) String() string {
	if f.Function != "" {
		return fmt.Sprintf("%s:%d in %s", f.File, f.Line, f.Function)
	}
	return fmt.Sprintf("%s:%d", f.File, f.Line)
}

// Tracker holds the active frame. The zero value has no active frame.
type Tracker struct {
	mu     sync.RWMutex
	active *Frame
}

// NewTracker creates a tracker with no active frame.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Set makes f the active frame.
func (t *Tracker) Set(f Frame) {
	t.mu.Lock()
	t.active = &f
	t.mu.Unlock()
}

// Clear drops the active frame.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.active = nil
	t.mu.Unlock()
}

// ActiveFrame returns the active frame or ErrNoFrame.
func (t *Tracker) ActiveFrame() (Frame, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.active == nil {
		return Frame{}, ErrNoFrame
	}
	return *t.active, nil
}
