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

package breakpoint

import (
	"fmt"

	"github.com/tombee/breakctl/internal/diagnostic"
	"github.com/tombee/breakctl/internal/registry"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

// Outcome labels. Every error below reports one of these from ErrorType.
const (
	OutcomeCreated              = "created"
	OutcomeNoLocation           = "no_location"
	OutcomeNoFrame              = "no_frame"
	OutcomeSourceUnreadable     = "source_unreadable"
	OutcomeLineOutOfRange       = "line_out_of_range"
	OutcomeNoStopPoint          = "no_stop_point"
	OutcomeUnresolvableLocation = "unresolvable_location"
	OutcomeInvalidCondition     = "invalid_condition"
	OutcomeInternal             = "internal"
)

var (
	_ breakerrors.UserVisibleError = (*requestError)(nil)
	_ breakerrors.UserVisibleError = (*SourceUnreadableError)(nil)
	_ breakerrors.UserVisibleError = (*LineOutOfRangeError)(nil)
	_ breakerrors.UserVisibleError = (*NoStopPointError)(nil)
	_ breakerrors.UserVisibleError = (*UnresolvableLocationError)(nil)
	_ breakerrors.UserVisibleError = (*InvalidConditionError)(nil)
	_ breakerrors.ErrorClassifier  = (*NoStopPointError)(nil)
)

// requestError is a fixed-message error about the shape of a request.
type requestError struct {
	kind       string
	msg        string
	suggestion string
}

func (e *requestError) Error() string       { return e.msg }
func (e *requestError) ErrorType() string   { return e.kind }
func (e *requestError) IsRetryable() bool   { return false }
func (e *requestError) IsUserVisible() bool { return true }
func (e *requestError) UserMessage() string { return e.msg }
func (e *requestError) Suggestion() string  { return e.suggestion }

var (
	// ErrNoLocationGiven is returned for an empty location. Callers
	// usually answer it with the command help.
	ErrNoLocationGiven error = &requestError{
		kind:       OutcomeNoLocation,
		msg:        "no breakpoint location given",
		suggestion: "usage: break [file:]line [if expr] | break Class(.|#)method [if expr]",
	}

	// ErrNoActiveFrame is returned for a bare line number when the
	// debugger is not stopped in any frame.
	ErrNoActiveFrame error = &requestError{
		kind:       OutcomeNoFrame,
		msg:        "no active frame to take the file from",
		suggestion: "use file:line instead of a bare line number",
	}
)

// SourceUnreadableError reports a file that does not exist or cannot be read.
type SourceUnreadableError struct {
	File  string
	Cause error
}

func (e *SourceUnreadableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no file named %s: %v", e.File, e.Cause)
	}
	return fmt.Sprintf("no file named %s", e.File)
}

func (e *SourceUnreadableError) Unwrap() error       { return e.Cause }
func (e *SourceUnreadableError) ErrorType() string   { return OutcomeSourceUnreadable }
func (e *SourceUnreadableError) IsRetryable() bool   { return false }
func (e *SourceUnreadableError) IsUserVisible() bool { return true }
func (e *SourceUnreadableError) UserMessage() string { return fmt.Sprintf("No file named %s", e.File) }
func (e *SourceUnreadableError) Suggestion() string  { return "" }

// LineOutOfRangeError reports a line past the end of the file.
type LineOutOfRangeError struct {
	// Path is the canonical path of the file.
	Path string
	Line int
	Max  int
}

func (e *LineOutOfRangeError) Error() string {
	return fmt.Sprintf("line %d out of range: %s has %d lines", e.Line, e.Path, e.Max)
}

func (e *LineOutOfRangeError) ErrorType() string   { return OutcomeLineOutOfRange }
func (e *LineOutOfRangeError) IsRetryable() bool   { return false }
func (e *LineOutOfRangeError) IsUserVisible() bool { return true }
func (e *LineOutOfRangeError) UserMessage() string {
	return fmt.Sprintf("There are only %d lines in file %s", e.Max, e.Path)
}
func (e *LineOutOfRangeError) Suggestion() string { return "" }

// NoStopPointError reports a line that exists but where execution can
// never stop. Window holds the surrounding lines with stop points marked.
type NoStopPointError struct {
	Path   string
	Line   int
	Window *diagnostic.Window
}

func (e *NoStopPointError) Error() string {
	return fmt.Sprintf("line %d is not a stop point in %s", e.Line, e.Path)
}

func (e *NoStopPointError) ErrorType() string   { return OutcomeNoStopPoint }
func (e *NoStopPointError) IsRetryable() bool   { return false }
func (e *NoStopPointError) IsUserVisible() bool { return true }

func (e *NoStopPointError) UserMessage() string {
	msg := fmt.Sprintf("Line %d is not a valid breakpoint in file %s.", e.Line, e.Path)
	if e.Window != nil && len(e.Window.Lines) > 0 {
		msg += "\n\nValid break points are:\n" + e.Window.String()
	}
	return msg
}

func (e *NoStopPointError) Suggestion() string { return "" }

// UnresolvableLocationError reports input that is neither line shaped
// nor method shaped.
type UnresolvableLocationError struct {
	Raw string
}

func (e *UnresolvableLocationError) Error() string {
	return fmt.Sprintf("invalid breakpoint location %q", e.Raw)
}

func (e *UnresolvableLocationError) ErrorType() string   { return OutcomeUnresolvableLocation }
func (e *UnresolvableLocationError) IsRetryable() bool   { return false }
func (e *UnresolvableLocationError) IsUserVisible() bool { return true }
func (e *UnresolvableLocationError) UserMessage() string { return "Invalid breakpoint location" }
func (e *UnresolvableLocationError) Suggestion() string {
	return "expected [file:]line or Class(.|#)method"
}

// InvalidConditionError is a partial success: Breakpoint was created but
// its condition does not parse, so it was disabled.
type InvalidConditionError struct {
	Expr       string
	Breakpoint *registry.Breakpoint
	Cause      error
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("breakpoint %d disabled: invalid condition %q", e.Breakpoint.ID, e.Expr)
}

func (e *InvalidConditionError) Unwrap() error       { return e.Cause }
func (e *InvalidConditionError) ErrorType() string   { return OutcomeInvalidCondition }
func (e *InvalidConditionError) IsRetryable() bool   { return false }
func (e *InvalidConditionError) IsUserVisible() bool { return true }
func (e *InvalidConditionError) UserMessage() string {
	return fmt.Sprintf("Incorrect expression \"%s\"; breakpoint disabled.", e.Expr)
}
func (e *InvalidConditionError) Suggestion() string {
	return fmt.Sprintf("breakpoint %d is kept but will not fire; delete it and set it again with a valid condition", e.Breakpoint.ID)
}

// outcomeOf maps an error returned by Resolve to its outcome label.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeCreated
	}
	var c breakerrors.ErrorClassifier
	if breakerrors.As(err, &c) {
		return c.ErrorType()
	}
	return OutcomeInternal
}
