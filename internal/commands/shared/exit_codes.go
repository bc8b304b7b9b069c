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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tombee/breakctl/internal/breakpoint"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

// Exit codes for breakctl commands
const (
	ExitSuccess          = 0
	ExitRejected         = 1 // location rejected, or any unclassified failure
	ExitConfig           = 2
	ExitInvalidCondition = 3 // breakpoint created but disabled
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewRejectedError creates an error for a breakpoint request that created nothing
func NewRejectedError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitRejected,
		Message: msg,
		Cause:   cause,
	}
}

// NewConfigError creates an error for configuration failures
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitConfig,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidConditionError creates an error for a breakpoint kept disabled
// because its condition does not parse
func NewInvalidConditionError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidCondition,
		Message: msg,
		Cause:   cause,
	}
}

// ExitErrorFor wraps a resolver error with the matching exit code.
func ExitErrorFor(err error) *ExitError {
	var condErr *breakpoint.InvalidConditionError
	if errors.As(err, &condErr) {
		return NewInvalidConditionError("breakpoint disabled", err)
	}
	return NewRejectedError("breakpoint not set", err)
}

// NewReportedError returns an ExitError for a failure the command has
// already shown to the user. HandleExitError prints nothing for it.
func NewReportedError(code int) *ExitError {
	return &ExitError{Code: code}
}

// HandleExitError checks if an error is an ExitError and exits with the appropriate code
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(reportExitError(os.Stderr, err))
}

// reportExitError prints err and returns the exit code for it.
func reportExitError(w io.Writer, err error) int {
	code := ExitRejected
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}

	// User-visible causes print their own message instead of the chain.
	var userErr breakerrors.UserVisibleError
	if errors.As(err, &userErr) && userErr.IsUserVisible() {
		fmt.Fprintln(w, "Error:", userErr.UserMessage())
	} else if msg := err.Error(); msg != "" {
		fmt.Fprintln(w, "Error:", msg)
	}

	printUserVisibleSuggestion(w, err)
	return code
}

// printUserVisibleSuggestion checks if an error implements UserVisibleError
// and prints the suggestion if available.
func printUserVisibleSuggestion(w io.Writer, err error) {
	// Walk the error chain to find a UserVisibleError
	for err != nil {
		if userErr, ok := err.(breakerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				suggestion := userErr.Suggestion()
				if suggestion != "" {
					fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
				}
			}
			return
		}

		// Continue unwrapping
		err = errors.Unwrap(err)
	}
}
