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
	"github.com/tombee/breakctl/internal/breakpoint"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

// Error codes for structured JSON output
const (
	// Request errors (E001-E099)
	ErrorCodeNoLocation   = "E001" // Empty location
	ErrorCodeNoFrame      = "E002" // Bare line with no active frame
	ErrorCodeUnresolvable = "E003" // Neither line nor method shaped

	// Source errors (E100-E199)
	ErrorCodeSourceUnreadable = "E101" // File missing or unreadable
	ErrorCodeLineOutOfRange   = "E102" // Line past end of file
	ErrorCodeNoStopPoint      = "E103" // Line can never stop

	// Condition errors (E200-E299)
	ErrorCodeInvalidCondition = "E201" // Condition does not parse

	// Configuration errors (E300-E399)
	ErrorCodeInvalidConfig = "E301" // Config file or values rejected

	// Internal errors (E400-E499)
	ErrorCodeInternal = "E401" // Anything unclassified
)

// ErrorCodeFor maps an error to its JSON error code.
func ErrorCodeFor(err error) string {
	var cfgErr *breakerrors.ConfigError
	if breakerrors.As(err, &cfgErr) {
		return ErrorCodeInvalidConfig
	}

	var c breakerrors.ErrorClassifier
	if !breakerrors.As(err, &c) {
		return ErrorCodeInternal
	}

	switch c.ErrorType() {
	case breakpoint.OutcomeNoLocation:
		return ErrorCodeNoLocation
	case breakpoint.OutcomeNoFrame:
		return ErrorCodeNoFrame
	case breakpoint.OutcomeUnresolvableLocation:
		return ErrorCodeUnresolvable
	case breakpoint.OutcomeSourceUnreadable:
		return ErrorCodeSourceUnreadable
	case breakpoint.OutcomeLineOutOfRange:
		return ErrorCodeLineOutOfRange
	case breakpoint.OutcomeNoStopPoint:
		return ErrorCodeNoStopPoint
	case breakpoint.OutcomeInvalidCondition:
		return ErrorCodeInvalidCondition
	default:
		return ErrorCodeInternal
	}
}
