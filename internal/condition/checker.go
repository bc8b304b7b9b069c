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

// Package condition checks the syntax of breakpoint condition
// expressions. Conditions are written in the expr language
// (github.com/expr-lang/expr), e.g. `user.id == 42 && retries > 3`.
// Nothing is evaluated here; evaluation happens when a breakpoint is hit.
package condition

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/parser"

	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

// Checker validates condition syntax.
type Checker struct{}

// NewChecker creates a syntax checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Check returns nil when expr is empty (unconditional) or parses, and a
// *errors.ValidationError describing the syntax error otherwise.
func (c *Checker) Check(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	if _, err := parser.Parse(expr); err != nil {
		return &breakerrors.ValidationError{
			Field:      "condition",
			Message:    fmt.Sprintf("invalid expression %q: %s", expr, firstLine(err.Error())),
			Suggestion: "check the expression syntax, e.g. `count > 3 && name == \"x\"`",
		}
	}
	return nil
}

// Valid reports whether expr is empty or syntactically valid.
func (c *Checker) Valid(expr string) bool {
	return c.Check(expr) == nil
}

// expr errors include a multi-line caret snippet; the first line carries
// the message.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
