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

// Package breakcmd implements the break command, which resolves one
// location into a breakpoint and reports the outcome.
package breakcmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/breakctl/internal/breakpoint"
	"github.com/tombee/breakctl/internal/cli/format"
	"github.com/tombee/breakctl/internal/commands/shared"
	"github.com/tombee/breakctl/internal/debug"
	"github.com/tombee/breakctl/internal/frame"
	"github.com/tombee/breakctl/internal/registry"
)

// BreakpointJSON is a created breakpoint in JSON output.
type BreakpointJSON struct {
	ID        int    `json:"id"`
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	Line      int    `json:"line,omitempty"`
	Separator string `json:"separator,omitempty"`
	Member    string `json:"member,omitempty"`
	Condition string `json:"condition,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// BreakResponse is the JSON output of the break command.
type BreakResponse struct {
	shared.JSONResponse
	LocationKind   string             `json:"location_kind,omitempty"`
	Breakpoint     *BreakpointJSON    `json:"breakpoint,omitempty"`
	ConditionValid bool               `json:"condition_valid"`
	Warnings       []string           `json:"warnings,omitempty"`
	ValidLines     []int              `json:"valid_lines,omitempty"`
	Errors         []shared.JSONError `json:"errors,omitempty"`
}

// NewCommand creates the break command.
func NewCommand() *cobra.Command {
	var (
		frameFlag     string
		conditionFlag string
	)

	cmd := &cobra.Command{
		Use:   "break <location> [if <expr>]",
		Short: "Resolve a location into a breakpoint",
		Long: `Resolve a location into a breakpoint and report the outcome.

A location is one of:
  LINE               a line in the active frame's file (needs --frame)
  FILE:LINE          a line in a file
  Class.method       a singleton method
  Class#method       an instance method

Line breakpoints are only set on lines where execution can stop. When a
line cannot stop, the lines around it are printed with the valid stop
points marked.`,
		Example: `  breakctl break main.go:42
  breakctl break 12 --frame app/user.rb:3
  breakctl break User#save if name == "admin"
  breakctl break lib/cart.rb:18 --condition "total > 100"`,
		Aliases: []string{"b"},
		Args:    cobra.MinimumNArgs(1),
		Annotations: map[string]string{
			"group": "breakpoints",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, cond, err := splitArgs(args, conditionFlag)
			if err != nil {
				return err
			}
			return run(cmd, loc, cond, frameFlag)
		},
	}

	cmd.Flags().StringVar(&frameFlag, "frame", "", "Active frame as file[:line], used by bare line numbers")
	cmd.Flags().StringVar(&conditionFlag, "condition", "", "Condition expression (alternative to 'if <expr>')")

	return cmd
}

// splitArgs separates the location from a trailing "if <expr>".
func splitArgs(args []string, conditionFlag string) (string, string, error) {
	loc := args[0]
	var cond string
	if len(args) > 1 {
		if args[1] != "if" || len(args) == 2 {
			return "", "", fmt.Errorf("unexpected arguments %q: expected 'if <expr>'", strings.Join(args[1:], " "))
		}
		cond = strings.Join(args[2:], " ")
	}
	if conditionFlag != "" {
		if cond != "" {
			return "", "", fmt.Errorf("give the condition either with 'if' or with --condition, not both")
		}
		cond = conditionFlag
	}
	return loc, cond, nil
}

// parseFrame parses file[:line]. The line defaults to 1.
func parseFrame(s string) (frame.Frame, error) {
	file, line := s, 1
	if i := strings.LastIndex(s, ":"); i > 0 {
		n, err := strconv.Atoi(s[i+1:])
		if err != nil || n < 1 {
			return frame.Frame{}, fmt.Errorf("invalid --frame %q: line must be a positive number", s)
		}
		file, line = s[:i], n
	}
	return frame.Frame{File: file, Line: line}, nil
}

func run(cmd *cobra.Command, loc, cond, frameFlag string) error {
	ctx := cmd.Context()

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	logger := shared.NewLogger(cfg, cmd.ErrOrStderr())

	s, err := shared.NewSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if frameFlag != "" {
		f, err := parseFrame(frameFlag)
		if err != nil {
			return err
		}
		s.Frames.Set(f)
	}

	res, resolveErr := s.Resolver.Resolve(ctx, loc, cond)

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if err := shared.EmitJSON(out, newResponse(res, resolveErr)); err != nil {
			return err
		}
	} else {
		if err := debug.ReportBreak(out, styles(out), res, resolveErr); err != nil {
			return shared.NewRejectedError("breakpoint not set", err)
		}
	}

	if err := s.WriteMetrics(cmd.ErrOrStderr()); err != nil {
		logger.Warn("failed to write metrics", "error", err)
	}

	if resolveErr != nil {
		return shared.NewReportedError(shared.ExitErrorFor(resolveErr).Code)
	}
	return nil
}

func styles(out io.Writer) debug.Styles {
	if format.ColorEnabled(out, shared.GetNoColor()) {
		return debug.ColorStyles()
	}
	return debug.PlainStyles()
}

func newResponse(res *breakpoint.Result, err error) BreakResponse {
	resp := BreakResponse{
		JSONResponse: shared.JSONResponse{
			Version: "1.0",
			Command: "break",
			Success: err == nil,
		},
	}

	if res != nil {
		if res.Location != nil {
			resp.LocationKind = string(res.Location.Kind())
		}
		resp.Breakpoint = toJSON(res.Breakpoint)
		resp.ConditionValid = res.ConditionValid
		resp.Warnings = res.Warnings
	}

	if err != nil {
		resp.Errors = []shared.JSONError{shared.NewJSONError(err)}
		var nsp *breakpoint.NoStopPointError
		if errors.As(err, &nsp) && nsp.Window != nil {
			resp.ValidLines = nsp.Window.StopPoints()
		}
	}
	return resp
}

func toJSON(bp *registry.Breakpoint) *BreakpointJSON {
	if bp == nil {
		return nil
	}
	return &BreakpointJSON{
		ID:        bp.ID,
		Kind:      string(bp.Kind),
		Source:    bp.Source,
		Line:      bp.Line,
		Separator: string(bp.Separator),
		Member:    bp.Member,
		Condition: bp.Condition,
		Enabled:   bp.Enabled,
	}
}
