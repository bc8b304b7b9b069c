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

// Package lines implements the lines command, which shows where
// execution can stop in a source file.
package lines

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/breakctl/internal/breakpoint"
	"github.com/tombee/breakctl/internal/commands/shared"
	"github.com/tombee/breakctl/internal/diagnostic"
	"github.com/tombee/breakctl/internal/source"
	"github.com/tombee/breakctl/internal/stoppoint"
)

// LinesResponse is the JSON output of the lines command.
type LinesResponse struct {
	shared.JSONResponse
	Path       string             `json:"path,omitempty"`
	LineCount  int                `json:"line_count"`
	StopPoints []int              `json:"stop_points"`
	Window     []WindowLine       `json:"window,omitempty"`
	Errors     []shared.JSONError `json:"errors,omitempty"`
}

// WindowLine is one line of the window around a requested line.
type WindowLine struct {
	Number    int    `json:"number"`
	Text      string `json:"text"`
	StopPoint bool   `json:"stop_point"`
}

// NewCommand creates the lines command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines <file> [line]",
		Short: "Show the stop points of a source file",
		Long: `List the lines of a file where a breakpoint can be set.

With a line number, print the lines around it instead, with stop points
marked [B], the same listing the break command prints for a rejected line.`,
		Example: `  breakctl lines main.go
  breakctl lines app/user.rb 14`,
		Args: cobra.RangeArgs(1, 2),
		Annotations: map[string]string{
			"group": "breakpoints",
		},
		RunE: run,
	}
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	file := args[0]
	target := 0
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid line %q: must be a positive number", args[1])
		}
		target = n
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	s, err := shared.NewSession(ctx, cfg, shared.NewLogger(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	index := source.NewIndex(s.Registry)
	resp := LinesResponse{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "lines"},
		StopPoints:   []int{},
	}

	window, err := collect(index, s.Registry, file, target, &resp)
	if err != nil {
		resp.Errors = []shared.JSONError{shared.NewJSONError(err)}
		if shared.GetJSON() {
			if err := shared.EmitJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			return shared.NewReportedError(shared.ExitRejected)
		}
		return shared.NewRejectedError("cannot list lines", err)
	}
	resp.Success = true

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), resp)
	}

	out := cmd.OutOrStdout()
	if window != nil {
		fmt.Fprint(out, window.String())
		return nil
	}
	fmt.Fprintf(out, "%s (%d lines, %d stop points)\n", resp.Path, resp.LineCount, len(resp.StopPoints))
	if len(resp.StopPoints) > 0 {
		nums := make([]string, len(resp.StopPoints))
		for i, l := range resp.StopPoints {
			nums[i] = strconv.Itoa(l)
		}
		fmt.Fprintln(out, strings.Join(nums, " "))
	}
	return nil
}

// stopPoints is the registry surface the command reads.
type stopPoints interface {
	LineCount(path string) (int, error)
	PotentialLines(path string) (stoppoint.Set, error)
}

// collect fills resp for file. With a target line it also returns the
// window around it.
func collect(index *source.Index, stops stopPoints, file string, target int, resp *LinesResponse) (*diagnostic.Window, error) {
	if !index.Exists(file) {
		return nil, &breakpoint.SourceUnreadableError{File: file}
	}
	path, err := index.CanonicalPath(file)
	if err != nil {
		return nil, &breakpoint.SourceUnreadableError{File: file, Cause: err}
	}
	resp.Path = path

	n, err := stops.LineCount(path)
	if err != nil {
		return nil, &breakpoint.SourceUnreadableError{File: file, Cause: err}
	}
	resp.LineCount = n

	if target > n {
		return nil, &breakpoint.LineOutOfRangeError{Path: path, Line: target, Max: n}
	}

	if target > 0 {
		window, err := diagnostic.Render(index, file, path, target, n)
		if err != nil {
			return nil, err
		}
		for _, l := range window.Lines {
			resp.Window = append(resp.Window, WindowLine{Number: l.Number, Text: l.Text, StopPoint: l.StopPoint})
			if l.StopPoint {
				resp.StopPoints = append(resp.StopPoints, l.Number)
			}
		}
		return window, nil
	}

	set, err := stops.PotentialLines(path)
	if err != nil {
		return nil, err
	}
	resp.StopPoints = append(resp.StopPoints, set.Sorted()...)
	return nil, nil
}
