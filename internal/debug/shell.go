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

package debug

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tombee/breakctl/internal/breakpoint"
	"github.com/tombee/breakctl/internal/diagnostic"
	"github.com/tombee/breakctl/internal/frame"
	"github.com/tombee/breakctl/internal/log"
	"github.com/tombee/breakctl/internal/registry"
	"github.com/tombee/breakctl/internal/source"
	"github.com/tombee/breakctl/internal/stoppoint"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// Prompt is printed before each command.
const Prompt = "(breakctl) "

// Resolver creates breakpoints from user input.
type Resolver interface {
	Resolve(ctx context.Context, rawLocation, rawCondition string) (*breakpoint.Result, error)
}

// Breakpoints is the registry surface the shell manages.
type Breakpoints interface {
	List(ctx context.Context) ([]*registry.Breakpoint, error)
	Delete(ctx context.Context, id int) error
	SetEnabled(ctx context.Context, id int, enabled bool) error
	IsPotentialLine(path string, line int) (bool, error)
	PotentialLines(path string) (stoppoint.Set, error)
	LineCount(path string) (int, error)
}

// Frames holds the active frame.
type Frames interface {
	Set(f frame.Frame)
	Clear()
	ActiveFrame() (frame.Frame, error)
}

// Options configures a Shell.
type Options struct {
	Resolver    Resolver
	Breakpoints Breakpoints
	Frames      Frames

	// Input defaults to os.Stdin and Output to os.Stdout.
	Input  io.Reader
	Output io.Writer

	// Color enables styled output.
	Color bool

	Logger *slog.Logger
}

// Shell provides an interactive breakpoint console.
type Shell struct {
	resolver    Resolver
	breakpoints Breakpoints
	frames      Frames
	index       *source.Index

	input  io.Reader
	output io.Writer
	styles Styles
	logger *slog.Logger
}

// NewShell creates a new shell.
func NewShell(opts Options) *Shell {
	s := &Shell{
		resolver:    opts.Resolver,
		breakpoints: opts.Breakpoints,
		frames:      opts.Frames,
		index:       source.NewIndex(opts.Breakpoints),
		input:       opts.Input,
		output:      opts.Output,
		styles:      PlainStyles(),
		logger:      opts.Logger,
	}
	if s.input == nil {
		s.input = os.Stdin
	}
	if s.output == nil {
		s.output = os.Stdout
	}
	if opts.Color {
		s.styles = ColorStyles()
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	s.logger = log.WithComponent(s.logger, "shell")
	return s
}

// Run reads commands until quit, end of input or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.output, Prompt)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			fmt.Fprintln(s.output)
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := s.Execute(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}

// Execute runs one command line. User mistakes are printed, not returned;
// the returned error is ErrQuit or a failure of the shell itself.
func (s *Shell) Execute(ctx context.Context, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		s.errmsg(err.Error())
		return nil
	}

	s.logger.Debug("command", slog.String("type", string(cmd.Type)))

	switch cmd.Type {
	case CommandBreak:
		return s.handleBreak(ctx, cmd)
	case CommandDelete:
		return s.handleDelete(ctx, cmd.IDs)
	case CommandEnable:
		return s.handleSetEnabled(ctx, cmd.IDs, true)
	case CommandDisable:
		return s.handleSetEnabled(ctx, cmd.IDs, false)
	case CommandInfo:
		return s.handleInfo(ctx)
	case CommandFrame:
		s.handleFrame(cmd)
		return nil
	case CommandLines:
		return s.handleLines(cmd)
	case CommandHelp:
		s.showHelp()
		return nil
	case CommandQuit:
		return ErrQuit
	}
	return nil
}

// handleBreak resolves a break command and reports the outcome.
func (s *Shell) handleBreak(ctx context.Context, cmd *Command) error {
	if cmd.Location == "" {
		fmt.Fprintln(s.output, BreakHelp)
		return nil
	}

	res, err := s.resolver.Resolve(ctx, cmd.Location, cmd.Condition)
	return ReportBreak(s.output, s.styles, res, err)
}

// ReportBreak prints the outcome of a resolution the way the break
// command does. It returns err only when err is not meant for the user.
func ReportBreak(w io.Writer, st Styles, res *breakpoint.Result, err error) error {
	if res != nil {
		for _, warning := range res.Warnings {
			fmt.Fprintln(w, st.Warn.Render(warning))
		}
	}

	switch {
	case err == nil:
		fmt.Fprintln(w, st.OK.Render(CreatedMessage(res.Breakpoint.ID)))
		return nil
	case errors.Is(err, breakpoint.ErrNoLocationGiven):
		fmt.Fprintln(w, BreakHelp)
		return nil
	}

	var uv breakerrors.UserVisibleError
	if !breakerrors.As(err, &uv) || !uv.IsUserVisible() {
		return err
	}

	var nsp *breakpoint.NoStopPointError
	if breakerrors.As(err, &nsp) {
		fmt.Fprintln(w, st.errmsg(fmt.Sprintf("Line %d is not a valid breakpoint in file %s.", nsp.Line, nsp.Path)))
		if nsp.Window != nil && len(nsp.Window.Lines) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, st.Header.Render("Valid break points are:"))
			fmt.Fprint(w, nsp.Window.String())
		}
		return nil
	}

	fmt.Fprintln(w, st.errmsg(uv.UserMessage()))
	return nil
}

func (s *Shell) handleDelete(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		all, err := s.breakpoints.List(ctx)
		if err != nil {
			return err
		}
		for _, bp := range all {
			ids = append(ids, bp.ID)
		}
	}

	for _, id := range ids {
		if err := s.breakpoints.Delete(ctx, id); err != nil {
			if s.reportMissing(err, id) {
				continue
			}
			return err
		}
		fmt.Fprintf(s.output, "Deleted breakpoint %d\n", id)
	}
	return nil
}

func (s *Shell) handleSetEnabled(ctx context.Context, ids []int, enabled bool) error {
	verb := "Disabled"
	if enabled {
		verb = "Enabled"
	}
	for _, id := range ids {
		if err := s.breakpoints.SetEnabled(ctx, id, enabled); err != nil {
			if s.reportMissing(err, id) {
				continue
			}
			return err
		}
		fmt.Fprintf(s.output, "%s breakpoint %d\n", verb, id)
	}
	return nil
}

// reportMissing prints a not-found error for id and reports whether err
// was one.
func (s *Shell) reportMissing(err error, id int) bool {
	var nf *breakerrors.NotFoundError
	if !breakerrors.As(err, &nf) {
		return false
	}
	s.errmsg(fmt.Sprintf("No breakpoint number %d", id))
	return true
}

// handleInfo lists breakpoints:
//
//	Num Enb What
//	1   y   at /src/a.rb:3
//	2   n   at User#save
//	        stop only if x > 1
func (s *Shell) handleInfo(ctx context.Context) error {
	all, err := s.breakpoints.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(s.output, "No breakpoints.")
		return nil
	}

	fmt.Fprintln(s.output, s.styles.Header.Render("Num Enb What"))
	for _, bp := range all {
		enb := "n"
		if bp.Enabled {
			enb = "y"
		}
		fmt.Fprintf(s.output, "%-3d %-3s at %s\n", bp.ID, enb, bp.String())
		if bp.Condition != "" {
			fmt.Fprintln(s.output, s.styles.Muted.Render("        stop only if "+bp.Condition))
		}
	}
	return nil
}

func (s *Shell) handleFrame(cmd *Command) {
	if cmd.File == "" {
		f, err := s.frames.ActiveFrame()
		if err != nil {
			fmt.Fprintln(s.output, "No active frame.")
			return
		}
		fmt.Fprintf(s.output, "Frame: %s\n", f)
		return
	}

	if cmd.File == "-" {
		s.frames.Clear()
		fmt.Fprintln(s.output, "Frame cleared.")
		return
	}

	line := cmd.Line
	if line == 0 {
		line = 1
	}
	f := frame.Frame{File: cmd.File, Line: line}
	s.frames.Set(f)
	fmt.Fprintf(s.output, "Frame set to %s\n", f)
}

// handleLines prints the stop points of a file, or the annotated window
// around a line when one is given.
func (s *Shell) handleLines(cmd *Command) error {
	if !s.index.Exists(cmd.File) {
		s.errmsg(fmt.Sprintf("No file named %s", cmd.File))
		return nil
	}
	path, err := s.index.CanonicalPath(cmd.File)
	if err != nil {
		s.errmsg(fmt.Sprintf("No file named %s", cmd.File))
		return nil
	}

	n, err := s.breakpoints.LineCount(path)
	if err != nil {
		return err
	}

	if cmd.Line > 0 {
		if cmd.Line > n {
			s.errmsg(fmt.Sprintf("There are only %d lines in file %s", n, path))
			return nil
		}
		window, err := diagnostic.Render(s.index, cmd.File, path, cmd.Line, n)
		if err != nil {
			return err
		}
		fmt.Fprint(s.output, window.String())
		return nil
	}

	set, err := s.breakpoints.PotentialLines(path)
	if err != nil {
		return err
	}
	lines := set.Sorted()
	nums := make([]string, len(lines))
	for i, l := range lines {
		nums[i] = strconv.Itoa(l)
	}

	fmt.Fprintln(s.output, s.styles.Header.Render(fmt.Sprintf("%s (%d lines, %d stop points)", path, n, len(lines))))
	if len(nums) > 0 {
		fmt.Fprintln(s.output, strings.Join(nums, " "))
	}
	return nil
}

func (s *Shell) errmsg(msg string) {
	fmt.Fprintln(s.output, s.styles.errmsg(msg))
}

// CreatedMessage is printed when a breakpoint is created.
func CreatedMessage(id int) string {
	return fmt.Sprintf("Successfully created breakpoint with id %d", id)
}

// BreakHelp describes the break command.
const BreakHelp = `  b[reak] [file:]line [if expr]
  b[reak] [module::...]class(.|#)method [if expr]

  They can be specified by line or method and an expression can be added
  for conditionally enabled breakpoints.

  Sets breakpoints in the source code`

// showHelp displays available commands.
func (s *Shell) showHelp() {
	help := `
Commands:
  break, b [file:]line [if expr]       Set a line breakpoint
  break, b Class(.|#)method [if expr]  Set a method breakpoint
  delete, del [n...]                   Delete breakpoints (all when none given)
  enable, en [breakpoints] n...        Enable breakpoints
  disable, dis [breakpoints] n...      Disable breakpoints
  info, i breakpoints                  List breakpoints
  frame, f [file [line]]               Show or set the active frame (- clears it)
  lines, l file [line]                 List stop points, or the lines around one
  help, h, ?                           Show this help message
  quit, q                              Leave the shell
`
	fmt.Fprintln(s.output, help)
}
