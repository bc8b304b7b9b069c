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

// Package debug implements the debug command, an interactive console
// for setting and managing breakpoints.
package debug

import (

	"github.com/spf13/cobra"

	"github.com/tombee/breakctl/internal/cli/format"
	"github.com/tombee/breakctl/internal/commands/shared"
	"github.com/tombee/breakctl/internal/debug"
	"github.com/tombee/breakctl/internal/frame"
)

// NewDebugCommand creates the debug command.
func NewDebugCommand() *cobra.Command {
	var frameFlag string

	cmd := &cobra.Command{
		Use:     "debug",
		Aliases: []string{"shell"},
		Short:   "Start an interactive breakpoint console",
		Long: `Start an interactive console for setting and managing breakpoints.

Breakpoints live for the length of the session. Type 'help' at the prompt
for the list of commands, and 'quit' or end of input to leave.`,
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			"group": "breakpoints",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
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
				s.Frames.Set(frame.Frame{File: frameFlag, Line: 1})
			}

			out := cmd.OutOrStdout()
			shell := debug.NewShell(debug.Options{
				Resolver:    s.Resolver,
				Breakpoints: s.Registry,
				Frames:      s.Frames,
				Input:       cmd.InOrStdin(),
				Output:      out,
				Color:       format.ColorEnabled(out, shared.GetNoColor()),
				Logger:      logger,
			})

			if err := shell.Run(ctx); err != nil {
				return err
			}
			return s.WriteMetrics(cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&frameFlag, "frame", "", "File to start the session stopped in")

	return cmd
}
