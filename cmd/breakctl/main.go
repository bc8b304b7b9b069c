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

// Command breakctl resolves and manages debugger breakpoints.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/tombee/breakctl/internal/cli"
	breakcmd "github.com/tombee/breakctl/internal/commands/breakcmd"
	"github.com/tombee/breakctl/internal/commands/completion"
	"github.com/tombee/breakctl/internal/commands/config"
	"github.com/tombee/breakctl/internal/commands/debug"
	"github.com/tombee/breakctl/internal/commands/lines"
	versioncmd "github.com/tombee/breakctl/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Breakpoint commands
	rootCmd.AddCommand(breakcmd.NewCommand())
	rootCmd.AddCommand(lines.NewCommand())
	rootCmd.AddCommand(debug.NewDebugCommand())

	// Configuration
	rootCmd.AddCommand(config.NewConfigCommand())
	rootCmd.AddCommand(completion.NewCommand())

	// Version command
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		cli.HandleExitError(err)
	}
}
