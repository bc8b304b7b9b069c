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

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/breakctl/internal/commands/shared"
	"github.com/tombee/breakctl/internal/config"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

// ValidationResult represents the result of config validation.
type ValidationResult struct {
	shared.JSONResponse
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the 'config validate' subcommand.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file and environment overrides.

Checks performed:
  - YAML syntax and structure
  - Log level and format
  - Source rule patterns and stop-point kinds
  - Registry backend and tracing exporter

With --strict, warnings are treated as errors.`,
		Example: `  # Validate configuration
  breakctl config validate

  # Validate with warnings as errors
  breakctl config validate --strict

  # Get validation result as JSON
  breakctl config validate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

// runValidate performs configuration validation.
func runValidate(cmd *cobra.Command, strict bool) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	result := ValidationResult{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "config validate"},
		Path:         path,
		Valid:        true,
	}

	if !fileExists(path) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("no configuration file at %s; using defaults", path))
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		result.Valid = false
		result.Errors = validationErrors(err)
	} else {
		result.Warnings = append(result.Warnings, warnings(cfg)...)
	}

	if strict && len(result.Warnings) > 0 {
		result.Valid = false
	}
	result.Success = result.Valid

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if err := shared.EmitJSON(out, result); err != nil {
			return err
		}
	} else {
		for _, e := range result.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if result.Valid {
			fmt.Fprintln(out, "Configuration is valid")
		}
	}

	if !result.Valid {
		return shared.NewReportedError(shared.ExitConfig)
	}
	return nil
}

// validationErrors splits a load error into one message per problem.
func validationErrors(err error) []string {
	var cfgErr *breakerrors.ConfigError
	if breakerrors.As(err, &cfgErr) && cfgErr.Cause != nil {
		err = cfgErr.Cause
	}
	lines := strings.Split(err.Error(), "\n")
	if len(lines) == 1 {
		return lines
	}
	var errs []string
	for _, l := range lines[1:] {
		errs = append(errs, strings.TrimPrefix(strings.TrimSpace(l), "- "))
	}
	return errs
}

// warnings reports settings that are valid but probably not intended.
func warnings(cfg *config.Config) []string {
	var out []string
	for i, rule := range cfg.Source.Rules {
		for _, earlier := range cfg.Source.Rules[:i] {
			if earlier.Pattern == rule.Pattern {
				out = append(out, fmt.Sprintf("source.rules[%d]: pattern %q is shadowed by an earlier rule", i, rule.Pattern))
				break
			}
		}
	}
	if cfg.Tracing.Exporter != "none" && cfg.Tracing.Exporter != "console" && cfg.Tracing.Insecure && len(cfg.Tracing.Headers) > 0 {
		out = append(out, "tracing.headers are sent without TLS because tracing.insecure is set")
	}
	for alias := range cfg.Symbols.Aliases {
		for _, t := range cfg.Symbols.Types {
			if t == alias {
				out = append(out, fmt.Sprintf("symbols.aliases: %q is also a defined type; the alias wins", alias))
			}
		}
	}
	return out
}
