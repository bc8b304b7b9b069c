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

// Package debug provides the interactive breakpoint shell for breakctl.
//
// The shell reads one command per line. The break command follows the
// classic debugger form
//
//	b[reak] [file:]line [if expr]
//	b[reak] [module::...]class(.|#)method [if expr]
//
// and hands the location and condition to a breakpoint.Resolver. The
// remaining commands manage the registry (delete, enable, disable, info
// breakpoints), set the active frame used by bare line numbers (frame),
// and list the stop points of a file (lines).
//
// # Example Usage
//
//	shell := debug.NewShell(debug.Options{
//		Resolver:    resolver,
//		Breakpoints: reg,
//		Frames:      frames,
//		Color:       format.IsTTY(),
//	})
//	err := shell.Run(ctx)
package debug
