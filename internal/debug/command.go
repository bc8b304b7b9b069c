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
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CommandType represents the type of shell command.
type CommandType string

const (
	// CommandBreak sets a breakpoint.
	CommandBreak CommandType = "break"

	// CommandDelete removes breakpoints.
	CommandDelete CommandType = "delete"

	// CommandEnable enables breakpoints.
	CommandEnable CommandType = "enable"

	// CommandDisable disables breakpoints.
	CommandDisable CommandType = "disable"

	// CommandInfo lists breakpoints.
	CommandInfo CommandType = "info"

	// CommandFrame shows or sets the active frame.
	CommandFrame CommandType = "frame"

	// CommandLines lists the stop points of a file.
	CommandLines CommandType = "lines"

	// CommandHelp shows help.
	CommandHelp CommandType = "help"

	// CommandQuit leaves the shell.
	CommandQuit CommandType = "quit"
)

// Command represents a parsed shell command.
type Command struct {
	// Type is the type of command.
	Type CommandType

	// Location and Condition are set for CommandBreak. An empty Location
	// asks for help.
	Location  string
	Condition string

	// IDs are the breakpoint ids for delete, enable and disable.
	IDs []int

	// File and Line are set for frame and lines. Line is zero when not
	// given.
	File string
	Line int
}

// breakPattern splits "b[reak] [location] [if condition]".
var breakPattern = regexp.MustCompile(`^\s*b(?:reak)?(?:\s+(.+?))?(?:\s+if\s+(.+))?\s*$`)

// ParseCommand parses one line of shell input.
func ParseCommand(line string) (*Command, error) {
	if m := breakPattern.FindStringSubmatch(line); m != nil {
		return &Command{
			Type:      CommandBreak,
			Location:  strings.TrimSpace(m[1]),
			Condition: strings.TrimSpace(m[2]),
		}, nil
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	cmdStr := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmdStr {
	case "del", "delete":
		ids, err := parseIDs(args)
		if err != nil {
			return nil, err
		}
		return &Command{Type: CommandDelete, IDs: ids}, nil

	case "en", "enable", "dis", "disable":
		if len(args) > 0 && strings.HasPrefix("breakpoints", args[0]) {
			args = args[1:]
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%s requires at least one breakpoint number", cmdStr)
		}
		ids, err := parseIDs(args)
		if err != nil {
			return nil, err
		}
		typ := CommandEnable
		if strings.HasPrefix(cmdStr, "dis") {
			typ = CommandDisable
		}
		return &Command{Type: typ, IDs: ids}, nil

	case "i", "info":
		if len(args) != 1 || !strings.HasPrefix("breakpoints", args[0]) {
			return nil, fmt.Errorf("usage: info breakpoints")
		}
		return &Command{Type: CommandInfo}, nil

	case "f", "frame":
		return fileAndLine(CommandFrame, args, false)

	case "l", "lines":
		return fileAndLine(CommandLines, args, true)

	case "h", "help", "?":
		return &Command{Type: CommandHelp}, nil

	case "q", "quit", "exit":
		return &Command{Type: CommandQuit}, nil

	default:
		return nil, fmt.Errorf("unknown command: %s (type 'help' for commands)", cmdStr)
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("%q is not a breakpoint number", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func fileAndLine(typ CommandType, args []string, fileRequired bool) (*Command, error) {
	cmd := &Command{Type: typ}
	switch len(args) {
	case 0:
		if fileRequired {
			return nil, fmt.Errorf("usage: %s <file> [line]", typ)
		}
	case 1, 2:
		cmd.File = args[0]
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%q is not a line number", args[1])
			}
			cmd.Line = n
		}
	default:
		return nil, fmt.Errorf("usage: %s <file> [line]", typ)
	}
	return cmd, nil
}
