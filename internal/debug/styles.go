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
	"github.com/charmbracelet/lipgloss"
)

// Styles renders shell output.
type Styles struct {
	OK     lipgloss.Style
	Warn   lipgloss.Style
	Error  lipgloss.Style
	Muted  lipgloss.Style
	Header lipgloss.Style
}

// PlainStyles renders without color.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{OK: plain, Warn: plain, Error: plain, Muted: plain, Header: plain}
}

// ColorStyles renders with terminal colors.
func ColorStyles() Styles {
	return Styles{
		OK:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),             // green
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),            // orange
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),            // red
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),            // gray
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")), // blue bold
	}
}

// errmsg prefixes an error line the way debugger shells traditionally do.
func (st Styles) errmsg(msg string) string {
	return st.Error.Render("*** " + msg)
}
