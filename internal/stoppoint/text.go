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

package stoppoint

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"
)

// DefaultCommentPrefixes are the line-comment markers TextProvider
// recognizes when none are configured.
var DefaultCommentPrefixes = []string{"#", "//", "--", ";"}

// closers are tokens that only end a block and never execute on their own.
var closers = []string{"end", "}", ")", "]", "else", "begin", "ensure", "then", "do", "});", "})", "};"}

// TextProvider is a language-agnostic heuristic. A line is a stop point
// unless it is blank, starts with a comment prefix, is a bare block
// closer, or lies inside a =begin/=end block comment.
type TextProvider struct {
	commentPrefixes []string
}

// NewTextProvider creates a heuristic provider. With no prefixes the
// DefaultCommentPrefixes are used.
func NewTextProvider(commentPrefixes ...string) *TextProvider {
	if len(commentPrefixes) == 0 {
		commentPrefixes = DefaultCommentPrefixes
	}
	return &TextProvider{commentPrefixes: commentPrefixes}
}

// StopPoints implements Provider.
func (p *TextProvider) StopPoints(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	set := make(Set)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inBlockComment := false
	lineno := 0
	for scanner.Scan() {
		lineno++
		text := strings.TrimSpace(scanner.Text())

		if inBlockComment {
			if strings.HasPrefix(text, "=end") {
				inBlockComment = false
			}
			continue
		}
		if strings.HasPrefix(text, "=begin") {
			inBlockComment = true
			continue
		}

		if p.isStopPoint(text) {
			set.Add(lineno)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return set, nil
}

func (p *TextProvider) isStopPoint(text string) bool {
	if text == "" {
		return false
	}
	for _, prefix := range p.commentPrefixes {
		if strings.HasPrefix(text, prefix) {
			return false
		}
	}
	return !slices.Contains(closers, text)
}
