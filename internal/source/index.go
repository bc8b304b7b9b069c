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

// Package source answers questions about source files on disk: whether
// they exist, how many lines they have, their canonical path, and which
// of their lines are stop points.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StopPoints is the stop-point capability the index delegates to. It is
// normally satisfied by the breakpoint registry.
type StopPoints interface {
	IsPotentialLine(path string, line int) (bool, error)
}

// UnreadableError reports a source file that does not exist or cannot be
// read.
type UnreadableError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *UnreadableError) Error() string {
	return fmt.Sprintf("source %s unreadable: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *UnreadableError) Unwrap() error {
	return e.Cause
}

// Index reads source files. It holds no per-file state; every call opens
// and closes the files it needs.
type Index struct {
	stops StopPoints
}

// NewIndex creates an index that asks stops about stop points.
func NewIndex(stops StopPoints) *Index {
	return &Index{stops: stops}
}

// Exists reports whether path names an existing regular file.
func (x *Index) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CanonicalPath returns the absolute, cleaned, symlink-free form of path
// so the same physical file always maps to the same string.
func (x *Index) CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &UnreadableError{Path: path, Cause: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &UnreadableError{Path: path, Cause: err}
	}
	return resolved, nil
}

// LineCount returns the number of lines in path. A final line without a
// trailing newline is counted; an empty file has zero lines.
func (x *Index) LineCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &UnreadableError{Path: path, Cause: err}
	}
	defer f.Close()

	n, err := countLines(f)
	if err != nil {
		return 0, &UnreadableError{Path: path, Cause: err}
	}
	return n, nil
}

// IsStopPoint reports whether line is a stop point in path.
func (x *Index) IsStopPoint(path string, line int) (bool, error) {
	if x.stops == nil {
		return false, errors.New("no stop-point source configured")
	}
	return x.stops.IsPotentialLine(path, line)
}

// ReadLines returns lines from through to (1-based, inclusive) of path.
// Reading stops as soon as line to has been read. Lines past the end of
// the file are simply not returned.
func (x *Index) ReadLines(path string, from, to int) ([]string, error) {
	if from < 1 {
		from = 1
	}
	if to < from {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableError{Path: path, Cause: err}
	}
	defer f.Close()

	lines := make([]string, 0, to-from+1)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineno := 0
	for scanner.Scan() {
		lineno++
		if lineno < from {
			continue
		}
		lines = append(lines, scanner.Text())
		if lineno >= to {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &UnreadableError{Path: path, Cause: err}
	}
	return lines, nil
}

// CountLines counts lines the same way Index.LineCount does. Exposed for
// callers that already hold a reader.
func CountLines(r io.Reader) (int, error) {
	return countLines(r)
}

func countLines(r io.Reader) (int, error) {
	buf := make([]byte, 32*1024)
	count := 0
	last := byte('\n')

	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if last != '\n' {
		count++
	}
	return count, nil
}
