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

package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStops map[int]bool

func (f fakeStops) IsPotentialLine(path string, line int) (bool, error) {
	return f[line], nil
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"single line no newline", "a", 1},
		{"single line with newline", "a\n", 1},
		{"blank lines count", "a\n\n\n", 3},
		{"no trailing newline", "a\nb\nc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountLines(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_LineCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n\ny = 2\n"), 0o644))

	idx := NewIndex(nil)
	n, err := idx.LineCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = idx.LineCount(filepath.Join(dir, "missing.rb"))
	var unreadable *UnreadableError
	require.ErrorAs(t, err, &unreadable)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestIndex_CanonicalPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.rb")
	require.NoError(t, os.WriteFile(target, []byte("1\n"), 0o644))
	link := filepath.Join(dir, "link.rb")
	require.NoError(t, os.Symlink(target, link))

	idx := NewIndex(nil)

	viaReal, err := idx.CanonicalPath(target)
	require.NoError(t, err)
	viaLink, err := idx.CanonicalPath(link)
	require.NoError(t, err)
	viaDots, err := idx.CanonicalPath(filepath.Join(dir, "sub", "..", "real.rb"))
	require.NoError(t, err)

	assert.Equal(t, viaReal, viaLink)
	assert.Equal(t, viaReal, viaDots)
	assert.True(t, filepath.IsAbs(viaReal))

	_, err = idx.CanonicalPath(filepath.Join(dir, "missing.rb"))
	var unreadable *UnreadableError
	assert.ErrorAs(t, err, &unreadable)
}

func TestIndex_Exists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	idx := NewIndex(nil)
	assert.True(t, idx.Exists(path))
	assert.False(t, idx.Exists(dir), "directories are not source files")
	assert.False(t, idx.Exists(filepath.Join(dir, "b.rb")))
}

func TestIndex_ReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ten.txt")
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		b.WriteString("line")
		b.WriteString(strings.Repeat("!", i))
		b.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	idx := NewIndex(nil)

	lines, err := idx.ReadLines(path, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"line!!!", "line!!!!", "line!!!!!"}, lines)

	lines, err = idx.ReadLines(path, 9, 20)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	lines, err = idx.ReadLines(path, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"line!"}, lines)

	lines, err = idx.ReadLines(path, 5, 4)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestIndex_IsStopPoint(t *testing.T) {
	idx := NewIndex(fakeStops{1: true})

	ok, err := idx.IsStopPoint("/any", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = idx.IsStopPoint("/any", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewIndex(nil).IsStopPoint("/any", 1)
	assert.Error(t, err)
}
