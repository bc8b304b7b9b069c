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
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSet(t *testing.T) {
	s := NewSet(5, 1, 3)
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(2))
	assert.Equal(t, []int{1, 3, 5}, s.Sorted())
}

func TestGoProvider(t *testing.T) {
	src := `package demo

import "fmt"

// Greeter says hello.
type Greeter struct{}

var greeting = "hi"

func (g Greeter) Hello(name string) string {
	var unused int
	_ = unused

	if name == "" {
		return greeting
	}
	return fmt.Sprintf("%s %s", greeting, name)
}
`
	path := writeFile(t, "demo.go", src)

	set, err := NewGoProvider().StopPoints(path)
	require.NoError(t, err)

	// 8: package var initializer, 12: assignment, 14: if,
	// 15: return, 17: return, 18: closing brace of Hello.
	assert.Equal(t, []int{8, 12, 14, 15, 17, 18}, set.Sorted())
}

func TestGoProvider_SyntaxError(t *testing.T) {
	path := writeFile(t, "broken.go", "package x\nfunc {\n")
	_, err := NewGoProvider().StopPoints(path)
	assert.Error(t, err)
}

func TestTextProvider(t *testing.T) {
	src := `# frozen_string_literal: true
class Greeter

  def hello(name)
    puts "hi #{name}"
  end
=begin
  ignored
=end
end
`
	path := writeFile(t, "greeter.rb", src)

	set, err := NewTextProvider().StopPoints(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5}, set.Sorted())
}

func TestTextProvider_CustomPrefixes(t *testing.T) {
	path := writeFile(t, "q.sql", "-- comment\nSELECT 1;\n% not a comment by default\n")

	set, err := NewTextProvider("%").StopPoints(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, set.Sorted())
}

func TestTextProvider_MissingFile(t *testing.T) {
	_, err := NewTextProvider().StopPoints(filepath.Join(t.TempDir(), "nope.rb"))
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	s := NewStatic()
	s.Set("/src/a.rb", 1, 3)

	set, err := s.StopPoints("/src/a.rb")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, set.Sorted())

	set.Add(2)
	again, _ := s.StopPoints("/src/a.rb")
	assert.False(t, again.Contains(2), "callers must not mutate the registered set")

	empty, err := s.StopPoints("/src/other.rb")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRouter(t *testing.T) {
	goProv := NewStatic()
	goProv.Set("/src/main.go", 1)
	fallback := NewStatic()
	fallback.Set("/src/main.go", 2)
	fallback.Set("/src/app.rb", 9)

	r, err := NewRouter(fallback, Route{Pattern: "**/*.go", Provider: goProv})
	require.NoError(t, err)

	set, err := r.StopPoints("/src/main.go")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, set.Sorted())

	set, err = r.StopPoints("/src/app.rb")
	require.NoError(t, err)
	assert.Equal(t, []int{9}, set.Sorted())
}

func TestNewRouter_Validation(t *testing.T) {
	_, err := NewRouter(nil)
	assert.Error(t, err)

	_, err = NewRouter(NewStatic(), Route{Pattern: "[", Provider: NewStatic()})
	assert.Error(t, err)

	_, err = NewRouter(NewStatic(), Route{Pattern: "**/*.go"})
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	var calls atomic.Int32
	inner := ProviderFunc(func(path string) (Set, error) {
		calls.Add(1)
		return NewSet(1), nil
	})

	c, err := NewCache(inner, CacheConfig{})
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 3; i++ {
		_, err := c.StopPoints("/src/a.rb")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())

	c.Invalidate("/src/a.rb")
	_, err = c.StopPoints("/src/a.rb")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_WatchInvalidatesOnWrite(t *testing.T) {
	path := writeFile(t, "watched.rb", "a = 1\n\n")
	path, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)

	c, err := NewCache(NewTextProvider(), CacheConfig{Watch: true})
	require.NoError(t, err)
	defer c.Close()

	set, err := c.StopPoints(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, set.Sorted())

	require.NoError(t, os.WriteFile(path, []byte("a = 1\nb = 2\n"), 0o644))

	require.Eventually(t, func() bool {
		return c.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)

	set, err = c.StopPoints(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, set.Sorted())
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c, err := NewCache(NewStatic(), CacheConfig{Watch: true})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
