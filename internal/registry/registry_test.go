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

package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/breakctl/internal/location"
	"github.com/tombee/breakctl/internal/stoppoint"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			line := &Breakpoint{Kind: KindLine, Source: "/src/a.rb", Line: 3, Enabled: true, CreatedAt: created}
			method := &Breakpoint{Kind: KindMethod, Source: "User", Separator: location.SeparatorInstance, Member: "save", Condition: "x > 1", Enabled: true, CreatedAt: created}

			id1, err := store.Insert(ctx, line)
			require.NoError(t, err)
			id2, err := store.Insert(ctx, method)
			require.NoError(t, err)

			assert.Equal(t, 1, id1)
			assert.Equal(t, 2, id2)
			assert.Equal(t, id1, line.ID)

			got, err := store.Get(ctx, id2)
			require.NoError(t, err)
			assert.Equal(t, method, got)

			require.NoError(t, store.SetEnabled(ctx, id1, false))
			got, err = store.Get(ctx, id1)
			require.NoError(t, err)
			assert.False(t, got.Enabled)

			all, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, id1, all[0].ID)
			assert.Equal(t, id2, all[1].ID)

			require.NoError(t, store.Delete(ctx, id1))
			_, err = store.Get(ctx, id1)
			var nf *breakerrors.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, "1", nf.ID)

			assert.ErrorAs(t, store.Delete(ctx, id1), &nf)
			assert.ErrorAs(t, store.SetEnabled(ctx, 99, true), &nf)

			// Ids are not reused after deletion.
			id3, err := store.Insert(ctx, &Breakpoint{Kind: KindLine, Source: "/src/b.rb", Line: 1, Enabled: true, CreatedAt: created})
			require.NoError(t, err)
			assert.Equal(t, 3, id3)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	bp := &Breakpoint{Kind: KindLine, Source: "/a", Line: 1, Enabled: true}
	id, err := s.Insert(ctx, bp)
	require.NoError(t, err)

	bp.Enabled = false
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Enabled)

	got.Enabled = false
	again, _ := s.Get(ctx, id)
	assert.True(t, again.Enabled)
}

func TestRegistry_Add(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	r := New(NewMemoryStore(), stoppoint.NewStatic(), WithClock(func() time.Time { return now }))

	line, err := r.AddLine(ctx, "/src/a.rb", 3, "")
	require.NoError(t, err)
	assert.Equal(t, 1, line.ID)
	assert.Equal(t, KindLine, line.Kind)
	assert.True(t, line.Enabled)
	assert.Equal(t, now, line.CreatedAt)
	assert.Equal(t, "3", line.Position())
	assert.Equal(t, "/src/a.rb:3", line.String())

	class, err := r.AddMethod(ctx, "Foo", location.SeparatorClass, "bar", "")
	require.NoError(t, err)
	instance, err := r.AddMethod(ctx, "Foo", location.SeparatorInstance, "bar", "")
	require.NoError(t, err)

	assert.Equal(t, ".bar", class.Position())
	assert.Equal(t, "#bar", instance.Position())
	assert.NotEqual(t, class.Separator, instance.Separator)
	assert.Equal(t, "Foo#bar", instance.String())

	require.NoError(t, r.SetEnabled(ctx, class.ID, false))
	got, err := r.Get(ctx, class.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, r.Delete(ctx, line.ID))
	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRegistry_ConcurrentAddsGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	r := New(NewMemoryStore(), stoppoint.NewStatic())

	const n = 50
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bp, err := r.AddLine(ctx, "/src/a.rb", 1, "")
			if err == nil {
				ids <- bp.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestRegistry_StopPoints(t *testing.T) {
	static := stoppoint.NewStatic()
	static.Set("/src/a.rb", 1, 3)
	r := New(NewMemoryStore(), static)

	ok, err := r.IsPotentialLine("/src/a.rb", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsPotentialLine("/src/a.rb", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	set, err := r.PotentialLines("/src/a.rb")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, set.Sorted())
}

func TestRegistry_LineCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.rb")
	require.NoError(t, os.WriteFile(path, []byte("a\n\nb"), 0o644))

	r := New(NewMemoryStore(), stoppoint.NewStatic())
	n, err := r.LineCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = r.LineCount(path + ".missing")
	assert.Error(t, err)
}
