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
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tombee/breakctl/internal/log"
)

// Cache memoizes a Provider per path. When watching is enabled the
// directory of every cached file is watched and entries are dropped as
// soon as fsnotify reports a change to them.
type Cache struct {
	provider Provider
	logger   *slog.Logger

	// mu protects entries and watchedDirs
	mu          sync.RWMutex
	entries     map[string]Set
	watchedDirs map[string]bool

	// fsWatcher is nil when watching is disabled
	fsWatcher *fsnotify.Watcher

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// CacheConfig configures a Cache.
type CacheConfig struct {
	// Watch enables fsnotify based invalidation. Without it entries live
	// until Invalidate or Close is called.
	Watch bool

	// Logger is used for structured logging (optional)
	Logger *slog.Logger
}

// NewCache wraps provider with a cache.
func NewCache(provider Provider, cfg CacheConfig) (*Cache, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	c := &Cache{
		provider:    provider,
		logger:      logger,
		entries:     make(map[string]Set),
		watchedDirs: make(map[string]bool),
		done:        make(chan struct{}),
	}

	if cfg.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		c.fsWatcher = w
		c.wg.Add(1)
		go c.processEvents()
	}

	return c, nil
}

// StopPoints implements Provider.
func (c *Cache) StopPoints(path string) (Set, error) {
	c.mu.RLock()
	set, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		log.Trace(c.logger, "stop-point cache hit", slog.String(log.FileKey, path))
		return set, nil
	}

	set, err := c.provider.StopPoints(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = set
	c.watchLocked(path)
	c.mu.Unlock()

	return set, nil
}

// Invalidate drops the cached set for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the watcher, if any, and clears the cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]Set)
	c.mu.Unlock()

	if c.fsWatcher == nil {
		return nil
	}

	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.fsWatcher.Close()
		c.wg.Wait()
	})
	return err
}

// watchLocked adds the directory of path to the watcher. Directories are
// watched instead of files so editors that replace files on save are
// still noticed. Caller holds mu.
func (c *Cache) watchLocked(path string) {
	if c.fsWatcher == nil {
		return
	}
	dir := filepath.Dir(path)
	if c.watchedDirs[dir] {
		return
	}
	if err := c.fsWatcher.Add(dir); err != nil {
		c.logger.Warn("failed to watch source directory", slog.String("dir", dir), log.Error(err))
		return
	}
	c.watchedDirs[dir] = true
	c.logger.Debug("watching source directory", slog.String("dir", dir))
}

func (c *Cache) processEvents() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return

		case event, ok := <-c.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			c.mu.Lock()
			_, cached := c.entries[path]
			delete(c.entries, path)
			c.mu.Unlock()
			if cached {
				c.logger.Debug("source changed, stop points invalidated",
					slog.String(log.FileKey, path),
					slog.String("op", event.Op.String()),
				)
			}

		case err, ok := <-c.fsWatcher.Errors:
			if !ok {
				return
			}
			c.logger.Error("file watcher error", log.Error(err))
		}
	}
}
