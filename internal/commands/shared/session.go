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

package shared

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/tombee/breakctl/internal/breakpoint"
	"github.com/tombee/breakctl/internal/condition"
	"github.com/tombee/breakctl/internal/config"
	"github.com/tombee/breakctl/internal/frame"
	"github.com/tombee/breakctl/internal/log"
	"github.com/tombee/breakctl/internal/registry"
	"github.com/tombee/breakctl/internal/stoppoint"
	"github.com/tombee/breakctl/internal/symbols"
	"github.com/tombee/breakctl/internal/tracing"
)

// Session holds everything a command needs to resolve and manage
// breakpoints. Build it with NewSession and release it with Close.
type Session struct {
	Config   *config.Config
	Logger   *slog.Logger
	Resolver *breakpoint.Resolver
	Registry *registry.Registry
	Frames   *frame.Tracker
	Symbols  *symbols.Table

	// Metrics is nil unless metrics are enabled.
	Metrics *prometheus.Registry

	cache   *stoppoint.Cache
	tracing *tracing.Provider
}

// LoadConfig loads the file named by --config, or the discovered default
// file when the flag is empty.
func LoadConfig() (*config.Config, error) {
	path := GetConfigPath()
	if path == "" {
		path = config.DiscoverPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// NewLogger builds the command logger. BREAKCTL_DEBUG overrides the
// configured level, and --verbose and --quiet override both.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	lc := log.FromEnv()
	lc.Output = w
	if cfg != nil {
		if !log.DebugFromEnv() {
			lc.Level = cfg.Log.Level
		}
		lc.Format = log.Format(cfg.Log.Format)
		lc.AddSource = lc.AddSource || cfg.Log.AddSource
	}
	switch {
	case GetVerbose():
		lc.Level = "debug"
	case GetQuiet():
		lc.Level = "error"
	}
	return log.New(lc)
}

// NewSession wires the stop-point providers, registry, symbol table,
// metrics and tracing described by cfg into a resolver.
func NewSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Discard()
	}

	router, err := newStopPoints(cfg.Source)
	if err != nil {
		return nil, NewConfigError("invalid source rules", err)
	}
	cache, err := stoppoint.NewCache(router, stoppoint.CacheConfig{
		Watch:  cfg.Source.Watch,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{
		Config:  cfg,
		Logger:  logger,
		Frames:  frame.NewTracker(),
		Symbols: newSymbols(cfg.Symbols),
		cache:   cache,
	}

	store, err := newStore(ctx, cfg.Registry)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.Registry = registry.New(store, cache, registry.WithLogger(logger))

	var metrics *breakpoint.Metrics
	if cfg.Metrics.Enabled {
		s.Metrics = prometheus.NewRegistry()
		metrics = breakpoint.NewMetrics(s.Metrics)
	}

	v, _, _ := GetVersion()
	s.tracing, err = tracing.NewProvider(ctx, tracing.Config{
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		Headers:        cfg.Tracing.Headers,
		SampleRate:     cfg.Tracing.SampleRate,
		ServiceVersion: v,
	})
	if err != nil {
		s.Close(ctx)
		return nil, NewConfigError("failed to start tracing", err)
	}

	s.Resolver, err = breakpoint.New(breakpoint.Config{
		Frames:     s.Frames,
		Names:      s.Symbols,
		Conditions: condition.NewChecker(),
		Registry:   s.Registry,
		RelativeTo: breakpoint.RelativeTo(cfg.Source.RelativeTo),
		Logger:     logger,
		Metrics:    metrics,
		Tracer:     s.tracing.Tracer("github.com/tombee/breakctl/internal/breakpoint"),
	})
	if err != nil {
		s.Close(ctx)
		return nil, NewConfigError("failed to create resolver", err)
	}

	logger.Debug("session ready",
		slog.String("backend", cfg.Registry.Backend),
		slog.String("relative_to", cfg.Source.RelativeTo),
		slog.Bool("watch", cfg.Source.Watch),
		slog.String("tracing", cfg.Tracing.Exporter))

	return s, nil
}

func newStopPoints(cfg config.SourceConfig) (*stoppoint.Router, error) {
	goProvider := stoppoint.NewGoProvider()
	routes := make([]stoppoint.Route, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		var p stoppoint.Provider
		switch rule.Kind {
		case config.StopPointsGo:
			p = goProvider
		default:
			p = stoppoint.NewTextProvider(rule.CommentPrefixes...)
		}
		routes = append(routes, stoppoint.Route{Pattern: rule.Pattern, Provider: p})
	}
	return stoppoint.NewRouter(stoppoint.NewTextProvider(), routes...)
}

func newStore(ctx context.Context, cfg config.RegistryConfig) (registry.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := registry.NewSQLiteStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite registry: %w", err)
		}
		return store, nil
	default:
		return registry.NewMemoryStore(), nil
	}
}

func newSymbols(cfg config.SymbolsConfig) *symbols.Table {
	table := symbols.NewTable(cfg.Types...)
	for alias, target := range cfg.Aliases {
		table.Alias(alias, target)
	}
	return table
}

// WriteMetrics writes the collected metrics in the Prometheus text
// format. It writes nothing when metrics are disabled.
func (s *Session) WriteMetrics(w io.Writer) error {
	if s.Metrics == nil {
		return nil
	}
	families, err := s.Metrics.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes spans and releases the registry and file watcher.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if s.tracing != nil {
		errs = append(errs, s.tracing.Shutdown(ctx))
	}
	if s.Registry != nil {
		errs = append(errs, s.Registry.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}
