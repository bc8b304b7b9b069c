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

package breakpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/breakctl/internal/diagnostic"
	"github.com/tombee/breakctl/internal/frame"
	"github.com/tombee/breakctl/internal/location"
	"github.com/tombee/breakctl/internal/log"
	"github.com/tombee/breakctl/internal/registry"
	"github.com/tombee/breakctl/internal/source"
	"github.com/tombee/breakctl/internal/symbols"
)

// FrameLocator supplies the file for a bare line number.
type FrameLocator interface {
	ActiveFrame() (frame.Frame, error)
}

// SyntaxChecker checks condition syntax without evaluating it. An empty
// expression is always valid.
type SyntaxChecker interface {
	Check(expr string) error
}

// NameResolver resolves an owner name to a loaded type.
type NameResolver interface {
	ResolveType(name string) (symbols.TypeHandle, bool)
}

// Registry creates breakpoints and answers stop-point queries.
type Registry interface {
	AddLine(ctx context.Context, path string, line int, condition string) (*registry.Breakpoint, error)
	AddMethod(ctx context.Context, owner string, sep location.Separator, member, condition string) (*registry.Breakpoint, error)
	SetEnabled(ctx context.Context, id int, enabled bool) error
	IsPotentialLine(path string, line int) (bool, error)
}

// RelativeTo selects the directory relative file:line paths are joined to.
type RelativeTo string

const (
	// RelativeToWorkDir resolves against the debugger's working directory.
	RelativeToWorkDir RelativeTo = "cwd"

	// RelativeToFrame resolves against the directory of the active
	// frame's file, falling back to the working directory when no frame
	// is active.
	RelativeToFrame RelativeTo = "frame"
)

// Result is a created breakpoint.
type Result struct {
	Breakpoint *registry.Breakpoint

	// Location is the parsed location the breakpoint was created from.
	Location location.Location

	// ConditionValid is false when the breakpoint was disabled because
	// its condition does not parse.
	ConditionValid bool

	// Warnings are non-fatal notes for the user, such as an owner that
	// is not loaded yet.
	Warnings []string
}

// Config configures a Resolver.
type Config struct {
	Frames     FrameLocator
	Names      NameResolver
	Conditions SyntaxChecker
	Registry   Registry

	// RelativeTo defaults to RelativeToWorkDir.
	RelativeTo RelativeTo

	// Logger is optional.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *Metrics

	// Tracer defaults to the global otel tracer provider.
	Tracer trace.Tracer
}

// Resolver turns raw (location, condition) text into breakpoints.
type Resolver struct {
	frames     FrameLocator
	names      NameResolver
	conditions SyntaxChecker
	registry   Registry
	index      *source.Index
	relativeTo RelativeTo

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New creates a resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Frames == nil {
		return nil, fmt.Errorf("frame locator is required")
	}
	if cfg.Names == nil {
		return nil, fmt.Errorf("name resolver is required")
	}
	if cfg.Conditions == nil {
		return nil, fmt.Errorf("syntax checker is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	relativeTo := cfg.RelativeTo
	switch relativeTo {
	case "":
		relativeTo = RelativeToWorkDir
	case RelativeToWorkDir, RelativeToFrame:
	default:
		return nil, fmt.Errorf("unknown relative_to %q (want %q or %q)", relativeTo, RelativeToWorkDir, RelativeToFrame)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/tombee/breakctl/internal/breakpoint")
	}

	return &Resolver{
		frames:     cfg.Frames,
		names:      cfg.Names,
		conditions: cfg.Conditions,
		registry:   cfg.Registry,
		index:      source.NewIndex(cfg.Registry),
		relativeTo: relativeTo,
		logger:     log.WithComponent(logger, "resolver"),
		metrics:    cfg.Metrics,
		tracer:     tracer,
	}, nil
}

// Resolve validates rawLocation and creates a breakpoint guarded by
// rawCondition.
//
// On success it returns a Result and nil. When the breakpoint was created
// but rawCondition does not parse, the breakpoint is disabled and both the
// Result and an *InvalidConditionError are returned. Every other failure
// returns a nil Result and one of ErrNoLocationGiven, ErrNoActiveFrame,
// *SourceUnreadableError, *LineOutOfRangeError, *NoStopPointError or
// *UnresolvableLocationError.
func (r *Resolver) Resolve(ctx context.Context, rawLocation, rawCondition string) (*Result, error) {
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "breakpoint.resolve",
		trace.WithAttributes(
			attribute.String("breakpoint.location", rawLocation),
			attribute.Bool("breakpoint.conditional", rawCondition != ""),
		),
	)
	defer span.End()

	kind := "none"
	res, err := r.resolve(ctx, strings.TrimSpace(rawLocation), rawCondition, &kind)

	outcome := outcomeOf(err)
	r.metrics.observe(kind, outcome, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("breakpoint.kind", kind),
		attribute.String("breakpoint.outcome", outcome),
	)
	if res != nil {
		span.SetAttributes(attribute.Int("breakpoint.id", res.Breakpoint.ID))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	return res, err
}

func (r *Resolver) resolve(ctx context.Context, raw, condition string, kind *string) (*Result, error) {
	if raw == "" {
		return nil, ErrNoLocationGiven
	}

	loc, ok := location.Parse(raw)
	if !ok {
		r.logger.Debug("unparseable breakpoint location", slog.String("location", raw))
		return nil, &UnresolvableLocationError{Raw: raw}
	}
	*kind = string(loc.Kind())

	var (
		res *Result
		err error
	)
	switch loc := loc.(type) {
	case location.LineOnly, location.FileLine:
		res, err = r.lineBreakpoint(ctx, loc, condition)
	case location.MethodRef:
		res, err = r.methodBreakpoint(ctx, loc, condition)
	}
	if err != nil {
		return nil, err
	}

	return r.checkCondition(ctx, res, condition)
}

// lineBreakpoint validates a line location and registers it.
func (r *Resolver) lineBreakpoint(ctx context.Context, loc location.Location, condition string) (*Result, error) {
	file, line, err := r.fileAndLine(loc)
	if err != nil {
		return nil, err
	}
	logger := log.WithLocation(r.logger, file, line)

	if !r.index.Exists(file) {
		logger.Debug("breakpoint source missing")
		return nil, &SourceUnreadableError{File: file}
	}

	path, err := r.index.CanonicalPath(file)
	if err != nil {
		return nil, &SourceUnreadableError{File: file, Cause: err}
	}

	n, err := r.index.LineCount(path)
	if err != nil {
		return nil, &SourceUnreadableError{File: file, Cause: err}
	}
	if line > n {
		logger.Debug("breakpoint line out of range", slog.Int("lines", n))
		return nil, &LineOutOfRangeError{Path: path, Line: line, Max: n}
	}

	stop, err := r.index.IsStopPoint(path, line)
	if err != nil {
		return nil, fmt.Errorf("failed to check stop point %s:%d: %w", path, line, err)
	}
	if !stop {
		window, err := diagnostic.Render(r.index, file, path, line, n)
		if err != nil {
			return nil, err
		}
		logger.Debug("breakpoint line is not a stop point", slog.Any("nearby_stop_points", window.StopPoints()))
		return nil, &NoStopPointError{Path: path, Line: line, Window: window}
	}

	bp, err := r.registry.AddLine(ctx, path, line, condition)
	if err != nil {
		return nil, fmt.Errorf("failed to register breakpoint at %s:%d: %w", path, line, err)
	}
	return &Result{Breakpoint: bp, Location: loc}, nil
}

// fileAndLine picks the file a line location refers to.
func (r *Resolver) fileAndLine(loc location.Location) (string, int, error) {
	switch loc := loc.(type) {
	case location.LineOnly:
		f, err := r.frames.ActiveFrame()
		if err != nil {
			if errors.Is(err, frame.ErrNoFrame) {
				return "", 0, ErrNoActiveFrame
			}
			return "", 0, fmt.Errorf("failed to locate active frame: %w", err)
		}
		return f.File, loc.Line, nil

	case location.FileLine:
		file := loc.File
		if !filepath.IsAbs(file) && r.relativeTo == RelativeToFrame {
			if f, err := r.frames.ActiveFrame(); err == nil {
				file = filepath.Join(filepath.Dir(f.File), file)
			}
		}
		return file, loc.Line, nil

	default:
		return "", 0, fmt.Errorf("not a line location: %s", loc)
	}
}

// methodBreakpoint registers a breakpoint on an owner member. The member
// is not checked; breakpoints on code that is not loaded yet are allowed.
func (r *Resolver) methodBreakpoint(ctx context.Context, loc location.MethodRef, condition string) (*Result, error) {
	res := &Result{Location: loc}

	owner := loc.Owner
	if h, ok := r.names.ResolveType(loc.Owner); ok {
		owner = h.Name
	} else {
		r.metrics.ownerFallback()
		r.logger.Warn("breakpoint source is not yet defined", slog.String(log.OwnerKey, loc.Owner))
		res.Warnings = append(res.Warnings, fmt.Sprintf("Warning: breakpoint source %s is not yet defined", loc.Owner))
	}

	bp, err := r.registry.AddMethod(ctx, owner, loc.Separator, loc.Member, condition)
	if err != nil {
		return nil, fmt.Errorf("failed to register breakpoint on %s: %w", loc, err)
	}
	res.Breakpoint = bp
	return res, nil
}

// checkCondition disables a freshly created breakpoint whose condition
// does not parse. The breakpoint is kept so the user can see it.
func (r *Resolver) checkCondition(ctx context.Context, res *Result, condition string) (*Result, error) {
	bp := res.Breakpoint
	logger := r.logger.With(slog.Int(log.BreakpointIDKey, bp.ID), slog.String("location", bp.String()))

	cerr := r.conditions.Check(condition)
	if cerr == nil {
		res.ConditionValid = true
		logger.Info("breakpoint created")
		return res, nil
	}

	if err := r.registry.SetEnabled(ctx, bp.ID, false); err != nil {
		return nil, fmt.Errorf("failed to disable breakpoint %d: %w", bp.ID, err)
	}
	bp.Enabled = false

	logger.Warn("breakpoint disabled: invalid condition", slog.String("condition", condition), log.Error(cerr))
	return res, &InvalidConditionError{Expr: condition, Breakpoint: bp, Cause: cerr}
}
