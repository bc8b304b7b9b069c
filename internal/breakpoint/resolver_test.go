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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tombee/breakctl/internal/condition"
	"github.com/tombee/breakctl/internal/frame"
	"github.com/tombee/breakctl/internal/location"
	"github.com/tombee/breakctl/internal/registry"
	"github.com/tombee/breakctl/internal/stoppoint"
	"github.com/tombee/breakctl/internal/symbols"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

type fixture struct {
	resolver *Resolver
	registry *registry.Registry
	frames   *frame.Tracker
	dir      string
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()

	reg := registry.New(registry.NewMemoryStore(), stoppoint.NewTextProvider())
	t.Cleanup(func() { reg.Close() })

	frames := frame.NewTracker()
	cfg := Config{
		Frames:     frames,
		Names:      symbols.NewTable("User", "Foo"),
		Conditions: condition.NewChecker(),
		Registry:   reg,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	r, err := New(cfg)
	require.NoError(t, err)

	return &fixture{resolver: r, registry: reg, frames: frames, dir: t.TempDir()}
}

// write creates name in the fixture directory and returns its canonical path.
func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	canonical, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return canonical
}

func TestNew_Validation(t *testing.T) {
	valid := func() Config {
		return Config{
			Frames:     frame.NewTracker(),
			Names:      symbols.NewTable(),
			Conditions: condition.NewChecker(),
			Registry:   registry.New(registry.NewMemoryStore(), stoppoint.NewStatic()),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "frame relative", mutate: func(c *Config) { c.RelativeTo = RelativeToFrame }},
		{name: "no frames", mutate: func(c *Config) { c.Frames = nil }, wantErr: "frame locator"},
		{name: "no names", mutate: func(c *Config) { c.Names = nil }, wantErr: "name resolver"},
		{name: "no checker", mutate: func(c *Config) { c.Conditions = nil }, wantErr: "syntax checker"},
		{name: "no registry", mutate: func(c *Config) { c.Registry = nil }, wantErr: "registry"},
		{name: "bad relative_to", mutate: func(c *Config) { c.RelativeTo = "home" }, wantErr: "relative_to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			_, err := New(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolve_EndToEnd(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "a.rb", "x = 1\n\ny = 2\n")
	ctx := context.Background()

	_, err := f.resolver.Resolve(ctx, path+":2", "")
	var nsp *NoStopPointError
	require.ErrorAs(t, err, &nsp)
	assert.Equal(t, path, nsp.Path)
	assert.Equal(t, 2, nsp.Line)
	require.Len(t, nsp.Window.Lines, 3)
	assert.Equal(t, 1, nsp.Window.Lines[0].Number)
	assert.Equal(t, 3, nsp.Window.Lines[2].Number)
	assert.Equal(t, []int{1, 3}, nsp.Window.StopPoints())
	assert.Equal(t, "[B] 1: x = 1\n    2: \n[B] 3: y = 2\n", nsp.Window.String())

	res, err := f.resolver.Resolve(ctx, path+":1", "")
	require.NoError(t, err)
	assert.Equal(t, registry.KindLine, res.Breakpoint.Kind)
	assert.Equal(t, path, res.Breakpoint.Source)
	assert.Equal(t, 1, res.Breakpoint.Line)
	assert.Equal(t, "1", res.Breakpoint.Position())
	assert.True(t, res.Breakpoint.Enabled)
	assert.True(t, res.ConditionValid)
	assert.Equal(t, location.KindFileLine, res.Location.Kind())

	stored, err := f.registry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "rejected requests must not register anything")
}

func TestResolve_LineErrors(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "b.rb", "a = 1\nb = 2\nc = 3\n")
	ctx := context.Background()

	tests := []struct {
		name    string
		raw     string
		outcome string
	}{
		{name: "missing file", raw: filepath.Join(f.dir, "nope.rb") + ":1", outcome: OutcomeSourceUnreadable},
		{name: "missing file beats huge line", raw: filepath.Join(f.dir, "nope.rb") + ":999999", outcome: OutcomeSourceUnreadable},
		{name: "past end", raw: path + ":4", outcome: OutcomeLineOutOfRange},
		{name: "saturated line", raw: path + ":99999999999999999999999", outcome: OutcomeLineOutOfRange},
		{name: "line zero", raw: path + ":0", outcome: OutcomeNoStopPoint},
		{name: "directory", raw: f.dir + ":1", outcome: OutcomeSourceUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.resolver.Resolve(ctx, tt.raw, "")
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.outcome, outcomeOf(err))

			var uv breakerrors.UserVisibleError
			require.True(t, errors.As(err, &uv))
			assert.NotEmpty(t, uv.UserMessage())
		})
	}
}

func TestResolve_LineOutOfRangeMessage(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "c.rb", "a = 1\nb = 2")

	_, err := f.resolver.Resolve(context.Background(), path+":7", "")
	var oor *LineOutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 2, oor.Max)
	assert.Equal(t, "There are only 2 lines in file "+path, oor.UserMessage())
}

func TestResolve_WindowIsClamped(t *testing.T) {
	f := newFixture(t)

	var b strings.Builder
	for i := 1; i <= 20; i++ {
		if i == 12 {
			b.WriteString("end\n")
			continue
		}
		b.WriteString("x = 1\n")
	}
	path := f.write(t, "long.rb", b.String())

	_, err := f.resolver.Resolve(context.Background(), path+":12", "")
	var nsp *NoStopPointError
	require.ErrorAs(t, err, &nsp)
	require.Len(t, nsp.Window.Lines, 11)
	assert.Equal(t, 7, nsp.Window.Lines[0].Number)
	assert.Equal(t, 17, nsp.Window.Lines[10].Number)
	assert.Contains(t, nsp.UserMessage(), "Line 12 is not a valid breakpoint in file "+path+".")
	assert.Contains(t, nsp.UserMessage(), "Valid break points are:\n[B]  7: x = 1\n")
	assert.Contains(t, nsp.UserMessage(), "    12: end\n")
}

func TestResolve_LineOnlyUsesActiveFrame(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "frame.rb", "a = 1\nb = 2\n")
	ctx := context.Background()

	_, err := f.resolver.Resolve(ctx, "2", "")
	assert.ErrorIs(t, err, ErrNoActiveFrame)
	assert.Equal(t, OutcomeNoFrame, outcomeOf(err))

	f.frames.Set(frame.Frame{File: path, Line: 1})
	res, err := f.resolver.Resolve(ctx, "2", "")
	require.NoError(t, err)
	assert.Equal(t, path, res.Breakpoint.Source)
	assert.Equal(t, 2, res.Breakpoint.Line)
	assert.Equal(t, location.KindLine, res.Location.Kind())
}

func TestResolve_RelativeToFrame(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.RelativeTo = RelativeToFrame })
	main := f.write(t, "app/main.rb", "run\n")
	helper := f.write(t, "app/lib/helper.rb", "help\n")

	f.frames.Set(frame.Frame{File: main, Line: 1})
	res, err := f.resolver.Resolve(context.Background(), "lib/helper.rb:1", "")
	require.NoError(t, err)
	assert.Equal(t, helper, res.Breakpoint.Source)
}

func TestResolve_Methods(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	instance, err := f.resolver.Resolve(ctx, "User#save", "")
	require.NoError(t, err)
	class, err := f.resolver.Resolve(ctx, "User.save", "")
	require.NoError(t, err)

	assert.Equal(t, registry.KindMethod, instance.Breakpoint.Kind)
	assert.Equal(t, "User", instance.Breakpoint.Source)
	assert.Equal(t, location.SeparatorInstance, instance.Breakpoint.Separator)
	assert.Equal(t, location.SeparatorClass, class.Breakpoint.Separator)
	assert.Equal(t, "#save", instance.Breakpoint.Position())
	assert.Equal(t, ".save", class.Breakpoint.Position())
	assert.NotEqual(t, instance.Breakpoint.ID, class.Breakpoint.ID)
	assert.Empty(t, instance.Warnings)

	unknown, err := f.resolver.Resolve(ctx, "Later::Thing#go", "")
	require.NoError(t, err)
	assert.Equal(t, "Later::Thing", unknown.Breakpoint.Source)
	assert.Equal(t, []string{"Warning: breakpoint source Later::Thing is not yet defined"}, unknown.Warnings)
}

func TestResolve_InvalidConditionDisables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.resolver.Resolve(ctx, "Foo#bar", "1==")
	require.Error(t, err)
	require.NotNil(t, res)

	var ic *InvalidConditionError
	require.ErrorAs(t, err, &ic)
	assert.Equal(t, "1==", ic.Expr)
	assert.Equal(t, `Incorrect expression "1=="; breakpoint disabled.`, ic.UserMessage())
	assert.Same(t, res.Breakpoint, ic.Breakpoint)

	assert.False(t, res.ConditionValid)
	assert.False(t, res.Breakpoint.Enabled)
	assert.Equal(t, "Foo", res.Breakpoint.Source)
	assert.Equal(t, "bar", res.Breakpoint.Member)

	stored, err := f.registry.Get(ctx, res.Breakpoint.ID)
	require.NoError(t, err)
	assert.False(t, stored.Enabled)
	assert.Equal(t, "1==", stored.Condition)
}

func TestResolve_ValidCondition(t *testing.T) {
	f := newFixture(t)

	res, err := f.resolver.Resolve(context.Background(), "Foo#bar", "x > 1 && y != nil")
	require.NoError(t, err)
	assert.True(t, res.Breakpoint.Enabled)
	assert.True(t, res.ConditionValid)
	assert.Equal(t, "x > 1 && y != nil", res.Breakpoint.Condition)
}

func TestResolve_Unresolvable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		raw  string
		want error
	}{
		{raw: "", want: ErrNoLocationGiven},
		{raw: "   ", want: ErrNoLocationGiven},
	}
	for _, tt := range tests {
		_, err := f.resolver.Resolve(ctx, tt.raw, "")
		assert.ErrorIs(t, err, tt.want)
	}

	for _, raw := range []string{"hello", ":3", "Foo#", "a b"} {
		t.Run(raw, func(t *testing.T) {
			_, err := f.resolver.Resolve(ctx, raw, "")
			var ul *UnresolvableLocationError
			require.ErrorAs(t, err, &ul)
			assert.Equal(t, raw, ul.Raw)
		})
	}
}

func TestResolve_RepeatedRequestsGetNewIDs(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "d.rb", "a = 1\n")
	ctx := context.Background()

	first, err := f.resolver.Resolve(ctx, path+":1", "")
	require.NoError(t, err)
	second, err := f.resolver.Resolve(ctx, path+":1", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Breakpoint.ID, second.Breakpoint.ID)
	assert.Equal(t, first.Breakpoint.Source, second.Breakpoint.Source)
	assert.Equal(t, first.Breakpoint.Line, second.Breakpoint.Line)
}

func TestResolve_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, func(c *Config) { c.Metrics = NewMetrics(reg) })
	path := f.write(t, "e.rb", "a = 1\n\n")
	ctx := context.Background()

	_, _ = f.resolver.Resolve(ctx, path+":1", "")
	_, _ = f.resolver.Resolve(ctx, path+":2", "")
	_, _ = f.resolver.Resolve(ctx, "Nope#x", "")
	_, _ = f.resolver.Resolve(ctx, "Foo#bar", "1==")
	_, _ = f.resolver.Resolve(ctx, "?", "")

	m := f.resolver.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("file_line", OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("file_line", OutcomeNoStopPoint)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("method", OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("method", OutcomeInvalidCondition)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("none", OutcomeUnresolvableLocation)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
	assert.Equal(t, 3, testutil.CollectAndCount(m.duration))
}

func TestResolve_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Errorf("failed to shutdown tracer provider: %v", err)
		}
	}()

	f := newFixture(t, func(c *Config) { c.Tracer = tp.Tracer("test") })
	ctx := context.Background()

	_, err := f.resolver.Resolve(ctx, "User#save", "")
	require.NoError(t, err)
	_, err = f.resolver.Resolve(ctx, "nonsense", "")
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "breakpoint.resolve", ok.Name)
	attrs := map[string]string{}
	for _, kv := range ok.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "User#save", attrs["breakpoint.location"])
	assert.Equal(t, "method", attrs["breakpoint.kind"])
	assert.Equal(t, OutcomeCreated, attrs["breakpoint.outcome"])
	assert.Equal(t, "1", attrs["breakpoint.id"])

	failed := spans[1]
	assert.Equal(t, "Error", failed.Status.Code.String())
	assert.Equal(t, OutcomeUnresolvableLocation, failed.Status.Description)
	require.NotEmpty(t, failed.Events, "error should be recorded on the span")
}
