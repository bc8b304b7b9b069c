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
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tombee/breakctl/internal/breakpoint"
	"github.com/tombee/breakctl/internal/registry"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

// mockUserVisibleError is a test implementation of UserVisibleError
type mockUserVisibleError struct {
	message    string
	suggestion string
	visible    bool
}

func (e *mockUserVisibleError) Error() string {
	return "raw: " + e.message
}

func (e *mockUserVisibleError) IsUserVisible() bool {
	return e.visible
}

func (e *mockUserVisibleError) UserMessage() string {
	return e.message
}

func (e *mockUserVisibleError) Suggestion() string {
	return e.suggestion
}

func TestExitErrorFor(t *testing.T) {
	bp := &registry.Breakpoint{ID: 4}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "invalid condition",
			err:  &breakpoint.InvalidConditionError{Expr: "x >", Breakpoint: bp},
			want: ExitInvalidCondition,
		},
		{
			name: "wrapped invalid condition",
			err:  fmt.Errorf("resolve: %w", &breakpoint.InvalidConditionError{Expr: "x >", Breakpoint: bp}),
			want: ExitInvalidCondition,
		},
		{
			name: "no stop point",
			err:  &breakpoint.NoStopPointError{Path: "/a.rb", Line: 2},
			want: ExitRejected,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: ExitRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitErr := ExitErrorFor(tt.err)
			if exitErr.Code != tt.want {
				t.Errorf("code = %d, want %d", exitErr.Code, tt.want)
			}
			if !errors.Is(exitErr, tt.err) {
				t.Error("expected ExitError to wrap the cause")
			}
		})
	}
}

func TestReportExitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  []string
		notOut   []string
	}{
		{
			name:     "user visible cause",
			err:      NewRejectedError("breakpoint not set", &mockUserVisibleError{message: "No file named x.rb", suggestion: "check the path", visible: true}),
			wantCode: ExitRejected,
			wantOut:  []string{"Error: No file named x.rb", "Suggestion: check the path"},
			notOut:   []string{"raw:"},
		},
		{
			name:     "hidden cause",
			err:      NewConfigError("failed to load configuration", &mockUserVisibleError{message: "secret", visible: false}),
			wantCode: ExitConfig,
			wantOut:  []string{"Error: failed to load configuration: raw: secret"},
			notOut:   []string{"Suggestion"},
		},
		{
			name:     "config error",
			err:      NewConfigError("failed to load configuration", &breakerrors.ConfigError{Key: "validation", Reason: "bad"}),
			wantCode: ExitConfig,
			wantOut:  []string{"Error: failed to load configuration"},
		},
		{
			name:     "already reported",
			err:      NewReportedError(ExitInvalidCondition),
			wantCode: ExitInvalidCondition,
			notOut:   []string{"Error"},
		},
		{
			name:     "not an exit error",
			err:      errors.New("boom"),
			wantCode: ExitRejected,
			wantOut:  []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			code := reportExitError(&buf, tt.err)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q missing %q", buf.String(), want)
				}
			}
			for _, not := range tt.notOut {
				if strings.Contains(buf.String(), not) {
					t.Errorf("output %q should not contain %q", buf.String(), not)
				}
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	exitErr := NewRejectedError("breakpoint not set", innerErr)

	if unwrapped := errors.Unwrap(exitErr); unwrapped != innerErr {
		t.Errorf("expected unwrapped error to be innerErr, got %v", unwrapped)
	}
	if exitErr.Error() != "breakpoint not set: inner error" {
		t.Errorf("unexpected message %q", exitErr.Error())
	}
}
