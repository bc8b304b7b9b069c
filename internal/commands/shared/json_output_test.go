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
	"encoding/json"
	"errors"
	"testing"

	"github.com/tombee/breakctl/internal/breakpoint"
	"github.com/tombee/breakctl/internal/registry"
	breakerrors "github.com/tombee/breakctl/pkg/errors"
)

func TestEmitJSON_Envelope(t *testing.T) {
	var buf bytes.Buffer
	resp := JSONResponse{Version: "1.0", Command: "break", Success: true}
	if err := EmitJSON(&buf, resp); err != nil {
		t.Fatalf("EmitJSON() error = %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if raw["@version"] != "1.0" {
		t.Errorf("@version = %v, want 1.0", raw["@version"])
	}
	if raw["command"] != "break" || raw["success"] != true {
		t.Errorf("unexpected envelope %v", raw)
	}
}

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	errs := []JSONError{NewJSONError(&breakpoint.UnresolvableLocationError{Raw: "a b"})}
	if err := EmitJSONError(&buf, "break", errs); err != nil {
		t.Fatalf("EmitJSONError() error = %v", err)
	}

	var decoded struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Success {
		t.Error("expected success=false")
	}
	if len(decoded.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(decoded.Errors))
	}
	got := decoded.Errors[0]
	if got.Code != ErrorCodeUnresolvable {
		t.Errorf("code = %q, want %q", got.Code, ErrorCodeUnresolvable)
	}
	if got.Message != "Invalid breakpoint location" {
		t.Errorf("message = %q", got.Message)
	}
	if got.Suggestion == "" {
		t.Error("expected a suggestion")
	}
}

func TestErrorCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no location", breakpoint.ErrNoLocationGiven, ErrorCodeNoLocation},
		{"no frame", breakpoint.ErrNoActiveFrame, ErrorCodeNoFrame},
		{"unreadable", &breakpoint.SourceUnreadableError{File: "x.rb"}, ErrorCodeSourceUnreadable},
		{"out of range", &breakpoint.LineOutOfRangeError{Path: "/x.rb", Line: 9, Max: 3}, ErrorCodeLineOutOfRange},
		{"no stop point", &breakpoint.NoStopPointError{Path: "/x.rb", Line: 2}, ErrorCodeNoStopPoint},
		{"invalid condition", &breakpoint.InvalidConditionError{Expr: "x >", Breakpoint: &registry.Breakpoint{ID: 1}}, ErrorCodeInvalidCondition},
		{"config", NewConfigError("failed", &breakerrors.ConfigError{Key: "validation"}), ErrorCodeInvalidConfig},
		{"other", errors.New("boom"), ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCodeFor(tt.err); got != tt.want {
				t.Errorf("ErrorCodeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
