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

/*
Package tracing sets up OpenTelemetry tracing for breakctl.

Breakpoint resolution records a "breakpoint.resolve" span carrying the
raw location, the location kind, the outcome and, on success, the
breakpoint id. Spans go to the exporter named in configuration:

	none       tracing disabled (the default)
	console    JSON spans written to stderr
	otlp       OTLP over gRPC
	otlp_http  OTLP over HTTP

# Quick Start

	provider, err := tracing.NewProvider(ctx, tracing.Config{
	    Exporter: "otlp",
	    Endpoint: "localhost:4317",
	    Insecure: true,
	})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	resolver, err := breakpoint.New(breakpoint.Config{
	    // ...
	    Tracer: provider.Tracer("breakctl"),
	})
*/
package tracing
