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

// Package breakpoint resolves user-typed breakpoint locations into
// registered breakpoints.
//
// A location is one of three shapes, tried in order:
//
//	42            line in the active frame's file
//	app/a.rb:42   line in a named file
//	User#save     instance member (User.find for class members)
//
// Line locations are checked against the file on disk: the file must
// exist, the line must be within range, and the line must be a stop
// point. A rejected line returns a NoStopPointError carrying the
// surrounding lines with stop points marked. Member locations are not
// checked against loaded code, so breakpoints can be set before the code
// they target is loaded.
//
// A condition is checked for syntax only after the breakpoint has been
// created. A breakpoint whose condition does not parse is kept but
// disabled, and Resolve returns it together with an InvalidConditionError.
package breakpoint
