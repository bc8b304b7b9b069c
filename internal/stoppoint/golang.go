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
	"go/ast"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/ast/inspector"
)

// GoProvider derives stop points from Go source. A line is a stop point
// when a statement begins on it, or when it holds the closing brace of
// a function body (the implicit return). Package clauses, imports, type
// declarations, comments and blank lines are not stop points.
type GoProvider struct{}

// NewGoProvider creates a Go stop-point provider.
func NewGoProvider() *GoProvider {
	return &GoProvider{}
}

// StopPoints implements Provider.
func (p *GoProvider) StopPoints(path string) (Set, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	set := make(Set)
	insp := inspector.New([]*ast.File{file})

	filter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.FuncLit)(nil),
		(*ast.GenDecl)(nil),
		(*ast.AssignStmt)(nil),
		(*ast.BranchStmt)(nil),
		(*ast.DeferStmt)(nil),
		(*ast.ExprStmt)(nil),
		(*ast.ForStmt)(nil),
		(*ast.GoStmt)(nil),
		(*ast.IfStmt)(nil),
		(*ast.IncDecStmt)(nil),
		(*ast.RangeStmt)(nil),
		(*ast.ReturnStmt)(nil),
		(*ast.SelectStmt)(nil),
		(*ast.SendStmt)(nil),
		(*ast.SwitchStmt)(nil),
		(*ast.TypeSwitchStmt)(nil),
		(*ast.CaseClause)(nil),
		(*ast.CommClause)(nil),
	}

	insp.Preorder(filter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.FuncDecl:
			if n.Body != nil {
				set.Add(fset.Position(n.Body.Rbrace).Line)
			}
		case *ast.FuncLit:
			set.Add(fset.Position(n.Body.Rbrace).Line)
		case *ast.GenDecl:
			// "var x int" does nothing worth stopping at; "var x = f()" does,
			// both at package level (init time) and inside functions.
			if n.Tok == token.VAR {
				for _, spec := range n.Specs {
					if vs, ok := spec.(*ast.ValueSpec); ok && len(vs.Values) > 0 {
						set.Add(fset.Position(vs.Pos()).Line)
					}
				}
			}
		default:
			set.Add(fset.Position(n.Pos()).Line)
		}
	})

	return set, nil
}
