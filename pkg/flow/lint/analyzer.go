// Package lint provides static analysis checks for the flow API.
//
// This analyzer detects common mistakes when using the flow package:
//   - Empty string literals passed to Registry.Task() / Registry.Entry()
//   - A nil literal passed as the task function
//   - The same input handle passed twice in one declaration
//   - flow.New() called with no end goals
//
// Usage:
//
//	go install github.com/example/flowlite/cmd/flow-lint@latest
//	flow-lint ./...
package lint

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyzer is the flow lint analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "flowlint",
	Doc:      "checks for common flow API mistakes",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{(*ast.CallExpr)(nil)}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		call := n.(*ast.CallExpr)

		fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
		if !ok || fn.Pkg() == nil || fn.Pkg().Name() != "flow" {
			return
		}

		switch {
		case isRegistryMethod(fn, "Task"):
			checkEmptyStringArg(pass, call, "Task")
			checkNilFuncArg(pass, call)
			checkDuplicateInputs(pass, call)
		case isRegistryMethod(fn, "Entry"):
			checkEmptyStringArg(pass, call, "Entry")
		case fn.Name() == "New" && fn.Type().(*types.Signature).Recv() == nil:
			if len(call.Args) == 0 {
				pass.Reportf(call.Pos(), "New called with no end goals - will fail at runtime")
			}
		}
	})

	return nil, nil
}

// isRegistryMethod reports whether fn is the named method on *flow.Registry.
func isRegistryMethod(fn *types.Func, name string) bool {
	if fn.Name() != name {
		return false
	}
	recv := fn.Type().(*types.Signature).Recv()
	if recv == nil {
		return false
	}
	ptr, ok := recv.Type().(*types.Pointer)
	if !ok {
		return false
	}
	named, ok := ptr.Elem().(*types.Named)
	return ok && named.Obj().Name() == "Registry"
}

// checkEmptyStringArg reports if the first argument is an empty string literal.
func checkEmptyStringArg(pass *analysis.Pass, call *ast.CallExpr, funcName string) {
	if len(call.Args) == 0 {
		return
	}
	if lit, ok := call.Args[0].(*ast.BasicLit); ok && lit.Kind == token.STRING {
		if lit.Value == `""` || lit.Value == "``" {
			pass.Reportf(lit.Pos(), "%s called with empty string literal - will panic at runtime", funcName)
		}
	}
}

// checkNilFuncArg reports a nil literal passed as the task function.
func checkNilFuncArg(pass *analysis.Pass, call *ast.CallExpr) {
	if len(call.Args) < 2 {
		return
	}
	if ident, ok := call.Args[1].(*ast.Ident); ok && ident.Name == "nil" {
		pass.Reportf(ident.Pos(), "Task called with nil function - will panic at runtime")
	}
}

// checkDuplicateInputs reports the same input identifier declared twice.
func checkDuplicateInputs(pass *analysis.Pass, call *ast.CallExpr) {
	if len(call.Args) < 4 {
		return
	}
	seen := make(map[string]token.Pos)
	for _, arg := range call.Args[2:] {
		ident, ok := arg.(*ast.Ident)
		if !ok {
			continue
		}
		if prev, exists := seen[ident.Name]; exists {
			pass.Reportf(arg.Pos(), "duplicate input %q (first seen at %v)", ident.Name, pass.Fset.Position(prev))
			continue
		}
		seen[ident.Name] = ident.Pos()
	}
}
