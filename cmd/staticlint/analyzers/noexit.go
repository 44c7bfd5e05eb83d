// Package analyzers holds custom analyzers used by the staticlint command.
package analyzers

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

// NoOsExitMainAnalyzer reports direct calls to os.Exit inside main.main.
// Commands in this repository report failures through log.Fatal so that
// deferred cleanup in the app layer is not skipped silently.
var NoOsExitMainAnalyzer = &analysis.Analyzer{
	Name: "noosexitmain",
	Doc:  "disallow direct calls to os.Exit in main.main",
	Run:  runNoOsExit,
}

func runNoOsExit(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Name.Name != "main" || fn.Recv != nil {
				continue
			}
			checkForOsExit(pass, fn.Body)
		}
	}
	return nil, nil
}

func checkForOsExit(pass *analysis.Pass, body *ast.BlockStmt) {
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != "Exit" {
			return true
		}

		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}

		// The receiver must resolve to the os package, not a local
		// variable that happens to be named os.
		pkg, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
		if !ok || pkg.Imported().Path() != "os" {
			return true
		}

		pass.Reportf(call.Pos(), "direct call to os.Exit in main.main is forbidden")
		return true
	})
}
