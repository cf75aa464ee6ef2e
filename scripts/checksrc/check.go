// If you are AI: This file holds the per-file checks used by checksrc.

package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

const (
	maxLines   = 300
	headerMark = "If you are AI:"
)

// checkFile returns the violations found in one Go source file.
// Test files are held to the header and line rules only.
func checkFile(path string, data []byte) []string {
	var failures []string
	content := string(data)

	if !strings.Contains(content, headerMark) {
		failures = append(failures, fmt.Sprintf("%s: missing %q header", path, headerMark))
	}
	if lines := strings.Count(content, "\n"); lines > maxLines {
		failures = append(failures, fmt.Sprintf("%s: %d lines (max %d)", path, lines, maxLines))
	}
	if strings.HasSuffix(path, "_test.go") {
		return failures
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		// Unparseable files are reported by the compiler
		return failures
	}

	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if fn.Doc == nil || len(fn.Doc.List) == 0 {
			pos := fset.Position(fn.Pos())
			failures = append(failures, fmt.Sprintf("%s:%d: function %s missing comment", path, pos.Line, funcName(fn)))
		}
	}
	return failures
}

// funcName renders a function or method name as Recv.Name.
func funcName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	recv := fn.Recv.List[0].Type
	if star, ok := recv.(*ast.StarExpr); ok {
		recv = star.X
	}
	if ident, ok := recv.(*ast.Ident); ok {
		return ident.Name + "." + fn.Name.Name
	}
	return fn.Name.Name
}
