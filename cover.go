// Copyright 2015 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"crypto/sha1"
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"
	"io"
	"strconv"
	"strings"
)

const covdepPkg = "_covregion_dep_"

const coveragePkgPath = "github.com/bradleyjkemp/covregion/coverage"

// instrument rewrites f so that every edge increments a counter in the
// coverage table, and writes the result to out. It returns the number of
// counters inserted.
func instrument(fset *token.FileSet, f *ast.File, out io.Writer) int {
	f.Comments = trimComments(f, fset)
	addCoverageImport(f)
	before := counterGen
	ast.Inspect(f, instrumentAST)
	printFile(fset, f, out)
	return int(counterGen - before)
}

func instrumentAST(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.IfStmt:
		instrumentIf(n)

	case *ast.FuncDecl:
		if n.Body == nil {
			// this is just a function declaration, it is implemented elsewhere
			return false
		}
		n.Body.List = append([]ast.Stmt{newCounter()}, n.Body.List...)
	}

	return true
}

func instrumentIf(n *ast.IfStmt) bool {
	// Add counter to the start of the if block
	n.Body.List = append([]ast.Stmt{newCounter()}, n.Body.List...)

	// Make sure else statement exists
	if n.Else == nil {
		n.Else = &ast.BlockStmt{
			List: nil,
		}
	}

	switch e := n.Else.(type) {
	case *ast.BlockStmt:
		// Add counter to else statement
		e.List = append([]ast.Stmt{newCounter()}, e.List...)
		return true
	case *ast.IfStmt:
		// Recurse to cover the else-if
		return instrumentIf(e)
	default:
		panic("unexpected else type")
	}
}

// trimComments drops all comments except compiler directives. The AST has
// been rearranged, so freestanding comments would be printed at the wrong
// positions.
func trimComments(file *ast.File, fset *token.FileSet) []*ast.CommentGroup {
	var comments []*ast.CommentGroup
	for _, group := range file.Comments {
		var list []*ast.Comment
		for _, comment := range group.List {
			if strings.HasPrefix(comment.Text, "//go:") && fset.Position(comment.Slash).Column == 1 {
				list = append(list, comment)
			}
		}
		if list != nil {
			comments = append(comments, &ast.CommentGroup{List: list})
		}
	}
	return comments
}

// addCoverageImport makes f import the coverage package under the covdepPkg
// alias and appends a reference to CoverTab in case the import would
// otherwise end up unused.
func addCoverageImport(f *ast.File) {
	newImport := &ast.ImportSpec{
		Name: ast.NewIdent(covdepPkg),
		Path: &ast.BasicLit{
			Kind:  token.STRING,
			Value: fmt.Sprintf("%q", coveragePkgPath),
		},
	}
	impDecl := &ast.GenDecl{
		Tok: token.IMPORT,
		Specs: []ast.Spec{
			newImport,
		},
	}
	// Make the new import the first Decl in the file.
	f.Decls = append(f.Decls, nil)
	copy(f.Decls[1:], f.Decls[0:])
	f.Decls[0] = impDecl
	f.Imports = append(f.Imports, newImport)

	reference := &ast.GenDecl{
		Tok: token.VAR,
		Specs: []ast.Spec{
			&ast.ValueSpec{
				Names: []*ast.Ident{
					ast.NewIdent("_"),
				},
				Values: []ast.Expr{
					&ast.SelectorExpr{
						X:   ast.NewIdent(covdepPkg),
						Sel: ast.NewIdent("CoverTab"),
					},
				},
			},
		},
	}
	f.Decls = append(f.Decls, reference)
}

var counterGen uint32

func genCounter() int {
	counterGen++
	id := counterGen
	buf := []byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)}
	hash := sha1.Sum(buf)
	return int(uint16(hash[0]) | uint16(hash[1])<<8)
}

func newCounter() ast.Stmt {
	cnt := genCounter()

	idx := &ast.BasicLit{
		Kind:  token.INT,
		Value: strconv.Itoa(cnt),
	}
	counter := &ast.IndexExpr{
		X: &ast.SelectorExpr{
			X:   ast.NewIdent(covdepPkg),
			Sel: ast.NewIdent("CoverTab"),
		},
		Index: idx,
	}
	return &ast.IncDecStmt{
		X:   counter,
		Tok: token.INC,
	}
}

func printFile(fset *token.FileSet, f *ast.File, w io.Writer) {
	cfg := printer.Config{
		Mode:     printer.SourcePos,
		Tabwidth: 8,
		Indent:   0,
	}
	cfg.Fprint(w, fset, f)
}
