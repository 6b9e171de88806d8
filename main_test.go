package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// A package shared between the target and probe dependency graphs is cloned
// once; re-cloning it must not clobber the instrumented rewrites that landed
// in the workdir in between.
func TestClonePackageKeepsInstrumentedFiles(t *testing.T) {
	src := filepath.Join(t.TempDir(), "dep.go")
	if err := os.WriteFile(src, []byte("package dep\n"), 0600); err != nil {
		t.Fatal(err)
	}

	c := &Context{workdir: t.TempDir(), std: map[string]bool{}}
	p := &packages.Package{PkgPath: "example.com/dep", GoFiles: []string{src}}
	c.clonePackage(p)

	dst := filepath.Join(c.workdir, "gopath", "src", "example.com", "dep", "dep.go")
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("clone did not write %v: %v", dst, err)
	}
	c.writeFile(dst, []byte("package dep\n\nvar edgeCounter int\n"))

	c.clonePackage(p)
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "edgeCounter") {
		t.Fatalf("second clone overwrote the rewritten file:\n%s", got)
	}
}
