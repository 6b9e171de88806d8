// Copyright 2015 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Covregion instruments a Go package with coverage counters, builds a probe
// binary against the instrumented code, runs it, and verifies that the
// counter region accessors exactly bound the counters the instrumentation
// emitted. A port that compiles but binds the wrong section reports garbage
// coverage rather than crashing, so this end-to-end check is the only guard
// against misresolution.
package main

import (
	"bytes"
	"flag"
	"go/ast"
	"go/parser"
	"go/token"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

var (
	flagOut      = flag.String("o", "", "if set, write the probe binary to this file instead of deleting it")
	flagPreserve = flag.String("preserve", "", "a comma-separated list of import paths not to instrument")
	flagV        = flag.Int("v", 0, "verbosity level")
)

func main() {
	flag.Parse()
	c := new(Context)

	if flag.NArg() > 1 {
		c.failf("usage: covregion [pkg]")
	}

	pkg := "."
	if flag.NArg() == 1 {
		pkg = flag.Arg(0)
	}

	c.loadPkg(pkg)  // load and typecheck pkg and the probe
	c.loadStd()     // load standard library
	c.calcIgnore()  // calculate set of packages to ignore
	c.makeWorkdir() // create workdir
	defer os.RemoveAll(c.workdir)

	bin := *flagOut
	if bin == "" {
		bin = filepath.Join(c.workdir, "covregion-probe")
	}
	c.buildProbeBinary(bin)

	rep, err := runProbe(bin)
	if err != nil {
		c.failf("probe failed: %v", err)
	}
	if err := verifyReport(rep, c.edges); err != nil {
		c.failf("region verification failed: %v", err)
	}
	log.Printf("verified %s region: %d counters over [%#x, %#x), %d edges instrumented",
		rep.Port, rep.Counters, rep.Start, rep.End, c.edges)
}

// basePackagesConfig returns a base golang.org/x/tools/go/packages.Config
// that clients can then modify and use for calls to go/packages.
func basePackagesConfig() *packages.Config {
	cfg := new(packages.Config)
	cfg.Env = os.Environ()
	return cfg
}

// Context holds state for a covregion run.
type Context struct {
	targetPackages []*packages.Package // typechecked root packages
	probePackage   []*packages.Package // the report binary linked against the instrumented code

	std    map[string]bool // set of packages in the standard library
	ignore map[string]bool // set of packages to ignore during instrumentation
	cloned map[string]bool // set of packages already cloned into the workdir

	edges int // counters inserted across all instrumented files

	workdir string
}

func (c *Context) isIgnored(pkg string) bool {
	return c.std[pkg] ||
		strings.HasPrefix(pkg, "internal/") ||
		strings.HasPrefix(pkg, "runtime/") ||
		c.ignore[pkg]
}

// loadPkg loads, parses, and typechecks pkg, the probe package,
// and their dependencies.
func (c *Context) loadPkg(pkg string) {
	cfg := basePackagesConfig()
	cfg.Mode = packages.LoadAllSyntax
	// use custom ParseFile in order to get comments
	cfg.ParseFile = func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
		return parser.ParseFile(fset, filename, src, parser.ParseComments)
	}

	var err error
	c.targetPackages, err = packages.Load(cfg, pkg)
	if err != nil {
		c.failf("could not load packages: %v", err)
	}
	if packages.PrintErrors(c.targetPackages) > 0 {
		c.failf("typechecking of %v failed", pkg)
	}

	c.probePackage, err = packages.Load(cfg, "github.com/bradleyjkemp/covregion/probe")
	if err != nil {
		c.failf("could not load probe package: %v", err)
	}
	if packages.PrintErrors(c.probePackage) > 0 {
		c.failf("typechecking of the probe package failed")
	}
}

// loadStd finds the set of standard library package paths.
func (c *Context) loadStd() {
	cfg := basePackagesConfig()
	cfg.Mode = packages.NeedName
	stdpkgs, err := packages.Load(cfg, "std")
	if err != nil {
		c.failf("could not load standard library: %v", err)
	}
	c.std = make(map[string]bool, len(stdpkgs))
	for _, p := range stdpkgs {
		c.std[p.PkgPath] = true
	}
}

func (c *Context) calcIgnore() {
	c.ignore = map[string]bool{
		// The probe and the counter table must observe the region, not
		// contribute to it.
		"github.com/bradleyjkemp/covregion/coverage": true,
		"github.com/bradleyjkemp/covregion/probe":    true,
	}

	// Ignore any packages requested explicitly by the user.
	for _, path := range strings.Split(*flagPreserve, ",") {
		if path != "" {
			c.ignore[path] = true
		}
	}
}

// makeWorkdir creates the workdir, logging as requested.
func (c *Context) makeWorkdir() {
	var err error
	c.workdir, err = os.MkdirTemp("", "covregion")
	if err != nil {
		c.failf("failed to create temp dir: %v", err)
	}
	if *flagV >= 1 {
		log.Printf("workdir: %v", c.workdir)
	}
}

// buildProbeBinary instruments the target packages, assembles the probe
// package against them, and compiles everything in a GOPATH-shaped workdir.
func (c *Context) buildProbeBinary(bin string) {
	instrumented := c.instrumentPackages()
	c.writeProbeImports(instrumented)

	cmd := exec.Command("go", "build", "-trimpath", "-o", bin, "github.com/bradleyjkemp/covregion/probe")
	cmd.Env = append(os.Environ(),
		"GOPATH="+filepath.Join(c.workdir, "gopath"),
		"GO111MODULE=off", // we have constructed a non-module, GOPATH environment
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		c.failf("failed to execute go build: %v\n%v", err, string(out))
	}
}

// instrumentPackages clones the target packages and their non-std
// dependencies into the workdir and rewrites their sources with coverage
// counters. It returns the import paths the probe must link in.
func (c *Context) instrumentPackages() []string {
	// The probe and its dependencies ship uninstrumented, and must be
	// cloned first: packages shared with the target's dependency graph are
	// rewritten afterwards, so the instrumented files win.
	packages.Visit(c.probePackage, nil, func(p *packages.Package) {
		c.clonePackage(p)
	})

	var instrumented []string
	visit := func(pkg *packages.Package) {
		c.clonePackage(pkg)
		if c.isIgnored(pkg.PkgPath) {
			return
		}

		path := filepath.Join(c.workdir, "gopath", "src", filepath.FromSlash(pkg.PkgPath))
		edges := 0
		for i, fullName := range pkg.CompiledGoFiles {
			fname := filepath.Base(fullName)
			if !strings.HasSuffix(fname, ".go") {
				// This is a cgo-generated file.
				// Instrumenting it currently does not work.
				// We copied the original Go file as part of clonePackage,
				// so we can just skip this one.
				continue
			}
			f := pkg.Syntax[i]

			buf := new(bytes.Buffer)
			edges += instrument(pkg.Fset, f, buf)
			c.writeFile(filepath.Join(path, fname), buf.Bytes())
		}
		c.edges += edges
		if *flagV >= 1 {
			log.Printf("instrumented %v: %v edges", pkg.PkgPath, edges)
		}

		if pkg.Name != "main" && !strings.Contains(pkg.PkgPath, "/internal/") {
			instrumented = append(instrumented, pkg.PkgPath)
		}
	}

	packages.Visit(c.targetPackages, nil, visit)
	return instrumented
}

// writeProbeImports generates the imports.go that links the instrumented
// packages into the probe binary, so that their init-time counter
// increments land in the region before the report is taken.
func (c *Context) writeProbeImports(instrumented []string) {
	probeDir := filepath.Join(c.workdir, "gopath", "src", "github.com", "bradleyjkemp", "covregion", "probe")
	imports := &bytes.Buffer{}
	if err := importsTmpl.Execute(imports, instrumented); err != nil {
		c.failf("failed to execute imports template: %v", err)
	}
	c.writeFile(filepath.Join(probeDir, "imports.go"), imports.Bytes())
}

func (c *Context) clonePackage(p *packages.Package) {
	if c.std[p.PkgPath] || p.PkgPath == "unsafe" {
		// Standard library packages are resolved from the real GOROOT.
		return
	}
	if c.cloned[p.PkgPath] {
		// Packages shared between the target and probe graphs are visited
		// more than once; a second clone would clobber instrumented files.
		return
	}
	if c.cloned == nil {
		c.cloned = make(map[string]bool)
	}
	c.cloned[p.PkgPath] = true
	newDir := filepath.Join(c.workdir, "gopath", "src", filepath.FromSlash(p.PkgPath))
	c.mkdirAll(newDir)

	// Use GoFiles instead of CompiledGoFiles here.
	// If we use CompiledGoFiles, we end up with code that cmd/go won't compile.
	for _, f := range p.GoFiles {
		c.copyFile(f, filepath.Join(newDir, filepath.Base(f)))
	}
	for _, f := range p.OtherFiles {
		c.copyFile(f, filepath.Join(newDir, filepath.Base(f)))
	}
}

func (c *Context) copyFile(src, dst string) {
	contents, err := os.ReadFile(src)
	if err != nil {
		c.failf("copyFile: could not read %v: %v", src, err)
	}
	if err := os.WriteFile(dst, contents, 0700); err != nil {
		c.failf("copyFile: could not write %v: %v", dst, err)
	}
}

func (c *Context) failf(str string, args ...interface{}) {
	os.RemoveAll(c.workdir)
	log.Fatalf(str, args...)
}

func (c *Context) writeFile(name string, data []byte) {
	if err := os.WriteFile(name, data, 0700); err != nil {
		c.failf("failed to write temp file: %v", err)
	}
}

func (c *Context) mkdirAll(dir string) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		c.failf("failed to create temp dir: %v", err)
	}
}

var importsTmpl = template.Must(template.New("imports").Parse(`
package main

import (
{{range .}}	_ "{{.}}"
{{end}}
)
`))
