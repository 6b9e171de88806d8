package main

import (
	"bytes"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/covregion/coverage"
	"github.com/maruel/panicparse/stack"
	"golang.org/x/xerrors"
)

// regionReport is the probe's report line, parsed on the tool side.
type regionReport struct {
	Port     string
	Start    uint64
	End      uint64
	Width    int
	Counters int
	Stable   bool
}

const reportPrefix = "covregion-report:"

// runProbe executes the probe binary and parses its report.
func runProbe(bin string) (regionReport, error) {
	out, err := exec.Command(bin).CombinedOutput()
	if err != nil {
		return regionReport{}, xerrors.Errorf("probe exited with %v\n%s", err, condensePanic(out))
	}
	return parseReport(out)
}

func parseReport(out []byte) (regionReport, error) {
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, reportPrefix) {
			continue
		}
		return parseReportLine(strings.TrimSpace(strings.TrimPrefix(line, reportPrefix)))
	}
	return regionReport{}, xerrors.Errorf("probe produced no report:\n%s", out)
}

func parseReportLine(line string) (regionReport, error) {
	var rep regionReport
	seen := make(map[string]bool)
	for _, field := range strings.Fields(line) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			return rep, xerrors.Errorf("malformed report field %q", field)
		}
		var err error
		switch k {
		case "port":
			rep.Port = v
		case "start":
			rep.Start, err = strconv.ParseUint(v, 0, 64)
		case "end":
			rep.End, err = strconv.ParseUint(v, 0, 64)
		case "width":
			rep.Width, err = strconv.Atoi(v)
		case "counters":
			rep.Counters, err = strconv.Atoi(v)
		case "stable":
			rep.Stable, err = strconv.ParseBool(v)
		default:
			err = xerrors.New("unknown field")
		}
		if err != nil {
			return rep, xerrors.Errorf("bad report field %q: %w", field, err)
		}
		seen[k] = true
	}
	// A probe built against a different protocol version must fail here
	// rather than as a zero-valued report downstream.
	for _, k := range []string{"port", "start", "end", "width", "counters", "stable"} {
		if !seen[k] {
			return rep, xerrors.Errorf("incomplete report: missing field %q", k)
		}
	}
	return rep, nil
}

// verifyReport re-checks the probe's invariants on the tool side and, for
// the native table port, that the region is exactly the counter table.
func verifyReport(rep regionReport, edges int) error {
	if rep.End < rep.Start {
		return xerrors.Errorf("region bounds inverted: start=%#x end=%#x", rep.Start, rep.End)
	}
	if !rep.Stable {
		return xerrors.New("region accessors drifted between calls")
	}
	if rep.Width <= 0 {
		return xerrors.Errorf("counter width %d", rep.Width)
	}
	size := rep.End - rep.Start
	if size%uint64(rep.Width) != 0 {
		return xerrors.Errorf("region size %d is not a multiple of the %d-byte counter width", size, rep.Width)
	}
	if uint64(rep.Counters)*uint64(rep.Width) != size {
		return xerrors.Errorf("region reports %d counters of %d bytes over %d bytes", rep.Counters, rep.Width, size)
	}
	if rep.Port == "table" && size != coverage.CoverSize {
		return xerrors.Errorf("table region spans %d bytes, want %d", size, coverage.CoverSize)
	}
	if edges > 0 && size == 0 {
		return xerrors.Errorf("%d edges instrumented but the region is empty", edges)
	}
	return nil
}

// condensePanic reduces a probe goroutine dump to the frames of the first
// goroutine. Full dumps drown the actual failure.
func condensePanic(out []byte) []byte {
	ctx, err := stack.ParseDump(bytes.NewReader(out), io.Discard, false)
	if err != nil || ctx == nil {
		return out
	}
	for _, gr := range ctx.Goroutines {
		if !gr.First {
			continue
		}
		var condensed []byte
		for _, call := range gr.Stack.Calls {
			condensed = append(condensed, []byte("\n"+call.Func.PkgDotName())...)
		}
		if len(condensed) > 0 {
			return condensed
		}
	}
	return out
}
