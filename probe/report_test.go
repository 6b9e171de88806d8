package main

import (
	"testing"

	"github.com/bradleyjkemp/covregion/coverage"
)

func TestBuildReport(t *testing.T) {
	rep, err := buildReport()
	if err != nil {
		t.Fatal(err)
	}
	if rep.Port != coverage.PortName {
		t.Errorf("port = %q, want %q", rep.Port, coverage.PortName)
	}
	if rep.End < rep.Start {
		t.Errorf("inverted bounds: start=%#x end=%#x", rep.Start, rep.End)
	}
	if got := rep.End - rep.Start; coverage.PortName == "table" && got != coverage.CoverSize {
		t.Errorf("region spans %d bytes, want %d", got, coverage.CoverSize)
	}
	if rep.Width != coverage.CounterBytes {
		t.Errorf("width = %d, want %d", rep.Width, coverage.CounterBytes)
	}
	if !rep.Stable {
		t.Error("report not stable")
	}
}

func TestReportFormat(t *testing.T) {
	rep := Report{Port: "table", Start: 0x1000, End: 0x2000, Width: 1, Counters: 4096, Stable: true}
	got := rep.format()
	want := "covregion-report: port=table start=0x1000 end=0x2000 width=1 counters=4096 stable=true"
	if got != want {
		t.Errorf("format() = %q, want %q", got, want)
	}
}

func TestCheckMappedRegion(t *testing.T) {
	if err := checkMapped(coverage.StartOfCounters(), coverage.RegionSize()); err != nil {
		t.Fatalf("counter region not mapped: %v", err)
	}
}
