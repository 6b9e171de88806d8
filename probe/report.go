package main

import (
	"fmt"

	"github.com/bradleyjkemp/covregion/coverage"
	"golang.org/x/xerrors"
)

// Report describes the counter region as observed inside the instrumented
// process.
type Report struct {
	Port     string
	Start    uintptr
	End      uintptr
	Width    int
	Counters int
	Stable   bool
}

const reportPrefix = "covregion-report:"

func buildReport() (Report, error) {
	start := uintptr(coverage.StartOfCounters())
	end := uintptr(coverage.EndOfCounters())
	if end < start {
		return Report{}, xerrors.Errorf("region bounds inverted: start=%#x end=%#x", start, end)
	}
	size := end - start
	if size%coverage.CounterBytes != 0 {
		return Report{}, xerrors.Errorf("region size %d is not a multiple of the %d-byte counter width", size, coverage.CounterBytes)
	}

	rep := Report{
		Port:     coverage.PortName,
		Start:    start,
		End:      end,
		Width:    coverage.CounterBytes,
		Counters: coverage.NumCounters(),
		Stable:   stable(),
	}
	if !rep.Stable {
		return Report{}, xerrors.New("region accessors drifted between calls")
	}
	if size > 0 {
		if err := checkMapped(coverage.StartOfCounters(), size); err != nil {
			return Report{}, xerrors.Errorf("region [%#x, %#x) is not readable: %w", start, end, err)
		}
	}
	return rep, nil
}

// stable reports whether repeated accessor calls return identical addresses.
func stable() bool {
	start, end := coverage.StartOfCounters(), coverage.EndOfCounters()
	for i := 0; i < 3; i++ {
		if coverage.StartOfCounters() != start || coverage.EndOfCounters() != end {
			return false
		}
	}
	return true
}

func (r Report) format() string {
	return fmt.Sprintf("%s port=%s start=%#x end=%#x width=%d counters=%d stable=%v",
		reportPrefix, r.Port, r.Start, r.End, r.Width, r.Counters, r.Stable)
}
