//go:build libfuzzer || llvmprofile

package coverage

import "testing"

// These run against whichever section binding the build tags select. A test
// binary carries no instrumented section, so the weak/ld64 symbols resolve
// to an empty region: both accessors must agree on the same address rather
// than crash, which is the zero-edge case.

func TestPortRegionBounds(t *testing.T) {
	start := uintptr(StartOfCounters())
	end := uintptr(EndOfCounters())
	if end < start {
		t.Fatalf("inverted region: start=%#x end=%#x", start, end)
	}
	if end == start {
		t.Logf("%s region is empty (no instrumented section)", PortName)
	}
}

func TestPortRegionStable(t *testing.T) {
	start := StartOfCounters()
	end := EndOfCounters()
	for i := 0; i < 10; i++ {
		if s := StartOfCounters(); s != start {
			t.Fatalf("start drifted on call %d: %p != %p", i, s, start)
		}
		if e := EndOfCounters(); e != end {
			t.Fatalf("end drifted on call %d: %p != %p", i, e, end)
		}
	}
}

func TestPortRegionSizeMultipleOfCounterWidth(t *testing.T) {
	size := RegionSize()
	if size%CounterBytes != 0 {
		t.Fatalf("region size %d is not a multiple of the %d-byte counter width", size, CounterBytes)
	}
	if n := NumCounters(); uintptr(n)*CounterBytes != size {
		t.Fatalf("NumCounters() = %d, want %d", n, size/CounterBytes)
	}
}
