//go:build !libfuzzer && !llvmprofile

package coverage

import (
	"testing"
	"unsafe"
)

func TestRegionBounds(t *testing.T) {
	start := uintptr(StartOfCounters())
	end := uintptr(EndOfCounters())
	if start == 0 || end == 0 {
		t.Fatalf("nil region bound: start=%#x end=%#x", start, end)
	}
	if end < start {
		t.Fatalf("inverted region: start=%#x end=%#x", start, end)
	}
	if end-start != CoverSize {
		t.Fatalf("region spans %d bytes, want %d", end-start, CoverSize)
	}
}

func TestRegionStable(t *testing.T) {
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

func TestRegionSizeMultipleOfCounterWidth(t *testing.T) {
	if size := RegionSize(); size%CounterBytes != 0 {
		t.Fatalf("region size %d is not a multiple of the %d-byte counter width", size, CounterBytes)
	}
}

func TestNumCounters(t *testing.T) {
	if n := NumCounters(); n != CoverSize/CounterBytes {
		t.Fatalf("NumCounters() = %d, want %d", n, CoverSize/CounterBytes)
	}
}

// The region must bound CoverTab itself, not some other symbol: a write to
// the table has to be visible through the accessor addresses.
func TestRegionBoundsCounterTable(t *testing.T) {
	const idx = 123
	old := CoverTab[idx]
	defer func() { CoverTab[idx] = old }()

	CoverTab[idx]++
	got := *(*byte)(unsafe.Add(StartOfCounters(), idx))
	if got != CoverTab[idx] {
		t.Fatalf("counter %d reads %d through the region, %d through the table", idx, got, CoverTab[idx])
	}

	last := *(*byte)(unsafe.Add(StartOfCounters(), CoverSize-1))
	if last != CoverTab[CoverSize-1] {
		t.Fatalf("last counter reads %d through the region, %d through the table", last, CoverTab[CoverSize-1])
	}
}
