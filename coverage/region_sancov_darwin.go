//go:build libfuzzer && darwin

package coverage

// Mach-O has no __start/__stop convention; ld64 instead resolves the magic
// section$start$SEGMENT$SECTION symbols. When the section is absent both
// symbols land on the same address, so an uninstrumented binary reports an
// empty region rather than failing to link.

/*
extern char covregion_sancov_begin __asm("section$start$__DATA$__sancov_cntrs");
extern char covregion_sancov_finish __asm("section$end$__DATA$__sancov_cntrs");

static char *covregion_sancov_start(void) { return &covregion_sancov_begin; }
static char *covregion_sancov_end(void) { return &covregion_sancov_finish; }
*/
import "C"

import "unsafe"

const PortName = "sancov-darwin"

// CounterBytes is 1: sanitizer coverage emits 8-bit counters.
const CounterBytes = 1

// StartOfCounters returns the address of the first coverage counter.
func StartOfCounters() unsafe.Pointer {
	return unsafe.Pointer(C.covregion_sancov_start())
}

// EndOfCounters returns the address one past the last coverage counter.
func EndOfCounters() unsafe.Pointer {
	return unsafe.Pointer(C.covregion_sancov_end())
}
