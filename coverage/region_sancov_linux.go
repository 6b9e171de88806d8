//go:build libfuzzer && linux

package coverage

// On ELF targets the linker generates __start_<section> and __stop_<section>
// symbols for every section whose name is a valid C identifier. The 8-bit
// counters emitted by sanitizer-coverage instrumentation live in
// __sancov_cntrs. The symbols are declared weak so that a binary with zero
// instrumented edges still links and reports an empty region.

/*
extern char __start___sancov_cntrs __attribute__((weak));
extern char __stop___sancov_cntrs __attribute__((weak));

static char *covregion_sancov_start(void) { return &__start___sancov_cntrs; }
static char *covregion_sancov_end(void) { return &__stop___sancov_cntrs; }
*/
import "C"

import "unsafe"

const PortName = "sancov-linux"

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
