//go:build llvmprofile && darwin

package coverage

// Mach-O spelling of the __llvm_prf_cnts binding. The section name is
// toolchain-specific: double-check it against the clang version in use,
// because a stale name here resolves to an empty or wrong region instead of
// failing the build.

/*
int __llvm_profile_runtime = 0;

extern unsigned long long covregion_prf_begin __asm("section$start$__DATA$__llvm_prf_cnts");
extern unsigned long long covregion_prf_finish __asm("section$end$__DATA$__llvm_prf_cnts");

static unsigned long long *covregion_prf_start(void) { return &covregion_prf_begin; }
static unsigned long long *covregion_prf_end(void) { return &covregion_prf_finish; }
*/
import "C"

import "unsafe"

const PortName = "llvmprof-darwin"

// CounterBytes is 8: the profile runtime uses 64-bit counters.
const CounterBytes = 8

// StartOfCounters returns the address of the first coverage counter.
func StartOfCounters() unsafe.Pointer {
	return unsafe.Pointer(C.covregion_prf_start())
}

// EndOfCounters returns the address one past the last coverage counter.
func EndOfCounters() unsafe.Pointer {
	return unsafe.Pointer(C.covregion_prf_end())
}
