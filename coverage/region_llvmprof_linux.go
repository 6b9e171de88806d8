//go:build llvmprofile && linux

package coverage

// Binding for clang's profile instrumentation (-fprofile-instr-generate),
// whose 64-bit counters live in the __llvm_prf_cnts section. Defining
// __llvm_profile_runtime tells the profiling runtime that an external
// runtime is present, suppressing its own initialization; it is never read
// or written here. The section symbols are weak so an uninstrumented binary
// links and reports an empty region.

/*
int __llvm_profile_runtime = 0;

extern unsigned long long __start___llvm_prf_cnts __attribute__((weak));
extern unsigned long long __stop___llvm_prf_cnts __attribute__((weak));

static unsigned long long *covregion_prf_start(void) { return &__start___llvm_prf_cnts; }
static unsigned long long *covregion_prf_end(void) { return &__stop___llvm_prf_cnts; }
*/
import "C"

import "unsafe"

const PortName = "llvmprof-linux"

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
