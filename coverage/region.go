// Package coverage locates the region of per-edge execution counters that
// code-coverage instrumentation lays out in the running binary.
//
// The region's boundaries are fixed at link time, so each platform/toolchain
// pairing needs its own binding of the same two accessors. The binding is
// selected with build tags: the default port binds the package's own counter
// table (written by code the covregion tool rewrites), the libfuzzer tag
// binds the __sancov_cntrs section emitted by 8-bit-counter sanitizer
// instrumentation, and the llvmprofile tag binds the __llvm_prf_cnts section
// emitted by clang's profile instrumentation.
//
// The accessors only name addresses. Reading, resetting, and interpreting
// counter values is the job of whatever coverage sensor consumes the
// [StartOfCounters, EndOfCounters) range.
package coverage

// RegionSize returns the byte span of the counter region.
// It is always a multiple of CounterBytes.
func RegionSize() uintptr {
	return uintptr(EndOfCounters()) - uintptr(StartOfCounters())
}

// NumCounters returns the number of counters in the region.
func NumCounters() int {
	return int(RegionSize() / CounterBytes)
}
