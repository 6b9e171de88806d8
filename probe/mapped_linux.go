package main

import (
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// checkMapped verifies that every page of [p, p+size) is mapped into the
// process. Mincore fails with ENOMEM on unmapped ranges, which is the
// silent-misresolution case: section symbols that resolved to addresses
// outside the loaded image.
func checkMapped(p unsafe.Pointer, size uintptr) error {
	pageSize := uintptr(unix.Getpagesize())
	base := uintptr(p) &^ (pageSize - 1)
	span := uintptr(p) + size - base
	vec := make([]byte, (span+pageSize-1)/pageSize)
	if _, _, errno := unix.Syscall(unix.SYS_MINCORE, base, span, uintptr(unsafe.Pointer(&vec[0]))); errno != 0 {
		return xerrors.Errorf("mincore: %w", errno)
	}
	return nil
}
