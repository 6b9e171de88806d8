// Copyright 2015 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

//go:build !libfuzzer && !llvmprofile

package coverage

import "unsafe"

// PortName identifies the counter region binding selected at build time.
const PortName = "table"

// CounterBytes is the width of one coverage counter.
const CounterBytes = 1

// CoverTab holds code coverage. Counters are incremented by statements the
// covregion tool inserts at every edge. It is a plain package-level array so
// that its address is assigned at link time and never changes for the
// process lifetime.
var CoverTab [CoverSize]byte

// StartOfCounters returns the address of the first coverage counter.
// The result is identical on every call within a process run.
func StartOfCounters() unsafe.Pointer {
	return unsafe.Pointer(&CoverTab[0])
}

// EndOfCounters returns the address one past the last coverage counter.
func EndOfCounters() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(&CoverTab[0]), CoverSize)
}
