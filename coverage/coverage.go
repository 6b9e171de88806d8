// Copyright 2015 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package coverage

const (
	// CoverSize is the size in bytes of the native counter table.
	CoverSize = 64 << 10
)
