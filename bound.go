// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

// CompressBound returns the largest number of bytes Compress could ever
// write for an n-byte packet: the worst case is a verbatim passthrough
// copy under the legacy header, since every other candidate is only
// chosen when it beats that.
func CompressBound(n int) int {
	return n + MaxOverhead
}
