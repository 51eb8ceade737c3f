// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import "github.com/dsnet/netcodec/internal/bucket"

// arenaLayoutSize returns the total scratch size to allocate for a
// Context's arena given the configured hint. Compress tries every
// candidate encoding per packet (delta scratch, LZP scratch, RLE, LZ77,
// one full-size trial per bucket for the single-region candidate, PCTX,
// bigram-PCTX, MREG, TANS_10, LZP_TANS) and arenaAllocator is a pure bump
// allocator reset once per call, so nothing is reused between trials:
// the arena must hold every trial buffer live at once, not just the
// winner. bucket.Count+16 full packet-sized buffers is a comfortable
// upper bound on that sum; it only costs memory once, at Context
// creation, not per packet.
func arenaLayoutSize(hint int) int {
	const min = (bucket.Count + 16) * MaxPacketSize
	if hint < min {
		return min
	}
	return hint
}

// arenaAllocator is a bump allocator over a fixed byte slice, used to hand
// out the scratch sub-buffers a single Compress or Decompress call needs
// without allocating on the heap. It is reset at the start of every call.
type arenaAllocator struct {
	buf []byte
	off int
}

func newArenaAllocator(buf []byte) arenaAllocator {
	return arenaAllocator{buf: buf}
}

// reset rewinds the allocator so the arena's storage can be reused by the
// next Compress/Decompress call.
func (a *arenaAllocator) reset() { a.off = 0 }

// alloc returns a fresh n-byte sub-slice of the arena. It panics with a
// KindNoMem error if the arena is too small, which errRecover turns into a
// returned error at the Compress/Decompress boundary.
func (a *arenaAllocator) alloc(n int) []byte {
	if a.off+n > len(a.buf) {
		panic(errOf(KindNoMem, "arena exhausted"))
	}
	s := a.buf[a.off : a.off+n]
	a.off += n
	return s
}
