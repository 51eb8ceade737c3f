// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"hash/crc32"

	"github.com/dsnet/golib/hashutil"
	"github.com/dsnet/netcodec/internal/simd"
)

// crc32Update extends a running IEEE CRC-32 by buf, delegating to the SIMD
// kernel contract so the checksum goes through the same replaceable
// implementation boundary the compression kernels do.
func crc32Update(crc uint32, buf []byte) uint32 {
	return simd.CRC32Update(crc, buf)
}

// crc32Combine merges the CRC-32 of two adjacent byte ranges without
// re-reading the first range, used when a dictionary blob's checksum is
// assembled section-by-section (header+tables, then an optional trailing LZP
// section) rather than in one pass over the whole buffer.
func crc32Combine(crc1, crc2 uint32, len2 int) uint32 {
	return hashutil.CombineCRC32(crc32.IEEE, crc1, crc2, int64(len2))
}
