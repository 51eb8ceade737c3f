// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package simd defines the kernel contract shared by delta prediction,
// frequency counting, and CRC update: delta_encode, delta_decode,
// freq_count, and crc32_update must all be byte-for-byte identical
// across every SIMD level. Hand-written SSE4.2/AVX2/NEON kernels are a
// replaceable collaborator outside this module's scope, so every level
// here resolves to the same generic Go implementation; Resolve still
// does real CPU-feature detection so a Context reports the level a
// production build would actually dispatch to.
package simd

import (
	"hash/crc32"

	"github.com/klauspost/cpuid/v2"
)

// Level identifies a SIMD instruction-set tier.
type Level int

const (
	Auto Level = iota
	Generic
	SSE42
	AVX2
	NEON
)

func (l Level) String() string {
	switch l {
	case Auto:
		return "auto"
	case Generic:
		return "generic"
	case SSE42:
		return "sse42"
	case AVX2:
		return "avx2"
	case NEON:
		return "neon"
	default:
		return "unknown"
	}
}

// Resolve turns Auto into the best level the running CPU actually
// supports, and passes any explicit level through unchanged. Every
// level's kernels currently alias the generic implementation, so
// Resolve's result only affects what Context.SIMDLevel reports, never
// the bytes a kernel produces.
func Resolve(l Level) Level {
	if l != Auto {
		return l
	}
	switch {
	case cpuid.CPU.Has(cpuid.AVX2):
		return AVX2
	case cpuid.CPU.Has(cpuid.SSE42):
		return SSE42
	case cpuid.CPU.Has(cpuid.ASIMD):
		return NEON
	default:
		return Generic
	}
}

// XOR computes dst[i] = a[i] ^ b[i] for the delta XOR field classes.
// dst, a, and b must have equal length.
func XOR(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// Sub computes dst[i] = a[i] - b[i] (mod 256) for the delta subtract
// field classes.
func Sub(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

// Add computes dst[i] = a[i] + b[i] (mod 256), the inverse of Sub.
func Add(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// FreqCount returns the order-0 byte histogram of buf, used by dictionary
// training, adaptive accumulation, and delta.EntropyCost.
func FreqCount(buf []byte) [256]uint64 {
	var hist [256]uint64
	for _, b := range buf {
		hist[b]++
	}
	return hist
}

// CRC32Update extends a running IEEE CRC-32 by buf, matching the
// checksum dictionary blobs are stamped with.
func CRC32Update(crc uint32, buf []byte) uint32 {
	return crc32.Update(crc, crc32.IEEETable, buf)
}
