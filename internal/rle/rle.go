// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package rle implements the compressor's run-length side-path: a
// sequence of (count, symbol) pairs used when a payload's run structure
// dominates its byte-level entropy.
package rle

import "encoding/binary"

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "rle: " + string(e) }

// ErrCorrupt reports a malformed (count, symbol) stream: a zero count, a
// run overshooting the destination, or a trailing partial pair.
var ErrCorrupt error = Error("corrupt run-length stream")

// pairSize is the encoded width of one (count, symbol) pair: a 16-bit
// LE run length followed by the repeated byte.
const pairSize = 3

// MaxRun is the longest run a single pair can express.
const MaxRun = 0xffff

// Encode writes src to dst as a sequence of (count, symbol) pairs,
// returning the number of bytes written. It reports ok=false without
// modifying dst's meaning if dst is too small to hold the full stream.
func Encode(dst, src []byte) (n int, ok bool) {
	pos := 0
	for i := 0; i < len(src); {
		run := 1
		for i+run < len(src) && src[i+run] == src[i] && run < MaxRun {
			run++
		}
		if pos+pairSize > len(dst) {
			return 0, false
		}
		binary.LittleEndian.PutUint16(dst[pos:], uint16(run))
		dst[pos+2] = src[i]
		pos += pairSize
		i += run
	}
	return pos, true
}

// EncodedLen returns the number of bytes Encode would write for src,
// without writing anything, so the compressor can compare candidate
// sizes before committing to one.
func EncodedLen(src []byte) int {
	n := 0
	for i := 0; i < len(src); {
		run := 1
		for i+run < len(src) && src[i+run] == src[i] && run < MaxRun {
			run++
		}
		n += pairSize
		i += run
	}
	return n
}

// Decode expands src's (count, symbol) pairs into dst, returning the
// number of bytes written. A zero count or a run that would overshoot
// dst is reported as ErrCorrupt, as is a trailing partial pair.
func Decode(dst, src []byte) (int, error) {
	pos := 0
	si := 0
	for si+pairSize <= len(src) {
		count := binary.LittleEndian.Uint16(src[si:])
		sym := src[si+2]
		if count == 0 {
			return 0, ErrCorrupt
		}
		if pos+int(count) > len(dst) {
			return 0, ErrCorrupt
		}
		for k := 0; k < int(count); k++ {
			dst[pos+k] = sym
		}
		pos += int(count)
		si += pairSize
	}
	if si != len(src) {
		return 0, ErrCorrupt
	}
	return pos, nil
}
