// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package tans

import "github.com/dsnet/netcodec/internal/bitstream"

// Decode reads exactly n bytes from br using t and the encoder's final
// state, writing them into dst[:n] in forward order. dst must have
// length >= n. It panics with ErrCorruptState if state ever leaves the
// [T, 2T) domain, which can only happen on corrupted input.
func Decode(br *bitstream.Reader, t *Table, state uint32, dst []byte, n int) {
	T := uint32(t.log.Size())
	for i := 0; i < n; i++ {
		if state < T || state >= 2*T {
			panic(ErrCorruptState)
		}
		slot := state - T
		e := t.decode[slot]
		dst[i] = e.symbol
		bits := br.ReadBits(uint(e.nbBits))
		state = e.nextStateBase + bits
	}
}

// DecodeByte decodes a single byte and returns the updated state. It is
// used by per-position (PCTX) decoding, where each byte may use a
// different table.
func DecodeByte(br *bitstream.Reader, t *Table, state uint32) (byte, uint32) {
	T := uint32(t.log.Size())
	if state < T || state >= 2*T {
		panic(ErrCorruptState)
	}
	slot := state - T
	e := t.decode[slot]
	bits := br.ReadBits(uint(e.nbBits))
	return e.symbol, e.nextStateBase + bits
}
