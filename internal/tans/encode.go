// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package tans

import "github.com/dsnet/netcodec/internal/bitstream"

// EncodeByte advances state by one symbol using table t and returns the
// updated state. It panics with ErrUnknownSymbol if b has zero frequency
// in t. Per-position callers (PCTX, bigram-PCTX) use this directly so
// that each byte in a stream may be coded against a different table
// while all tables share one state domain [T, 2T).
func EncodeByte(bw *bitstream.Writer, t *Table, b byte, state uint32) uint32 {
	T := uint32(t.log.Size())
	f := uint32(t.freq[b])
	if f == 0 {
		panic(ErrUnknownSymbol)
	}
	nbHi := uint(t.nbHi[b])
	nb := nbHi
	if state < f<<nbHi {
		nb = nbHi - 1
	}
	bw.WriteBits(state, nb)
	idx := t.cumul[b] + ((state >> nb) - f)
	return T + t.encode[idx]
}

// Encode writes src to bw using a single table t, iterating src in
// reverse order as required by the tabled-ANS construction, and returns
// the final state, which becomes the packet's initial decoder state.
func Encode(bw *bitstream.Writer, t *Table, src []byte) uint32 {
	state := uint32(t.log.Size()) // any value in [T, 2T) works as the initial seed; T is canonical
	for i := len(src) - 1; i >= 0; i-- {
		state = EncodeByte(bw, t, src[i], state)
	}
	return state
}
