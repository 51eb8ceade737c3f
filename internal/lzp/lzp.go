// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lzp implements the LZP (Lempel-Ziv-Prediction) XOR pre-filter:
// a fixed-size hash table mapping (previous byte, offset) to a predicted
// next byte. Applying the filter XORs each byte with its prediction, so
// a correctly predicted byte becomes 0x00 and compresses trivially under
// the entropy stage that follows it. The same operation is its own
// inverse, since XOR is self-inverse.
package lzp

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

// Size is the number of entries in the hash table (2^17), per spec
// section 3.
const Size = 1 << 17

const indexMask = Size - 1

// hashKey0/hashKey1 form a fixed SipHash-2-4 key. The key need not be
// secret: it only needs to be identical between every encoder and
// decoder built against this package, and a fixed constant guarantees
// that regardless of process or platform.
const (
	hashKey0 = 0x6e65746c7a70c0de
	hashKey1 = 0x646963740ba5e17a
)

// index hashes (prevByte, offset) into a table slot.
func index(prevByte byte, offset int) int {
	var buf [5]byte
	buf[0] = prevByte
	binary.LittleEndian.PutUint32(buf[1:], uint32(offset))
	h := siphash.Hash(hashKey0, hashKey1, buf[:])
	return int(h) & indexMask
}

// Entry is one hash-table slot: a predicted byte and whether it is
// currently trusted.
type Entry struct {
	Byte  byte
	Valid bool
}

// Table is the LZP hash table, either trained offline as part of a
// Dictionary or mirrored and updated live by an adaptive Context.
type Table struct {
	entries [Size]Entry
}

// NewTable returns an empty table with no valid predictions.
func NewTable() *Table {
	return &Table{}
}

// Clone returns an independent copy, used to seed a Context's adaptive
// mirror from a Dictionary's trained table.
func (tb *Table) Clone() *Table {
	dup := *tb
	return &dup
}

// Lookup returns the predicted byte for (prevByte, offset) and whether
// the slot currently holds a valid prediction.
func (tb *Table) Lookup(prevByte byte, offset int) (byte, bool) {
	e := tb.entries[index(prevByte, offset)]
	return e.Byte, e.Valid
}

// RawAt returns the entry at raw table index i, used only by dictionary
// blob serialization, which stores the table as a flat array rather than
// going through the (prevByte, offset) hash.
func (tb *Table) RawAt(i int) Entry { return tb.entries[i] }

// SetRaw sets the entry at raw table index i to a valid prediction of b,
// the inverse of RawAt used when loading a serialized table.
func (tb *Table) SetRaw(i int, b byte) { tb.entries[i] = Entry{Byte: b, Valid: true} }

// Update records actual as the prediction for (prevByte, offset),
// overwriting whatever was there. Both the encoder and decoder call this
// symmetrically in adaptive mode so their mirrors never diverge.
func (tb *Table) Update(prevByte byte, offset int, actual byte) {
	tb.entries[index(prevByte, offset)] = Entry{Byte: actual, Valid: true}
}

// Apply runs the XOR pre-filter over src (the original packet) into dst,
// hashing on the true preceding byte of src at each position. Used by
// the encoder, where the original data is available up front.
func (tb *Table) Apply(dst, src []byte) {
	var prev byte
	for i, b := range src {
		predicted, ok := tb.Lookup(prev, i)
		if ok {
			dst[i] = b ^ predicted
		} else {
			dst[i] = b
		}
		prev = b
	}
}

// Unapply is Apply's inverse: src is the filtered stream, dst receives
// the original bytes. Because the hash must be computed on the original
// preceding byte, Unapply tracks prev from the bytes it has already
// reconstructed into dst rather than from src, and so must be applied in
// order from i=0 upward.
func (tb *Table) Unapply(dst, src []byte) {
	var prev byte
	for i, b := range src {
		predicted, ok := tb.Lookup(prev, i)
		if ok {
			dst[i] = b ^ predicted
		} else {
			dst[i] = b
		}
		prev = dst[i]
	}
}

// UpdateAll replays buf (either a just-filtered source or a just-decoded
// destination, both holding the same original bytes) through Update, so
// that every (prevByte, offset) pair the stream touched now predicts
// correctly next time. Called once per packet in adaptive mode, after
// Apply or Unapply, so encoder and decoder mirrors evolve identically.
func (tb *Table) UpdateAll(buf []byte) {
	var prev byte
	for i, b := range buf {
		tb.Update(prev, i, b)
		prev = b
	}
}
