// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bitstream implements the wire-level bit packing used by the
// tANS codec: a forward LSB-first writer paired with a backward MSB-first
// reader. The writer packs bits into a destination buffer starting at
// offset zero; the reader consumes that same buffer starting from its
// tail. This asymmetry lets an encoder emit a tANS stream while iterating
// its source in reverse and a decoder consume it forward, without either
// side needing to know the other's traversal order.
package bitstream

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "bitstream: " + string(e) }

var (
	// ErrOverflow reports that a Writer ran out of destination space.
	ErrOverflow error = Error("write exceeds buffer capacity")

	// ErrUnderflow reports that a Reader ran out of source bits.
	ErrUnderflow error = Error("read exceeds available bits")
)

const maxBits = 32
