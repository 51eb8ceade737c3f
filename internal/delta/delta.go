// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package delta implements the field-class-aware predictor used as the
// compressor's first pipeline stage: counter-like regions predict via
// modular subtraction, flag/float-like regions predict via XOR, and the
// boundary between regions depends only on a byte's offset within the
// packet.
package delta

import (
	"math"

	"github.com/dsnet/netcodec/internal/simd"
)

// Class identifies which prediction rule governs a byte offset.
type Class int

const (
	Header    Class = iota // offsets 0-15: XOR
	Subheader              // offsets 16-63: modular subtract
	Body                   // offsets 64-255: XOR
	Tail                   // offsets >= 256: modular subtract
)

// ClassOf returns the field class governing offset i.
func ClassOf(i int) Class {
	switch {
	case i < 16:
		return Header
	case i < 64:
		return Subheader
	case i < 256:
		return Body
	default:
		return Tail
	}
}

// MinSize is the smallest packet size eligible for delta prediction.
const MinSize = 8

// classSpan is a maximal run of offsets sharing one Class. Class
// boundaries (16, 64, 256) are fixed, so a span never needs to inspect
// more than one byte per run to know its rule.
type classSpan struct {
	start, end int
	xor        bool
}

// classSpans partitions [0,n) into contiguous XOR/subtract runs per
// ClassOf, so the kernels below can dispatch through internal/simd
// once per run instead of once per byte.
func classSpans(n int) []classSpan {
	bounds := [...]int{16, 64, 256}
	xor := [...]bool{true, false, true, false}
	var spans [4]classSpan
	k := 0
	start := 0
	for i, b := range bounds {
		if start >= n {
			return spans[:k]
		}
		end := b
		if end > n {
			end = n
		}
		spans[k] = classSpan{start, end, xor[i]}
		k++
		start = end
	}
	if start < n {
		spans[k] = classSpan{start, n, xor[3]}
		k++
	}
	return spans[:k]
}

// EncodeOrder1 fills residual with curr's first-order residual against
// prev: residual[i] = curr[i] XOR prev[i] for XOR classes, or
// (curr[i]-prev[i]) mod 256 for subtract classes. curr, prev and
// residual must all have the same length.
func EncodeOrder1(residual, curr, prev []byte) {
	for _, s := range classSpans(len(curr)) {
		if s.xor {
			simd.XOR(residual[s.start:s.end], curr[s.start:s.end], prev[s.start:s.end])
		} else {
			simd.Sub(residual[s.start:s.end], curr[s.start:s.end], prev[s.start:s.end])
		}
	}
}

// DecodeOrder1 is the inverse of EncodeOrder1.
func DecodeOrder1(curr, residual, prev []byte) {
	for _, s := range classSpans(len(residual)) {
		if s.xor {
			simd.XOR(curr[s.start:s.end], residual[s.start:s.end], prev[s.start:s.end])
		} else {
			simd.Add(curr[s.start:s.end], residual[s.start:s.end], prev[s.start:s.end])
		}
	}
}

// EncodeOrder2 fills residual with curr's second-order residual against
// prev and prev2. All four slices must have the same length. For
// subtract classes the prediction is the usual linear extrapolation
// 2*prev-prev2 mod 256, built from two simd.Add/Sub calls using
// residual itself as scratch; for XOR classes, doubling yields zero
// in GF(2) arithmetic (2*prev == 0), so the prediction
// degenerates to prev2 itself.
func EncodeOrder2(residual, curr, prev, prev2 []byte) {
	for _, s := range classSpans(len(curr)) {
		r, c, p, p2 := residual[s.start:s.end], curr[s.start:s.end], prev[s.start:s.end], prev2[s.start:s.end]
		if s.xor {
			simd.XOR(r, c, p2)
			continue
		}
		simd.Add(r, p, p)   // r = 2*prev
		simd.Sub(r, r, p2)  // r = 2*prev - prev2
		simd.Sub(r, c, r)   // r = curr - pred
	}
}

// DecodeOrder2 is the inverse of EncodeOrder2.
func DecodeOrder2(curr, residual, prev, prev2 []byte) {
	for _, s := range classSpans(len(residual)) {
		c, r, p, p2 := curr[s.start:s.end], residual[s.start:s.end], prev[s.start:s.end], prev2[s.start:s.end]
		if s.xor {
			simd.XOR(c, r, p2)
			continue
		}
		simd.Add(c, p, p)  // c = 2*prev (scratch)
		simd.Sub(c, c, p2) // c = 2*prev - prev2 == pred
		simd.Add(c, r, c)  // c = residual + pred
	}
}

// EntropyCost estimates the order-0 entropy cost, in bits, of encoding
// buf with a static histogram coder. It is used only to compare
// candidate residuals during compression; the decode path never calls
// it, so its floating point cost is off the hot path.
func EntropyCost(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}
	hist := simd.FreqCount(buf)
	n := float64(len(buf))
	var bits float64
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		bits -= float64(c) * math.Log2(p)
	}
	return bits
}
