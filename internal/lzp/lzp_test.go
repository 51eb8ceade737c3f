// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lzp

import (
	"bytes"
	"testing"

	"github.com/dsnet/netcodec/internal/testutil"
)

func TestApplyUnapplyRoundTrip(t *testing.T) {
	tb := NewTable()
	tb.Update(0x00, 0, 0x41)
	tb.Update(0x41, 1, 0x42)

	src := []byte{0x41, 0x42, 0x99, 0x01}
	filtered := make([]byte, len(src))
	tb.Apply(filtered, src)

	got := make([]byte, len(src))
	tb.Unapply(got, filtered)
	if !bytes.Equal(got, src) {
		t.Fatalf("round-trip mismatch: got %x want %x", got, src)
	}
}

func TestCorrectPredictionZeroesByte(t *testing.T) {
	tb := NewTable()
	tb.Update(0x00, 0, 0x7a)
	src := []byte{0x7a}
	dst := make([]byte, 1)
	tb.Apply(dst, src)
	if dst[0] != 0 {
		t.Fatalf("correct prediction should XOR to zero, got %#x", dst[0])
	}
}

func TestTrainMajorityVote(t *testing.T) {
	// A corpus where the byte at offset 1 is always 0xBB, preceded by the
	// same prior byte 0xAA, so the table should learn to predict it.
	pkts := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		pkts = append(pkts, []byte{0xAA, 0xBB, 0xCC})
	}
	tb := Train(pkts)
	predicted, ok := tb.Lookup(0xAA, 1)
	if !ok || predicted != 0xBB {
		t.Fatalf("Lookup(0xAA, 1) = (%#x, %v), want (0xbb, true)", predicted, ok)
	}
}

func TestTrainLowConfidenceSlotUnset(t *testing.T) {
	r := testutil.NewRand(9)
	pkts := make([][]byte, 0, 256)
	for i := 0; i < 256; i++ {
		pkts = append(pkts, []byte{0x10, byte(r.Intn(256))})
	}
	tb := Train(pkts)
	if _, ok := tb.Lookup(0x10, 1); ok {
		t.Fatalf("expected no confident prediction for a uniformly random successor")
	}
}
