// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package tans

import (
	"bytes"
	"testing"

	"github.com/dsnet/netcodec/internal/bitstream"
	"github.com/dsnet/netcodec/internal/testutil"
)

func countsFromBytes(src []byte) [256]uint64 {
	var counts [256]uint64
	for _, b := range src {
		counts[b]++
	}
	return counts
}

func roundTrip(t *testing.T, log TableLog, src []byte) {
	t.Helper()
	counts := countsFromBytes(src)
	ft, err := Normalize(counts, log)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if sum := ft.Sum(); sum != log.Size() {
		t.Fatalf("normalized sum = %d, want %d", sum, log.Size())
	}
	for s, c := range counts {
		if c > 0 && ft[s] == 0 {
			t.Fatalf("seen symbol %d normalized to zero frequency", s)
		}
	}

	table, err := Build(log, ft)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	buf := make([]byte, len(src)*2+64)
	var bw bitstream.Writer
	bw.Init(buf)
	finalState := Encode(&bw, table, src)
	n, err := bw.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var br bitstream.Reader
	if err := br.Init(buf[:n]); err != nil {
		t.Fatalf("Reader.Init: %v", err)
	}
	dst := make([]byte, len(src))
	Decode(&br, table, finalState, dst, len(src))
	if !br.Empty() {
		t.Fatalf("reader not empty after decoding all bytes")
	}
	if !bytes.Equal(dst, src) {
		t.Fatalf("round-trip mismatch:\n got %x\nwant %x", dst, src)
	}
}

func TestRoundTripUniform(t *testing.T) {
	src := bytes.Repeat([]byte{0x41}, 256)
	roundTrip(t, Log12, src)
	roundTrip(t, Log10, src)
}

func TestRoundTripSkewed(t *testing.T) {
	r := testutil.NewRand(1)
	src := make([]byte, 4000)
	for i := range src {
		// Heavily skewed distribution: mostly 0x00, occasional other bytes.
		if r.Intn(10) == 0 {
			src[i] = byte(r.Intn(256))
		} else {
			src[i] = 0x00
		}
	}
	roundTrip(t, Log12, src)
}

func TestRoundTripAllSymbols(t *testing.T) {
	r := testutil.NewRand(2)
	src := r.Bytes(8192)
	// Ensure every symbol appears at least once.
	for s := 0; s < 256; s++ {
		src[s] = byte(s)
	}
	roundTrip(t, Log12, src)
}

func TestEncodeUnknownSymbolPanics(t *testing.T) {
	var counts [256]uint64
	counts[0x41] = 10
	ft, err := Normalize(counts, Log10)
	if err != nil {
		t.Fatal(err)
	}
	table, err := Build(Log10, ft)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown symbol")
		}
	}()
	buf := make([]byte, 64)
	var bw bitstream.Writer
	bw.Init(buf)
	Encode(&bw, table, []byte{0x42})
}

func TestNormalizeEmptyFails(t *testing.T) {
	var counts [256]uint64
	if _, err := Normalize(counts, Log12); err != ErrBadFreqTable {
		t.Fatalf("Normalize(empty) = %v, want ErrBadFreqTable", err)
	}
}

func TestCanEncode(t *testing.T) {
	var counts [256]uint64
	counts[0x41] = 10
	counts[0x42] = 5
	ft, err := Normalize(counts, Log10)
	if err != nil {
		t.Fatal(err)
	}
	table, err := Build(Log10, ft)
	if err != nil {
		t.Fatal(err)
	}
	if !table.CanEncode([]byte{0x41, 0x42, 0x41}) {
		t.Fatalf("CanEncode should accept bytes present in the table")
	}
	if table.CanEncode([]byte{0x41, 0x43}) {
		t.Fatalf("CanEncode should reject a byte absent from the table")
	}
}

func TestRescalePreservesSeenSymbols(t *testing.T) {
	r := testutil.NewRand(3)
	src := make([]byte, 2000)
	for i := range src {
		src[i] = byte(r.Intn(20))
	}
	counts := countsFromBytes(src)
	ft12, err := Normalize(counts, Log12)
	if err != nil {
		t.Fatal(err)
	}
	ft10, err := Rescale(ft12, Log10)
	if err != nil {
		t.Fatalf("Rescale: %v", err)
	}
	if sum := ft10.Sum(); sum != Log10.Size() {
		t.Fatalf("rescaled sum = %d, want %d", sum, Log10.Size())
	}
	for s, f := range ft12 {
		if f > 0 && ft10[s] == 0 {
			t.Fatalf("symbol %d was nonzero at log12 but zero after rescale", s)
		}
	}
	if _, err := Build(Log10, ft10); err != nil {
		t.Fatalf("Build(rescaled): %v", err)
	}
}

func TestPerPositionRoundTrip(t *testing.T) {
	// Simulate PCTX: two different tables, alternating per byte.
	mk := func(dominant byte) *Table {
		var counts [256]uint64
		counts[dominant] = 900
		for s := 0; s < 256; s++ {
			if byte(s) != dominant {
				counts[s] = 1
			}
		}
		ft, err := Normalize(counts, Log10)
		if err != nil {
			t.Fatal(err)
		}
		table, err := Build(Log10, ft)
		if err != nil {
			t.Fatal(err)
		}
		return table
	}
	tableA := mk(0x11)
	tableB := mk(0x22)
	tables := []*Table{tableA, tableB}

	src := []byte{0x11, 0x22, 0x11, 0x11, 0x22, 0x22, 0x11, 0x22}
	buf := make([]byte, 256)
	var bw bitstream.Writer
	bw.Init(buf)
	state := uint32(Log10.Size())
	for i := len(src) - 1; i >= 0; i-- {
		state = EncodeByte(&bw, tables[i%2], src[i], state)
	}
	n, err := bw.Flush()
	if err != nil {
		t.Fatal(err)
	}

	var br bitstream.Reader
	if err := br.Init(buf[:n]); err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, len(src))
	for i := 0; i < len(src); i++ {
		var b byte
		b, state = DecodeByte(&br, tables[i%2], state)
		dst[i] = b
	}
	if !bytes.Equal(dst, src) {
		t.Fatalf("per-position round-trip mismatch: got %x want %x", dst, src)
	}
}
