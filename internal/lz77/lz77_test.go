// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"bytes"
	"testing"

	"github.com/dsnet/netcodec/internal/testutil"
)

func roundTrip(t *testing.T, src []byte) {
	t.Helper()
	dst := make([]byte, Bound(len(src)))
	n, ok := Encode(dst, src)
	if !ok {
		t.Fatalf("Encode reported overflow for a Bound-sized buffer")
	}
	got := make([]byte, len(src))
	m, err := Decode(got, dst[:n])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m != len(src) || !bytes.Equal(got, src) {
		t.Fatalf("round-trip mismatch: got %x want %x", got[:m], src)
	}
}

func TestRoundTripRepeating(t *testing.T) {
	src := bytes.Repeat([]byte("abcdefgh"), 64)
	roundTrip(t, src)
}

func TestRoundTripRandom(t *testing.T) {
	r := testutil.NewRand(21)
	roundTrip(t, r.Bytes(2048))
}

func TestRoundTripEmpty(t *testing.T) {
	roundTrip(t, nil)
}

func TestRoundTripLongRun(t *testing.T) {
	src := bytes.Repeat([]byte{0x5a}, 4000)
	roundTrip(t, src)
}

func TestDecodeInvalidOffsetCorrupt(t *testing.T) {
	// A match token claiming an offset beyond anything produced so far.
	src := []byte{matchFlag | 0x03, 0xff}
	dst := make([]byte, 16)
	if _, err := Decode(dst, src); err != ErrCorrupt {
		t.Fatalf("Decode with out-of-range offset = %v, want ErrCorrupt", err)
	}
}

func TestDecodeTruncatedMatchTokenCorrupt(t *testing.T) {
	src := []byte{matchFlag | 0x00}
	dst := make([]byte, 16)
	if _, err := Decode(dst, src); err != ErrCorrupt {
		t.Fatalf("Decode with truncated match token = %v, want ErrCorrupt", err)
	}
}

func TestDecodeTruncatedLiteralRunCorrupt(t *testing.T) {
	src := []byte{literalFlag | 0x04, 0x01, 0x02}
	dst := make([]byte, 16)
	if _, err := Decode(dst, src); err != ErrCorrupt {
		t.Fatalf("Decode with truncated literal run = %v, want ErrCorrupt", err)
	}
}

func TestMatchLenRespectsMaxRunLen(t *testing.T) {
	src := bytes.Repeat([]byte{0x01}, 400)
	w := window{buf: src}
	l, _ := findMatchWindow(w, 300)
	if l > MaxRunLen {
		t.Fatalf("findMatchWindow returned length %d exceeding MaxRunLen %d", l, MaxRunLen)
	}
}

func TestEncodeDecodeHistoryCrossesPacketBoundary(t *testing.T) {
	hist := bytes.Repeat([]byte("prevpacket"), 4)
	src := append(append([]byte{}, hist[len(hist)-8:]...), []byte("-tail")...)

	dst := make([]byte, Bound(len(src)))
	n, ok := EncodeHistory(dst, src, hist)
	if !ok {
		t.Fatalf("EncodeHistory reported overflow for a Bound-sized buffer")
	}
	got := make([]byte, len(src))
	m, err := DecodeHistory(got, dst[:n], hist)
	if err != nil {
		t.Fatalf("DecodeHistory: %v", err)
	}
	if m != len(src) || !bytes.Equal(got, src) {
		t.Fatalf("history round-trip mismatch: got %x want %x", got[:m], src)
	}
}

func TestDecodeHistoryRejectsOffsetBeyondHistory(t *testing.T) {
	hist := []byte("short")
	src := []byte{matchFlag | 0x03, 0x09} // offset 10, beyond hist+0 produced bytes
	dst := make([]byte, 16)
	if _, err := DecodeHistory(dst, src, hist); err != ErrCorrupt {
		t.Fatalf("DecodeHistory with offset beyond history = %v, want ErrCorrupt", err)
	}
}
