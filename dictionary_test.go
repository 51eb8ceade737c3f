// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"bytes"
	"testing"

	"github.com/dsnet/netcodec/internal/testutil"
)

func repeatPacket(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestTrainRejectsReservedModelID(t *testing.T) {
	pkts := [][]byte{repeatPacket(0x41, 32)}
	if _, err := Train(pkts, 0, TrainOptions{}); err == nil {
		t.Fatalf("expected error for model_id 0")
	}
	if _, err := Train(pkts, 255, TrainOptions{}); err == nil {
		t.Fatalf("expected error for model_id 255")
	}
}

func TestTrainRejectsEmptyCorpus(t *testing.T) {
	if _, err := Train(nil, 1, TrainOptions{}); err == nil {
		t.Fatalf("expected error for empty training corpus")
	}
}

func TestTrainEveryBucketHasUsableTable(t *testing.T) {
	r := testutil.NewRand(40)
	pkts := make([][]byte, 0, 16)
	for i := 0; i < 16; i++ {
		pkts = append(pkts, r.Bytes(64)) // never touches high-offset buckets
	}
	d, err := Train(pkts, 1, TrainOptions{})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	for buck := 0; buck < 16; buck++ {
		if d.unigramTable(buck) == nil {
			t.Fatalf("bucket %d has no unigram table", buck)
		}
		if d.unigram10Table(buck) == nil {
			t.Fatalf("bucket %d has no 10-bit unigram table", buck)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := testutil.NewRand(41)
	pkts := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		pkts = append(pkts, r.Bytes(128))
	}
	d, err := Train(pkts, 7, TrainOptions{LZP: true})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	blob, err := Save(d)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(blob)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ModelID() != d.ModelID() || got.HasLZP() != d.HasLZP() {
		t.Fatalf("loaded dictionary differs: modelID=%d hasLZP=%v, want %d %v",
			got.ModelID(), got.HasLZP(), d.ModelID(), d.HasLZP())
	}
	for buck := 0; buck < 16; buck++ {
		if got.unigramFreq[buck] != d.unigramFreq[buck] {
			t.Fatalf("bucket %d unigram frequencies differ after round-trip", buck)
		}
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	if _, err := Load([]byte("XXXX\x05")); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestLoadRejectsCorruptedCRC(t *testing.T) {
	pkts := [][]byte{repeatPacket(0x41, 256)}
	d, err := Train(pkts, 1, TrainOptions{})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	blob, err := Save(d)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	blob[len(blob)-1] ^= 0xff
	if _, err := Load(blob); err == nil {
		t.Fatalf("expected error for corrupted CRC trailer")
	}
}

func TestLoadRejectsTamperedBody(t *testing.T) {
	pkts := [][]byte{repeatPacket(0x41, 256)}
	d, err := Train(pkts, 1, TrainOptions{})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	blob, err := Save(d)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	blob[10] ^= 0xff // inside the class map, nowhere near the CRC trailer
	if _, err := Load(blob); err == nil {
		t.Fatalf("expected error for tampered body byte")
	}
}

func TestBuildClassMapPartitionsEvenly(t *testing.T) {
	r := testutil.NewRand(42)
	pkts := make([][]byte, 0, 32)
	for i := 0; i < 32; i++ {
		pkts = append(pkts, r.Bytes(512))
	}
	cm := buildClassMap(pkts, NumBigramClasses)
	var count [NumBigramClasses]int
	for _, c := range cm {
		count[c]++
	}
	for c, n := range count {
		if n != 256/NumBigramClasses {
			t.Errorf("class %d has %d members, want %d", c, n, 256/NumBigramClasses)
		}
	}
}
