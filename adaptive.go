// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"github.com/dsnet/netcodec/internal/bucket"
	"github.com/dsnet/netcodec/internal/lzp"
	"github.com/dsnet/netcodec/internal/simd"
	"github.com/dsnet/netcodec/internal/tans"
)

// adaptiveState is a Context's per-stream mirror of its Dictionary's
// unigram tables and LZP table. It starts as a clone of the dictionary's
// trained state and accumulates live counts from every packet that
// passes through; every rebuildInterval packets those counts replace the
// live tables, letting long-lived streams drift away from the
// dictionary's training distribution. Encoder and decoder Contexts update
// their mirrors identically and unconditionally, so they never diverge.
type adaptiveState struct {
	counts  [bucket.Count][256]uint64
	tables  [bucket.Count]*tans.Table
	lzp     *lzp.Table
	sinceRebuild int
}

// newAdaptiveState seeds a fresh mirror from dict's trained tables.
func newAdaptiveState(dict *Dictionary) *adaptiveState {
	a := &adaptiveState{}
	for buck := 0; buck < bucket.Count; buck++ {
		a.tables[buck] = dict.unigramTable(buck)
	}
	if dict.HasLZP() {
		a.lzp = dict.lzpTable.Clone()
	} else {
		a.lzp = lzp.NewTable()
	}
	return a
}

// table returns the live unigram table for a bucket, reflecting the most
// recent rebuild.
func (a *adaptiveState) table(buck int) *tans.Table { return a.tables[buck] }

// accumulate folds one packet's bytes into the running per-bucket
// histograms, then rebuilds the live tables every rebuildInterval calls.
func (a *adaptiveState) accumulate(buf []byte) error {
	for _, s := range bucket.Spans(len(buf)) {
		h := simd.FreqCount(buf[s.Start:s.End])
		for b, c := range h {
			a.counts[s.Index][b] += c
		}
	}
	a.sinceRebuild++
	if a.sinceRebuild < rebuildInterval {
		return nil
	}
	a.sinceRebuild = 0
	return a.rebuild()
}

// rebuild replaces every bucket's live table with one normalized from the
// accumulated counts, then clears the counters for the next interval. A
// bucket with no observations since the last rebuild keeps its previous
// table rather than reverting to a flat distribution, since a stream that
// never touches a high offset shouldn't lose that bucket's trained shape.
func (a *adaptiveState) rebuild() error {
	for buck := 0; buck < bucket.Count; buck++ {
		var sum uint64
		for _, c := range a.counts[buck] {
			sum += c
		}
		if sum == 0 {
			continue
		}
		ft, err := tans.Normalize(a.counts[buck], tans.Log12)
		if err != nil {
			return errOf(KindNoMem, err.Error())
		}
		table, err := tans.Build(tans.Log12, ft)
		if err != nil {
			return errOf(KindNoMem, err.Error())
		}
		a.tables[buck] = table
		a.counts[buck] = [256]uint64{}
	}
	return nil
}
