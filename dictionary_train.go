// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"sort"

	"github.com/dsnet/netcodec/internal/bucket"
	"github.com/dsnet/netcodec/internal/lzp"
	"github.com/dsnet/netcodec/internal/simd"
	"github.com/dsnet/netcodec/internal/tans"
)

// TrainOptions controls optional features of dictionary training.
type TrainOptions struct {
	// LZP, when true, additionally trains an LZP hash table from the same
	// corpus via Boyer-Moore majority vote.
	LZP bool
}

// Train builds a new Dictionary from a training corpus. modelID must be in
// [ModelIDMin, ModelIDMax]; 0 and 255 are reserved and rejected as
// INVALID_ARG. An empty corpus is also INVALID_ARG, since no frequency
// table could be normalized from it.
func Train(pkts [][]byte, modelID byte, opts TrainOptions) (d *Dictionary, err error) {
	defer errRecover(&err)

	if modelID < ModelIDMin || modelID > ModelIDMax {
		panic(errOf(KindInvalidArg, "model_id must be in [1,254]"))
	}
	if len(pkts) == 0 {
		panic(errOf(KindInvalidArg, "training corpus is empty"))
	}

	classMap := buildClassMap(pkts, NumBigramClasses)

	var unigramCounts [bucket.Count][256]uint64
	bigramCounts := make([][NumBigramClasses][256]uint64, bucket.Count)
	for _, pkt := range pkts {
		// Unigram counts don't depend on sequence, only on which bucket
		// each byte falls in, so each bucket's contiguous span reduces
		// in one freq_count call instead of a per-byte increment.
		for _, s := range bucket.Spans(len(pkt)) {
			h := simd.FreqCount(pkt[s.Start:s.End])
			for b, c := range h {
				unigramCounts[s.Index][b] += c
			}
		}
		// Bigram counts key on the preceding byte's class, which is
		// inherently sequential, so this pass stays a per-byte loop.
		var prev byte
		for i, b := range pkt {
			bigramCounts[bucket.Of(i)][classMap[prev]][b]++
			prev = b
		}
	}

	d = &Dictionary{modelID: modelID, numClasses: NumBigramClasses, classMap: classMap}
	for buck := 0; buck < bucket.Count; buck++ {
		ft, err := normalizeOrFlat(unigramCounts[buck])
		if err != nil {
			panic(err)
		}
		d.unigramFreq[buck] = ft
		table, err := tans.Build(tans.Log12, ft)
		if err != nil {
			panic(errOf(KindNoMem, err.Error()))
		}
		d.unigram12[buck] = table

		ft10, err := tans.Rescale(ft, tans.Log10)
		if err != nil {
			panic(errOf(KindNoMem, err.Error()))
		}
		table10, err := tans.Build(tans.Log10, ft10)
		if err != nil {
			panic(errOf(KindNoMem, err.Error()))
		}
		d.unigram10[buck] = table10

		d.bigramFreq[buck] = make([]tans.FreqTable, NumBigramClasses)
		d.bigram12[buck] = make([]*tans.Table, NumBigramClasses)
		for class := 0; class < NumBigramClasses; class++ {
			bft, err := normalizeOrFlat(bigramCounts[buck][class])
			if err != nil {
				panic(err)
			}
			d.bigramFreq[buck][class] = bft
			btable, err := tans.Build(tans.Log12, bft)
			if err != nil {
				panic(errOf(KindNoMem, err.Error()))
			}
			d.bigram12[buck][class] = btable
		}
	}

	if opts.LZP {
		d.lzpTable = lzp.Train(pkts)
		d.flags |= dictFlagLZP
	}
	return d, nil
}

// normalizeOrFlat normalizes counts to a 12-bit frequency table. A bucket
// that never occurred in the training corpus (e.g. a high offset never
// reached by any packet) has an all-zero histogram, which is not a
// training error: it is given a flat fallback distribution so every
// bucket still has a usable table.
func normalizeOrFlat(counts [256]uint64) (tans.FreqTable, error) {
	var sum uint64
	for _, c := range counts {
		sum += c
	}
	if sum == 0 {
		for s := range counts {
			counts[s] = 1
		}
	}
	return tans.Normalize(counts, tans.Log12)
}

// buildClassMap groups the 256 possible previous bytes into numClasses
// bigram classes per spec section 4.F step 2: each prevByte's dominant
// successor is found, prevBytes are sorted by that dominant successor, and
// the sorted order is partitioned into numClasses equal-sized groups.
func buildClassMap(pkts [][]byte, numClasses int) [256]byte {
	var succCount [256][256]uint64
	for _, pkt := range pkts {
		var prev byte
		for _, b := range pkt {
			succCount[prev][b]++
			prev = b
		}
	}

	dominant := make([]byte, 256)
	for p := 0; p < 256; p++ {
		best, bestCount := 0, uint64(0)
		for s, c := range succCount[p] {
			if c > bestCount {
				best, bestCount = s, c
			}
		}
		dominant[p] = byte(best)
	}

	order := make([]int, 256)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		pi, pj := order[i], order[j]
		if dominant[pi] != dominant[pj] {
			return dominant[pi] < dominant[pj]
		}
		return pi < pj
	})

	var classMap [256]byte
	groupSize := 256 / numClasses
	for rank, prevByte := range order {
		class := rank / groupSize
		if class >= numClasses {
			class = numClasses - 1
		}
		classMap[prevByte] = byte(class)
	}
	return classMap
}

// legacyClassMap synthesizes the 4-class bigram map a version <= 4 blob
// relied on implicitly: class = prevByte >> 6.
func legacyClassMap() [256]byte {
	var m [256]byte
	for p := 0; p < 256; p++ {
		m[p] = byte(p) >> 6
	}
	return m
}
