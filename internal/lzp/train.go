// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lzp

// confidenceThreshold is the minimum fraction of occurrences that must
// agree with the majority candidate before a slot is trusted, per spec
// section 4.E.
const confidenceThreshold = 0.4

// Train builds an LZP table from a training corpus using a two-pass
// Boyer-Moore majority vote per hash slot: the first pass finds a
// majority candidate for each slot in a single streaming pass (O(1)
// space per slot), the second pass measures how often that candidate
// was actually correct and keeps only slots clearing the confidence
// threshold.
func Train(pkts [][]byte) *Table {
	var candidate [Size]byte
	var count [Size]int32
	var hasCandidate [Size]bool

	vote := func(idx int, actual byte) {
		if !hasCandidate[idx] {
			candidate[idx] = actual
			count[idx] = 1
			hasCandidate[idx] = true
			return
		}
		if candidate[idx] == actual {
			count[idx]++
		} else {
			count[idx]--
			if count[idx] == 0 {
				hasCandidate[idx] = false
			}
		}
	}
	for _, pkt := range pkts {
		var prev byte
		for i, b := range pkt {
			vote(index(prev, i), b)
			prev = b
		}
	}

	var matches, total [Size]int32
	for _, pkt := range pkts {
		var prev byte
		for i, b := range pkt {
			idx := index(prev, i)
			if hasCandidate[idx] {
				total[idx]++
				if candidate[idx] == b {
					matches[idx]++
				}
			}
			prev = b
		}
	}

	tb := NewTable()
	for idx := 0; idx < Size; idx++ {
		if !hasCandidate[idx] || total[idx] == 0 {
			continue
		}
		if float64(matches[idx])/float64(total[idx]) >= confidenceThreshold {
			tb.entries[idx] = Entry{Byte: candidate[idx], Valid: true}
		}
	}
	return tb
}
