// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"github.com/dsnet/netcodec/internal/bucket"
	"github.com/dsnet/netcodec/internal/lzp"
	"github.com/dsnet/netcodec/internal/tans"
)

const (
	// NumBigramClasses is the current (version 5) number of bigram classes.
	NumBigramClasses = 8
	// numBigramClassesLegacy is the version <= 4 class count.
	numBigramClassesLegacy = 4

	// ModelIDMin and ModelIDMax bound the valid, non-reserved model_id range.
	ModelIDMin = 1
	ModelIDMax = 254

	dictFlagLZP = 1 << 0
)

// Dictionary is an immutable, trained set of per-bucket entropy tables, a
// bigram class map, and an optional LZP prediction table. It is safe for
// concurrent read access from any number of Contexts; nothing about using a
// Dictionary mutates it.
type Dictionary struct {
	modelID    byte
	flags      byte
	numClasses int
	classMap   [256]byte

	unigramFreq [bucket.Count]tans.FreqTable
	bigramFreq  [bucket.Count][]tans.FreqTable // len numClasses

	unigram12 [bucket.Count]*tans.Table
	unigram10 [bucket.Count]*tans.Table
	bigram12  [bucket.Count][]*tans.Table

	lzpTable *lzp.Table
}

// ModelID returns the dictionary's identifier, stamped into every packet
// header a Context using it produces.
func (d *Dictionary) ModelID() byte { return d.modelID }

// HasLZP reports whether this dictionary carries a trained LZP table.
func (d *Dictionary) HasLZP() bool { return d.lzpTable != nil }

// classOf maps a previous byte to its bigram class under this dictionary's
// trained (or synthesized, for legacy loads) class map.
func (d *Dictionary) classOf(prevByte byte) int { return int(d.classMap[prevByte]) }

// unigramTable returns the 12-bit unigram table for a bucket.
func (d *Dictionary) unigramTable(buck int) *tans.Table { return d.unigram12[buck] }

// unigram10Table returns the 10-bit rescaled unigram table for a bucket.
func (d *Dictionary) unigram10Table(buck int) *tans.Table { return d.unigram10[buck] }

// bigramTable returns the 12-bit bigram table for a (bucket, class) pair.
func (d *Dictionary) bigramTable(buck, class int) *tans.Table { return d.bigram12[buck][class] }
