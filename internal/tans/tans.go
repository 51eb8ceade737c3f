// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package tans implements a tabled asymmetric numeral system entropy
// coder: encode/decode tables are built once from a normalized frequency
// table, then reused to encode or decode any number of byte streams. Two
// table sizes are supported, selected by TableLog: 12-bit (4096 states,
// the dictionary's primary precision) and 10-bit (1024 states, used for
// short payloads where the smaller per-packet state header pays off).
package tans

import "math/bits"

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "tans: " + string(e) }

var (
	// ErrBadFreqTable reports that a frequency table does not sum to its
	// table size, or assigns a zero frequency to a symbol that must be
	// representable.
	ErrBadFreqTable error = Error("frequency table does not normalize to table size")

	// ErrUnknownSymbol reports that Encode was asked to encode a byte with
	// zero frequency in the table.
	ErrUnknownSymbol error = Error("symbol not present in frequency table")

	// ErrCorruptState reports that a decoded state left the [T, 2T) domain,
	// which can only happen on corrupted input.
	ErrCorruptState error = Error("decoder state left valid domain")
)

// TableLog selects the table size: 2^TableLog states.
type TableLog uint

const (
	Log12 TableLog = 12 // T = 4096, the dictionary's native precision.
	Log10 TableLog = 10 // T = 1024, used to shrink short-packet headers.
)

// Size returns the table size T = 2^log.
func (log TableLog) Size() int { return 1 << uint(log) }

// step is the fixed coprime-with-T stride used to spread symbols across
// the table; it must be coprime with T so that the spread visits every
// slot exactly once.
func (log TableLog) step() int {
	switch log {
	case Log12:
		return 2731
	case Log10:
		return 643
	default:
		panic(Error("unsupported table log"))
	}
}

// highbit32 returns floor(log2(x)) for x >= 1.
func highbit32(x uint32) uint {
	return uint(bits.Len32(x) - 1)
}

// FreqTable is a per-symbol frequency count normalized so that the 256
// entries sum to exactly a table's size T.
type FreqTable [256]uint16

// Sum returns the sum of all frequencies.
func (ft *FreqTable) Sum() int {
	var sum int
	for _, f := range ft {
		sum += int(f)
	}
	return sum
}

// Normalize converts raw training counts into a FreqTable summing to
// exactly T = log.Size(), per spec section 4.F step 4: every seen symbol
// is floored at 1, the remaining T-numSeen slots are distributed
// proportionally among seen symbols, and any rounding error is resolved
// by adjusting the single largest slot. It returns ErrBadFreqTable if no
// symbol was ever seen (an empty corpus has no valid table).
func Normalize(counts [256]uint64, log TableLog) (FreqTable, error) {
	var ft FreqTable
	T := uint64(log.Size())

	var total uint64
	numSeen := 0
	for _, c := range counts {
		if c > 0 {
			total += c
			numSeen++
		}
	}
	if numSeen == 0 || uint64(numSeen) > T {
		return ft, ErrBadFreqTable
	}

	remaining := T - uint64(numSeen)
	var assigned uint64
	for s, c := range counts {
		if c == 0 {
			continue
		}
		f := uint64(1)
		if remaining > 0 {
			f += remaining * c / total
		}
		ft[s] = uint16(f)
		assigned += f
	}

	// Resolve rounding error by nudging the single largest slot; spec
	// requires every seen symbol keep a positive frequency, so only the
	// max slot (guaranteed >= 1) absorbs the remainder.
	if diff := int64(T) - int64(assigned); diff != 0 {
		maxSym := 0
		for s, f := range ft {
			if f > ft[maxSym] {
				maxSym = s
			}
		}
		newVal := int64(ft[maxSym]) + diff
		if newVal <= 0 {
			return ft, ErrBadFreqTable
		}
		ft[maxSym] = uint16(newVal)
	}

	if ft.Sum() != int(T) {
		return ft, ErrBadFreqTable
	}
	return ft, nil
}

// Rescale converts a FreqTable normalized to one table size into one
// normalized to newLog's size, preserving a positive frequency for every
// symbol that was nonzero in src. Used to shrink a dictionary's 12-bit
// bucket table down to 10-bit for the short-packet TANS_10 candidate.
func Rescale(src FreqTable, newLog TableLog) (FreqTable, error) {
	var counts [256]uint64
	for s, f := range src {
		counts[s] = uint64(f)
	}
	return Normalize(counts, newLog)
}

// decodeEntry is one slot of the decode table, indexed by state-T.
type decodeEntry struct {
	symbol        byte
	nbBits        uint8
	nextStateBase uint32 // in [T, 2T)
}

// Table holds both the encode-side and decode-side structures derived
// from a single normalized FreqTable, per spec section 4.C.
type Table struct {
	log    TableLog
	freq   FreqTable
	cumul  [256]uint32 // cumulative frequency, exclusive prefix sum
	nbHi   [256]uint8  // per-symbol high bit-width
	encode []uint32    // size T: cumul[s]+k -> decode slot index
	decode []decodeEntry
}

// Log returns the table's size class.
func (t *Table) Log() TableLog { return t.log }

// CanEncode reports whether every byte in src has a nonzero frequency in
// t, i.e. whether Encode would succeed rather than panic. The compressor
// uses this to probe a candidate table before committing to it, since a
// dictionary trained on different data than the current packet may not
// cover every byte value.
func (t *Table) CanEncode(src []byte) bool {
	for _, b := range src {
		if t.freq[b] == 0 {
			return false
		}
	}
	return true
}

// Build constructs the encode and decode tables for a normalized
// frequency table at the given precision. It returns ErrBadFreqTable if
// the table does not sum to exactly T.
func Build(log TableLog, freq FreqTable) (*Table, error) {
	T := log.Size()
	var cumul [256]uint32
	var sum uint32
	for s, f := range freq {
		cumul[s] = sum
		sum += uint32(f)
	}
	if int(sum) != T {
		return nil, ErrBadFreqTable
	}

	t := &Table{log: log, freq: freq, cumul: cumul}

	// Step 2: spread symbols across T slots with the fixed coprime stride.
	slotSymbol := make([]byte, T)
	step := log.step()
	pos := 0
	for s, f := range freq {
		for k := uint16(0); k < f; k++ {
			slotSymbol[pos] = byte(s)
			pos = (pos + step) % T
		}
	}

	// Steps 3-4: walk slots in ascending order, tracking each symbol's
	// running occurrence counter to derive nb_bits and next_state_base,
	// while recording the inverse (symbol, occurrence) -> slot mapping
	// the encoder needs.
	nextState := make([]uint32, 256)
	for s, f := range freq {
		nextState[s] = uint32(f)
	}
	t.encode = make([]uint32, T)
	t.decode = make([]decodeEntry, T)
	for p := 0; p < T; p++ {
		s := slotSymbol[p]
		ns := nextState[s]
		nbBits := uint(log) - highbit32(ns)
		newState := (ns << nbBits) - uint32(T)
		t.decode[p] = decodeEntry{symbol: s, nbBits: uint8(nbBits), nextStateBase: uint32(T) + newState}

		k := ns - uint32(freq[s])
		t.encode[cumul[s]+k] = uint32(p)

		nextState[s] = ns + 1
	}

	// Per-symbol nb_hi is the bit-width used for a symbol's first
	// occurrence (ns == freq[s]), which is its maximum width; later
	// occurrences use nb_hi or nb_hi-1. Symbols with zero frequency
	// never appear in encode/decode and keep nbHi == 0.
	for s, f := range freq {
		if f > 0 {
			t.nbHi[s] = uint8(uint(log) - highbit32(uint32(f)))
		}
	}

	return t, nil
}
