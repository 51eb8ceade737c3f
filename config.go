// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import "github.com/dsnet/netcodec/internal/simd"

// Option is a bitmask selecting which pipeline stages and behaviors a
// Context enables.
type Option uint32

const (
	// Stateful retains prev_pkt/prev2_pkt and the ring buffer across calls.
	// Mutually exclusive with Stateless.
	Stateful Option = 1 << iota
	// Stateless makes every call independent: no history, no ring buffer.
	// Forbids Delta and Adaptive.
	Stateless
	// Delta enables the field-class delta prediction stage.
	Delta
	// Bigram enables the bigram-conditioned PCTX candidate.
	Bigram
	// Adaptive enables per-stream table updates, rebuilt every 128 packets.
	// Requires Stateful.
	Adaptive
	// CompactHdr selects the 2/4-byte compact header over the 8-byte legacy
	// one, and a u16 tANS initial state instead of u32.
	CompactHdr
	// FastCompress skips the single-region trial (and the 10-bit retry,
	// which reuses the single-region bucket choice) and raises the LZ77
	// eligibility threshold from lz77.MinPayloadLenFull to
	// lz77.MinPayloadLenFast. In either mode LZP is tried only on packets
	// that delta prediction was not applied to. The decoder is unaware of
	// this flag; the wire format is unaffected.
	FastCompress
	// StatsOpt collects per-context packet/byte/algorithm counters.
	StatsOpt
)

// rebuildInterval is how many compress or decompress calls elapse between
// adaptive table rebuilds.
const rebuildInterval = 128

// Config bundles an Option mask with the sizing knobs a Context is created
// with. A zero Config is accepted: normalize makes it Stateful and fills in
// every sizing default, but enables neither Delta nor Bigram, which
// DefaultConfig does.
type Config struct {
	Options Option

	// RingBufferSize is the cross-packet LZ history size. Default 64 KiB.
	RingBufferSize int
	// CompressionLevel nominally ranges 0 (fastest) to 9 (best); normalize
	// replaces 0 with the default of 6. Compress does not consult it, so
	// every level runs the same candidate trial set.
	CompressionLevel int
	// SIMDLevel selects (or auto-detects) the kernel tier; every tier
	// currently produces bit-identical output, per the SIMD parity
	// invariant.
	SIMDLevel simd.Level
	// ArenaSize is a hint for the per-call scratch size. Default 2x
	// MaxPacketSize. NewContext raises it to arenaLayoutSize's minimum of
	// (bucket.Count+16)*MaxPacketSize, so only larger values take effect.
	ArenaSize int
}

const (
	defaultRingBufferSize   = 64 * 1024
	defaultCompressionLevel = 6
	defaultArenaMultiple    = 2
	// MaxPacketSize is the largest payload this codec accepts, per the
	// 8-65535 byte packet domain.
	MaxPacketSize = 65535
	// MaxOverhead bounds how much larger a compressed packet may be than
	// its input, guaranteed by always having a passthrough fallback.
	MaxOverhead = 8
)

// DefaultConfig returns a ready-to-use Stateful configuration with Delta and
// Bigram enabled and a 2x-MaxPacketSize ArenaSize hint (which NewContext
// raises to the arena's minimum size).
func DefaultConfig() Config {
	return Config{
		Options:          Stateful | Delta | Bigram,
		RingBufferSize:   defaultRingBufferSize,
		CompressionLevel: defaultCompressionLevel,
		SIMDLevel:        simd.Auto,
		ArenaSize:        defaultArenaMultiple * MaxPacketSize,
	}
}

// normalize fills in zero-valued sizing fields with their defaults and
// validates the option mask, returning INVALID_ARG for a forbidden
// combination.
func (c Config) normalize() (Config, error) {
	if c.Options&Stateful != 0 && c.Options&Stateless != 0 {
		return c, errOf(KindInvalidArg, "STATEFUL and STATELESS are mutually exclusive")
	}
	if c.Options&Stateless != 0 && c.Options&(Delta|Adaptive) != 0 {
		return c, errOf(KindInvalidArg, "STATELESS forbids DELTA and ADAPTIVE")
	}
	if c.Options&Adaptive != 0 && c.Options&Stateful == 0 {
		return c, errOf(KindInvalidArg, "ADAPTIVE requires STATEFUL")
	}
	if c.Options&(Stateful|Stateless) == 0 {
		c.Options |= Stateful
	}
	if c.RingBufferSize == 0 {
		c.RingBufferSize = defaultRingBufferSize
	}
	if c.CompressionLevel == 0 {
		c.CompressionLevel = defaultCompressionLevel
	}
	if c.ArenaSize == 0 {
		c.ArenaSize = defaultArenaMultiple * MaxPacketSize
	}
	c.SIMDLevel = simd.Resolve(c.SIMDLevel)
	return c, nil
}
