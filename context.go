// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"github.com/dsnet/netcodec/internal/lz77"
	"github.com/dsnet/netcodec/internal/simd"
)

// ringHistoryCap bounds how much of the ring buffer actually feeds the
// LZ77 window: matches beyond lz77.MaxOffset could never be referenced
// anyway.
const ringHistoryCap = lz77.MaxOffset

// Stats holds per-context packet and algorithm counters, populated only
// when Config.Options includes StatsOpt.
type Stats struct {
	PacketsIn   uint64
	PacketsOut  uint64
	BytesIn     uint64
	BytesOut    uint64
	ByAlgorithm [numAlgorithms]uint64
}

// Context is the per-stream working state for compression and
// decompression: a reference to a shared Dictionary, the previous one or
// two packets (for delta prediction), cross-packet LZ77 history, adaptive
// tables, and scratch space. A Context is not safe for concurrent use; one
// goroutine or worker thread owns it exclusively, matching the spec's
// one-Context-per-worker concurrency model.
type Context struct {
	dict *Dictionary
	cfg  Config

	seq byte

	prevPkt    []byte
	prevValid  bool
	prev2Pkt   []byte
	prev2Valid bool

	ring []byte // tail of cross-packet LZ77 history, capped at lz77.MaxOffset

	arena      []byte
	arenaAlloc arenaAllocator

	adaptive *adaptiveState

	stats Stats
}

// NewContext allocates a Context bound to dict (which may be nil, in which
// case only passthrough/RLE/LZ77 candidates are available) and cfg.
func NewContext(dict *Dictionary, cfg Config) (ctx *Context, err error) {
	defer errRecover(&err)

	cfg, cfgErr := cfg.normalize()
	if cfgErr != nil {
		return nil, cfgErr
	}

	ctx = &Context{dict: dict, cfg: cfg}
	ctx.arena = make([]byte, arenaLayoutSize(cfg.ArenaSize))
	ctx.arenaAlloc = newArenaAllocator(ctx.arena)
	ctx.prevPkt = make([]byte, MaxPacketSize)
	ctx.prev2Pkt = make([]byte, MaxPacketSize)
	if cfg.Options&Stateful != 0 {
		ctx.ring = make([]byte, 0, cfg.RingBufferSize)
	}
	if cfg.Options&Adaptive != 0 {
		if dict == nil {
			panic(errOf(KindInvalidArg, "ADAPTIVE requires a dictionary"))
		}
		ctx.adaptive = newAdaptiveState(dict)
	}
	return ctx, nil
}

// Reset clears cross-call history (prev packets, sequence counter, ring
// buffer) and, in adaptive mode, re-clones the adaptive tables from the
// dictionary, per the INIT state transition.
func (ctx *Context) Reset() {
	ctx.seq = 0
	ctx.prevValid = false
	ctx.prev2Valid = false
	ctx.ring = ctx.ring[:0]
	if ctx.adaptive != nil {
		ctx.adaptive = newAdaptiveState(ctx.dict)
	}
	ctx.stats = Stats{}
}

// Stats returns a snapshot of the context's counters. It returns
// UNSUPPORTED if Config.Options did not include StatsOpt.
func (ctx *Context) Stats() (Stats, error) {
	if ctx.cfg.Options&StatsOpt == 0 {
		return Stats{}, ErrUnsupported
	}
	return ctx.stats, nil
}

// SIMDLevel reports the resolved kernel tier this Context dispatches to.
func (ctx *Context) SIMDLevel() simd.Level { return ctx.cfg.SIMDLevel }

func (ctx *Context) advance(orig []byte) {
	ctx.prev2Pkt, ctx.prevPkt = ctx.prevPkt, ctx.prev2Pkt
	ctx.prev2Valid = ctx.prevValid
	ctx.prevPkt = append(ctx.prevPkt[:0], orig...)
	ctx.prevValid = true
	ctx.seq++ // wraps at 256 per spec's u8 context_seq

	if ctx.ring != nil {
		ctx.ring = append(ctx.ring, orig...)
		if len(ctx.ring) > ringHistoryCap {
			ctx.ring = append(ctx.ring[:0], ctx.ring[len(ctx.ring)-ringHistoryCap:]...)
		}
	}
}

// history returns the cross-packet LZ77 window: the tail of the ring
// buffer, or nil in stateless mode / before the first packet.
func (ctx *Context) history() []byte { return ctx.ring }

// recordCompress folds one Compress call's outcome into the stats
// counters, a no-op unless Options includes StatsOpt.
func (ctx *Context) recordCompress(origLen, compLen int, alg Algorithm) {
	if ctx.cfg.Options&StatsOpt == 0 {
		return
	}
	ctx.stats.PacketsIn++
	ctx.stats.BytesIn += uint64(origLen)
	ctx.stats.BytesOut += uint64(compLen)
	ctx.stats.ByAlgorithm[alg]++
}

// recordDecompress folds one Decompress call's outcome into the stats
// counters, a no-op unless Options includes StatsOpt.
func (ctx *Context) recordDecompress(compLen, origLen int, alg Algorithm) {
	if ctx.cfg.Options&StatsOpt == 0 {
		return
	}
	ctx.stats.PacketsOut++
	ctx.stats.BytesIn += uint64(compLen)
	ctx.stats.BytesOut += uint64(origLen)
	ctx.stats.ByAlgorithm[alg]++
}
