// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"encoding/binary"

	"github.com/dsnet/netcodec/internal/bitstream"
	"github.com/dsnet/netcodec/internal/bucket"
	"github.com/dsnet/netcodec/internal/delta"
	"github.com/dsnet/netcodec/internal/lz77"
	"github.com/dsnet/netcodec/internal/lzp"
	"github.com/dsnet/netcodec/internal/rle"
	"github.com/dsnet/netcodec/internal/tans"
)

// tans10MaxLen bounds the payload size AlgTANS10 is tried for: below this,
// the smaller per-packet u16 state and 1024-entry table outweigh the
// coarser precision; above it, the 12-bit table's better modeling wins.
const tans10MaxLen = 128

// candidate is one trial encoding considered by Compress, holding enough
// to both measure its wire size and, if it wins, write its header and
// payload.
type candidate struct {
	alg      Algorithm
	bucket   int
	flags    Flags
	payload  []byte // already-encoded bytes in the arena, valid until the arena is next reset
	hasState bool
	state    uint32
}

// wireSize is how many bytes this candidate occupies on the wire,
// excluding the header: a state field (sized by whether the header is
// compact) plus the payload.
func (c candidate) wireSize(compact bool) int {
	n := len(c.payload)
	if c.hasState {
		if compact {
			n += 2
		} else {
			n += 4
		}
	}
	return n
}

func unigramTableFor(ctx *Context, buck int) *tans.Table {
	if ctx.adaptive != nil {
		return ctx.adaptive.table(buck)
	}
	return ctx.dict.unigramTable(buck)
}

// lzpTableForEncode returns the LZP table a Compress call should apply
// and, afterwards, update: the adaptive mirror if one exists, otherwise
// the dictionary's trained table directly.
func lzpTableForEncode(ctx *Context) *lzp.Table {
	if ctx.adaptive != nil {
		return ctx.adaptive.lzp
	}
	return ctx.dict.lzpTable
}

// Compress encodes src into dst, trying every candidate pipeline the
// dictionary and configuration make available and keeping the smallest,
// with passthrough as the ultimate fallback. dst must be at least
// CompressBound(len(src)) bytes. It returns the number of bytes written.
func Compress(ctx *Context, dst, src []byte) (n int, err error) {
	defer errRecover(&err)

	if ctx == nil {
		panic(ErrCtxNull)
	}
	if len(src) > MaxPacketSize {
		panic(ErrTooBig)
	}
	if len(dst) < CompressBound(len(src)) {
		panic(ErrBufSmall)
	}

	ctx.arenaAlloc.reset()
	compact := ctx.cfg.Options&CompactHdr != 0

	curr := src
	var flags Flags
	if ctx.cfg.Options&Delta != 0 && ctx.prevValid && len(src) >= delta.MinSize {
		curr, flags = ctx.bestDeltaResidual(src)
	}

	var lzpFiltered []byte
	canLZP := ctx.dict != nil && flags&FlagDelta == 0 &&
		((ctx.adaptive != nil && ctx.adaptive.lzp != nil) || ctx.dict.HasLZP())
	if canLZP {
		lzpFiltered = ctx.arenaAlloc.alloc(len(curr))
		lzpTableForEncode(ctx).Apply(lzpFiltered, curr)
	}

	var best candidate
	haveBest := false
	consider := func(c candidate, ok bool) {
		if !ok {
			return
		}
		if !haveBest || c.wireSize(compact) < best.wireSize(compact) {
			best, haveBest = c, true
		}
	}

	// Passthrough is always available and always fits, so it seeds best.
	consider(candidate{alg: AlgPassthrough, flags: flags, payload: curr}, true)

	fast := ctx.cfg.Options&FastCompress != 0
	lz77Min := lz77.MinPayloadLenFull
	if fast {
		lz77Min = lz77.MinPayloadLenFast
	}

	consider(tryRLE(ctx, curr, flags))
	if len(curr) >= lz77Min {
		consider(tryLZ77(ctx, curr, flags))
	}

	if ctx.dict != nil {
		var singleBuck int
		var singleCand candidate
		ok := false
		if !fast {
			singleBuck, singleCand, ok = trySingleRegion(ctx, curr, flags)
		}
		consider(singleCand, ok)
		consider(tryPCTX(ctx, curr, flags))
		if ctx.cfg.Options&Bigram != 0 {
			consider(tryBigramPCTX(ctx, curr, flags))
		}
		consider(tryMreg(ctx, curr, flags))
		if ok && len(curr) <= tans10MaxLen {
			consider(tryTANS10(ctx, curr, flags, singleBuck))
		}
		if canLZP {
			consider(tryLZPTans(ctx, curr, lzpFiltered, flags))
		}
	}

	n, err = writeCandidate(ctx, dst, best, compact, len(src))
	if err != nil {
		return 0, err
	}

	ctx.recordCompress(len(src), n, best.alg)
	ctx.advance(src)
	if ctx.adaptive != nil {
		if err := ctx.adaptive.accumulate(src); err != nil {
			return 0, err
		}
		if canLZP {
			// Mirror updates unconditionally on every non-delta packet,
			// independent of which candidate wins (see the matching
			// update in decompress.go), so the two sides never diverge.
			lzpTableForEncode(ctx).UpdateAll(curr)
		}
	}
	return n, nil
}

// bestDeltaResidual returns whichever of {order-1, order-2} residuals has
// the lower estimated entropy cost than the other, compared against
// encoding src raw; it never returns order-2 without prev2Valid.
func (ctx *Context) bestDeltaResidual(src []byte) ([]byte, Flags) {
	r1 := ctx.arenaAlloc.alloc(len(src))
	delta.EncodeOrder1(r1, src, ctx.prevPkt[:len(src)])
	best, bestFlags, bestCost := r1, Flags(FlagDelta), delta.EntropyCost(r1)

	if ctx.prev2Valid {
		r2 := ctx.arenaAlloc.alloc(len(src))
		delta.EncodeOrder2(r2, src, ctx.prevPkt[:len(src)], ctx.prev2Pkt[:len(src)])
		if c2 := delta.EntropyCost(r2); c2 < bestCost {
			best, bestFlags, bestCost = r2, FlagDelta|FlagDeltaOrder2, c2
		}
	}
	if delta.EntropyCost(src) <= bestCost {
		return src, 0
	}
	return best, bestFlags
}

func tryRLE(ctx *Context, curr []byte, flags Flags) (candidate, bool) {
	buf := ctx.arenaAlloc.alloc(rle.EncodedLen(curr))
	n, ok := rle.Encode(buf, curr)
	if !ok {
		return candidate{}, false
	}
	return candidate{alg: AlgPassthroughRLE, flags: flags, payload: buf[:n]}, true
}

func tryLZ77(ctx *Context, curr []byte, flags Flags) (candidate, bool) {
	buf := ctx.arenaAlloc.alloc(lz77.Bound(len(curr)))
	n, ok := lz77.EncodeHistory(buf, curr, ctx.history())
	if !ok {
		return candidate{}, false
	}
	return candidate{alg: AlgPassthroughLZ77, flags: flags, payload: buf[:n]}, true
}

// pctxCanEncode reports whether every byte of buf is representable under
// its own bucket's table, probing rather than letting Encode panic.
func pctxCanEncode(ctx *Context, buf []byte) bool {
	for i, b := range buf {
		if !unigramTableFor(ctx, bucket.Of(i)).CanEncode([]byte{b}) {
			return false
		}
	}
	return true
}

func trySingleRegion(ctx *Context, curr []byte, flags Flags) (int, candidate, bool) {
	best := -1
	var bestBuf []byte
	var bestState uint32
	for buck := 0; buck < bucket.Count; buck++ {
		t := unigramTableFor(ctx, buck)
		if !t.CanEncode(curr) {
			continue
		}
		buf := ctx.arenaAlloc.alloc(len(curr) + 8)
		var bw bitstream.Writer
		bw.Init(buf)
		state := tans.Encode(&bw, t, curr)
		m, werr := bw.Flush()
		if werr != nil {
			continue
		}
		if best < 0 || m < len(bestBuf) {
			best, bestBuf, bestState = buck, buf[:m], state
		}
	}
	if best < 0 {
		return 0, candidate{}, false
	}
	return best, candidate{
		alg: AlgTANSSingle, bucket: best, flags: flags,
		payload: bestBuf, hasState: true, state: bestState,
	}, true
}

func tryTANS10(ctx *Context, curr []byte, flags Flags, buck int) (candidate, bool) {
	t := ctx.dict.unigram10Table(buck)
	if !t.CanEncode(curr) {
		return candidate{}, false
	}
	buf := ctx.arenaAlloc.alloc(len(curr) + 8)
	var bw bitstream.Writer
	bw.Init(buf)
	state := tans.Encode(&bw, t, curr)
	m, werr := bw.Flush()
	if werr != nil {
		return candidate{}, false
	}
	return candidate{
		alg: AlgTANS10, bucket: buck, flags: flags,
		payload: buf[:m], hasState: true, state: state,
	}, true
}

func tryPCTX(ctx *Context, curr []byte, flags Flags) (candidate, bool) {
	if !pctxCanEncode(ctx, curr) {
		return candidate{}, false
	}
	buf := ctx.arenaAlloc.alloc(len(curr) + 8)
	var bw bitstream.Writer
	bw.Init(buf)
	state := uint32(tans.Log12.Size())
	for i := len(curr) - 1; i >= 0; i-- {
		state = tans.EncodeByte(&bw, unigramTableFor(ctx, bucket.Of(i)), curr[i], state)
	}
	m, werr := bw.Flush()
	if werr != nil {
		return candidate{}, false
	}
	return candidate{alg: AlgTANSPCTX, flags: flags, payload: buf[:m], hasState: true, state: state}, true
}

func bigramTableAt(ctx *Context, buf []byte, i int) *tans.Table {
	var prev byte
	if i > 0 {
		prev = buf[i-1]
	}
	return ctx.dict.bigramTable(bucket.Of(i), ctx.dict.classOf(prev))
}

func bigramPctxCanEncode(ctx *Context, buf []byte) bool {
	for i, b := range buf {
		if !bigramTableAt(ctx, buf, i).CanEncode([]byte{b}) {
			return false
		}
	}
	return true
}

func tryBigramPCTX(ctx *Context, curr []byte, flags Flags) (candidate, bool) {
	if !bigramPctxCanEncode(ctx, curr) {
		return candidate{}, false
	}
	buf := ctx.arenaAlloc.alloc(len(curr) + 8)
	var bw bitstream.Writer
	bw.Init(buf)
	state := uint32(tans.Log12.Size())
	for i := len(curr) - 1; i >= 0; i-- {
		state = tans.EncodeByte(&bw, bigramTableAt(ctx, curr, i), curr[i], state)
	}
	m, werr := bw.Flush()
	if werr != nil {
		return candidate{}, false
	}
	return candidate{alg: AlgTANSBigramPCTX, flags: flags, payload: buf[:m], hasState: true, state: state}, true
}

func tryMreg(ctx *Context, curr []byte, flags Flags) (candidate, bool) {
	regions := mregRegions(len(curr))
	out := ctx.arenaAlloc.alloc(len(curr) + 8*len(regions))
	pos := 0
	for _, r := range regions {
		t := unigramTableFor(ctx, r.buck)
		region := curr[r.start:r.end]
		if !t.CanEncode(region) {
			return candidate{}, false
		}
		scratch := ctx.arenaAlloc.alloc(len(region) + 8)
		var bw bitstream.Writer
		bw.Init(scratch)
		state := tans.Encode(&bw, t, region)
		m, werr := bw.Flush()
		if werr != nil {
			return candidate{}, false
		}
		if pos+2+4+m > len(out) {
			return candidate{}, false
		}
		binary.LittleEndian.PutUint16(out[pos:], uint16(m))
		pos += 2
		binary.LittleEndian.PutUint32(out[pos:], state)
		pos += 4
		copy(out[pos:], scratch[:m])
		pos += m
	}
	return candidate{alg: AlgTANSMreg, flags: flags, payload: out[:pos]}, true
}

func tryLZPTans(ctx *Context, curr, filtered []byte, flags Flags) (candidate, bool) {
	if !pctxCanEncode(ctx, filtered) {
		return candidate{}, false
	}
	buf := ctx.arenaAlloc.alloc(len(filtered) + 8)
	var bw bitstream.Writer
	bw.Init(buf)
	state := uint32(tans.Log12.Size())
	for i := len(filtered) - 1; i >= 0; i-- {
		state = tans.EncodeByte(&bw, unigramTableFor(ctx, bucket.Of(i)), filtered[i], state)
	}
	m, werr := bw.Flush()
	if werr != nil {
		return candidate{}, false
	}
	return candidate{alg: AlgLZPTans, flags: flags, payload: buf[:m], hasState: true, state: state}, true
}

// writeCandidate serializes the winning candidate's header and payload
// into dst. Per spec, which header form a stream uses is a property of
// the Context's configuration, not of any individual packet, so the
// decoder can always tell which form to parse from its own config alone:
// every (flags, algorithm, bucket) combination Compress can ever produce
// is curated into the compact table, so putCompactHeader never fails
// here in practice.
func writeCandidate(ctx *Context, dst []byte, c candidate, compact bool, origSize int) (int, error) {
	var modelID byte
	if ctx.dict != nil {
		modelID = ctx.dict.ModelID()
	}
	algByte := algoByte(c.alg, c.bucket)

	if compact {
		hdr := compactHeader{Flags: c.flags, AlgByte: algByte, OriginalSize: origSize}
		hdrLen, err := putCompactHeader(dst, hdr)
		if err != nil {
			return 0, err
		}
		return finishPayload(dst, hdrLen, c, true)
	}

	if len(dst) < legacyHeaderSize {
		return 0, ErrBufSmall
	}
	payloadLen := c.wireSize(false)
	putLegacyHeader(dst, legacyHeader{
		OriginalSize:   uint16(origSize),
		CompressedSize: legacyCompressedSize(legacyHeaderSize + payloadLen),
		Flags:          c.flags,
		AlgByte:        algByte,
		ModelID:        modelID,
		ContextSeq:     ctx.seq,
	})
	return finishPayload(dst, legacyHeaderSize, c, false)
}

// finishPayload writes the candidate's initial state (u16 for a compact
// header, u32 for legacy, per the compact format's smaller-header
// tradeoff) followed by its payload bytes.
func finishPayload(dst []byte, hdrLen int, c candidate, compact bool) (int, error) {
	pos := hdrLen
	if c.hasState {
		stateLen := 4
		if compact {
			stateLen = 2
		}
		if pos+stateLen > len(dst) {
			return 0, ErrBufSmall
		}
		if compact {
			binary.LittleEndian.PutUint16(dst[pos:], uint16(c.state))
		} else {
			binary.LittleEndian.PutUint32(dst[pos:], c.state)
		}
		pos += stateLen
	}
	if pos+len(c.payload) > len(dst) {
		return 0, ErrBufSmall
	}
	pos += copy(dst[pos:], c.payload)
	return pos, nil
}
