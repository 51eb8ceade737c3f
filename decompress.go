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
	"github.com/dsnet/netcodec/internal/rle"
	"github.com/dsnet/netcodec/internal/tans"
)

// Decompress expands one packet produced by Compress from src into dst,
// returning the number of bytes written. dst must hold the packet's
// original size, which isn't known until the header is parsed; a shorter
// dst fails with ErrBufSmall, and MaxPacketSize bytes always suffice.
func Decompress(ctx *Context, dst, src []byte) (n int, err error) {
	defer errRecover(&err)

	if ctx == nil {
		panic(ErrCtxNull)
	}

	ctx.arenaAlloc.reset()

	alg, buck, flags, origSize, hdrLen, compact, err := parseHeader(ctx, src)
	if err != nil {
		return 0, err
	}
	if ctx.cfg.Options&Stateless != 0 && flags&FlagDelta != 0 {
		panic(ErrCorrupt)
	}
	if len(dst) < origSize {
		panic(ErrBufSmall)
	}

	body := src[hdrLen:]
	curr := ctx.arenaAlloc.alloc(origSize)
	if err := decodePayload(ctx, curr, body, alg, buck, origSize, compact); err != nil {
		return 0, err
	}

	out := dst[:origSize]
	if flags&FlagDelta != 0 {
		if !ctx.prevValid || len(curr) < delta.MinSize {
			panic(ErrCorrupt)
		}
		if flags&FlagDeltaOrder2 != 0 {
			if !ctx.prev2Valid {
				panic(ErrCorrupt)
			}
			delta.DecodeOrder2(out, curr, ctx.prevPkt[:origSize], ctx.prev2Pkt[:origSize])
		} else {
			delta.DecodeOrder1(out, curr, ctx.prevPkt[:origSize])
		}
	} else {
		copy(out, curr)
	}

	ctx.recordDecompress(len(src), origSize, alg)
	ctx.advance(out)
	if ctx.adaptive != nil {
		if err := ctx.adaptive.accumulate(out); err != nil {
			return 0, err
		}
		// Mirror encode's canLZP condition (compress.go), not which
		// algorithm happened to win: the LZP mirror must advance on every
		// non-delta packet on both sides, or it drifts out of sync with
		// the encoder's and a later AlgLZPTans packet decodes wrong.
		if flags&FlagDelta == 0 {
			lzpTableForEncode(ctx).UpdateAll(out)
		}
	}
	return origSize, nil
}

// parseHeader reads the header form dictated by the Context's own
// configuration (per spec, a stream-level property, not a per-packet
// one) and returns the fields every decodePayload path needs.
func parseHeader(ctx *Context, src []byte) (alg Algorithm, buck int, flags Flags, origSize, hdrLen int, compact bool, err error) {
	if ctx.cfg.Options&CompactHdr != 0 {
		h, n, cerr := getCompactHeader(src)
		if cerr != nil {
			return 0, 0, 0, 0, 0, false, cerr
		}
		alg, buck = h.algorithm()
		return alg, buck, h.Flags, h.OriginalSize, n, true, nil
	}
	h, lerr := getLegacyHeader(src)
	if lerr != nil {
		return 0, 0, 0, 0, 0, false, lerr
	}
	alg, buck = h.algorithm()
	return alg, buck, h.Flags, int(h.OriginalSize), legacyHeaderSize, false, nil
}

func readState(src []byte, compact bool) (uint32, int, error) {
	n := 4
	if compact {
		n = 2
	}
	if len(src) < n {
		return 0, 0, ErrCorrupt
	}
	if compact {
		return uint32(binary.LittleEndian.Uint16(src)), n, nil
	}
	return binary.LittleEndian.Uint32(src), n, nil
}

// decodePayload dispatches on alg, writing exactly origSize bytes into
// dst. body is the packet's bytes following the header (state field, if
// any, included).
func decodePayload(ctx *Context, dst, body []byte, alg Algorithm, buck, origSize int, compact bool) error {
	switch alg {
	case AlgPassthrough:
		if len(body) < origSize {
			return ErrCorrupt
		}
		copy(dst, body[:origSize])
		return nil

	case AlgPassthroughRLE:
		m, err := rle.Decode(dst, body)
		if err != nil || m != origSize {
			return ErrCorrupt
		}
		return nil

	case AlgPassthroughLZ77:
		m, err := lz77.DecodeHistory(dst, body, ctx.history())
		if err != nil || m != origSize {
			return ErrCorrupt
		}
		return nil

	case AlgTANSSingle:
		if ctx.dict == nil {
			return ErrDictInvalid
		}
		return decodeSingleTable(dst, body, unigramTableFor(ctx, buck), origSize, compact)

	case AlgTANS10:
		if ctx.dict == nil {
			return ErrDictInvalid
		}
		return decodeSingleTable(dst, body, ctx.dict.unigram10Table(buck), origSize, compact)

	case AlgTANSPCTX:
		if ctx.dict == nil {
			return ErrDictInvalid
		}
		return decodePCTX(ctx, dst, body, origSize, compact)

	case AlgTANSBigramPCTX:
		if ctx.dict == nil {
			return ErrDictInvalid
		}
		return decodeBigramPCTX(ctx, dst, body, origSize, compact)

	case AlgTANSMreg:
		if ctx.dict == nil {
			return ErrDictInvalid
		}
		return decodeMreg(ctx, dst, body, origSize)

	case AlgLZPTans:
		if ctx.dict == nil {
			return ErrDictInvalid
		}
		filtered := ctx.arenaAlloc.alloc(origSize)
		if err := decodePCTX(ctx, filtered, body, origSize, compact); err != nil {
			return err
		}
		lzpTableForEncode(ctx).Unapply(dst, filtered)
		return nil

	default:
		return ErrUnsupported
	}
}

func decodeSingleTable(dst, body []byte, t *tans.Table, origSize int, compact bool) error {
	state, n, err := readState(body, compact)
	if err != nil {
		return err
	}
	var br bitstream.Reader
	if err := br.Init(body[n:]); err != nil {
		return ErrCorrupt
	}
	tans.Decode(&br, t, state, dst, origSize)
	return nil
}

func decodePCTX(ctx *Context, dst, body []byte, origSize int, compact bool) error {
	state, n, err := readState(body, compact)
	if err != nil {
		return err
	}
	var br bitstream.Reader
	if err := br.Init(body[n:]); err != nil {
		return ErrCorrupt
	}
	for i := 0; i < origSize; i++ {
		var b byte
		b, state = tans.DecodeByte(&br, unigramTableFor(ctx, bucket.Of(i)), state)
		dst[i] = b
	}
	return nil
}

func decodeBigramPCTX(ctx *Context, dst, body []byte, origSize int, compact bool) error {
	state, n, err := readState(body, compact)
	if err != nil {
		return err
	}
	var br bitstream.Reader
	if err := br.Init(body[n:]); err != nil {
		return ErrCorrupt
	}
	var prev byte
	for i := 0; i < origSize; i++ {
		t := ctx.dict.bigramTable(bucket.Of(i), ctx.dict.classOf(prev))
		var b byte
		b, state = tans.DecodeByte(&br, t, state)
		dst[i] = b
		prev = b
	}
	return nil
}

func decodeMreg(ctx *Context, dst, body []byte, origSize int) error {
	pos := 0
	for _, r := range mregRegions(origSize) {
		if pos+6 > len(body) {
			return ErrCorrupt
		}
		regionLen := int(binary.LittleEndian.Uint16(body[pos:]))
		state := binary.LittleEndian.Uint32(body[pos+2:])
		pos += 6
		if pos+regionLen > len(body) {
			return ErrCorrupt
		}
		var br bitstream.Reader
		if err := br.Init(body[pos : pos+regionLen]); err != nil {
			return ErrCorrupt
		}
		t := unigramTableFor(ctx, r.buck)
		tans.Decode(&br, t, state, dst[r.start:r.end], r.end-r.start)
		pos += regionLen
	}
	return nil
}
