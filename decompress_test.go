// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"errors"
	"testing"

	"github.com/dsnet/netcodec/internal/testutil"
)

func TestDecompressRejectsNilContext(t *testing.T) {
	if _, err := Decompress(nil, make([]byte, 16), make([]byte, 16)); !errors.Is(err, ErrCtxNull) {
		t.Fatalf("Decompress: got %v, want ErrCtxNull", err)
	}
}

func TestDecompressRejectsTruncatedHeader(t *testing.T) {
	cctx, err := NewContext(nil, DefaultConfig())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if _, err := Decompress(cctx, make([]byte, MaxPacketSize), make([]byte, 3)); err == nil {
		t.Fatalf("expected error for a header shorter than legacyHeaderSize")
	}
}

func TestDecompressRejectsSmallDestination(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options = Stateful
	cctx, err := NewContext(nil, cfg)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	src := testutil.NewRand(20).Bytes(64)
	dst := make([]byte, CompressBound(len(src)))
	n, err := Compress(cctx, dst, src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	dctx, err := NewContext(nil, cfg)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if _, err := Decompress(dctx, make([]byte, 4), dst[:n]); !errors.Is(err, ErrBufSmall) {
		t.Fatalf("Decompress: got %v, want ErrBufSmall", err)
	}
}

func TestDecompressRejectsUnknownDictionaryAlgorithm(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options = Stateful | CompactHdr
	dctx, err := NewContext(nil, cfg)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	// A packet claiming AlgTANSSingle with no dictionary bound to the
	// decode Context must be rejected, not panic on a nil table lookup.
	hdr := compactHeader{Flags: 0, AlgByte: algoByte(AlgTANSSingle, 2), OriginalSize: 4}
	buf := make([]byte, 16)
	n, err := putCompactHeader(buf, hdr)
	if err != nil {
		t.Fatalf("putCompactHeader: %v", err)
	}
	// state (u16) + arbitrary payload bytes; decodePayload should fail
	// before ever touching them, since ctx.dict is nil.
	if _, err := Decompress(dctx, make([]byte, MaxPacketSize), buf[:n+2]); !errors.Is(err, ErrDictInvalid) {
		t.Fatalf("Decompress: got %v, want ErrDictInvalid", err)
	}
}

func TestStatelessRejectsDeltaFlag(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options = Stateless | CompactHdr
	dctx, err := NewContext(nil, cfg)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	hdr := compactHeader{Flags: FlagDelta, AlgByte: algoByte(AlgPassthrough, 0), OriginalSize: 4}
	buf := make([]byte, 16)
	n, err := putCompactHeader(buf, hdr)
	if err != nil {
		t.Fatalf("putCompactHeader: %v", err)
	}
	copy(buf[n:], []byte{1, 2, 3, 4})

	if _, err := Decompress(dctx, make([]byte, MaxPacketSize), buf[:n+4]); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Decompress: got %v, want ErrCorrupt", err)
	}
}

func TestDecompressRejectsUnrecognizedCompactType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options = Stateful | CompactHdr
	dctx, err := NewContext(nil, cfg)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	src := []byte{255, 0x00, 1, 2, 3, 4}
	if _, err := Decompress(dctx, make([]byte, MaxPacketSize), src); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Decompress: got %v, want ErrCorrupt", err)
	}
}

func TestDecompressPassthroughRejectsShortBody(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options = Stateful | CompactHdr
	dctx, err := NewContext(nil, cfg)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	hdr := compactHeader{Flags: 0, AlgByte: algoByte(AlgPassthrough, 0), OriginalSize: 10}
	buf := make([]byte, 16)
	n, err := putCompactHeader(buf, hdr)
	if err != nil {
		t.Fatalf("putCompactHeader: %v", err)
	}
	copy(buf[n:], []byte{1, 2, 3}) // far fewer than the claimed 10 bytes
	if _, err := Decompress(dctx, make([]byte, MaxPacketSize), buf[:n+3]); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Decompress: got %v, want ErrCorrupt", err)
	}
}

func TestHeaderFormDrivenByConfigurationOnly(t *testing.T) {
	// A Context configured for the legacy header must reject a packet
	// written in compact form rather than guess at the wire format; the
	// header form is a property of configuration, not autodetected. Build
	// a packet short enough that no legacy header (always 8 bytes) could
	// possibly fit, so the mismatch is unconditionally detectable.
	hdr := compactHeader{Flags: 0, AlgByte: algoByte(AlgPassthrough, 0), OriginalSize: 2}
	buf := make([]byte, 8)
	n, err := putCompactHeader(buf, hdr)
	if err != nil {
		t.Fatalf("putCompactHeader: %v", err)
	}
	copy(buf[n:], []byte{0xaa, 0xbb})
	pkt := buf[:n+2]
	if len(pkt) >= legacyHeaderSize {
		t.Fatalf("test packet of %d bytes must be shorter than the legacy header", len(pkt))
	}

	cfgLegacy := DefaultConfig()
	cfgLegacy.Options = Stateful
	dctx, err := NewContext(nil, cfgLegacy)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if _, err := Decompress(dctx, make([]byte, MaxPacketSize), pkt); err == nil {
		t.Fatalf("expected a mismatched header-form decode to fail, not silently succeed")
	}
}
