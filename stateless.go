// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

// CompressStateless is a convenience wrapper for one-off packets that
// don't share a Context: it builds a throwaway Stateless Context bound
// to dict and compresses a single packet. Callers compressing a stream
// should build one Context with NewContext instead, since a fresh
// Context here means no cross-packet LZ77 history and no delta/adaptive
// state, by construction.
func CompressStateless(dict *Dictionary, dst, src []byte) (n int, err error) {
	defer errRecover(&err)

	cfg := DefaultConfig()
	cfg.Options = Stateless
	ctx, cerr := NewContext(dict, cfg)
	if cerr != nil {
		return 0, cerr
	}
	return Compress(ctx, dst, src)
}

// DecompressStateless is CompressStateless's inverse. It additionally
// rejects any packet whose header carries FlagDelta, since a stateless
// stream can never have legitimately produced one: NewContext's
// Stateless/Delta exclusivity means a conforming encoder never sets it,
// so seeing it set only happens on corrupted or adversarial input.
func DecompressStateless(dict *Dictionary, dst, src []byte) (n int, err error) {
	defer errRecover(&err)

	cfg := DefaultConfig()
	cfg.Options = Stateless
	ctx, cerr := NewContext(dict, cfg)
	if cerr != nil {
		return 0, cerr
	}
	return Decompress(ctx, dst, src)
}
