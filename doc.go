// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package netcodec implements a low-entropy compressor for small, highly
// structured binary packets: a tANS entropy stage fed by a dictionary
// trained offline on representative traffic, an optional delta-prediction
// stage that exploits similarity between consecutive packets on a
// stream, and an LZP pre-filter for payloads with strong byte-level
// repetition. RLE and LZ77 side-paths catch payloads the entropy stage
// models poorly.
//
// A Dictionary is trained once (via Train) from a representative packet
// corpus and is safe to share read-only across any number of Contexts. A
// Context holds the per-stream state a single goroutine drives through
// repeated Compress/Decompress calls: the previous one or two packets
// for delta prediction, a ring buffer of LZ77 history, and, in adaptive
// mode, per-stream tables that drift away from the dictionary's static
// ones over time.
//
// Compress always tries a plain, uncompressed passthrough encoding
// alongside every entropy-coded candidate the configuration and
// dictionary make available, so a packet the codec can't usefully
// compress still round-trips at a bounded, small overhead instead of
// failing outright.
package netcodec
