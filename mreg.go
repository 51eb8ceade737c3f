// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import "github.com/dsnet/netcodec/internal/bucket"

// mregRegion is one contiguous span of a packet that falls in a single
// bucket, the unit AlgTANSMreg encodes independently.
type mregRegion struct {
	buck       int
	start, end int // half-open offsets into the packet
}

// mregRegions partitions a packet of size n into the regions AlgTANSMreg
// encodes, following the same bucket boundaries dictionary training
// groups bytes by. Both Compress and Decompress call this with the same
// n (the packet's original size), so encoder and decoder always agree on
// the region layout without the wire format needing to state it.
func mregRegions(n int) []mregRegion {
	if n == 0 {
		return nil
	}
	regions := make([]mregRegion, 0, bucket.Count)
	start := 0
	cur := bucket.Of(0)
	for i := 1; i < n; i++ {
		b := bucket.Of(i)
		if b != cur {
			regions = append(regions, mregRegion{buck: cur, start: start, end: i})
			start = i
			cur = b
		}
	}
	regions = append(regions, mregRegion{buck: cur, start: start, end: n})
	return regions
}
