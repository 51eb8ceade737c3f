// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bucket

import "testing"

func TestOfBoundaries(t *testing.T) {
	cases := []struct {
		offset int
		want   int
	}{
		{0, 0}, {7, 0}, {8, 1}, {15, 1}, {16, 2}, {23, 2}, {24, 3},
		{31, 3}, {32, 4}, {47, 4}, {48, 5}, {63, 5}, {64, 6}, {95, 6},
		{96, 7}, {127, 7}, {128, 8}, {191, 8}, {192, 9}, {255, 9},
		{256, 10}, {383, 10}, {384, 11}, {511, 11}, {512, 12}, {1023, 12},
		{1024, 13}, {4095, 13}, {4096, 14}, {16383, 14}, {16384, 15},
		{65535, 15},
	}
	for _, c := range cases {
		if got := Of(c.offset); got != c.want {
			t.Errorf("Of(%d) = %d, want %d", c.offset, got, c.want)
		}
	}
}

func TestOfMonotonic(t *testing.T) {
	prev := Of(0)
	for off := 1; off <= 0xffff; off++ {
		b := Of(off)
		if b < prev || b-prev > 1 {
			t.Fatalf("Of not monotonic step<=1 at offset %d: %d -> %d", off, prev, b)
		}
		prev = b
	}
	if prev != Count-1 {
		t.Fatalf("last bucket = %d, want %d", prev, Count-1)
	}
}
