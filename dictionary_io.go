// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import (
	"encoding/binary"

	"github.com/dsnet/netcodec/internal/bucket"
	"github.com/dsnet/netcodec/internal/lzp"
	"github.com/dsnet/netcodec/internal/tans"
)

const (
	dictMagic = "NETC"

	// dictVersionCurrent is the only version Save ever writes. Versions 3
	// and 4 are read-only legacy formats this package still loads, per the
	// migration choice recorded in DESIGN.md.
	dictVersionCurrent = 5
	dictVersionV4      = 4
	dictVersionV3      = 3

	dictCtxCount = bucket.Count

	crcSize = 4
)

func classCountForVersion(version byte) int {
	if version >= dictVersionCurrent {
		return NumBigramClasses
	}
	return numBigramClassesLegacy
}

// Save serializes d into the current (version 5) blob format: a fixed
// header, the bigram class map, every bucket's unigram and bigram
// frequency tables, an optional LZP section, and a trailing CRC-32 over
// everything preceding it.
func Save(d *Dictionary) (blob []byte, err error) {
	defer errRecover(&err)

	headerLen := len(dictMagic) + 1 + 1 + 1 + 1 + 256
	tableLen := bucket.Count*256*2 + bucket.Count*NumBigramClasses*256*2
	lzpLen := 0
	if d.HasLZP() {
		lzpLen = lzp.Size * 2
	}

	blob = make([]byte, headerLen+tableLen+lzpLen+crcSize)
	pos := 0
	pos += copy(blob[pos:], dictMagic)
	blob[pos] = dictVersionCurrent
	pos++
	blob[pos] = d.modelID
	pos++
	blob[pos] = dictCtxCount
	pos++
	flags := d.flags
	blob[pos] = flags
	pos++
	pos += copy(blob[pos:], d.classMap[:])

	for buck := 0; buck < bucket.Count; buck++ {
		for _, f := range d.unigramFreq[buck] {
			binary.LittleEndian.PutUint16(blob[pos:], f)
			pos += 2
		}
	}
	for buck := 0; buck < bucket.Count; buck++ {
		for class := 0; class < NumBigramClasses; class++ {
			for _, f := range d.bigramFreq[buck][class] {
				binary.LittleEndian.PutUint16(blob[pos:], f)
				pos += 2
			}
		}
	}

	tablesEnd := pos
	crc := crc32Update(0, blob[:tablesEnd])

	if d.HasLZP() {
		lzpStart := pos
		writeLZPSection(blob[pos:pos+lzpLen], d.lzpTable)
		pos += lzpLen
		lzpCRC := crc32Update(0, blob[lzpStart:pos])
		crc = crc32Combine(crc, lzpCRC, lzpLen)
	}

	binary.LittleEndian.PutUint32(blob[pos:], crc)
	pos += crcSize
	return blob[:pos], nil
}

// writeLZPSection serializes tb as a flat array of (byte, valid) pairs, one
// per raw table index, in table order.
func writeLZPSection(dst []byte, tb *lzp.Table) {
	for i := 0; i < lzp.Size; i++ {
		e := tb.RawAt(i)
		dst[i*2] = e.Byte
		if e.Valid {
			dst[i*2+1] = 1
		}
	}
}

// Load parses a dictionary blob, accepting the current version 5 layout as
// well as the legacy version 3 and 4 layouts (4 bigram classes, no stored
// class map). The CRC-32 trailer is validated before any table data is
// trusted.
func Load(data []byte) (d *Dictionary, err error) {
	defer errRecover(&err)

	if len(data) < len(dictMagic)+1 {
		panic(errOf(KindDictInvalid, "blob too short"))
	}
	if string(data[:len(dictMagic)]) != dictMagic {
		panic(errOf(KindDictInvalid, "bad magic"))
	}
	version := data[len(dictMagic)]
	if version != dictVersionCurrent && version != dictVersionV4 && version != dictVersionV3 {
		panic(errOf(KindVersion, "unrecognized dictionary version"))
	}

	hasClassMap := version >= dictVersionCurrent
	numClasses := classCountForVersion(version)

	// model_id, ctx_count, and flags are present in every recognized
	// version; the class map (256 bytes) is version 5 only.
	headerLen := len(dictMagic) + 1 + 1 + 1 + 1
	if len(data) < headerLen {
		panic(errOf(KindDictInvalid, "blob truncated in header"))
	}

	pos := len(dictMagic) + 1
	modelID := data[pos]
	pos++
	ctxCount := data[pos]
	pos++
	flags := data[pos]
	pos++
	if int(ctxCount) != bucket.Count {
		panic(errOf(KindDictInvalid, "unexpected bucket count"))
	}

	var classMap [256]byte
	if hasClassMap {
		if len(data) < pos+256 {
			panic(errOf(KindDictInvalid, "blob truncated in class map"))
		}
		copy(classMap[:], data[pos:pos+256])
		pos += 256
	} else {
		classMap = legacyClassMap()
	}

	tableLen := bucket.Count*256*2 + bucket.Count*numClasses*256*2
	if len(data) < pos+tableLen {
		panic(errOf(KindDictInvalid, "blob truncated in tables"))
	}

	d = &Dictionary{modelID: modelID, flags: flags, numClasses: numClasses, classMap: classMap}
	for buck := 0; buck < bucket.Count; buck++ {
		var ft tans.FreqTable
		for s := range ft {
			ft[s] = binary.LittleEndian.Uint16(data[pos:])
			pos += 2
		}
		if ft.Sum() != tans.Log12.Size() {
			panic(errOf(KindDictInvalid, "unigram table does not sum to T"))
		}
		d.unigramFreq[buck] = ft
		table, err := tans.Build(tans.Log12, ft)
		if err != nil {
			panic(errOf(KindDictInvalid, err.Error()))
		}
		d.unigram12[buck] = table

		ft10, err := tans.Rescale(ft, tans.Log10)
		if err != nil {
			panic(errOf(KindDictInvalid, err.Error()))
		}
		table10, err := tans.Build(tans.Log10, ft10)
		if err != nil {
			panic(errOf(KindDictInvalid, err.Error()))
		}
		d.unigram10[buck] = table10
	}
	for buck := 0; buck < bucket.Count; buck++ {
		d.bigramFreq[buck] = make([]tans.FreqTable, numClasses)
		d.bigram12[buck] = make([]*tans.Table, numClasses)
		for class := 0; class < numClasses; class++ {
			var ft tans.FreqTable
			for s := range ft {
				ft[s] = binary.LittleEndian.Uint16(data[pos:])
				pos += 2
			}
			if ft.Sum() != tans.Log12.Size() {
				panic(errOf(KindDictInvalid, "bigram table does not sum to T"))
			}
			d.bigramFreq[buck][class] = ft
			table, err := tans.Build(tans.Log12, ft)
			if err != nil {
				panic(errOf(KindDictInvalid, err.Error()))
			}
			d.bigram12[buck][class] = table
		}
	}
	tablesEnd := pos

	hasLZP := flags&dictFlagLZP != 0 && version != dictVersionV3
	lzpLen := 0
	if hasLZP {
		lzpLen = lzp.Size * 2
	}
	if len(data) < pos+lzpLen+crcSize {
		panic(errOf(KindDictInvalid, "blob truncated in LZP section or CRC"))
	}
	lzpStart := pos

	crc := crc32Update(0, data[:tablesEnd])
	if hasLZP {
		lzpCRC := crc32Update(0, data[lzpStart:lzpStart+lzpLen])
		crc = crc32Combine(crc, lzpCRC, lzpLen)
	}
	pos += lzpLen
	wantCRC := binary.LittleEndian.Uint32(data[pos:])
	if crc != wantCRC {
		panic(errOf(KindDictInvalid, "CRC-32 mismatch"))
	}
	pos += crcSize

	if hasLZP {
		d.lzpTable = readLZPSection(data[lzpStart : lzpStart+lzpLen])
	}
	return d, nil
}

func readLZPSection(src []byte) *lzp.Table {
	tb := lzp.NewTable()
	for i := 0; i < lzp.Size; i++ {
		b := src[i*2]
		valid := src[i*2+1] != 0
		if valid {
			tb.SetRaw(i, b)
		}
	}
	return tb
}
