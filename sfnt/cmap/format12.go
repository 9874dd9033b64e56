// sub-fonts - derive static font variants from OpenType fonts
// Copyright (C) 2025  The sub-fonts Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cmap

import (
	"sort"

	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Format12 represents a format 12 cmap subtable.
// Code points which map to glyph 0 are omitted.
// https://docs.microsoft.com/en-us/typography/opentype/spec/cmap#format-12-segmented-coverage
type Format12 map[uint32]glyph.ID

// DecodeFormat12 decodes a format 12 subtable.
func DecodeFormat12(data []byte) (Format12, error) {
	if len(data) < 16 || Format(data) != 12 {
		return nil, errMalformedSubtable
	}

	nSegments := uint32(data[12])<<24 | uint32(data[13])<<16 | uint32(data[14])<<8 | uint32(data[15])
	if nSegments > 1e6 || len(data) < 16+int(nSegments)*12 {
		return nil, errMalformedSubtable
	}

	cmap := Format12{}
	var prevEnd uint32
	for i := uint32(0); i < nSegments; i++ {
		base := 16 + i*12
		start := uint32(data[base])<<24 | uint32(data[base+1])<<16 | uint32(data[base+2])<<8 | uint32(data[base+3])
		end := uint32(data[base+4])<<24 | uint32(data[base+5])<<16 | uint32(data[base+6])<<8 | uint32(data[base+7])
		startGlyphID := uint32(data[base+8])<<24 | uint32(data[base+9])<<16 | uint32(data[base+10])<<8 | uint32(data[base+11])

		if i > 0 && start <= prevEnd ||
			end < start ||
			end > 0x10_FFFF ||
			startGlyphID > 0xFFFF ||
			startGlyphID+(end-start) > 0xFFFF {
			return nil, errMalformedSubtable
		}
		prevEnd = end

		for code := start; code <= end; code++ {
			gid := glyph.ID(startGlyphID + code - start)
			if gid != 0 {
				cmap[code] = gid
			}
		}
	}

	return cmap, nil
}

// Encode encodes the subtable into a byte slice.
func (cmap Format12) Encode(language uint32) []byte {
	type segment struct {
		start, end uint32
		gid        glyph.ID
	}

	codes := make([]uint32, 0, len(cmap))
	for code, gid := range cmap {
		if gid != 0 {
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	var segments []segment
	for _, code := range codes {
		gid := cmap[code]
		if n := len(segments); n > 0 {
			last := &segments[n-1]
			if code == last.end+1 && gid == last.gid+glyph.ID(code-last.start) {
				last.end = code
				continue
			}
		}
		segments = append(segments, segment{start: code, end: code, gid: gid})
	}

	nSegments := len(segments)
	l := uint32(16 + nSegments*12)
	out := make([]byte, l)
	copy(out, []byte{
		0, 12, 0, 0,
		byte(l >> 24), byte(l >> 16), byte(l >> 8), byte(l),
		byte(language >> 24), byte(language >> 16), byte(language >> 8), byte(language),
		byte(nSegments >> 24), byte(nSegments >> 16), byte(nSegments >> 8), byte(nSegments),
	})
	for i, seg := range segments {
		base := 16 + i*12
		out[base] = byte(seg.start >> 24)
		out[base+1] = byte(seg.start >> 16)
		out[base+2] = byte(seg.start >> 8)
		out[base+3] = byte(seg.start)
		out[base+4] = byte(seg.end >> 24)
		out[base+5] = byte(seg.end >> 16)
		out[base+6] = byte(seg.end >> 8)
		out[base+7] = byte(seg.end)
		// out[base+8] = 0
		// out[base+9] = 0
		out[base+10] = byte(seg.gid >> 8)
		out[base+11] = byte(seg.gid)
	}
	return out
}

// Language returns the language field of a format 4 or 12 subtable.
func Language(subtable []byte) (uint32, error) {
	switch Format(subtable) {
	case 4:
		if len(subtable) < 6 {
			return 0, errMalformedSubtable
		}
		return uint32(subtable[4])<<8 | uint32(subtable[5]), nil
	case 12:
		if len(subtable) < 12 {
			return 0, errMalformedSubtable
		}
		return uint32(subtable[8])<<24 | uint32(subtable[9])<<16 | uint32(subtable[10])<<8 | uint32(subtable[11]), nil
	}
	return 0, &fonterror.UnsupportedFormatError{
		SubSystem: "sfnt/cmap",
		Feature:   "language of subtable format",
	}
}
