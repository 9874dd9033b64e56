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
	"bytes"
	"encoding/binary"
	"math/bits"
	"sort"

	"seehuhn.de/go/dag"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Format4 represents a format 4 cmap subtable.
// Code points which map to glyph 0 are omitted.
// https://docs.microsoft.com/en-us/typography/opentype/spec/cmap#format-4-segment-mapping-to-delta-values
type Format4 map[uint16]glyph.ID

// DecodeFormat4 decodes a format 4 subtable.
func DecodeFormat4(in []byte) (Format4, error) {
	if len(in) < 16 || Format(in) != 4 {
		return nil, errMalformedSubtable
	}
	in = in[:len(in)&^1]

	segCountX2 := int(in[6])<<8 | int(in[7])
	if segCountX2%2 != 0 || 4*segCountX2+16 > len(in) {
		return nil, errMalformedSubtable
	}
	segCount := segCountX2 / 2

	words := make([]uint16, 0, (len(in)-14)/2)
	for i := 14; i < len(in); i += 2 {
		words = append(words, uint16(in[i])<<8|uint16(in[i+1]))
	}
	endCode := words[:segCount]
	// reservedPad omitted
	startCode := words[segCount+1 : 2*segCount+1]
	idDelta := words[2*segCount+1 : 3*segCount+1]
	idRangeOffset := words[3*segCount+1 : 4*segCount+1]
	glyphIDArray := words[4*segCount+1:]

	cmap := Format4{}
	prevEnd := uint32(0)
	for k := 0; k < segCount; k++ {
		start := uint32(startCode[k])
		end := uint32(endCode[k]) + 1
		if start < prevEnd || end <= start {
			return nil, errMalformedSubtable
		}
		prevEnd = end

		if idRangeOffset[k] == 0 {
			delta := idDelta[k]
			for idx := start; idx < end; idx++ {
				c := glyph.ID(uint16(idx) + delta)
				if c != 0 {
					cmap[uint16(idx)] = c
				}
			}
		} else {
			d := int(idRangeOffset[k])/2 - (segCount - k)
			if d < 0 || d+int(end-start) > len(glyphIDArray) {
				if start == 0xFFFF {
					// some fonts have invalid data for the last segment
					continue
				}
				return nil, errMalformedSubtable
			}
			for idx := start; idx < end; idx++ {
				c := glyph.ID(glyphIDArray[d+int(idx-start)])
				if c != 0 {
					c += glyph.ID(idDelta[k])
					cmap[uint16(idx)] = c
				}
			}
		}
	}
	return cmap, nil
}

// Encode encodes the subtable into a byte slice.
// The segmentation is found by a shortest path search over runs of
// constant delta and runs of explicitly stored glyph IDs.
func (cmap Format4) Encode(language uint16) ([]byte, error) {
	entries := make([]format4Entry, 0, len(cmap))
	for code, gid := range cmap {
		if gid == 0 || code == 0xFFFF {
			continue
		}
		entries = append(entries, format4Entry{code, uint16(gid)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].code < entries[j].code
	})

	g := format4Graph(entries)
	var ee []format4Edge
	if len(entries) > 0 {
		var err error
		ee, err = dag.ShortestPath[format4Edge, int](g, len(entries))
		if err != nil {
			return nil, err
		}
	}

	var segments []*format4Segment
	v := 0
	for _, e := range ee {
		n := e.length()
		segments = append(segments, &format4Segment{
			first:     v,
			last:      v + n - 1,
			useValues: e < 0,
		})
		v = g.To(v, e)
	}

	var startCode, endCode, idDelta, idRangeOffsets, glyphIDArray []uint16
	for i, s := range segments {
		first, last := entries[s.first], entries[s.last]
		startCode = append(startCode, first.code)
		endCode = append(endCode, last.code)
		if !s.useValues {
			idDelta = append(idDelta, first.gid-first.code)
			idRangeOffsets = append(idRangeOffsets, 0)
		} else {
			idDelta = append(idDelta, 0)
			offs := 2 * (len(segments) + 1 - i + len(glyphIDArray))
			idRangeOffsets = append(idRangeOffsets, uint16(offs))
			for j := s.first; j <= s.last; j++ {
				glyphIDArray = append(glyphIDArray, entries[j].gid)
			}
		}
	}
	// the final segment is required to cover 0xFFFF
	startCode = append(startCode, 0xFFFF)
	endCode = append(endCode, 0xFFFF)
	idDelta = append(idDelta, uint16(cmap[0xFFFF])-0xFFFF)
	idRangeOffsets = append(idRangeOffsets, 0)

	segCount := len(startCode)
	length := 2 * (8 + 4*segCount + len(glyphIDArray))
	if segCount > 0x7FFF || length > 0xFFFF {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/cmap",
			Feature:   "format 4 subtable with more than 64kB",
		}
	}

	sel := bits.Len(uint(segCount)) - 1
	data := &cmapFormat4{
		Format:        4,
		Length:        uint16(length),
		Language:      language,
		SegCountX2:    uint16(2 * segCount),
		SearchRange:   2 << sel,
		EntrySelector: uint16(sel),
	}
	data.RangeShift = data.SegCountX2 - data.SearchRange

	endCode = append(endCode, 0) // add the ReservedPad field here

	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.BigEndian, data)
	for _, x := range [][]uint16{endCode, startCode, idDelta, idRangeOffsets, glyphIDArray} {
		_ = binary.Write(buf, binary.BigEndian, x)
	}

	return buf.Bytes(), nil
}

type format4Entry struct {
	code uint16
	gid  uint16
}

type format4Segment struct {
	first, last int // indices into the sorted entries
	useValues   bool
}

// format4Graph is the graph for finding the optimal segmentation.  The
// vertices are positions in the sorted list of entries.
type format4Graph []format4Entry

// A format4Edge describes the next segment.  Positive values n encode a
// segment of n entries with consecutive codes and a constant difference
// between glyph ID and code.  Negative values -n encode a segment of n
// entries with consecutive codes, where the glyph IDs are stored
// explicitly.
type format4Edge int32

func (e format4Edge) length() int {
	if e < 0 {
		return int(-e)
	}
	return int(e)
}

// maxArraySteps limits the number of array segment lengths tried
// from every vertex.
const maxArraySteps = 64

func (g format4Graph) AppendEdges(ee []format4Edge, v int) []format4Edge {
	if v < 0 || v >= len(g) {
		return ee
	}
	n := len(g)

	delta := g[v].gid - g[v].code
	i := v + 1
	for i < n && g[i].code == g[i-1].code+1 && g[i].gid-g[i].code == delta {
		i++
	}
	ee = append(ee, format4Edge(i-v))

	i = v + 1
	for i < n && g[i].code == g[i-1].code+1 {
		if i-v < maxArraySteps {
			ee = append(ee, format4Edge(-(i - v + 1)))
		}
		i++
	}
	if i-v >= maxArraySteps {
		ee = append(ee, format4Edge(-(i - v)))
	}
	return ee
}

func (g format4Graph) Length(v int, e format4Edge) int {
	// every segment uses 4 words in the segment arrays
	if e > 0 {
		return 8
	}
	return 8 + 2*int(-e)
}

func (g format4Graph) To(v int, e format4Edge) int {
	return v + e.length()
}

type cmapFormat4 struct {
	Format        uint16
	Length        uint16
	Language      uint16
	SegCountX2    uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
	// EndCode        []uint16 // End characterCode for each segment, last=0xFFFF.
	// ReservedPad    uint16   // (0)
	// StartCode      []uint16 // Start character code for each segment.
	// IDDelta        []uint16 // Delta for all character codes in segment.
	// IDRangeOffsets []uint16 // Offsets into glyphIDArray or 0
	// GlyphIDArray   []uint16 // Glyph index array (arbitrary length)
}
