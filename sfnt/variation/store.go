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


package variation

import (
	"fmt"
	"math"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// ItemVariationStore holds the deltas for the variable values of a
// "GDEF", "GPOS", "HVAR" or "MVAR" table.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/otvarcommonformats#item-variation-store
type ItemVariationStore struct {
	AxisCount int
	Regions   []*Region
	Data      []*ItemVariationData
}

// ItemVariationData is one block of delta sets, addressed by the outer
// index of a variation index.
type ItemVariationData struct {
	RegionIndexes []uint16

	// WordCount is the number of leading region columns stored as 16-bit
	// (32-bit if LongWords is set) values.
	WordCount int
	LongWords bool

	// Deltas contains one row per item, one column per region index.
	Deltas [][]int32
}

// ReadItemVariationStore reads an item variation store which starts at
// pos.
func ReadItemVariationStore(p *parser.Parser, pos int64) (*ItemVariationStore, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/variation",
			Feature:   fmt.Sprintf("item variation store format %d", format),
		}
	}
	regionListOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	dataCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	dataOffsets := make([]uint32, dataCount)
	for i := range dataOffsets {
		dataOffsets[i], err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
	}

	res := &ItemVariationStore{}

	err = p.SeekPos(pos + int64(regionListOffset))
	if err != nil {
		return nil, err
	}
	buf, err := p.ReadUint16s(2)
	if err != nil {
		return nil, err
	}
	res.AxisCount = int(buf[0])
	regionCount := int(buf[1])
	for range regionCount {
		r := &Region{
			Start: make([]float64, res.AxisCount),
			Peak:  make([]float64, res.AxisCount),
			End:   make([]float64, res.AxisCount),
		}
		for i := 0; i < res.AxisCount; i++ {
			vals, err := readTuple(p, 3)
			if err != nil {
				return nil, err
			}
			r.Start[i], r.Peak[i], r.End[i] = vals[0], vals[1], vals[2]
		}
		res.Regions = append(res.Regions, r)
	}

	for _, offs := range dataOffsets {
		d, err := readItemVariationData(p, pos+int64(offs), regionCount)
		if err != nil {
			return nil, err
		}
		res.Data = append(res.Data, d)
	}
	return res, nil
}

func readItemVariationData(p *parser.Parser, pos int64, regionCount int) (*ItemVariationData, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	buf, err := p.ReadUint16s(3)
	if err != nil {
		return nil, err
	}
	itemCount := int(buf[0])
	d := &ItemVariationData{
		WordCount: int(buf[1] & 0x7FFF),
		LongWords: buf[1]&0x8000 != 0,
	}
	d.RegionIndexes, err = p.ReadUint16s(int(buf[2]))
	if err != nil {
		return nil, err
	}
	if d.WordCount > len(d.RegionIndexes) {
		return nil, p.Error("word delta count %d exceeds region count", d.WordCount)
	}
	for _, idx := range d.RegionIndexes {
		if int(idx) >= regionCount {
			return nil, p.Error("region index %d out of range", idx)
		}
	}

	d.Deltas = make([][]int32, itemCount)
	for i := range d.Deltas {
		row := make([]int32, len(d.RegionIndexes))
		for j := range row {
			long := j < d.WordCount
			switch {
			case long && d.LongWords:
				row[j], err = p.ReadInt32()
			case long || d.LongWords:
				var v int16
				v, err = p.ReadInt16()
				row[j] = int32(v)
			default:
				var v uint8
				v, err = p.ReadUint8()
				row[j] = int32(int8(v))
			}
			if err != nil {
				return nil, err
			}
		}
		d.Deltas[i] = row
	}
	return d, nil
}

// Delta returns the interpolated delta for the given variation index at
// the normalized location.  Out of range indices give zero.
func (s *ItemVariationStore) Delta(idx device.VariationIndex, coords []float64) float64 {
	if s == nil || idx == device.NoVariation || int(idx.Outer) >= len(s.Data) {
		return 0
	}
	d := s.Data[idx.Outer]
	if int(idx.Inner) >= len(d.Deltas) {
		return 0
	}
	var res float64
	for j, delta := range d.Deltas[idx.Inner] {
		if delta == 0 {
			continue
		}
		res += float64(delta) * s.Regions[d.RegionIndexes[j]].Scalar(coords)
	}
	return res
}

// Encode returns the binary representation of the store.
func (s *ItemVariationStore) Encode() []byte {
	headerLen := 8 + 4*len(s.Data)
	buf := make([]byte, headerLen, headerLen+4+6*s.AxisCount*len(s.Regions))
	buf[1] = 1
	putUint32(buf[2:], uint32(headerLen))
	buf[6] = byte(len(s.Data) >> 8)
	buf[7] = byte(len(s.Data))

	buf = appendUint16(buf, uint16(s.AxisCount), uint16(len(s.Regions)))
	for _, r := range s.Regions {
		for i := 0; i < s.AxisCount; i++ {
			buf = appendUint16(buf, f2dot14(r.Start[i]), f2dot14(r.Peak[i]), f2dot14(r.End[i]))
		}
	}

	for k, d := range s.Data {
		putUint32(buf[8+4*k:], uint32(len(buf)))
		wordCount := uint16(d.WordCount)
		if d.LongWords {
			wordCount |= 0x8000
		}
		buf = appendUint16(buf, uint16(len(d.Deltas)), wordCount, uint16(len(d.RegionIndexes)))
		buf = appendUint16(buf, d.RegionIndexes...)
		for _, row := range d.Deltas {
			for j, v := range row {
				long := j < d.WordCount
				switch {
				case long && d.LongWords:
					buf = append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
				case long || d.LongWords:
					buf = append(buf, byte(v>>8), byte(v))
				default:
					buf = append(buf, byte(v))
				}
			}
		}
	}
	return buf
}

func appendUint16(buf []byte, vals ...uint16) []byte {
	for _, v := range vals {
		buf = append(buf, byte(v>>8), byte(v))
	}
	return buf
}

func putUint32(buf []byte, v uint32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}

func f2dot14(x float64) uint16 {
	return uint16(int16(math.Floor(x*16384 + 0.5)))
}
