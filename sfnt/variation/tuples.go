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
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// Region describes the support of a variation in normalized coordinates.
// Start and End are nil if the region is derived from the peak.
type Region struct {
	Peak       []float64
	Start, End []float64
}

// Scalar returns the factor by which the deltas for the region are
// multiplied at the given location.
func (r *Region) Scalar(coords []float64) float64 {
	scalar := 1.0
	for i, peak := range r.Peak {
		if peak == 0 {
			continue
		}
		var v float64
		if i < len(coords) {
			v = coords[i]
		}
		if v == peak {
			continue
		}

		start, end := min(peak, 0), max(peak, 0)
		if r.Start != nil {
			start, end = r.Start[i], r.End[i]
			if start > peak || peak > end || start < 0 && end > 0 {
				continue
			}
		}
		if v <= start || v >= end {
			return 0
		}
		if v < peak {
			scalar *= (v - start) / (peak - start)
		} else {
			scalar *= (end - v) / (end - peak)
		}
	}
	return scalar
}

// Flags used in tuple variation headers.
const (
	tupleEmbeddedPeak      = 0x8000
	tupleIntermediate      = 0x4000
	tuplePrivatePoints     = 0x2000
	tupleIndexMask         = 0x0FFF
	tupleSharedPointNumber = 0x8000
	tupleCountMask         = 0x0FFF
)

// tupleVariation is a single set of deltas from a glyph variation data
// table.  points is nil if the deltas apply to all points.
type tupleVariation struct {
	region Region
	points []int
	dx, dy []int32
}

// readTuple reads n F2Dot14 values.
func readTuple(p *parser.Parser, n int) ([]float64, error) {
	res := make([]float64, n)
	for i := range res {
		v, err := p.ReadF2Dot14()
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// readPackedPoints reads a packed point number list.  The result is nil
// if the list refers to all points.
func readPackedPoints(p *parser.Parser) ([]int, error) {
	b, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	count := int(b)
	if b&0x80 != 0 {
		b2, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		count = int(b&0x7F)<<8 | int(b2)
	}
	if count == 0 {
		return nil, nil
	}

	res := make([]int, 0, count)
	last := 0
	for len(res) < count {
		ctrl, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		run := int(ctrl&0x7F) + 1
		for range run {
			var step int
			if ctrl&0x80 != 0 {
				v, err := p.ReadUint16()
				if err != nil {
					return nil, err
				}
				step = int(v)
			} else {
				v, err := p.ReadUint8()
				if err != nil {
					return nil, err
				}
				step = int(v)
			}
			last += step
			res = append(res, last)
		}
	}
	if len(res) > count {
		return nil, p.Error("point number run exceeds count")
	}
	return res, nil
}

// readPackedDeltas reads n packed deltas.
func readPackedDeltas(p *parser.Parser, n int) ([]int32, error) {
	res := make([]int32, 0, n)
	for len(res) < n {
		ctrl, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		run := int(ctrl&0x3F) + 1
		if len(res)+run > n {
			return nil, p.Error("delta run exceeds count")
		}
		switch ctrl & 0xC0 {
		case 0x80: // zero
			for range run {
				res = append(res, 0)
			}
		case 0x40: // words
			for range run {
				v, err := p.ReadInt16()
				if err != nil {
					return nil, err
				}
				res = append(res, int32(v))
			}
		case 0xC0: // longs
			for range run {
				v, err := p.ReadInt32()
				if err != nil {
					return nil, err
				}
				res = append(res, v)
			}
		default:
			for range run {
				v, err := p.ReadUint8()
				if err != nil {
					return nil, err
				}
				res = append(res, int32(int8(v)))
			}
		}
	}
	return res, nil
}

// readTupleVariations decodes a glyph variation data table.  numPoints
// is the number of points the deltas refer to, including phantom points.
func readTupleVariations(p *parser.Parser, axisCount int, shared [][]float64, numPoints int) ([]*tupleVariation, error) {
	base := p.Pos()
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	dataOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	type header struct {
		size  int
		index uint16
		r     Region
	}
	headers := make([]header, count&tupleCountMask)
	for i := range headers {
		buf, err := p.ReadUint16s(2)
		if err != nil {
			return nil, err
		}
		h := header{size: int(buf[0]), index: buf[1]}
		if h.index&tupleEmbeddedPeak != 0 {
			h.r.Peak, err = readTuple(p, axisCount)
			if err != nil {
				return nil, err
			}
		} else {
			idx := int(h.index & tupleIndexMask)
			if idx >= len(shared) {
				return nil, p.Error("shared tuple index %d out of range", idx)
			}
			h.r.Peak = shared[idx]
		}
		if h.index&tupleIntermediate != 0 {
			h.r.Start, err = readTuple(p, axisCount)
			if err != nil {
				return nil, err
			}
			h.r.End, err = readTuple(p, axisCount)
			if err != nil {
				return nil, err
			}
		}
		headers[i] = h
	}

	err = p.SeekPos(base + int64(dataOffset))
	if err != nil {
		return nil, err
	}
	var sharedPoints []int
	if count&tupleSharedPointNumber != 0 {
		sharedPoints, err = readPackedPoints(p)
		if err != nil {
			return nil, err
		}
	}

	res := make([]*tupleVariation, 0, len(headers))
	for _, h := range headers {
		start := p.Pos()
		tv := &tupleVariation{region: h.r, points: sharedPoints}
		if h.index&tuplePrivatePoints != 0 {
			tv.points, err = readPackedPoints(p)
			if err != nil {
				return nil, err
			}
		}
		n := numPoints
		if tv.points != nil {
			n = len(tv.points)
		}
		tv.dx, err = readPackedDeltas(p, n)
		if err != nil {
			return nil, err
		}
		tv.dy, err = readPackedDeltas(p, n)
		if err != nil {
			return nil, err
		}
		if p.Pos() > start+int64(h.size) {
			return nil, p.Error("tuple variation data exceeds its size")
		}
		err = p.SeekPos(start + int64(h.size))
		if err != nil {
			return nil, err
		}
		res = append(res, tv)
	}
	return res, nil
}
