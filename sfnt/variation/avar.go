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

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// AxisValueMap is one point of a piecewise linear map of normalized
// coordinates.
type AxisValueMap struct {
	From, To float64
}

// Avar is a decoded "avar" table (version 1).  There is one segment map
// per axis.
type Avar struct {
	SegmentMaps [][]AxisValueMap
}

// ReadAvar decodes an "avar" table.
func ReadAvar(data []byte) (*Avar, error) {
	p := parser.New("avar", data)
	buf, err := p.ReadUint16s(4)
	if err != nil {
		return nil, err
	}
	if buf[0] != 1 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/variation",
			Feature:   fmt.Sprintf("avar version %d.%d", buf[0], buf[1]),
		}
	}
	axisCount := int(buf[3])

	res := &Avar{SegmentMaps: make([][]AxisValueMap, axisCount)}
	for i := range res.SegmentMaps {
		n, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		seg := make([]AxisValueMap, n)
		for j := range seg {
			seg[j].From, err = p.ReadF2Dot14()
			if err != nil {
				return nil, err
			}
			seg[j].To, err = p.ReadF2Dot14()
			if err != nil {
				return nil, err
			}
			if j > 0 && seg[j].From < seg[j-1].From {
				return nil, p.Error("axis %d: segment map not sorted", i)
			}
		}
		res.SegmentMaps[i] = seg
	}
	return res, nil
}

// Map applies the segment maps to normalized coordinates, in place.
// Axes without a segment map are left unchanged.
func (a *Avar) Map(coords []float64) {
	if a == nil {
		return
	}
	for i, seg := range a.SegmentMaps {
		if i >= len(coords) {
			break
		}
		coords[i] = quantize(mapSegment(seg, coords[i]))
	}
}

func mapSegment(seg []AxisValueMap, v float64) float64 {
	if len(seg) == 0 {
		return v
	}
	if v <= seg[0].From {
		return v + seg[0].To - seg[0].From
	}
	last := seg[len(seg)-1]
	if v >= last.From {
		return v + last.To - last.From
	}
	for k := 1; k < len(seg); k++ {
		hi := seg[k]
		if v > hi.From {
			continue
		}
		lo := seg[k-1]
		if v == hi.From || hi.From == lo.From {
			return hi.To
		}
		return lo.To + (hi.To-lo.To)*(v-lo.From)/(hi.From-lo.From)
	}
	return v
}
