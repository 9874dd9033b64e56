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

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// NumPhantomPoints is the number of pseudo points which follow the
// outline points of every glyph in "gvar".  The first two carry the left
// side bearing and the advance width, the last two the vertical metrics.
const NumPhantomPoints = 4

// Gvar is a decoded "gvar" table.  The per-glyph variation data is
// decoded on demand.
type Gvar struct {
	AxisCount    int
	SharedTuples [][]float64

	data    []byte
	offsets []int64
}

// ReadGvar decodes the header of a "gvar" table.
func ReadGvar(data []byte, numGlyphs int) (*Gvar, error) {
	p := parser.New("gvar", data)
	buf, err := p.ReadUint16s(4)
	if err != nil {
		return nil, err
	}
	if buf[0] != 1 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/variation",
			Feature:   fmt.Sprintf("gvar version %d.%d", buf[0], buf[1]),
		}
	}
	axisCount := int(buf[2])
	sharedTupleCount := int(buf[3])
	sharedTuplesOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	glyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	flags, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	dataArrayOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int(glyphCount) != numGlyphs {
		return nil, p.Error("glyph count %d does not match maxp (%d)", glyphCount, numGlyphs)
	}

	offsets := make([]int64, int(glyphCount)+1)
	for i := range offsets {
		var offs int64
		if flags&1 != 0 {
			v, err := p.ReadUint32()
			if err != nil {
				return nil, err
			}
			offs = int64(v)
		} else {
			v, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			offs = 2 * int64(v)
		}
		offsets[i] = int64(dataArrayOffset) + offs
		if i > 0 && offsets[i] < offsets[i-1] {
			return nil, p.Error("glyph variation data offsets not increasing")
		}
	}
	if offsets[len(offsets)-1] > int64(len(data)) {
		return nil, p.Error("glyph variation data exceeds table")
	}

	res := &Gvar{
		AxisCount: axisCount,
		data:      data,
		offsets:   offsets,
	}
	err = p.SeekPos(int64(sharedTuplesOffset))
	if err != nil {
		return nil, err
	}
	for range sharedTupleCount {
		t, err := readTuple(p, axisCount)
		if err != nil {
			return nil, err
		}
		res.SharedTuples = append(res.SharedTuples, t)
	}
	return res, nil
}

// HasVariations reports whether the glyph has variation data.
func (g *Gvar) HasVariations(gid glyph.ID) bool {
	i := int(gid)
	return i+1 < len(g.offsets) && g.offsets[i+1] > g.offsets[i]
}

// Deltas returns the displacement of every point of glyph gid at the
// normalized location coords.
//
// orig gives the original coordinates of the points, including the four
// phantom points at the end.  For simple glyphs, ends lists the index of
// the last point of every contour; points without explicit deltas in a
// tuple are then inferred by interpolation.  For composite glyphs, ends
// is nil and such points are not moved.
func (g *Gvar) Deltas(gid glyph.ID, coords []float64, orig []vec.Vec2, ends []int) ([]vec.Vec2, error) {
	res := make([]vec.Vec2, len(orig))
	if !g.HasVariations(gid) {
		return res, nil
	}

	start, end := g.offsets[gid], g.offsets[gid+1]
	p := parser.New("gvar", g.data[start:end])
	tuples, err := readTupleVariations(p, g.AxisCount, g.SharedTuples, len(orig))
	if err != nil {
		if fe, ok := err.(*fonterror.FormatError); ok && fe.Glyph == "" {
			withGlyph := *fe
			withGlyph.Glyph = fmt.Sprintf("%d", gid)
			return nil, &withGlyph
		}
		return nil, err
	}

	for _, tv := range tuples {
		scalar := tv.region.Scalar(coords)
		if scalar == 0 {
			continue
		}

		if tv.points == nil {
			for i := range res {
				if i >= len(tv.dx) {
					break
				}
				res[i].X += scalar * float64(tv.dx[i])
				res[i].Y += scalar * float64(tv.dy[i])
			}
			continue
		}

		delta := make([]vec.Vec2, len(orig))
		touched := make([]bool, len(orig))
		for k, idx := range tv.points {
			if idx >= len(orig) {
				continue
			}
			delta[idx] = vec.Vec2{X: float64(tv.dx[k]), Y: float64(tv.dy[k])}
			touched[idx] = true
		}
		if ends != nil {
			interpolateUntouched(delta, touched, orig, ends)
		}
		for i, d := range delta {
			res[i].X += scalar * d.X
			res[i].Y += scalar * d.Y
		}
	}
	return res, nil
}
