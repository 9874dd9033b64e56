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

package glyf

import (
	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// SimpleGlyph is a glyph described by contours.
type SimpleGlyph struct {
	Contours     []Contour
	Instructions []byte

	// Overlap records the OVERLAP_SIMPLE flag of the first point.
	Overlap bool
}

// A Point is a point in a glyph outline
type Point struct {
	X, Y    funit.Int16
	OnCurve bool
}

// A Contour describes a connected part of a glyph outline.
type Contour []Point

// Flags of the points in a simple glyph.
const (
	flagOnCurve       = 0x01
	flagXShort        = 0x02
	flagYShort        = 0x04
	flagRepeat        = 0x08
	flagXSameOrPos    = 0x10
	flagYSameOrPos    = 0x20
	flagOverlapSimple = 0x40
)

// NumPoints returns the total number of points in all contours.
func (g SimpleGlyph) NumPoints() int {
	n := 0
	for _, c := range g.Contours {
		n += len(c)
	}
	return n
}

// BBox returns the bounding box of the control points.
// The result is the zero rectangle if the glyph has no points.
func (g SimpleGlyph) BBox() funit.Rect16 {
	var bbox funit.Rect16
	first := true
	for _, c := range g.Contours {
		for _, p := range c {
			if first {
				bbox = funit.Rect16{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
				first = false
				continue
			}
			bbox.LLx = min(bbox.LLx, p.X)
			bbox.LLy = min(bbox.LLy, p.Y)
			bbox.URx = max(bbox.URx, p.X)
			bbox.URy = max(bbox.URy, p.Y)
		}
	}
	return bbox
}

// Clone returns a deep copy of the glyph.
func (g SimpleGlyph) Clone() SimpleGlyph {
	res := SimpleGlyph{
		Contours: make([]Contour, len(g.Contours)),
		Overlap:  g.Overlap,
	}
	for i, c := range g.Contours {
		res.Contours[i] = append(Contour(nil), c...)
	}
	if g.Instructions != nil {
		res.Instructions = append([]byte(nil), g.Instructions...)
	}
	return res
}

func decodeSimpleGlyph(numContours int, buf []byte) (*SimpleGlyph, error) {
	if numContours == 0 {
		return &SimpleGlyph{}, nil
	}
	if len(buf) < 2*numContours+2 {
		return nil, errInvalidGlyphData
	}
	endPtsOfContours := make([]int, numContours)
	prev := -1
	for i := 0; i < numContours; i++ {
		endPtsOfContours[i] = int(buf[2*i])<<8 | int(buf[2*i+1])
		if endPtsOfContours[i] <= prev {
			return nil, errInvalidGlyphData
		}
		prev = endPtsOfContours[i]
	}
	buf = buf[2*numContours:]
	numPoints := endPtsOfContours[numContours-1] + 1

	instructionLength := int(buf[0])<<8 | int(buf[1])
	if len(buf) < 2+instructionLength {
		return nil, errInvalidGlyphData
	}
	var instructions []byte
	if instructionLength > 0 {
		instructions = buf[2 : 2+instructionLength]
	}
	buf = buf[2+instructionLength:]

	// decode the flags
	ff := make([]byte, numPoints)
	i := 0
	for i < numPoints {
		if len(buf) < 1 {
			return nil, errInvalidGlyphData
		}
		flags := buf[0]
		buf = buf[1:]
		ff[i] = flags
		i++
		if flags&flagRepeat != 0 {
			if len(buf) < 1 {
				return nil, errInvalidGlyphData
			}
			count := buf[0]
			buf = buf[1:]
			for count > 0 && i < numPoints {
				ff[i] = flags
				i++
				count--
			}
		}
	}

	// decode the x-coordinates
	xx := make([]funit.Int16, numPoints)
	var x funit.Int16
	for i, flags := range ff {
		if flags&flagXShort != 0 {
			if len(buf) < 1 {
				return nil, errInvalidGlyphData
			}
			dx := funit.Int16(buf[0])
			buf = buf[1:]
			if flags&flagXSameOrPos != 0 {
				x += dx
			} else {
				x -= dx
			}
		} else if flags&flagXSameOrPos == 0 {
			if len(buf) < 2 {
				return nil, errInvalidGlyphData
			}
			dx := funit.Int16(buf[0])<<8 | funit.Int16(buf[1])
			buf = buf[2:]
			x += dx
		}
		xx[i] = x
	}

	// decode the y-coordinates
	yy := make([]funit.Int16, numPoints)
	var y funit.Int16
	for i, flags := range ff {
		if flags&flagYShort != 0 {
			if len(buf) < 1 {
				return nil, errInvalidGlyphData
			}
			dy := funit.Int16(buf[0])
			buf = buf[1:]
			if flags&flagYSameOrPos != 0 {
				y += dy
			} else {
				y -= dy
			}
		} else if flags&flagYSameOrPos == 0 {
			if len(buf) < 2 {
				return nil, errInvalidGlyphData
			}
			dy := funit.Int16(buf[0])<<8 | funit.Int16(buf[1])
			buf = buf[2:]
			y += dy
		}
		yy[i] = y
	}

	cc := make([]Contour, numContours)
	start := 0
	for i := 0; i < numContours; i++ {
		end := endPtsOfContours[i] + 1
		pp := make(Contour, end-start)
		for j := start; j < end; j++ {
			pp[j-start] = Point{xx[j], yy[j], ff[j]&flagOnCurve != 0}
		}
		start = end

		cc[i] = pp
	}

	res := &SimpleGlyph{
		Contours:     cc,
		Instructions: instructions,
		Overlap:      ff[0]&flagOverlapSimple != 0,
	}
	return res, nil
}

// append writes the glyph data which follows the glyph header.
func (g SimpleGlyph) append(buf []byte) []byte {
	numPoints := 0
	for _, c := range g.Contours {
		numPoints += len(c)
		end := numPoints - 1
		buf = append(buf, byte(end>>8), byte(end))
	}
	if len(g.Contours) == 0 {
		return buf
	}
	L := len(g.Instructions)
	buf = append(buf, byte(L>>8), byte(L))
	buf = append(buf, g.Instructions...)

	ff := make([]byte, 0, numPoints)
	var xBuf, yBuf []byte
	var prevX, prevY funit.Int16
	for _, c := range g.Contours {
		for _, p := range c {
			var flags byte
			if p.OnCurve {
				flags |= flagOnCurve
			}

			dx := int(p.X) - int(prevX)
			switch {
			case dx == 0:
				flags |= flagXSameOrPos
			case dx > 0 && dx < 256:
				flags |= flagXShort | flagXSameOrPos
				xBuf = append(xBuf, byte(dx))
			case dx < 0 && dx > -256:
				flags |= flagXShort
				xBuf = append(xBuf, byte(-dx))
			default:
				xBuf = append(xBuf, byte(dx>>8), byte(dx))
			}

			dy := int(p.Y) - int(prevY)
			switch {
			case dy == 0:
				flags |= flagYSameOrPos
			case dy > 0 && dy < 256:
				flags |= flagYShort | flagYSameOrPos
				yBuf = append(yBuf, byte(dy))
			case dy < 0 && dy > -256:
				flags |= flagYShort
				yBuf = append(yBuf, byte(-dy))
			default:
				yBuf = append(yBuf, byte(dy>>8), byte(dy))
			}

			ff = append(ff, flags)
			prevX, prevY = p.X, p.Y
		}
	}
	if g.Overlap && len(ff) > 0 {
		ff[0] |= flagOverlapSimple
	}

	// run-length encode the flags
	for i := 0; i < len(ff); {
		flags := ff[i]
		j := i + 1
		for j < len(ff) && ff[j] == flags && j-i <= 255 {
			j++
		}
		if count := j - i - 1; count > 1 {
			buf = append(buf, flags|flagRepeat, byte(count))
			i = j
		} else {
			buf = append(buf, flags)
			i++
		}
	}

	buf = append(buf, xBuf...)
	buf = append(buf, yBuf...)
	return buf
}

var errInvalidGlyphData = &fonterror.FormatError{
	SubSystem: "sfnt/glyf",
	Table:     "glyf",
	Reason:    "invalid glyph data",
}
