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

// Package glyf reads and writes "glyf" and "loca" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf
// https://docs.microsoft.com/en-us/typography/opentype/spec/loca
package glyf

import (
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Encoded represents the data of a "glyf" and "loca" table.
type Encoded struct {
	GlyfData   []byte
	LocaData   []byte
	LocaFormat int16
}

// Glyphs is a slice of glyph outlines, indexed by glyph ID.
// Empty glyphs are represented by nil.
type Glyphs []*Glyph

// Decode converts the data from the "glyf" and "loca" tables into
// a slice of Glyphs.  numGlyphs is taken from the "maxp" table.
func Decode(enc *Encoded, numGlyphs int) (Glyphs, error) {
	offs, err := decodeLoca(enc, numGlyphs)
	if err != nil {
		return nil, err
	}

	gg := make(Glyphs, numGlyphs)
	for i := range gg {
		data := enc.GlyfData[offs[i]:offs[i+1]]
		g, err := decodeGlyph(data)
		if err != nil {
			if fe, ok := err.(*fonterror.FormatError); ok && fe.Glyph == "" {
				withGlyph := *fe
				withGlyph.Glyph = gidString(i)
				return nil, &withGlyph
			}
			return nil, err
		}
		gg[i] = g
	}

	return gg, nil
}

// Encode encodes the Glyphs into a "glyf" and "loca" table.
// The glyph bounding boxes are written as stored in the Glyph objects.
func (gg Glyphs) Encode() *Encoded {
	n := len(gg)

	offs := make([]int, n+1)
	var buf []byte
	for i, g := range gg {
		offs[i] = len(buf)
		buf = g.append(buf)
		for len(buf)%glyfAlign != 0 {
			buf = append(buf, 0)
		}
	}
	offs[n] = len(buf)

	locaData, locaFormat := encodeLoca(offs)

	return &Encoded{
		GlyfData:   buf,
		LocaData:   locaData,
		LocaFormat: locaFormat,
	}
}

// IsComposite returns true if the glyph with the given index is a
// composite glyph.
func (gg Glyphs) IsComposite(i int) bool {
	if i < 0 || i >= len(gg) || gg[i] == nil {
		return false
	}
	_, ok := gg[i].Data.(CompositeGlyph)
	return ok
}

// Stats computes the outline statistics recorded in the "maxp" table.
func (gg Glyphs) Stats() Stats {
	var s Stats
	var visit func(i, level int) (points, contours int)
	visit = func(i, level int) (int, int) {
		if i < 0 || i >= len(gg) || gg[i] == nil || level > 64 {
			return 0, 0
		}
		switch d := gg[i].Data.(type) {
		case SimpleGlyph:
			return d.NumPoints(), len(d.Contours)
		case CompositeGlyph:
			if level > s.MaxComponentDepth {
				s.MaxComponentDepth = level
			}
			var pp, cc int
			for _, comp := range d.Components {
				p, c := visit(int(comp.GlyphIndex), level+1)
				pp += p
				cc += c
			}
			return pp, cc
		}
		return 0, 0
	}

	for i, g := range gg {
		if g == nil {
			continue
		}
		switch d := g.Data.(type) {
		case SimpleGlyph:
			s.MaxPoints = max(s.MaxPoints, d.NumPoints())
			s.MaxContours = max(s.MaxContours, len(d.Contours))
			s.MaxInstructions = max(s.MaxInstructions, len(d.Instructions))
		case CompositeGlyph:
			points, contours := visit(i, 1)
			s.MaxCompositePoints = max(s.MaxCompositePoints, points)
			s.MaxCompositeContours = max(s.MaxCompositeContours, contours)
			s.MaxComponentElements = max(s.MaxComponentElements, len(d.Components))
			s.MaxInstructions = max(s.MaxInstructions, len(d.Instructions))
		}
	}
	return s
}

// Stats summarizes the sizes of the glyphs in a font.
type Stats struct {
	MaxPoints            int
	MaxContours          int
	MaxCompositePoints   int
	MaxCompositeContours int
	MaxComponentElements int
	MaxComponentDepth    int
	MaxInstructions      int
}

const glyfAlign = 2
