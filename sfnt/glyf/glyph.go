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
	"math"

	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Glyph represents a single glyph in a TrueType font.
type Glyph struct {
	funit.Rect16
	Data interface{} // either SimpleGlyph or CompositeGlyph
}

// CompositeGlyph is a composite glyph.
type CompositeGlyph struct {
	Components   []GlyphComponent
	Instructions []byte
}

// GlyphComponent is a single component of a composite glyph.
type GlyphComponent struct {
	// Flags contains the component flags.  The flags which describe the
	// encoding of the arguments and of the transformation matrix are
	// recomputed when the glyph is written.
	Flags      ComponentFlags
	GlyphIndex glyph.ID

	// Arg1 and Arg2 are x and y offsets if FlagArgsAreXYValues is set,
	// and point numbers otherwise.
	Arg1, Arg2 int

	// Matrix is the 2x2 transformation (xx, xy, yx, yy) applied to the
	// component.  The zero value is treated as the identity.
	Matrix [4]float64
}

// ComponentFlags describe a component of a composite glyph.
type ComponentFlags uint16

// Flag values for ComponentFlags.
const (
	FlagArg1And2AreWords        ComponentFlags = 0x0001
	FlagArgsAreXYValues         ComponentFlags = 0x0002
	FlagRoundXYToGrid           ComponentFlags = 0x0004
	FlagWeHaveAScale            ComponentFlags = 0x0008
	FlagMoreComponents          ComponentFlags = 0x0020
	FlagWeHaveAnXAndYScale      ComponentFlags = 0x0040
	FlagWeHaveATwoByTwo         ComponentFlags = 0x0080
	FlagWeHaveInstructions      ComponentFlags = 0x0100
	FlagUseMyMetrics            ComponentFlags = 0x0200
	FlagOverlapCompound         ComponentFlags = 0x0400
	FlagScaledComponentOffset   ComponentFlags = 0x0800
	FlagUnscaledComponentOffset ComponentFlags = 0x1000

	encodingFlags = FlagArg1And2AreWords | FlagWeHaveAScale | FlagMoreComponents |
		FlagWeHaveAnXAndYScale | FlagWeHaveATwoByTwo | FlagWeHaveInstructions
)

// Transform returns the 2x2 matrix of the component, with the zero value
// replaced by the identity.
func (c *GlyphComponent) Transform() [4]float64 {
	if c.Matrix == [4]float64{} {
		return [4]float64{1, 0, 0, 1}
	}
	return c.Matrix
}

// Note that decodeGlyph retains sub-slices of data.
func decodeGlyph(data []byte) (*Glyph, error) {
	if len(data) == 0 {
		return nil, nil
	} else if len(data) < 10 {
		return nil, errIncompleteGlyph
	}

	var glyphData interface{}
	numCont := int16(data[0])<<8 | int16(data[1])
	if numCont == 0 {
		return nil, nil
	} else if numCont > 0 {
		simple, err := decodeSimpleGlyph(int(numCont), data[10:])
		if err != nil {
			return nil, err
		}
		glyphData = *simple
	} else {
		comp, err := decodeGlyphComposite(data[10:])
		if err != nil {
			return nil, err
		}
		glyphData = *comp
	}

	g := &Glyph{
		Rect16: funit.Rect16{
			LLx: funit.Int16(data[2])<<8 | funit.Int16(data[3]),
			LLy: funit.Int16(data[4])<<8 | funit.Int16(data[5]),
			URx: funit.Int16(data[6])<<8 | funit.Int16(data[7]),
			URy: funit.Int16(data[8])<<8 | funit.Int16(data[9]),
		},
		Data: glyphData,
	}
	return g, nil
}

func decodeGlyphComposite(data []byte) (*CompositeGlyph, error) {
	var components []GlyphComponent
	done := false
	weHaveInstructions := false
	for !done {
		if len(data) < 4 {
			return nil, errIncompleteGlyph
		}

		flags := ComponentFlags(data[0])<<8 | ComponentFlags(data[1])
		glyphIndex := glyph.ID(data[2])<<8 | glyph.ID(data[3])
		data = data[4:]

		if flags&FlagWeHaveInstructions != 0 {
			weHaveInstructions = true
		}

		comp := GlyphComponent{
			Flags:      flags &^ encodingFlags,
			GlyphIndex: glyphIndex,
			Matrix:     [4]float64{1, 0, 0, 1},
		}

		if flags&FlagArg1And2AreWords != 0 {
			if len(data) < 4 {
				return nil, errIncompleteGlyph
			}
			a1 := uint16(data[0])<<8 | uint16(data[1])
			a2 := uint16(data[2])<<8 | uint16(data[3])
			if flags&FlagArgsAreXYValues != 0 {
				comp.Arg1, comp.Arg2 = int(int16(a1)), int(int16(a2))
			} else {
				comp.Arg1, comp.Arg2 = int(a1), int(a2)
			}
			data = data[4:]
		} else {
			if len(data) < 2 {
				return nil, errIncompleteGlyph
			}
			if flags&FlagArgsAreXYValues != 0 {
				comp.Arg1, comp.Arg2 = int(int8(data[0])), int(int8(data[1]))
			} else {
				comp.Arg1, comp.Arg2 = int(data[0]), int(data[1])
			}
			data = data[2:]
		}

		var numScale int
		switch {
		case flags&FlagWeHaveAScale != 0:
			numScale = 1
		case flags&FlagWeHaveAnXAndYScale != 0:
			numScale = 2
		case flags&FlagWeHaveATwoByTwo != 0:
			numScale = 4
		}
		if len(data) < 2*numScale {
			return nil, errIncompleteGlyph
		}
		var s [4]float64
		for i := 0; i < numScale; i++ {
			s[i] = float64(int16(data[2*i])<<8|int16(data[2*i+1])) / 16384
		}
		data = data[2*numScale:]
		switch numScale {
		case 1:
			comp.Matrix = [4]float64{s[0], 0, 0, s[0]}
		case 2:
			comp.Matrix = [4]float64{s[0], 0, 0, s[1]}
		case 4:
			comp.Matrix = s
		}

		components = append(components, comp)

		done = flags&FlagMoreComponents == 0
	}

	var instructions []byte
	if weHaveInstructions && len(data) >= 2 {
		L := int(data[0])<<8 | int(data[1])
		data = data[2:]
		if len(data) > L {
			data = data[:L]
		}
		instructions = data
	}

	res := &CompositeGlyph{
		Components:   components,
		Instructions: instructions,
	}
	return res, nil
}

func (g *Glyph) append(buf []byte) []byte {
	if g == nil {
		return buf
	}

	var numContours int16
	switch d := g.Data.(type) {
	case SimpleGlyph:
		if len(d.Contours) == 0 {
			return buf
		}
		numContours = int16(len(d.Contours))
	case CompositeGlyph:
		numContours = -1
	default:
		panic("unexpected glyph type")
	}

	buf = append(buf,
		byte(numContours>>8),
		byte(numContours),
		byte(g.LLx>>8),
		byte(g.LLx),
		byte(g.LLy>>8),
		byte(g.LLy),
		byte(g.URx>>8),
		byte(g.URx),
		byte(g.URy>>8),
		byte(g.URy))

	switch d := g.Data.(type) {
	case SimpleGlyph:
		buf = d.append(buf)
	case CompositeGlyph:
		buf = d.append(buf)
	}
	return buf
}

func (cg CompositeGlyph) append(buf []byte) []byte {
	for i, comp := range cg.Components {
		flags := comp.Flags &^ encodingFlags
		if i < len(cg.Components)-1 {
			flags |= FlagMoreComponents
		} else if len(cg.Instructions) > 0 {
			flags |= FlagWeHaveInstructions
		}

		if flags&FlagArgsAreXYValues != 0 {
			if comp.Arg1 < -128 || comp.Arg1 > 127 || comp.Arg2 < -128 || comp.Arg2 > 127 {
				flags |= FlagArg1And2AreWords
			}
		} else if comp.Arg1 > 255 || comp.Arg2 > 255 {
			flags |= FlagArg1And2AreWords
		}

		m := comp.Transform()
		var scale []float64
		switch {
		case m == [4]float64{1, 0, 0, 1}:
			// no scale
		case m[1] == 0 && m[2] == 0 && m[0] == m[3]:
			flags |= FlagWeHaveAScale
			scale = m[:1]
		case m[1] == 0 && m[2] == 0:
			flags |= FlagWeHaveAnXAndYScale
			scale = []float64{m[0], m[3]}
		default:
			flags |= FlagWeHaveATwoByTwo
			scale = m[:]
		}

		buf = append(buf,
			byte(flags>>8), byte(flags),
			byte(comp.GlyphIndex>>8), byte(comp.GlyphIndex))
		if flags&FlagArg1And2AreWords != 0 {
			buf = append(buf,
				byte(comp.Arg1>>8), byte(comp.Arg1),
				byte(comp.Arg2>>8), byte(comp.Arg2))
		} else {
			buf = append(buf, byte(comp.Arg1), byte(comp.Arg2))
		}
		for _, s := range scale {
			v := f2dot14(s)
			buf = append(buf, byte(v>>8), byte(v))
		}
	}
	if len(cg.Instructions) > 0 {
		L := len(cg.Instructions)
		buf = append(buf, byte(L>>8), byte(L))
		buf = append(buf, cg.Instructions...)
	}
	return buf
}

func f2dot14(x float64) int16 {
	v := math.Round(x * 16384)
	if v > math.MaxInt16 {
		v = math.MaxInt16
	} else if v < math.MinInt16 {
		v = math.MinInt16
	}
	return int16(v)
}

var errIncompleteGlyph = &fonterror.FormatError{
	SubSystem: "sfnt/glyf",
	Table:     "glyf",
	Reason:    "incomplete glyph",
}
