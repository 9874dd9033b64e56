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


package instancer

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/decompose"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
	"github.com/chiron-fonts/sub-fonts/sfnt/variation"
)

// instanceGlyphs applies the "gvar" deltas to all glyphs.
func instanceGlyphs(f *sfnt.Font, coords []float64, log logrus.FieldLogger) error {
	gvar := f.Gvar
	if gvar == nil {
		return nil
	}
	if gvar.AxisCount != len(coords) {
		return &fonterror.FormatError{
			SubSystem: "instancer",
			Table:     "gvar",
			Reason:    fmt.Sprintf("%d axes, but fvar has %d", gvar.AxisCount, len(coords)),
		}
	}

	// The left phantom point of composite glyphs is needed to compute the
	// left side bearing once the components have been moved.
	compositeLeft := make(map[glyph.ID]float64)

	changed := 0
	for i, g := range f.Glyphs {
		gid := glyph.ID(i)
		var err error
		var moved bool
		switch data := glyphData(g).(type) {
		case glyf.CompositeGlyph:
			compositeLeft[gid], moved, err = instanceComposite(f, gid, data, coords)
		default:
			moved, err = instanceSimple(f, gid, coords)
		}
		if err != nil {
			return err
		}
		if moved {
			changed++
			log.WithField("glyph", f.GlyphNames[gid]).Debug("applied glyph variations")
		}
	}

	for gid, left := range compositeLeft {
		bbox, err := decompose.BBox(f, gid)
		if err != nil {
			return err
		}
		f.Glyphs[gid].Rect16 = bbox
		f.Metrics.LSB[gid] = int16(float64(bbox.LLx) - round(left))
	}

	log.WithField("glyphs", changed).Info("applied glyph variations")
	return nil
}

func glyphData(g *glyf.Glyph) interface{} {
	if g == nil {
		return nil
	}
	return g.Data
}

// phantomPoints returns the four phantom points of a glyph.
func phantomPoints(bbox funit.Rect16, width uint16, lsb int16) []vec.Vec2 {
	left := float64(bbox.LLx) - float64(lsb)
	return []vec.Vec2{
		{X: left},
		{X: left + float64(width)},
		{},
		{},
	}
}

// setMetrics updates the advance width from the moved phantom points and
// returns the new x coordinate of the left phantom point.
func setMetrics(f *sfnt.Font, gid glyph.ID, phantom []vec.Vec2) float64 {
	left := phantom[0].X
	w := round(phantom[1].X - left)
	if w < 0 {
		w = 0
	} else if w > 0xFFFF {
		w = 0xFFFF
	}
	f.Metrics.Width[gid] = uint16(w)
	return left
}

func instanceSimple(f *sfnt.Font, gid glyph.ID, coords []float64) (bool, error) {
	if !f.Gvar.HasVariations(gid) {
		return false, nil
	}
	g := f.Glyphs[gid]

	var simple glyf.SimpleGlyph
	var bbox funit.Rect16
	if g != nil {
		simple = g.Data.(glyf.SimpleGlyph)
		bbox = g.Rect16
	}

	var orig []vec.Vec2
	var ends []int
	for _, c := range simple.Contours {
		for _, p := range c {
			orig = append(orig, vec.Vec2{X: float64(p.X), Y: float64(p.Y)})
		}
		ends = append(ends, len(orig)-1)
	}
	numPoints := len(orig)
	orig = append(orig, phantomPoints(bbox, f.Metrics.Width[gid], f.Metrics.LSB[gid])...)

	deltas, err := f.Gvar.Deltas(gid, coords, orig, ends)
	if err != nil {
		return false, err
	}
	moved := make([]vec.Vec2, len(orig))
	for i := range orig {
		moved[i] = orig[i].Add(deltas[i])
	}

	left := setMetrics(f, gid, moved[numPoints:])
	if g == nil {
		return true, nil
	}

	res := simple.Clone()
	k := 0
	for _, c := range res.Contours {
		for j := range c {
			c[j].X = funit.Int16(round(moved[k].X))
			c[j].Y = funit.Int16(round(moved[k].Y))
			k++
		}
	}
	bbox = res.BBox()
	f.Glyphs[gid] = &glyf.Glyph{Rect16: bbox, Data: res}
	f.Metrics.LSB[gid] = int16(float64(bbox.LLx) - round(left))
	return true, nil
}

// instanceComposite moves the component offsets and the phantom points of
// a composite glyph.  The x coordinate of the moved left phantom point is
// returned.
func instanceComposite(f *sfnt.Font, gid glyph.ID, cg glyf.CompositeGlyph, coords []float64) (float64, bool, error) {
	g := f.Glyphs[gid]
	phantom := phantomPoints(g.Rect16, f.Metrics.Width[gid], f.Metrics.LSB[gid])
	if !f.Gvar.HasVariations(gid) {
		return phantom[0].X, false, nil
	}

	orig := make([]vec.Vec2, 0, len(cg.Components)+variation.NumPhantomPoints)
	for _, comp := range cg.Components {
		var p vec.Vec2
		if comp.Flags&glyf.FlagArgsAreXYValues != 0 {
			p = vec.Vec2{X: float64(comp.Arg1), Y: float64(comp.Arg2)}
		}
		orig = append(orig, p)
	}
	numPoints := len(orig)
	orig = append(orig, phantom...)

	deltas, err := f.Gvar.Deltas(gid, coords, orig, nil)
	if err != nil {
		return 0, false, err
	}

	comps := make([]glyf.GlyphComponent, len(cg.Components))
	copy(comps, cg.Components)
	for i := range comps {
		if comps[i].Flags&glyf.FlagArgsAreXYValues == 0 {
			continue
		}
		comps[i].Arg1 = int(round(orig[i].X + deltas[i].X))
		comps[i].Arg2 = int(round(orig[i].Y + deltas[i].Y))
	}
	f.Glyphs[gid] = &glyf.Glyph{
		Rect16: g.Rect16,
		Data:   glyf.CompositeGlyph{Components: comps, Instructions: cg.Instructions},
	}

	moved := make([]vec.Vec2, variation.NumPhantomPoints)
	for i := range moved {
		moved[i] = orig[numPoints+i].Add(deltas[numPoints+i])
	}
	return setMetrics(f, gid, moved), true, nil
}
