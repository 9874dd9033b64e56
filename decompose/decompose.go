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


// Package decompose replaces composite glyphs by simple glyphs.
//
// Every component reference is replaced by the contours of the referenced
// glyph, transformed by the component matrix and offset.  Nested
// composites are resolved recursively.  Advance widths and left side
// bearings are not changed.
package decompose

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
)

// Decompose replaces all composite glyphs of f by simple glyphs.  The
// number of decomposed glyphs is returned.  Calling Decompose on a font
// without composite glyphs has no effect.
func Decompose(f *sfnt.Font, log logrus.FieldLogger) (int, error) {
	log = logging.OrDiscard(log)

	r := newResolver(f)
	var composites []glyph.ID
	for i := range f.Glyphs {
		if f.Glyphs.IsComposite(i) {
			composites = append(composites, glyph.ID(i))
		}
	}

	// resolve all outlines before modifying the font
	outlines := make([]glyf.SimpleGlyph, len(composites))
	for k, gid := range composites {
		var err error
		outlines[k], err = r.outline(gid)
		if err != nil {
			return 0, err
		}
	}

	for k, gid := range composites {
		out := outlines[k]
		if len(out.Contours) == 0 {
			f.Glyphs[gid] = nil
		} else {
			f.Glyphs[gid] = &glyf.Glyph{Rect16: out.BBox(), Data: out}
		}
		log.WithFields(logrus.Fields{
			"glyph":    f.GlyphNames[gid],
			"contours": len(out.Contours),
		}).Debug("decomposed")
	}
	log.WithField("glyphs", len(composites)).Info("decomposition done")
	return len(composites), nil
}

// Outline returns the outline of glyph gid with all component references
// resolved.  Empty glyphs give an outline without contours.
func Outline(f *sfnt.Font, gid glyph.ID) (glyf.SimpleGlyph, error) {
	return newResolver(f).outline(gid)
}

// BBox returns the bounding box of glyph gid with all component
// references resolved.
func BBox(f *sfnt.Font, gid glyph.ID) (funit.Rect16, error) {
	out, err := Outline(f, gid)
	if err != nil {
		return funit.Rect16{}, err
	}
	return out.BBox(), nil
}

type resolver struct {
	f      *sfnt.Font
	done   map[glyph.ID]glyf.SimpleGlyph
	active map[glyph.ID]bool
}

func newResolver(f *sfnt.Font) *resolver {
	return &resolver{
		f:      f,
		done:   make(map[glyph.ID]glyf.SimpleGlyph),
		active: make(map[glyph.ID]bool),
	}
}

func (r *resolver) outline(gid glyph.ID) (glyf.SimpleGlyph, error) {
	if int(gid) >= len(r.f.Glyphs) {
		return glyf.SimpleGlyph{}, &fonterror.FormatError{
			SubSystem: "decompose",
			Table:     "glyf",
			Reason:    fmt.Sprintf("component references missing glyph %d", gid),
		}
	}
	if res, ok := r.done[gid]; ok {
		return res, nil
	}
	if r.active[gid] {
		return glyf.SimpleGlyph{}, &fonterror.FormatError{
			SubSystem: "decompose",
			Table:     "glyf",
			Glyph:     r.f.GlyphNames[gid],
			Reason:    "cyclic component reference",
		}
	}

	var res glyf.SimpleGlyph
	var data interface{}
	if g := r.f.Glyphs[gid]; g != nil {
		data = g.Data
	}
	switch data := data.(type) {
	case glyf.SimpleGlyph:
		res = data
	case glyf.CompositeGlyph:
		r.active[gid] = true
		var err error
		res, err = r.composite(gid, data)
		delete(r.active, gid)
		if err != nil {
			return glyf.SimpleGlyph{}, err
		}
	}
	r.done[gid] = res
	return res, nil
}

func (r *resolver) composite(gid glyph.ID, cg glyf.CompositeGlyph) (glyf.SimpleGlyph, error) {
	var res glyf.SimpleGlyph
	var placed []glyf.Point
	for i := range cg.Components {
		comp := &cg.Components[i]
		child, err := r.outline(comp.GlyphIndex)
		if err != nil {
			return glyf.SimpleGlyph{}, err
		}

		m := comp.Transform()
		M := matrix.Matrix{m[0], m[1], m[2], m[3], 0, 0}
		var dx, dy float64
		if comp.Flags&glyf.FlagArgsAreXYValues != 0 {
			dx, dy = float64(comp.Arg1), float64(comp.Arg2)
			if comp.Flags&glyf.FlagScaledComponentOffset != 0 &&
				comp.Flags&glyf.FlagUnscaledComponentOffset == 0 {
				dx, dy = M.Apply(dx, dy)
			}
		} else {
			// point matching: align point Arg2 of the child with point
			// Arg1 of the glyph so far
			var childPoints []glyf.Point
			for _, c := range child.Contours {
				childPoints = append(childPoints, c...)
			}
			if comp.Arg1 >= len(placed) || comp.Arg2 >= len(childPoints) {
				return glyf.SimpleGlyph{}, &fonterror.FormatError{
					SubSystem: "decompose",
					Table:     "glyf",
					Glyph:     r.f.GlyphNames[gid],
					Reason:    fmt.Sprintf("invalid anchor points %d, %d", comp.Arg1, comp.Arg2),
				}
			}
			parent := placed[comp.Arg1]
			cx, cy := M.Apply(float64(childPoints[comp.Arg2].X), float64(childPoints[comp.Arg2].Y))
			dx = float64(parent.X) - cx
			dy = float64(parent.Y) - cy
		}
		M[4], M[5] = dx, dy

		for _, c := range child.Contours {
			out := make(glyf.Contour, len(c))
			for k, p := range c {
				x, y := M.Apply(float64(p.X), float64(p.Y))
				out[k] = glyf.Point{X: round(x), Y: round(y), OnCurve: p.OnCurve}
			}
			res.Contours = append(res.Contours, out)
			placed = append(placed, out...)
		}
		if child.Overlap || comp.Flags&glyf.FlagOverlapCompound != 0 {
			res.Overlap = true
		}
	}
	return res, nil
}

func round(x float64) funit.Int16 {
	return funit.Int16(math.Floor(x + 0.5))
}
