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


// Package transform applies affine transformations to glyph outlines.
//
// A transformation is given by the coefficients (xx, xy, yx, yy, dx, dy)
// of a [matrix.Matrix], and maps a point (x, y) to
//
//	x' = xx·x + yx·y + dx
//	y' = xy·x + yy·y + dy
package transform

import (
	"math"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gtab"
)

// FullWidth is the advance width of the glyphs which are transformed in
// full-width-preserving mode.
const FullWidth = 1000

// Options control the transformation of a font.
type Options struct {
	Matrix matrix.Matrix

	// If FullWidthOnly is set, only glyphs with an advance width of
	// exactly FullWidth are transformed, and glyph bounds, metrics and
	// GPOS data are left unchanged.
	FullWidthOnly bool

	Log logrus.FieldLogger
}

// Apply transforms the outlines of all glyphs in f.  Composite glyphs which
// are to be transformed must be decomposed first.  If opts is nil, the
// identity transformation is used.
//
// Unless opts.FullWidthOnly is set, advance widths and left side bearings
// are scaled by xx, and the GPOS data is transformed by [GPOS].
func Apply(f *sfnt.Font, opts *Options) error {
	if opts == nil {
		opts = &Options{Matrix: matrix.Identity}
	}
	log := logging.OrDiscard(opts.Log)
	M := opts.Matrix

	for i := range f.Glyphs {
		if opts.FullWidthOnly && f.Metrics.Width[i] != FullWidth {
			continue
		}
		if f.Glyphs.IsComposite(i) {
			return &fonterror.FormatError{
				SubSystem: "transform",
				Table:     "glyf",
				Glyph:     f.GlyphNames[i],
				Reason:    "composite glyph must be decomposed before transforming",
			}
		}
	}

	count := 0
	for i, g := range f.Glyphs {
		if opts.FullWidthOnly {
			if f.Metrics.Width[i] != FullWidth || g == nil {
				continue
			}
			simple := transformOutline(g.Data.(glyf.SimpleGlyph), M)
			f.Glyphs[i] = &glyf.Glyph{Rect16: g.Rect16, Data: simple}
			count++
			continue
		}

		if g != nil {
			simple := transformOutline(g.Data.(glyf.SimpleGlyph), M)
			f.Glyphs[i] = &glyf.Glyph{Rect16: simple.BBox(), Data: simple}
		}
		f.Metrics.Width[i] = uint16(max(0, roundEven(float64(f.Metrics.Width[i])*M[0])))
		f.Metrics.LSB[i] = int16(roundEven(float64(f.Metrics.LSB[i]) * M[0]))
		count++
	}
	log.WithFields(logrus.Fields{
		"glyphs":    count,
		"fullwidth": opts.FullWidthOnly,
	}).Info("transformed glyphs")

	if !opts.FullWidthOnly {
		if M[1] != 0 || M[2] != 0 {
			log.WithFields(logrus.Fields{"xy": M[1], "yx": M[2]}).
				Warn("skew is not applied to metrics and GPOS")
		}
		n := GPOS(f, M)
		if n > 0 {
			log.WithFields(logrus.Fields{"table": "GPOS", "records": n}).Debug("transformed positioning data")
		}
	}
	return nil
}

func transformOutline(g glyf.SimpleGlyph, M matrix.Matrix) glyf.SimpleGlyph {
	res := g.Clone()
	for _, c := range res.Contours {
		for k, p := range c {
			x, y := M.Apply(float64(p.X), float64(p.Y))
			c[k].X = funit.Int16(math.Floor(x + 0.5))
			c[k].Y = funit.Int16(math.Floor(y + 0.5))
		}
	}
	return res
}

// GPOS transforms the value records and anchors of the positioning lookups
// of types 1 to 6.  Placements and anchors are scaled and translated,
// advances are scaled.  Only fields which are present in the value format
// are changed, and the skew coefficients are ignored.  Contextual lookups
// are left unchanged.  The number of changed records is returned.
func GPOS(f *sfnt.Font, M matrix.Matrix) int {
	if f.GPOS == nil {
		return 0
	}
	xx, yy, dx, dy := M[0], M[3], M[4], M[5]

	seenValues := make(map[*gtab.ValueRecord]bool)
	seenAnchors := make(map[*anchor.Table]bool)
	count := 0
	f.GPOS.LookupList.VisitPositions(
		func(vr *gtab.ValueRecord, format gtab.ValueFormat) {
			if seenValues[vr] {
				return
			}
			seenValues[vr] = true
			if format&gtab.ValueXPlacement != 0 {
				vr.XPlacement = scale(vr.XPlacement, xx, dx)
			}
			if format&gtab.ValueYPlacement != 0 {
				vr.YPlacement = scale(vr.YPlacement, yy, dy)
			}
			if format&gtab.ValueXAdvance != 0 {
				vr.XAdvance = scale(vr.XAdvance, xx, 0)
			}
			if format&gtab.ValueYAdvance != 0 {
				vr.YAdvance = scale(vr.YAdvance, yy, 0)
			}
			count++
		},
		func(a *anchor.Table) {
			if seenAnchors[a] {
				return
			}
			seenAnchors[a] = true
			a.X = scale(a.X, xx, dx)
			a.Y = scale(a.Y, yy, dy)
			count++
		})
	return count
}

func scale(v funit.Int16, s, d float64) funit.Int16 {
	return funit.Int16(roundEven(float64(v)*s + d))
}

func roundEven(x float64) float64 {
	return math.RoundToEven(x)
}
