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

package merge

import (
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/decompose"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
)

// Punctuation tiers.
const (
	PunctuationNone  = 0
	PunctuationBasic = 1 // exclamation and question mark
	PunctuationFull  = 2 // also comma, colon and semicolon
)

type punctuation struct {
	code     rune
	name     string // donor glyph name
	centered bool   // align bounding box centers
}

var punctuationTiers = [][]punctuation{
	PunctuationBasic: {
		{code: 0xFF01, name: "exclam"},
		{code: 0xFF1F, name: "question"},
	},
	PunctuationFull: {
		{code: 0xFF0C, name: "comma", centered: true},
		{code: 0xFF1A, name: "colon", centered: true},
		{code: 0xFF1B, name: "semicolon", centered: true},
	},
}

// punctuationFor returns the replacements for the given tier, ordered by
// code point.
func punctuationFor(tier int) []punctuation {
	var res []punctuation
	for t := 1; t <= tier && t < len(punctuationTiers); t++ {
		res = append(res, punctuationTiers[t]...)
	}
	slices.SortFunc(res, func(a, b punctuation) int { return int(a.code - b.code) })
	return res
}

// checkPunctuation verifies that the donor has a glyph for every mark of
// the given tier.
func checkPunctuation(donor *sfnt.Font, tier int) error {
	marks := punctuationFor(tier)
	if len(marks) == 0 {
		return nil
	}
	donorIndex := donor.GlyphIndex()
	for _, m := range marks {
		if _, ok := donorIndex[m.name]; !ok {
			return &fonterror.NotFoundError{
				SubSystem: "merge",
				What:      fmt.Sprintf("donor glyph %q", m.name),
			}
		}
	}
	return nil
}

// replacePunctuation draws donor punctuation into the full-width
// punctuation glyphs of the primary font.  The advance widths of the
// primary glyphs are kept.
func replacePunctuation(primary, donor *sfnt.Font, tier int, log logrus.FieldLogger) (int, error) {
	marks := punctuationFor(tier)
	if len(marks) == 0 {
		return 0, nil
	}
	cmap, err := primary.Unicode()
	if err != nil {
		return 0, err
	}
	donorIndex := donor.GlyphIndex()

	count := 0
	for _, m := range marks {
		src, ok := donorIndex[m.name]
		if !ok {
			return count, &fonterror.NotFoundError{
				SubSystem: "merge",
				What:      fmt.Sprintf("donor glyph %q", m.name),
			}
		}
		dst, ok := cmap[m.code]
		if !ok {
			log.WithField("codepoint", fmt.Sprintf("U+%04X", m.code)).Debug("code point not mapped, skipping")
			continue
		}

		outline, err := decompose.Outline(donor, src)
		if err != nil {
			return count, err
		}

		var dx, dy float64
		if m.centered {
			dx, dy, err = centerShift(primary, dst, donor, src)
			if err != nil {
				return count, err
			}
		} else {
			width := int(primary.Metrics.Width[dst])
			donorWidth := int(donor.Metrics.Width[src])
			dx = float64(floorDiv(width-donorWidth, 2) - int(donor.Metrics.LSB[src]))
		}

		moved := translate(outline, matrix.Translate(dx, dy))
		if len(moved.Contours) == 0 {
			primary.Glyphs[dst] = nil
			primary.Metrics.LSB[dst] = 0
		} else {
			bbox := moved.BBox()
			primary.Glyphs[dst] = &glyf.Glyph{Rect16: bbox, Data: moved}
			primary.Metrics.LSB[dst] = int16(bbox.LLx)
		}
		count++
		log.WithFields(logrus.Fields{
			"codepoint": fmt.Sprintf("U+%04X", m.code),
			"glyph":     primary.GlyphNames[dst],
			"donor":     m.name,
			"dx":        dx,
			"dy":        dy,
		}).Debug("replaced punctuation")
	}
	log.WithField("glyphs", count).Info("replaced punctuation")
	return count, nil
}

// centerShift returns the translation which moves the bounding box center
// of the donor glyph onto the bounding box center of the primary glyph.
// An empty primary glyph is treated as a point at half the advance width
// on the baseline.
func centerShift(primary *sfnt.Font, dst glyph.ID, donor *sfnt.Font, src glyph.ID) (float64, float64, error) {
	target, err := floatBBox(primary, dst)
	if err != nil {
		return 0, 0, err
	}
	if target == nil {
		w := float64(primary.Metrics.Width[dst]) / 2
		target = &rect.Rect{LLx: w, URx: w}
	}
	source, err := floatBBox(donor, src)
	if err != nil {
		return 0, 0, err
	}
	if source == nil {
		return 0, 0, nil
	}
	dx := (target.LLx+target.URx)/2 - (source.LLx+source.URx)/2
	dy := (target.LLy+target.URy)/2 - (source.LLy+source.URy)/2
	return dx, dy, nil
}

func floatBBox(f *sfnt.Font, gid glyph.ID) (*rect.Rect, error) {
	out, err := decompose.Outline(f, gid)
	if err != nil {
		return nil, err
	}
	if len(out.Contours) == 0 {
		return nil, nil
	}
	b := out.BBox()
	return &rect.Rect{
		LLx: float64(b.LLx),
		LLy: float64(b.LLy),
		URx: float64(b.URx),
		URy: float64(b.URy),
	}, nil
}

func translate(g glyf.SimpleGlyph, M matrix.Matrix) glyf.SimpleGlyph {
	res := g.Clone()
	res.Instructions = nil
	for _, c := range res.Contours {
		for i, p := range c {
			x, y := M.Apply(float64(p.X), float64(p.Y))
			c[i].X = funit.Int16(math.Floor(x + 0.5))
			c[i].Y = funit.Int16(math.Floor(y + 0.5))
		}
	}
	return res
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
