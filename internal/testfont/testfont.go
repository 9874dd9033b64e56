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


// Package testfont builds small TrueType fonts for unit tests.
//
// All fonts use 1000 units per em, an ascent of 800 and a descent of
// -200.  The character map has a format 4 and a format 12 subtable.
package testfont

import (
	"time"

	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/cmap"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
	"github.com/chiron-fonts/sub-fonts/sfnt/head"
	"github.com/chiron-fonts/sub-fonts/sfnt/header"
	"github.com/chiron-fonts/sub-fonts/sfnt/hmtx"
	"github.com/chiron-fonts/sub-fonts/sfnt/maxp"
	"github.com/chiron-fonts/sub-fonts/sfnt/name"
	"github.com/chiron-fonts/sub-fonts/sfnt/os2"
	"github.com/chiron-fonts/sub-fonts/sfnt/post"
)

// Standard vertical metrics of the test fonts.
const (
	UnitsPerEm = 1000
	Ascent     = 800
	Descent    = -200
)

// Glyph describes one glyph of a test font.
type Glyph struct {
	Name  string
	Rune  rune // 0 for glyphs without a character map entry
	Width uint16

	// LSB is used for glyphs without outline.  For other glyphs, the left
	// side bearing is the minimum x coordinate.
	LSB int16

	Contours   []glyf.Contour
	Components []glyf.GlyphComponent
}

// Notdef returns an empty ".notdef" glyph.
func Notdef() Glyph {
	return Glyph{Name: ".notdef", Width: 500}
}

// Rect returns a glyph consisting of a single rectangle, drawn clockwise.
func Rect(name string, r rune, width uint16, x0, y0, x1, y1 funit.Int16) Glyph {
	return Glyph{
		Name:  name,
		Rune:  r,
		Width: width,
		Contours: []glyf.Contour{
			{
				{X: x0, Y: y0, OnCurve: true},
				{X: x0, Y: y1, OnCurve: true},
				{X: x1, Y: y1, OnCurve: true},
				{X: x1, Y: y0, OnCurve: true},
			},
		},
	}
}

// Composite returns a composite glyph which places the given glyphs at
// the given offsets.
func Composite(name string, r rune, width uint16, parts ...Part) Glyph {
	g := Glyph{Name: name, Rune: r, Width: width}
	for _, part := range parts {
		g.Components = append(g.Components, glyf.GlyphComponent{
			Flags:      glyf.FlagArgsAreXYValues | glyf.FlagRoundXYToGrid,
			GlyphIndex: part.GID,
			Arg1:       part.DX,
			Arg2:       part.DY,
		})
	}
	return g
}

// Part is a component reference for Composite.
type Part struct {
	GID    glyph.ID
	DX, DY int
}

// Make builds a font from the given glyphs.  The first glyph should be
// ".notdef".
func Make(family string, glyphs ...Glyph) *sfnt.Font {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &sfnt.Font{
		ScalerType: header.ScalerTypeTrueType,
		Head: &head.Info{
			FontRevision: 0x00010000,
			UnitsPerEm:   UnitsPerEm,
			Created:      ts,
			Modified:     ts,
		},
		Maxp: &maxp.Info{TTF: &maxp.TTFInfo{MaxZones: 2}},
		Metrics: &hmtx.Info{
			Ascent:         Ascent,
			Descent:        Descent,
			CaretSlopeRise: 1,
		},
		OS2: &os2.Info{
			Version:        4,
			WeightClass:    400,
			WidthClass:     5,
			HasTypoMetrics: true,
			TypoAscender:   Ascent,
			TypoDescender:  Descent,
			WinAscent:      Ascent,
			WinDescent:     -Descent,
		},
		Post:             &post.Info{UnderlinePosition: -100, UnderlineThickness: 50},
		Name:             &name.Table{},
		Raw:              map[string][]byte{},
		MergedNamespaces: map[string]bool{},
	}
	f.Name.Set(name.Family, family)
	f.Name.Set(name.Subfamily, "Regular")
	f.Name.Set(name.FullName, family+" Regular")
	f.Name.Set(name.Version, "Version 1.000")
	f.Name.Set(name.PostScriptName, family+"-Regular")

	bmp := cmap.Format4{}
	full := cmap.Format12{}
	for i, g := range glyphs {
		gid := glyph.ID(i)
		var out *glyf.Glyph
		lsb := g.LSB
		switch {
		case g.Contours != nil:
			simple := glyf.SimpleGlyph{Contours: g.Contours}
			out = &glyf.Glyph{Rect16: simple.BBox(), Data: simple}
			lsb = int16(out.LLx)
		case g.Components != nil:
			comp := glyf.CompositeGlyph{Components: g.Components}
			out = &glyf.Glyph{Rect16: compositeBBox(glyphs, g.Components), Data: comp}
			lsb = int16(out.LLx)
		}
		f.AppendGlyph(g.Name, out, g.Width, lsb)

		if g.Rune != 0 {
			if g.Rune <= 0xFFFF {
				bmp[uint16(g.Rune)] = gid
			}
			full[uint32(g.Rune)] = gid
		}
	}

	bmpData, err := bmp.Encode(0)
	if err != nil {
		panic(err)
	}
	f.CMap = cmap.Table{
		{PlatformID: 3, EncodingID: 1}:  bmpData,
		{PlatformID: 3, EncodingID: 10}: full.Encode(0),
	}
	return f
}

// compositeBBox computes the bounding box of a composite glyph whose
// components are simple glyphs placed by offsets.
func compositeBBox(glyphs []Glyph, comps []glyf.GlyphComponent) funit.Rect16 {
	var res funit.Rect16
	first := true
	for _, c := range comps {
		g := glyphs[c.GlyphIndex]
		if g.Contours == nil {
			continue
		}
		bbox := glyf.SimpleGlyph{Contours: g.Contours}.BBox()
		bbox.LLx += funit.Int16(c.Arg1)
		bbox.URx += funit.Int16(c.Arg1)
		bbox.LLy += funit.Int16(c.Arg2)
		bbox.URy += funit.Int16(c.Arg2)
		if first {
			res = bbox
			first = false
			continue
		}
		res.LLx = min(res.LLx, bbox.LLx)
		res.LLy = min(res.LLy, bbox.LLy)
		res.URx = max(res.URx, bbox.URx)
		res.URy = max(res.URy, bbox.URy)
	}
	return res
}
