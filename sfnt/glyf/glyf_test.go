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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/header"
)

func goRegularGlyf(t testing.TB) (*Encoded, int) {
	t.Helper()
	_, tables, err := header.ReadTables(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	numGlyphs := int(tables["maxp"][4])<<8 | int(tables["maxp"][5])
	head := tables["head"]
	enc := &Encoded{
		GlyfData:   tables["glyf"],
		LocaData:   tables["loca"],
		LocaFormat: int16(head[50])<<8 | int16(head[51]),
	}
	return enc, numGlyphs
}

func TestGoRegularRoundTrip(t *testing.T) {
	enc, numGlyphs := goRegularGlyf(t)
	gg, err := Decode(enc, numGlyphs)
	if err != nil {
		t.Fatal(err)
	}

	gg2, err := Decode(gg.Encode(), numGlyphs)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gg, gg2, cmpopts.EquateEmpty()); d != "" {
		t.Error(d)
	}
}

// TestGoRegularComposites adds composite glyphs which refer to the outlines
// of Go Regular and checks that the combined glyph table survives a round
// trip.  Go Regular itself only contains simple glyphs.
func TestGoRegularComposites(t *testing.T) {
	enc, numGlyphs := goRegularGlyf(t)
	gg, err := Decode(enc, numGlyphs)
	if err != nil {
		t.Fatal(err)
	}

	var simple []glyph.ID
	for i, g := range gg {
		if g != nil && !gg.IsComposite(i) {
			simple = append(simple, glyph.ID(i))
		}
		if len(simple) == 3 {
			break
		}
	}
	if len(simple) < 3 {
		t.Fatal("not enough simple glyphs")
	}

	base := gg[simple[0]].Rect16
	composites := []CompositeGlyph{
		{ // base glyph with a raised accent
			Components: []GlyphComponent{
				{Flags: FlagArgsAreXYValues | FlagUseMyMetrics, GlyphIndex: simple[0], Matrix: [4]float64{1, 0, 0, 1}},
				{Flags: FlagArgsAreXYValues | FlagRoundXYToGrid, GlyphIndex: simple[1], Arg1: 60, Arg2: 1200, Matrix: [4]float64{1, 0, 0, 1}},
			},
		},
		{ // scaled and mirrored copies
			Components: []GlyphComponent{
				{Flags: FlagArgsAreXYValues, GlyphIndex: simple[2], Arg1: -5, Arg2: 7, Matrix: [4]float64{0.5, 0, 0, 0.5}},
				{Flags: FlagArgsAreXYValues | FlagOverlapCompound, GlyphIndex: simple[2], Arg1: 300, Matrix: [4]float64{-1, 0, 0, 1}},
			},
			Instructions: []byte{0xB0, 0x01},
		},
		{ // point matching
			Components: []GlyphComponent{
				{Flags: FlagArgsAreXYValues, GlyphIndex: simple[0], Matrix: [4]float64{1, 0, 0, 1}},
				{GlyphIndex: simple[1], Arg1: 2, Arg2: 0, Matrix: [4]float64{1, 0, 0, 1}},
			},
		},
	}
	for _, cg := range composites {
		gg = append(gg, &Glyph{Rect16: base, Data: cg})
	}
	n := len(gg)

	gg2, err := Decode(gg.Encode(), n)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gg, gg2, cmpopts.EquateEmpty()); d != "" {
		t.Error(d)
	}
	for i := numGlyphs; i < n; i++ {
		if !gg2.IsComposite(i) {
			t.Errorf("glyph %d is not composite after round trip", i)
		}
	}
}

func TestSimpleGlyph(t *testing.T) {
	simple := SimpleGlyph{
		Contours: []Contour{
			{{0, 0, true}, {0, 700, true}, {500, 700, true}, {500, 0, true}},
			{{100, 100, true}, {400, 100, true}, {250, 650, false}},
			{{-300, 20000, true}, {-300, 20001, true}, {1000, -20000, false}},
		},
		Overlap: true,
	}
	bbox := simple.BBox()
	expected := funit.Rect16{LLx: -300, LLy: -20000, URx: 1000, URy: 20001}
	if bbox != expected {
		t.Errorf("wrong bbox: %v != %v", bbox, expected)
	}
	if n := simple.NumPoints(); n != 10 {
		t.Errorf("wrong number of points: %d", n)
	}

	gg := Glyphs{nil, {Rect16: bbox, Data: simple}, nil}
	enc := gg.Encode()
	gg2, err := Decode(enc, 3)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gg, gg2, cmpopts.EquateEmpty()); d != "" {
		t.Error(d)
	}
}

func TestCompositeGlyph(t *testing.T) {
	comp := CompositeGlyph{
		Components: []GlyphComponent{
			{
				Flags:      FlagArgsAreXYValues | FlagUseMyMetrics,
				GlyphIndex: 1,
				Arg1:       -10,
				Arg2:       300,
				Matrix:     [4]float64{1, 0, 0, 1},
			},
			{
				Flags:      FlagArgsAreXYValues | FlagScaledComponentOffset,
				GlyphIndex: 2,
				Arg1:       5,
				Arg2:       6,
				Matrix:     [4]float64{0.5, 0, 0, 0.5},
			},
			{
				Flags:      FlagArgsAreXYValues,
				GlyphIndex: 2,
				Matrix:     [4]float64{1, 0, 0, -1},
			},
			{
				GlyphIndex: 1,
				Arg1:       3,
				Arg2:       700,
				Matrix:     [4]float64{0, 1, -1, 0.25},
			},
		},
		Instructions: []byte{1, 2, 3},
	}
	square := SimpleGlyph{
		Contours: []Contour{{{0, 0, true}, {0, 10, true}, {10, 10, true}, {10, 0, true}}},
	}
	gg := Glyphs{
		nil,
		{Rect16: square.BBox(), Data: square},
		{Rect16: square.BBox(), Data: square.Clone()},
		{Rect16: funit.Rect16{LLx: -10, LLy: 0, URx: 20, URy: 310}, Data: comp},
	}
	gg2, err := Decode(gg.Encode(), len(gg))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gg, gg2, cmpopts.EquateEmpty()); d != "" {
		t.Error(d)
	}

	if !gg2.IsComposite(3) || gg2.IsComposite(1) || gg2.IsComposite(0) {
		t.Error("IsComposite is wrong")
	}

	stats := gg.Stats()
	if stats.MaxComponentElements != 4 || stats.MaxCompositePoints != 16 ||
		stats.MaxCompositeContours != 4 || stats.MaxComponentDepth != 1 {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestLocaFormat(t *testing.T) {
	big := SimpleGlyph{}
	for i := 0; i < 10000; i++ {
		x := funit.Int16(i % 2 * 1000)
		big.Contours = append(big.Contours, Contour{
			{x, 0, true}, {x + 300, 300, false}, {x, 600, true},
		})
	}
	gg := Glyphs{{Rect16: big.BBox(), Data: big}, {Rect16: big.BBox(), Data: big}}
	enc := gg.Encode()
	if enc.LocaFormat != 1 {
		t.Errorf("expected long loca format, got %d", enc.LocaFormat)
	}

	small := Glyphs{nil, nil}
	if enc := small.Encode(); enc.LocaFormat != 0 || len(enc.LocaData) != 6 {
		t.Errorf("unexpected short loca: %v", enc)
	}
}

func TestTruncated(t *testing.T) {
	enc, numGlyphs := goRegularGlyf(t)
	short := &Encoded{
		GlyfData:   enc.GlyfData[:len(enc.GlyfData)/2],
		LocaData:   enc.LocaData,
		LocaFormat: enc.LocaFormat,
	}
	_, err := Decode(short, numGlyphs)
	if !fonterror.IsFormat(err) {
		t.Errorf("expected FormatError, got %v", err)
	}
}

func FuzzGlyf(f *testing.F) {
	enc, numGlyphs := goRegularGlyf(f)
	f.Add(enc.GlyfData, enc.LocaData, enc.LocaFormat, numGlyphs)

	one := Glyphs{{Data: SimpleGlyph{Contours: []Contour{{{1, 2, true}, {3, 4, false}}}}}}
	enc = one.Encode()
	f.Add(enc.GlyfData, enc.LocaData, enc.LocaFormat, 1)

	f.Fuzz(func(t *testing.T, glyfData, locaData []byte, locaFormat int16, numGlyphs int) {
		if numGlyphs < 0 || numGlyphs > 1000 {
			return
		}
		enc := &Encoded{
			GlyfData:   glyfData,
			LocaData:   locaData,
			LocaFormat: locaFormat,
		}
		gg, err := Decode(enc, numGlyphs)
		if err != nil {
			return
		}

		gg2, err := Decode(gg.Encode(), numGlyphs)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(gg, gg2, cmpopts.EquateEmpty()); d != "" {
			t.Error(d)
		}
	})
}
