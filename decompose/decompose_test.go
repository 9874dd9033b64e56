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


package decompose

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/internal/testfont"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
)

func makeFont() *sfnt.Font {
	return testfont.Make("Test",
		testfont.Notdef(),
		testfont.Rect("bar", 'l', 300, 100, 0, 200, 700),
		testfont.Rect("dot", '.', 300, 100, 0, 200, 100),
		testfont.Composite("bars", 'H', 700,
			testfont.Part{GID: 1},
			testfont.Part{GID: 1, DX: 300}),
		testfont.Composite("nested", 'N', 900,
			testfont.Part{GID: 3},
			testfont.Part{GID: 2, DY: 800}),
	)
}

func TestDecompose(t *testing.T) {
	f := makeFont()
	widths := append([]uint16(nil), f.Metrics.Width...)
	lsbs := append([]int16(nil), f.Metrics.LSB...)

	n, err := Decompose(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("%d glyphs decomposed", n)
	}
	for i := range f.Glyphs {
		if f.Glyphs.IsComposite(i) {
			t.Errorf("glyph %d is still composite", i)
		}
	}
	if d := cmp.Diff(widths, f.Metrics.Width); d != "" {
		t.Errorf("widths changed (-want +got):\n%s", d)
	}
	if d := cmp.Diff(lsbs, f.Metrics.LSB); d != "" {
		t.Errorf("lsb changed (-want +got):\n%s", d)
	}

	nested := f.Glyphs[4].Data.(glyf.SimpleGlyph)
	if len(nested.Contours) != 3 {
		t.Fatalf("expected 3 contours, got %d", len(nested.Contours))
	}
	want := funit.Rect16{LLx: 100, LLy: 0, URx: 500, URy: 900}
	if f.Glyphs[4].Rect16 != want {
		t.Errorf("wrong bbox %v", f.Glyphs[4].Rect16)
	}

	// a second run has nothing to do
	n, err = Decompose(f, nil)
	if err != nil || n != 0 {
		t.Errorf("second run: %d, %v", n, err)
	}
}

func TestTransformedComponent(t *testing.T) {
	f := makeFont()
	cg := f.Glyphs[3].Data.(glyf.CompositeGlyph)
	cg.Components[1].Matrix = [4]float64{2, 0, 0, 0.5}
	cg.Components[1].Arg1 = 1000
	f.Glyphs[3].Data = cg

	out, err := Outline(f, 3)
	if err != nil {
		t.Fatal(err)
	}
	got := glyf.SimpleGlyph{Contours: out.Contours[1:2]}.BBox()
	want := funit.Rect16{LLx: 1200, LLy: 0, URx: 1400, URy: 350}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPointMatching(t *testing.T) {
	f := makeFont()
	cg := f.Glyphs[3].Data.(glyf.CompositeGlyph)
	// attach point 0 of the second bar to point 2 of the first one
	cg.Components[1].Flags &^= glyf.FlagArgsAreXYValues
	cg.Components[1].Arg1 = 2
	cg.Components[1].Arg2 = 0
	f.Glyphs[3].Data = cg

	out, err := Outline(f, 3)
	if err != nil {
		t.Fatal(err)
	}
	p := out.Contours[1][0]
	if p.X != 200 || p.Y != 700 {
		t.Errorf("point matched to (%d, %d)", p.X, p.Y)
	}
}

func TestErrors(t *testing.T) {
	f := makeFont()
	cg := f.Glyphs[3].Data.(glyf.CompositeGlyph)
	cg.Components[0].GlyphIndex = 4
	f.Glyphs[3].Data = cg
	_, err := Decompose(f, nil)
	if !fonterror.IsFormat(err) {
		t.Errorf("cycle: got %v", err)
	}

	f = makeFont()
	cg = f.Glyphs[3].Data.(glyf.CompositeGlyph)
	cg.Components[0].GlyphIndex = 99
	f.Glyphs[3].Data = cg
	_, err = Decompose(f, nil)
	if !fonterror.IsFormat(err) {
		t.Errorf("missing glyph: got %v", err)
	}
}
