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


package overlap

import (
	"testing"

	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/internal/testfont"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
)

func square(x0, y0, x1, y1 funit.Int16) glyf.Contour {
	return testfont.Rect("", 0, 0, x0, y0, x1, y1).Contours[0]
}

func reversed(c glyf.Contour) glyf.Contour {
	res := make(glyf.Contour, len(c))
	for i, p := range c {
		res[len(c)-1-i] = p
	}
	return res
}

func TestNoOverlap(t *testing.T) {
	cases := []glyf.SimpleGlyph{
		{Contours: []glyf.Contour{square(0, 0, 100, 100)}},
		{Contours: []glyf.Contour{square(0, 0, 100, 100), square(200, 0, 300, 100)}},
		{Contours: []glyf.Contour{square(0, 0, 300, 300), reversed(square(100, 100, 200, 200))}},
	}
	for i, g := range cases {
		_, changed := Glyph(g)
		if changed {
			t.Errorf("%d: glyph was changed", i)
		}
	}
}

func TestUnion(t *testing.T) {
	g := glyf.SimpleGlyph{Contours: []glyf.Contour{
		square(0, 0, 100, 100),
		square(50, 50, 150, 150),
	}}
	res, changed := Glyph(g)
	if !changed {
		t.Fatal("overlap not detected")
	}
	if len(res.Contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(res.Contours))
	}
	c := res.Contours[0]
	if len(c) != 8 {
		t.Errorf("expected 8 points, got %d", len(c))
	}
	for _, p := range c {
		if !p.OnCurve {
			t.Error("off-curve point in result")
		}
	}
	bbox := res.BBox()
	if bbox != (funit.Rect16{LLx: 0, LLy: 0, URx: 150, URy: 150}) {
		t.Errorf("wrong bbox %v", bbox)
	}
	if area(flatten(c)) >= 0 {
		t.Error("outer contour is not clockwise")
	}
}

func TestNested(t *testing.T) {
	g := glyf.SimpleGlyph{Contours: []glyf.Contour{
		square(0, 0, 300, 300),
		square(100, 100, 200, 200),
	}}
	res, changed := Glyph(g)
	if !changed {
		t.Fatal("nested contour not detected")
	}
	if len(res.Contours) != 1 || len(res.Contours[0]) != 4 {
		t.Errorf("unexpected result %v", res.Contours)
	}
}

func TestHoleKept(t *testing.T) {
	// two overlapping rings: the holes must survive the union
	g := glyf.SimpleGlyph{Contours: []glyf.Contour{
		square(0, 0, 300, 300),
		reversed(square(100, 100, 200, 200)),
		square(250, 0, 550, 300),
		reversed(square(350, 100, 450, 200)),
	}}
	res, changed := Glyph(g)
	if !changed {
		t.Fatal("overlap not detected")
	}
	var outer, holes int
	for _, c := range res.Contours {
		if area(flatten(c)) < 0 {
			outer++
		} else {
			holes++
		}
	}
	if outer != 1 || holes != 2 {
		t.Errorf("got %d outer contours and %d holes", outer, holes)
	}
}

func TestRemove(t *testing.T) {
	f := testfont.Make("Test",
		testfont.Notdef(),
		testfont.Rect("A", 'A', 600, 50, 0, 550, 700),
		testfont.Glyph{Name: "B", Rune: 'B', Width: 600, Contours: []glyf.Contour{
			square(10, 0, 300, 300),
			square(200, 200, 500, 500),
		}},
	)
	n := Remove(f, nil)
	if n != 1 {
		t.Errorf("%d glyphs changed", n)
	}
	if f.Metrics.LSB[2] != 10 {
		t.Errorf("wrong lsb %d", f.Metrics.LSB[2])
	}
	if f.Glyphs[2].Rect16 != (funit.Rect16{LLx: 10, LLy: 0, URx: 500, URy: 500}) {
		t.Errorf("wrong bbox %v", f.Glyphs[2].Rect16)
	}
}

func TestFlattenQuadratic(t *testing.T) {
	c := glyf.Contour{
		{X: 0, Y: 0, OnCurve: true},
		{X: 0, Y: 100},
		{X: 100, Y: 100, OnCurve: true},
		{X: 100, Y: 0, OnCurve: true},
	}
	poly := flatten(c)
	if len(poly) != flattenSteps+2 {
		t.Errorf("expected %d points, got %d", flattenSteps+2, len(poly))
	}
}
