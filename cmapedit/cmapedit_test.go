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

package cmapedit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/internal/testfont"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/cmap"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// makeFont returns a font with a proportional "A" (gid 1), a full-width
// ideograph (gid 2) and three replacement glyphs (gid 3 to 5).
func makeFont() *sfnt.Font {
	return testfont.Make("Test",
		testfont.Notdef(),
		testfont.Rect("A", 'A', 600, 50, 0, 550, 700),
		testfont.Rect("uni4E00", 0x4E00, 1000, 50, 300, 950, 400),
		testfont.Rect("x.A", 0, 620, 40, 0, 580, 700),
		testfont.Rect("x.uni4E00", 0, 900, 40, 300, 860, 400),
		testfont.Rect("x.u1F600", 0, 900, 40, 0, 860, 800),
	)
}

func TestRedirect(t *testing.T) {
	f := makeFont()
	mapping := map[rune]glyph.ID{
		'A':     3,
		0x4E00:  4,
		0x1F600: 5,
		0x0009:  3, // tab
		0x0085:  3, // NEL
	}
	n, err := Redirect(f, mapping, ProtectFullWidth(f), nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("redirected %d code points, expected 2", n)
	}

	got, err := f.Unicode()
	if err != nil {
		t.Fatal(err)
	}
	want := map[rune]glyph.ID{
		'A':     3,
		0x4E00:  2,
		0x1F600: 5,
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("unexpected mapping (-want +got):\n%s", d)
	}

	bmp, err := cmap.DecodeFormat4(f.CMap[cmap.Key{PlatformID: 3, EncodingID: 1}])
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := bmp[0xF600]; ok {
		t.Error("supplementary code point leaked into format 4 subtable")
	}
	if bmp['A'] != 3 {
		t.Errorf("format 4: A -> %d, expected 3", bmp['A'])
	}
}

func TestRedirectUnprotected(t *testing.T) {
	f := makeFont()
	_, err := Redirect(f, map[rune]glyph.ID{0x4E00: 4}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := f.Unicode()
	if got[0x4E00] != 4 {
		t.Errorf("U+4E00 -> %d, expected 4", got[0x4E00])
	}
}

func TestRedirectKeepsOtherSubtables(t *testing.T) {
	f := makeFont()
	mac := []byte{0, 6, 0, 12, 0, 0, 0, 65, 0, 1, 0, 1}
	key := cmap.Key{PlatformID: 1, EncodingID: 0}
	f.CMap[key] = mac
	_, err := Redirect(f, map[rune]glyph.ID{'A': 3}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(mac, f.CMap[key]); d != "" {
		t.Errorf("Macintosh subtable changed:\n%s", d)
	}
}

func TestRedirectNoCMap(t *testing.T) {
	f := makeFont()
	f.CMap = nil
	_, err := Redirect(f, map[rune]glyph.ID{'A': 3, 0x1F600: 5}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Unicode()
	if err != nil {
		t.Fatal(err)
	}
	want := map[rune]glyph.ID{'A': 3, 0x1F600: 5}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("unexpected mapping (-want +got):\n%s", d)
	}
}

func TestRedirectRange(t *testing.T) {
	f := makeFont()
	_, err := Redirect(f, map[rune]glyph.ID{'A': 99}, nil, nil)
	if !fonterror.IsFormat(err) {
		t.Errorf("expected FormatError, got %v", err)
	}
}

func TestIsControl(t *testing.T) {
	for _, test := range []struct {
		r    rune
		want bool
	}{
		{0x00, true},
		{0x1F, true},
		{0x20, false},
		{0x7E, false},
		{0x7F, true},
		{0x9F, true},
		{0xA0, false},
	} {
		if got := IsControl(test.r); got != test.want {
			t.Errorf("IsControl(U+%04X) = %t", test.r, got)
		}
	}
}
