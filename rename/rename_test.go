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

package rename

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chiron-fonts/sub-fonts/internal/testfont"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/name"
)

func makeFont() *sfnt.Font {
	return testfont.Make("Old Family",
		testfont.Notdef(),
		testfont.Rect("A", 'A', 600, 50, 0, 550, 700),
	)
}

func TestSetNames(t *testing.T) {
	f := makeFont()
	f.Name.Set(name.TypographicSubfamily, "Bold Display")
	err := SetNames(f, "Sub Sans JP", "Version 2.001", nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, test := range []struct {
		id   name.ID
		want string
	}{
		{name.Family, "Sub Sans JP"},
		{name.Subfamily, "Regular"},
		{name.FullName, "Sub Sans JP"},
		{name.Version, "Version 2.001"},
		{name.PostScriptName, "Sub-Sans-JP"},
	} {
		got, ok := f.Name.Get(test.id)
		if !ok || got != test.want {
			t.Errorf("name %d: got %q, expected %q", test.id, got, test.want)
		}
	}
	if _, ok := f.Name.Get(name.TypographicSubfamily); ok {
		t.Error("typographic subfamily was not removed")
	}

	// the table survives a round trip
	decoded, err := name.Decode(f.Name.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := decoded.Get(name.PostScriptName); got != "Sub-Sans-JP" {
		t.Errorf("decoded PostScript name %q", got)
	}
}

func TestSetNamesNoTable(t *testing.T) {
	f := makeFont()
	f.Name = nil
	err := SetNames(f, "Fresh", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := f.Name.Get(name.Family); got != "Fresh" {
		t.Errorf("family %q", got)
	}
	if _, ok := f.Name.Get(name.Version); ok {
		t.Error("empty version was written")
	}

	if err := SetNames(f, "", "v1", nil); !fonterror.IsConfiguration(err) {
		t.Errorf("empty family: unexpected error %v", err)
	}
}

func TestSetLineGap(t *testing.T) {
	for _, test := range []struct {
		gap                int
		winAscent, winDesc uint16
	}{
		{0, testfont.Ascent, -testfont.Descent},
		{200, testfont.Ascent + 100, -testfont.Descent + 100},
		{75, testfont.Ascent + 37, -testfont.Descent + 37},
		{-3, testfont.Ascent - 2, -testfont.Descent - 2},
	} {
		f := makeFont()
		err := SetLineGap(f, test.gap, nil)
		if err != nil {
			t.Fatal(err)
		}
		if f.Metrics.LineGap != int16(test.gap) || int(f.OS2.TypoLineGap) != test.gap {
			t.Errorf("gap %d: hhea %d, OS/2 %d", test.gap, f.Metrics.LineGap, f.OS2.TypoLineGap)
		}
		if f.OS2.WinAscent != test.winAscent || f.OS2.WinDescent != test.winDesc {
			t.Errorf("gap %d: win metrics %d/%d, expected %d/%d", test.gap,
				f.OS2.WinAscent, f.OS2.WinDescent, test.winAscent, test.winDesc)
		}
	}

	f := makeFont()
	if err := SetLineGap(f, 40000, nil); !fonterror.IsConfiguration(err) {
		t.Errorf("large gap: unexpected error %v", err)
	}
	if err := SetLineGap(f, -2000, nil); !fonterror.IsConfiguration(err) {
		t.Errorf("negative metrics: unexpected error %v", err)
	}
}

func TestDropTables(t *testing.T) {
	f := makeFont()
	for _, tag := range []string{"STAT", "cvt ", "cvar", "kern", "fpgm"} {
		f.Raw[tag] = []byte{0, 0, 0, 0}
	}
	removed := DropTables(f, []string{"STAT", "cv*", "GSUB", "head"}, nil)
	want := []string{"STAT", "cvar", "cvt "}
	if d := cmp.Diff(want, removed); d != "" {
		t.Errorf("removed tables (-want +got):\n%s", d)
	}
	for _, tag := range []string{"kern", "fpgm", "head"} {
		if !f.HasTable(tag) {
			t.Errorf("table %q was removed", tag)
		}
	}

	// a second pass finds nothing
	if removed := DropTables(f, []string{"STAT", "cv*"}, nil); len(removed) != 0 {
		t.Errorf("second pass removed %v", removed)
	}
}
