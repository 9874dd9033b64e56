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

package subfonts

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/internal/testfont"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
	"github.com/chiron-fonts/sub-fonts/sfnt/name"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gtab"
	"github.com/chiron-fonts/sub-fonts/sfnt/variation"
)

func TestParseAxes(t *testing.T) {
	for _, test := range []struct {
		in   string
		want map[string]float64
		ok   bool
	}{
		{"", map[string]float64{}, true},
		{"wght=320", map[string]float64{"wght": 320}, true},
		{"wght=320, opsz=20.5", map[string]float64{"wght": 320, "opsz": 20.5}, true},
		{"wght=320,,", map[string]float64{"wght": 320}, true},
		{"wght", nil, false},
		{"wght=bold", nil, false},
		{"weight=400", nil, false},
		{"wght=1,wght=2", nil, false},
	} {
		got, err := ParseAxes(test.in)
		if (err == nil) != test.ok {
			t.Errorf("%q: unexpected error %v", test.in, err)
			continue
		}
		if err != nil {
			if !fonterror.IsConfiguration(err) {
				t.Errorf("%q: wrong error type %T", test.in, err)
			}
			continue
		}
		if d := cmp.Diff(test.want, got); d != "" {
			t.Errorf("%q: (-want +got):\n%s", test.in, d)
		}
	}
}

func TestParseTransform(t *testing.T) {
	M, err := ParseTransform("0.47, 0, 0, 0.47, 0, 16")
	if err != nil {
		t.Fatal(err)
	}
	want := matrix.Matrix{0.47, 0, 0, 0.47, 0, 16}
	if *M != want {
		t.Errorf("got %v, expected %v", *M, want)
	}

	M, err = ParseTransform("")
	if M != nil || err != nil {
		t.Errorf("empty string: got %v, %v", M, err)
	}

	for _, bad := range []string{"1,0,0,1,0", "1,0,0,1,0,x", "1,0,0,1,0,0,0"} {
		if _, err := ParseTransform(bad); !fonterror.IsConfiguration(err) {
			t.Errorf("%q: unexpected error %v", bad, err)
		}
	}
}

func makeStatic() *sfnt.Font {
	return testfont.Make("Test",
		testfont.Notdef(),
		testfont.Rect("A", 'A', 600, 100, 0, 500, 700),
		testfont.Composite("Aacute", 0xC1, 600,
			testfont.Part{GID: 1},
			testfont.Part{GID: 3, DX: 100, DY: 800}),
		testfont.Rect("acute", 0, 0, 100, 0, 200, 100),
	)
}

func TestExtract(t *testing.T) {
	f := makeStatic()
	err := Extract(f, &ExtractOptions{
		Transform: &matrix.Matrix{0.5, 0, 0, 0.5, 0, 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if f.Glyphs.IsComposite(2) {
		t.Fatal("composite glyph was not decomposed")
	}
	g := f.Glyphs[2]
	want := funit.Rect16{LLx: 50, LLy: 10, URx: 250, URy: 460}
	if d := cmp.Diff(want, g.Rect16); d != "" {
		t.Errorf("bbox (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]uint16{250, 300, 300, 0}, f.Metrics.Width); d != "" {
		t.Errorf("widths (-want +got):\n%s", d)
	}
}

func TestExtractSkipDecompose(t *testing.T) {
	f := makeStatic()
	err := Extract(f, &ExtractOptions{SkipDecompose: true})
	if err != nil {
		t.Fatal(err)
	}
	if !f.Glyphs.IsComposite(2) {
		t.Error("composite glyph was decomposed")
	}

	f = makeStatic()
	err = Extract(f, &ExtractOptions{
		SkipDecompose: true,
		Transform:     &matrix.Matrix{1, 0, 0, 1, 5, 0},
	})
	if !fonterror.IsFormat(err) {
		t.Errorf("transform of composite glyphs: unexpected error %v", err)
	}
}

func TestExtractVariableNeedsAxes(t *testing.T) {
	f := makeStatic()
	f.Fvar = &variation.Fvar{
		Axes: []*variation.Axis{{Tag: "wght", Min: 100, Default: 400, Max: 900}},
	}
	f.Raw["fvar"] = []byte{}
	err := Extract(f, nil)
	if !fonterror.IsConfiguration(err) {
		t.Errorf("unexpected error %v", err)
	}

	err = Build(f, nil)
	if !fonterror.IsConfiguration(err) {
		t.Errorf("Build of variable font: unexpected error %v", err)
	}
}

func TestBuild(t *testing.T) {
	f := testfont.Make("Old",
		testfont.Notdef(),
		testfont.Rect("A", 'A', 600, 50, 0, 550, 700),
		testfont.Rect("uni4E00", 0x4E00, 1000, 50, 300, 950, 400),
	)
	f.Raw["STAT"] = []byte{0, 1}
	f.Raw["cvt "] = []byte{0, 0}
	f.GSUB = &gtab.GSUB{}
	single := &gtab.Lookup{
		Type: gtab.GposSingle,
		Subtables: []gtab.Subtable{&gtab.Gpos1_1{
			Cov:    coverage.FromGlyphs([]glyph.ID{2}),
			Format: gtab.ValueXPlacement,
			Adjust: &gtab.ValueRecord{XPlacement: 10},
		}},
	}
	f.GPOS = &gtab.GPOS{
		Common: gtab.Common{
			ScriptList: gtab.ScriptList{
				{Script: "hani"}: {Required: gtab.NoRequiredFeature, Optional: []gtab.FeatureIndex{0, 1, 2}},
			},
			FeatureList: gtab.FeatureList{
				{Tag: "locl", Lookups: []gtab.LookupIndex{0}},
				{Tag: "ss03", Lookups: []gtab.LookupIndex{0}},
				{Tag: "kern", Lookups: []gtab.LookupIndex{0}},
			},
		},
		LookupList: gtab.LookupList{single},
	}

	donor := testfont.Make("Donor",
		testfont.Notdef(),
		testfont.Rect("A", 'A', 640, 20, 0, 620, 720),
		testfont.Rect("wide", 'W', 1000, 0, 0, 1000, 700),
	)

	err := Build(f, &BuildOptions{
		Donor:         donor,
		WidthFraction: 0.1,
		Family:        "Sub Sans",
		Version:       "Version 1.2",
		LineGap:       100,
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, tag := range []string{"STAT", "cvt ", "GSUB"} {
		if f.HasTable(tag) {
			t.Errorf("table %q not removed", tag)
		}
	}
	var tags []string
	for _, feat := range f.GPOS.FeatureList {
		tags = append(tags, feat.Tag)
	}
	if d := cmp.Diff([]string{"kern"}, tags); d != "" {
		t.Errorf("GPOS features (-want +got):\n%s", d)
	}

	// glyphs: .notdef, A, uni4E00, inter_.notdef, inter_A, inter_wide
	wantWidths := []uint16{500, 600, 1100, 500, 640, 1000}
	if d := cmp.Diff(wantWidths, f.Metrics.Width); d != "" {
		t.Errorf("widths (-want +got):\n%s", d)
	}
	if f.Metrics.LSB[2] != 75 {
		t.Errorf("uni4E00 lsb %d, expected 75", f.Metrics.LSB[2])
	}

	cmap, err := f.Unicode()
	if err != nil {
		t.Fatal(err)
	}
	wantCmap := map[rune]glyph.ID{'A': 4, 'W': 5, 0x4E00: 2}
	if d := cmp.Diff(wantCmap, cmap); d != "" {
		t.Errorf("cmap (-want +got):\n%s", d)
	}

	if got, _ := f.Name.Get(name.PostScriptName); got != "Sub-Sans" {
		t.Errorf("PostScript name %q", got)
	}
	if f.Metrics.LineGap != 100 {
		t.Errorf("line gap %d", f.Metrics.LineGap)
	}

	data, err := f.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	back, err := sfnt.Read(data)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(f.GlyphNames, back.GlyphNames); d != "" {
		t.Errorf("glyph names (-want +got):\n%s", d)
	}
	if _, ok := back.Glyphs[5].Data.(glyf.SimpleGlyph); !ok {
		t.Error("donor glyph lost its outline")
	}
}
