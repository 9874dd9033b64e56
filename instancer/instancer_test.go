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


package instancer

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/internal/testfont"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gdef"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gtab"
	"github.com/chiron-fonts/sub-fonts/sfnt/variation"
)

// tuple is the variation data for one glyph at one peak, with deltas for
// all points including the phantom points.
type tuple struct {
	peak   float64
	dx, dy []int16
}

// encodeGvar builds a single-axis "gvar" table.  All tuples use embedded
// peaks and private point numbers covering all points.
func encodeGvar(numGlyphs int, glyphs map[glyph.ID][]tuple) []byte {
	headerLen := 20 + 4*(numGlyphs+1)
	be := binary.BigEndian

	var body []byte
	offsets := make([]uint32, numGlyphs+1)
	for gid := 0; gid < numGlyphs; gid++ {
		offsets[gid] = uint32(len(body))
		tuples := glyphs[glyph.ID(gid)]
		if len(tuples) == 0 {
			continue
		}
		var headers, data []byte
		for _, t := range tuples {
			var serialized []byte
			serialized = append(serialized, 0) // all points
			for _, deltas := range [][]int16{t.dx, t.dy} {
				serialized = append(serialized, 0x40|byte(len(deltas)-1))
				for _, d := range deltas {
					serialized = be.AppendUint16(serialized, uint16(d))
				}
			}
			headers = be.AppendUint16(headers, uint16(len(serialized)))
			headers = be.AppendUint16(headers, 0x8000|0x2000)
			headers = be.AppendUint16(headers, uint16(int16(t.peak*16384)))
			data = append(data, serialized...)
		}
		body = be.AppendUint16(body, uint16(len(tuples)))
		body = be.AppendUint16(body, uint16(4+len(headers)))
		body = append(body, headers...)
		body = append(body, data...)
	}
	offsets[numGlyphs] = uint32(len(body))

	var res []byte
	res = be.AppendUint16(res, 1)
	res = be.AppendUint16(res, 0)
	res = be.AppendUint16(res, 1) // axis count
	res = be.AppendUint16(res, 0) // shared tuple count
	res = be.AppendUint32(res, uint32(headerLen))
	res = be.AppendUint16(res, uint16(numGlyphs))
	res = be.AppendUint16(res, 1) // long offsets
	res = be.AppendUint32(res, uint32(headerLen))
	for _, o := range offsets {
		res = be.AppendUint32(res, o)
	}
	return append(res, body...)
}

// makeVariableFont returns a font with a weight axis from 100 to 900.
// At weight 900, glyph "A" is 50 units wider on each side and glyph "B",
// a composite of "A", moves its component 20 units to the right.
func makeVariableFont(t *testing.T) *sfnt.Font {
	t.Helper()
	f := testfont.Make("Test",
		testfont.Notdef(),
		testfont.Rect("A", 'A', 600, 100, 0, 500, 700),
		testfont.Composite("B", 'B', 700, testfont.Part{GID: 1, DX: 50}),
	)
	gvarData := encodeGvar(3, map[glyph.ID][]tuple{
		1: {{peak: 1, dx: []int16{-50, -50, 50, 50, 0, 100, 0, 0}, dy: make([]int16, 8)}},
		2: {{peak: 1, dx: []int16{20, 0, 40, 0, 0}, dy: make([]int16, 5)}},
	})
	gvar, err := variation.ReadGvar(gvarData, 3)
	if err != nil {
		t.Fatal(err)
	}
	f.Gvar = gvar
	f.Raw["gvar"] = gvarData
	f.Fvar = &variation.Fvar{
		Axes: []*variation.Axis{{Tag: "wght", Min: 100, Default: 400, Max: 900}},
	}
	f.Raw["fvar"] = []byte{}
	f.Raw["STAT"] = []byte{}
	return f
}

func TestInstanceGlyphs(t *testing.T) {
	cases := []struct {
		weight   float64
		aBox     funit.Rect16
		aWidth   uint16
		bWidth   uint16
		bLSB     int16
		bOffset  int
		wantWght uint16
	}{
		{400, funit.Rect16{LLx: 100, URx: 500, URy: 700}, 600, 700, 150, 50, 400},
		{900, funit.Rect16{LLx: 50, URx: 550, URy: 700}, 700, 740, 120, 70, 900},
		{650, funit.Rect16{LLx: 75, URx: 525, URy: 700}, 650, 720, 135, 60, 650},
		{2000, funit.Rect16{LLx: 50, URx: 550, URy: 700}, 700, 740, 120, 70, 900},
	}
	for _, c := range cases {
		f := makeVariableFont(t)
		err := Instance(f, &Options{Location: map[string]float64{"wght": c.weight}})
		if err != nil {
			t.Fatal(err)
		}
		if f.IsVariable() {
			t.Error("font is still variable")
		}
		for _, tag := range []string{"fvar", "gvar", "STAT"} {
			if f.HasTable(tag) {
				t.Errorf("table %q not removed", tag)
			}
		}

		if f.Glyphs[1].Rect16 != c.aBox {
			t.Errorf("%g: A bbox %v != %v", c.weight, f.Glyphs[1].Rect16, c.aBox)
		}
		if f.Metrics.Width[1] != c.aWidth {
			t.Errorf("%g: A width %d != %d", c.weight, f.Metrics.Width[1], c.aWidth)
		}
		if f.Metrics.LSB[1] != int16(c.aBox.LLx) {
			t.Errorf("%g: A lsb %d", c.weight, f.Metrics.LSB[1])
		}

		comp := f.Glyphs[2].Data.(glyf.CompositeGlyph).Components[0]
		if comp.Arg1 != c.bOffset {
			t.Errorf("%g: B offset %d != %d", c.weight, comp.Arg1, c.bOffset)
		}
		if f.Metrics.Width[2] != c.bWidth {
			t.Errorf("%g: B width %d != %d", c.weight, f.Metrics.Width[2], c.bWidth)
		}
		if f.Metrics.LSB[2] != c.bLSB {
			t.Errorf("%g: B lsb %d != %d", c.weight, f.Metrics.LSB[2], c.bLSB)
		}
		if f.OS2.WeightClass != c.wantWght {
			t.Errorf("%g: weight class %d", c.weight, f.OS2.WeightClass)
		}
	}
}

func TestDefaultLocation(t *testing.T) {
	ref := makeVariableFont(t)
	f := makeVariableFont(t)
	err := Instance(f, &Options{Location: map[string]float64{"wght": 400}})
	if err != nil {
		t.Fatal(err)
	}
	for i := range ref.Glyphs {
		if d := cmp.Diff(ref.Glyphs[i], f.Glyphs[i]); d != "" {
			t.Errorf("glyph %d changed (-want +got):\n%s", i, d)
		}
	}
	if d := cmp.Diff(ref.Metrics, f.Metrics); d != "" {
		t.Errorf("metrics changed (-want +got):\n%s", d)
	}
}

func TestConfigurationErrors(t *testing.T) {
	f := makeVariableFont(t)
	err := Instance(f, &Options{})
	if !fonterror.IsConfiguration(err) {
		t.Errorf("missing location: got %v", err)
	}

	err = Instance(f, &Options{Location: map[string]float64{"wght": 400, "wdth": 100}})
	if !fonterror.IsConfiguration(err) {
		t.Errorf("unknown axis: got %v", err)
	}

	static := testfont.Make("Static", testfont.Notdef())
	err = Instance(static, &Options{Location: map[string]float64{"wght": 700}})
	if err != nil {
		t.Errorf("static font: got %v", err)
	}
}

func TestMissingAxis(t *testing.T) {
	f := makeVariableFont(t)
	f.Fvar.Axes = append(f.Fvar.Axes, &variation.Axis{Tag: "wdth", Min: 50, Default: 100, Max: 200})
	user, coords, err := Location(f, map[string]float64{"wght": 900}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{900, 100}, user); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff([]float64{1, 0}, coords); d != "" {
		t.Error(d)
	}
}

func TestAvarLocation(t *testing.T) {
	f := makeVariableFont(t)
	f.Avar = &variation.Avar{SegmentMaps: [][]variation.AxisValueMap{{
		{From: -1, To: -1}, {From: 0, To: 0}, {From: 0.5, To: 0.25}, {From: 1, To: 1},
	}}}
	_, coords, err := Location(f, map[string]float64{"wght": 650}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if coords[0] != 0.25 {
		t.Errorf("got %g", coords[0])
	}
}

func TestDevices(t *testing.T) {
	f := makeVariableFont(t)
	f.GDEF = &gdef.Table{
		VarStore: &variation.ItemVariationStore{
			AxisCount: 1,
			Regions:   []*variation.Region{{Start: []float64{0}, Peak: []float64{1}, End: []float64{1}}},
			Data: []*variation.ItemVariationData{{
				RegionIndexes: []uint16{0},
				WordCount:     1,
				Deltas:        [][]int32{{40}, {-10}},
			}},
		},
		LigCarets: map[glyph.ID][]*gdef.CaretValue{
			1: {{Format: 3, Coordinate: 300, Device: &device.VariationIndex{Outer: 0, Inner: 0}}},
		},
	}
	single := &gtab.Gpos1_1{
		Cov:    coverage.Table{1: 0},
		Format: gtab.ValueXAdvance | gtab.ValueXAdvanceDevice,
		Adjust: &gtab.ValueRecord{
			XAdvance:       100,
			XAdvanceDevice: &device.VariationIndex{Outer: 0, Inner: 0},
		},
	}
	base := &anchor.Table{X: 200, Y: 500, Format: 3, YDevice: &device.VariationIndex{Outer: 0, Inner: 1}}
	f.GPOS = &gtab.GPOS{
		LookupList: gtab.LookupList{
			{Type: gtab.GposSingle, Subtables: []gtab.Subtable{single}},
			{Type: gtab.GposCursive, Subtables: []gtab.Subtable{&gtab.Gpos3_1{
				Cov:     coverage.Table{1: 0},
				Records: []gtab.EntryExitRecord{{Entry: base}},
			}}},
		},
	}

	err := Instance(f, &Options{Location: map[string]float64{"wght": 650}})
	if err != nil {
		t.Fatal(err)
	}
	if single.Adjust.XAdvance != 120 || single.Adjust.HasDevices() {
		t.Errorf("value record %v", single.Adjust)
	}
	if single.Format != gtab.ValueXAdvance {
		t.Errorf("value format %x", single.Format)
	}
	if base.Y != 495 || base.YDevice != nil {
		t.Errorf("anchor y %d", base.Y)
	}
	caret := f.GDEF.LigCarets[1][0]
	if caret.Coordinate != 320 || caret.Device != nil {
		t.Errorf("caret %d", caret.Coordinate)
	}
	if f.GDEF.VarStore != nil {
		t.Error("GDEF variation store not removed")
	}
	if _, err := f.Encode(); err != nil {
		t.Fatal(err)
	}
}

func TestMVAR(t *testing.T) {
	f := makeVariableFont(t)
	f.MVAR = &variation.MVAR{
		Records: map[string]device.VariationIndex{
			"hasc": {Outer: 0, Inner: 0},
			"undo": {Outer: 0, Inner: 1},
			"zzzz": {Outer: 0, Inner: 0},
		},
		Store: &variation.ItemVariationStore{
			AxisCount: 1,
			Regions:   []*variation.Region{{Start: []float64{0}, Peak: []float64{1}, End: []float64{1}}},
			Data: []*variation.ItemVariationData{{
				RegionIndexes: []uint16{0},
				WordCount:     1,
				Deltas:        [][]int32{{30}, {-20}},
			}},
		},
	}
	f.Raw["MVAR"] = []byte{}
	ascent := f.OS2.TypoAscender
	underline := f.Post.UnderlinePosition

	err := Instance(f, &Options{Location: map[string]float64{"wght": 900}})
	if err != nil {
		t.Fatal(err)
	}
	if f.OS2.TypoAscender != ascent+30 {
		t.Errorf("typo ascender %d", f.OS2.TypoAscender)
	}
	if f.Post.UnderlinePosition != underline-20 {
		t.Errorf("underline position %d", f.Post.UnderlinePosition)
	}
	if f.HasTable("MVAR") {
		t.Error("MVAR not removed")
	}
}
