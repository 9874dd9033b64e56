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


package gtab

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/classdef"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/markarray"
)

func makeTestGPOS() *GPOS {
	a := func(x, y int16) *anchor.Table {
		return &anchor.Table{X: funit.Int16(x), Y: funit.Int16(y), Format: 1}
	}
	varIdx := &device.VariationIndex{Outer: 0, Inner: 3}

	lookups := LookupList{
		{
			Type: GposSingle,
			Subtables: []Subtable{
				&Gpos1_1{
					Cov:    coverage.FromGlyphs([]glyph.ID{3, 4, 5}),
					Format: ValueXPlacement | ValueXAdvance | ValueXAdvanceDevice,
					Adjust: &ValueRecord{XPlacement: 10, XAdvance: 20, XAdvanceDevice: varIdx},
				},
				&Gpos1_2{
					Cov:    coverage.FromGlyphs([]glyph.ID{7, 9}),
					Format: ValueYPlacement,
					Adjust: []*ValueRecord{{YPlacement: -5}, {YPlacement: 5}},
				},
			},
		},
		{
			Type:  GposPair,
			Flags: LookupIgnoreMarks,
			Subtables: []Subtable{
				&Gpos2_1{
					Cov:     coverage.FromGlyphs([]glyph.ID{1, 2}),
					Format1: ValueXAdvance,
					Format2: 0,
					PairSets: [][]*PairValueRecord{
						{{SecondGlyph: 2, First: &ValueRecord{XAdvance: -40}, Second: &ValueRecord{}}},
						{
							{SecondGlyph: 1, First: &ValueRecord{XAdvance: -10}, Second: &ValueRecord{}},
							{SecondGlyph: 3, First: &ValueRecord{XAdvance: 15}, Second: &ValueRecord{}},
						},
					},
				},
				&Gpos2_2{
					Cov:     coverage.FromGlyphs([]glyph.ID{1, 2, 3}),
					Format1: ValueXAdvance,
					Format2: ValueXPlacement,
					Class1:  classdef.Table{1: 1, 2: 1},
					Class2:  classdef.Table{5: 1},
					Records: [][]*PairClassRecord{
						{{First: &ValueRecord{}, Second: &ValueRecord{}}, {First: &ValueRecord{XAdvance: 1}, Second: &ValueRecord{XPlacement: 2}}},
						{{First: &ValueRecord{XAdvance: 3}, Second: &ValueRecord{}}, {First: &ValueRecord{XAdvance: -4}, Second: &ValueRecord{XPlacement: -5}}},
					},
				},
			},
		},
		{
			Type: GposCursive,
			Subtables: []Subtable{
				&Gpos3_1{
					Cov:     coverage.FromGlyphs([]glyph.ID{10, 11}),
					Records: []EntryExitRecord{{Entry: a(0, 0), Exit: a(500, 10)}, {Exit: a(1, 2)}},
				},
			},
		},
		{
			Type: GposMarkToBase,
			Subtables: []Subtable{
				&Gpos4_1{
					MarkCov:        coverage.FromGlyphs([]glyph.ID{20, 21}),
					BaseCov:        coverage.FromGlyphs([]glyph.ID{1, 2}),
					MarkClassCount: 2,
					MarkArray: markarray.Table{
						{Class: 0, Anchor: a(100, 0)},
						{Class: 1, Anchor: a(100, 700)},
					},
					BaseArray: [][]*anchor.Table{
						{a(250, 0), a(250, 700)},
						{a(300, 0), nil},
					},
				},
			},
		},
		{
			Type: GposMarkToLigature,
			Subtables: []Subtable{
				&Gpos5_1{
					MarkCov:        coverage.FromGlyphs([]glyph.ID{20}),
					LigCov:         coverage.FromGlyphs([]glyph.ID{30}),
					MarkClassCount: 1,
					MarkArray:      markarray.Table{{Class: 0, Anchor: a(100, 0)}},
					LigArray: [][][]*anchor.Table{
						{{a(200, 0)}, {a(600, 0)}},
					},
				},
			},
		},
		{
			Type:             GposMarkToMark,
			Flags:            LookupUseMarkFilteringSet,
			MarkFilteringSet: 1,
			Subtables: []Subtable{
				&Gpos6_1{
					Mark1Cov:       coverage.FromGlyphs([]glyph.ID{20}),
					Mark2Cov:       coverage.FromGlyphs([]glyph.ID{21}),
					MarkClassCount: 1,
					Mark1Array:     markarray.Table{{Class: 0, Anchor: a(0, 0)}},
					Mark2Array:     [][]*anchor.Table{{a(0, 800)}},
				},
			},
		},
		{
			Type: GposContext,
			Subtables: []Subtable{
				&SeqContext1{
					Cov: coverage.FromGlyphs([]glyph.ID{1}),
					Rules: [][]*SeqRule{
						{{Input: []glyph.ID{2}, Actions: SeqLookups{{SequenceIndex: 1, LookupListIndex: 0}}}},
					},
				},
				&SeqContext2{
					Cov:   coverage.FromGlyphs([]glyph.ID{1, 2}),
					Input: classdef.Table{1: 1, 2: 2},
					Rules: [][]*ClassSeqRule{
						nil,
						{{Input: []uint16{2}, Actions: SeqLookups{{SequenceIndex: 0, LookupListIndex: 1}}}},
					},
				},
				&SeqContext3{
					Input:   []coverage.Table{coverage.FromGlyphs([]glyph.ID{1}), coverage.FromGlyphs([]glyph.ID{2, 3})},
					Actions: SeqLookups{{SequenceIndex: 0, LookupListIndex: 0}},
				},
			},
		},
		{
			Type: GposChainedContext,
			Subtables: []Subtable{
				&ChainedSeqContext1{
					Cov: coverage.FromGlyphs([]glyph.ID{4}),
					Rules: [][]*ChainedSeqRule{
						{{Backtrack: []glyph.ID{3}, Input: []glyph.ID{5}, Lookahead: []glyph.ID{6, 7},
							Actions: SeqLookups{{SequenceIndex: 1, LookupListIndex: 1}}}},
					},
				},
				&ChainedSeqContext2{
					Cov:       coverage.FromGlyphs([]glyph.ID{4}),
					Backtrack: classdef.Table{3: 1},
					Input:     classdef.Table{4: 1},
					Lookahead: classdef.Table{},
					Rules: [][]*ChainedClassSeqRule{
						nil,
						{{Backtrack: []uint16{1}, Actions: SeqLookups{{SequenceIndex: 0, LookupListIndex: 0}}}},
					},
				},
				&ChainedSeqContext3{
					Backtrack: []coverage.Table{coverage.FromGlyphs([]glyph.ID{1})},
					Input:     []coverage.Table{coverage.FromGlyphs([]glyph.ID{2})},
					Actions:   SeqLookups{{SequenceIndex: 0, LookupListIndex: 2}},
				},
			},
		},
	}

	return &GPOS{
		Common: Common{
			ScriptList: ScriptList{
				{Script: "DFLT"}:               {Required: NoRequiredFeature, Optional: []FeatureIndex{0, 1}},
				{Script: "latn", Lang: "TRK "}: {Required: 1, Optional: []FeatureIndex{0}},
			},
			FeatureList: FeatureList{
				{Tag: "kern", Lookups: []LookupIndex{0, 1, 6, 7}},
				{Tag: "mark", Lookups: []LookupIndex{2, 3, 4, 5}},
			},
		},
		LookupList: lookups,
	}
}

func TestGPOSRoundTrip(t *testing.T) {
	gpos := makeTestGPOS()
	data, err := gpos.Encode()
	if err != nil {
		t.Fatal(err)
	}
	gpos2, err := ReadGPOS(data)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gpos, gpos2, cmpopts.EquateEmpty()); d != "" {
		t.Error(d)
	}

	// a second round trip must give identical bytes
	data2, err := gpos2.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(data, data2); d != "" {
		t.Error(d)
	}
}

func TestFeatureVariations(t *testing.T) {
	gpos := makeTestGPOS()
	gpos.FeatureVariations = FeatureVariations{
		{
			Conditions: []Condition{{Axis: 0, Min: 8192, Max: 16384}},
			Substitutions: []FeatureSubstitution{
				{FeatureIndex: 0, Alternate: &Feature{Tag: "kern", Lookups: []LookupIndex{1}}},
			},
		},
	}
	data, err := gpos.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if data[3] != 1 {
		t.Errorf("expected minor version 1, got %d", data[3])
	}
	gpos2, err := ReadGPOS(data)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gpos.FeatureVariations, gpos2.FeatureVariations, cmpopts.EquateEmpty()); d != "" {
		t.Fatal(d)
	}

	if n := gpos2.ApplyFeatureVariations([]float64{0.25}); n != 0 {
		t.Errorf("unexpected substitution at 0.25")
	}
	gpos3, _ := ReadGPOS(data)
	if n := gpos3.ApplyFeatureVariations([]float64{0.75}); n != 1 {
		t.Errorf("expected one substitution, got %d", n)
	}
	if d := cmp.Diff([]LookupIndex{1}, gpos3.FeatureList[0].Lookups); d != "" {
		t.Error(d)
	}
	if gpos3.FeatureVariations != nil {
		t.Error("feature variations not removed")
	}
	data3, err := gpos3.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if data3[3] != 0 {
		t.Errorf("expected minor version 0, got %d", data3[3])
	}
}

func TestDeleteFeatures(t *testing.T) {
	c := &Common{
		ScriptList: ScriptList{
			{Script: "latn"}:               {Required: 1, Optional: []FeatureIndex{0, 1, 2, 3}},
			{Script: "latn", Lang: "NLD "}: {Required: 3, Optional: []FeatureIndex{2, 3}},
		},
		FeatureList: FeatureList{
			{Tag: "liga"},
			{Tag: "ss01"},
			{Tag: "ss02"},
			{Tag: "locl"},
		},
		FeatureVariations: FeatureVariations{
			{Substitutions: []FeatureSubstitution{
				{FeatureIndex: 1, Alternate: &Feature{Tag: "ss01"}},
				{FeatureIndex: 3, Alternate: &Feature{Tag: "locl"}},
			}},
		},
	}
	n := c.DeleteFeatures(func(f *Feature) bool { return IsStylisticSet(f.Tag) })
	if n != 2 {
		t.Errorf("removed %d features", n)
	}
	expected := ScriptList{
		{Script: "latn"}:               {Required: NoRequiredFeature, Optional: []FeatureIndex{0, 1}},
		{Script: "latn", Lang: "NLD "}: {Required: 1, Optional: []FeatureIndex{1}},
	}
	if d := cmp.Diff(expected, c.ScriptList); d != "" {
		t.Error(d)
	}
	if len(c.FeatureVariations[0].Substitutions) != 1 ||
		c.FeatureVariations[0].Substitutions[0].FeatureIndex != 1 {
		t.Errorf("wrong feature variation records: %v", c.FeatureVariations[0].Substitutions)
	}

	// idempotent
	if n := c.DeleteFeatures(func(f *Feature) bool { return IsStylisticSet(f.Tag) }); n != 0 {
		t.Errorf("second pass removed %d features", n)
	}
}

func TestExtensionPromotion(t *testing.T) {
	var gg []glyph.ID
	var adjust []*ValueRecord
	for i := 0; i < 10000; i++ {
		gg = append(gg, glyph.ID(i+1))
		adjust = append(adjust, &ValueRecord{XAdvance: funit.Int16(i % 100)})
	}
	gpos := &GPOS{
		Common: Common{
			ScriptList:  ScriptList{{Script: "DFLT"}: {Required: NoRequiredFeature, Optional: []FeatureIndex{0}}},
			FeatureList: FeatureList{{Tag: "kern", Lookups: []LookupIndex{0, 1, 2, 3, 4}}},
		},
	}
	for i := 0; i < 5; i++ {
		gpos.LookupList = append(gpos.LookupList, &Lookup{
			Type: GposSingle,
			Subtables: []Subtable{&Gpos1_2{
				Cov:    coverage.FromGlyphs(gg),
				Format: ValueXAdvance,
				Adjust: adjust,
			}},
		})
	}

	data, err := gpos.Encode()
	if err != nil {
		t.Fatal(err)
	}
	lookupListOffset := int(data[8])<<8 | int(data[9])
	firstLookup := lookupListOffset + (int(data[lookupListOffset+2])<<8 | int(data[lookupListOffset+3]))
	lookupType := int(data[firstLookup])<<8 | int(data[firstLookup+1])
	if lookupType != GposExtension {
		t.Errorf("expected extension lookup, got type %d", lookupType)
	}

	gpos2, err := ReadGPOS(data)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gpos, gpos2, cmpopts.EquateEmpty()); d != "" {
		t.Error(d)
	}
}

func TestSingleSubstitutions(t *testing.T) {
	format2 := RawLookups{Data: []byte{
		0, 1, 0, 4, // lookup list
		0, 1, 0, 0, 0, 1, 0, 8, // lookup: type 1
		0, 2, 0, 8, 0, 1, 0, 20, // format 2 subtable
		0, 1, 0, 1, 0, 10, // coverage
	}}
	m, err := format2.SingleSubstitutions(0)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(map[glyph.ID]glyph.ID{10: 20}, m); d != "" {
		t.Error(d)
	}

	extension := RawLookups{Data: []byte{
		0, 1, 0, 4, // lookup list
		0, 7, 0, 0, 0, 1, 0, 8, // lookup: type 7
		0, 1, 0, 1, 0, 0, 0, 8, // extension subtable
		0, 1, 0, 6, 0, 5, // format 1 subtable
		0, 1, 0, 1, 0, 3, // coverage
	}}
	m, err = extension.SingleSubstitutions(0)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(map[glyph.ID]glyph.ID{3: 8}, m); d != "" {
		t.Error(d)
	}
	if extension.NumLookups() != 1 {
		t.Errorf("NumLookups = %d", extension.NumLookups())
	}

	_, err = extension.SingleSubstitutions(1)
	if err == nil {
		t.Error("missing lookup not detected")
	}
}

func TestGSUBRoundTrip(t *testing.T) {
	gsub := &GSUB{
		Common: Common{
			ScriptList:  ScriptList{{Script: "latn"}: {Required: NoRequiredFeature, Optional: []FeatureIndex{0}}},
			FeatureList: FeatureList{{Tag: "ss01", Lookups: []LookupIndex{0}}},
		},
		Lookups: RawLookups{Data: []byte{
			0, 1, 0, 4,
			0, 1, 0, 0, 0, 1, 0, 8,
			0, 2, 0, 8, 0, 1, 0, 20,
			0, 1, 0, 1, 0, 10,
		}},
	}
	data, err := gsub.Encode()
	if err != nil {
		t.Fatal(err)
	}
	gsub2, err := ReadGSUB(data)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gsub.Common, gsub2.Common, cmpopts.EquateEmpty()); d != "" {
		t.Error(d)
	}
	m, err := gsub2.Lookups.SingleSubstitutions(0)
	if err != nil {
		t.Fatal(err)
	}
	if m[10] != 20 {
		t.Errorf("wrong substitution %v", m)
	}

	// rewriting the table after changes to the feature list must keep the
	// lookups intact
	gsub2.DeleteFeatures(func(*Feature) bool { return true })
	data3, err := gsub2.Encode()
	if err != nil {
		t.Fatal(err)
	}
	gsub3, err := ReadGSUB(data3)
	if err != nil {
		t.Fatal(err)
	}
	if len(gsub3.FeatureList) != 0 || gsub3.Lookups.NumLookups() != 1 {
		t.Error("wrong table after feature removal")
	}
	m, err = gsub3.Lookups.SingleSubstitutions(0)
	if err != nil || m[10] != 20 {
		t.Errorf("lookups damaged: %v %v", m, err)
	}
}
